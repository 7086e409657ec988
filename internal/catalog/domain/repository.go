package domain

import "context"

// ProductRepository is the only gateway to the products collection. Every
// FetchAll is a full collection scan; the service keeps no cache between
// calls, which is deliberate at catalog scale.
type ProductRepository interface {
	FetchAll(ctx context.Context) ([]Product, error)
	FetchByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) (string, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// ImageStore is the object-store port used for listing photos.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
