package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/standberg/catalog-service/internal/catalog/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const productsCollectionName = "products"

// ProductRepository persists vehicle listings in the products collection.
// Reads tolerate every historical record shape; writes always produce the
// current schema.
type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: db.Collection(productsCollectionName)}
}

// FetchAll scans the whole collection and returns the records in store
// order. Consumers get a fresh private snapshot on every call; there is no
// cache in between.
func (r *ProductRepository) FetchAll(ctx context.Context) ([]domain.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]domain.Product, 0)
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, toDomainProduct(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) FetchByID(ctx context.Context, id string) (*domain.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	var doc productDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}

	p := toDomainProduct(&doc)
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (string, error) {
	res, err := r.collection.InsertOne(ctx, toProductWriteDocument(p, time.Now()))
	if err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}
	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("create product: unexpected inserted id type %T", res.InsertedID)
	}
	return insertedID.Hex(), nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	objID, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return domain.ErrProductNotFound
	}

	res, err := r.collection.UpdateByID(ctx, objID, bson.M{"$set": toProductWriteDocument(p, time.Now())})
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProductNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
