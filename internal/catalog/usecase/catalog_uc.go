package usecase

import (
	"context"

	"github.com/standberg/catalog-service/internal/catalog/domain"
	"go.uber.org/zap"
)

const (
	// CatalogPageSize is the page length of the full catalog view.
	CatalogPageSize = 12
	// FeaturedPageSize is the page length of the "just arrived" view.
	FeaturedPageSize = 4
)

// Selection is the transient set of active catalog filters. The zero value
// means "no filter active, first page". Selections are immutable; the WithX
// transitions return the adjusted selection and encode the reset rules:
// changing any filter returns to page 1, and changing the brand also clears
// the model, which may no longer exist under the new brand.
type Selection struct {
	Brand    string
	Model    string
	Fuel     string
	MaxPrice *float64
	Page     int
}

func (s Selection) WithBrand(brand string) Selection {
	s.Brand = brand
	s.Model = ""
	s.Page = 1
	return s
}

func (s Selection) WithModel(model string) Selection {
	s.Model = model
	s.Page = 1
	return s
}

func (s Selection) WithFuel(fuel string) Selection {
	s.Fuel = fuel
	s.Page = 1
	return s
}

func (s Selection) WithMaxPrice(max float64) Selection {
	s.MaxPrice = &max
	s.Page = 1
	return s
}

func (s Selection) WithPage(page int) Selection {
	s.Page = page
	return s
}

// matches reports whether p satisfies every active predicate. Predicates are
// ANDed; an unset field matches everything.
func (s Selection) matches(p domain.Product) bool {
	if s.Brand != "" && p.Brand != s.Brand {
		return false
	}
	if s.Model != "" && p.Name != s.Model {
		return false
	}
	if s.Fuel != "" && p.Fuel != s.Fuel {
		return false
	}
	if s.MaxPrice != nil && p.Price > *s.MaxPrice {
		return false
	}
	return true
}

// CatalogPage is one rendered view of the catalog: the requested page slice
// plus the facet option sets the filter controls are populated from.
type CatalogPage struct {
	Products     []domain.Product
	Page         int
	TotalPages   int
	Filtered     int
	BrandOptions []domain.BrandOption
	ModelOptions []string
	FuelOptions  []string
}

// FilterProducts returns the subsequence of products matching sel, in fetch
// order. Absence of matches is an empty slice, never an error.
func FilterProducts(products []domain.Product, sel Selection) []domain.Product {
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if sel.matches(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// BrandOptions derives the brand facet in first-encounter order with per
// brand counts. The order intentionally follows the fetch order rather than
// being alphabetical.
func BrandOptions(products []domain.Product) []domain.BrandOption {
	index := make(map[string]int, len(products))
	options := make([]domain.BrandOption, 0, len(products))
	for _, p := range products {
		if i, ok := index[p.Brand]; ok {
			options[i].Count++
			continue
		}
		index[p.Brand] = len(options)
		options = append(options, domain.BrandOption{Brand: p.Brand, Count: 1})
	}
	return options
}

// ModelOptions derives the model facet: distinct names among products of the
// selected brand, or of the full set when no brand is selected.
func ModelOptions(products []domain.Product, brand string) []string {
	seen := make(map[string]bool, len(products))
	models := make([]string, 0, len(products))
	for _, p := range products {
		if brand != "" && p.Brand != brand {
			continue
		}
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		models = append(models, p.Name)
	}
	return models
}

// FuelOptions derives the fuel facet over the full set. Unlike models it is
// never narrowed by the other filters.
func FuelOptions(products []domain.Product) []string {
	seen := make(map[string]bool, len(products))
	fuels := make([]string, 0, len(products))
	for _, p := range products {
		if seen[p.Fuel] {
			continue
		}
		seen[p.Fuel] = true
		fuels = append(fuels, p.Fuel)
	}
	return fuels
}

// TotalPages returns ceil(total/perPage); an empty set has zero pages.
func TotalPages(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Paginate returns the 1-indexed fixed-size page slice. Pages past the
// available range are empty, with no wraparound and no clamping.
func Paginate(products []domain.Product, page, perPage int) []domain.Product {
	if page < 1 {
		page = 1
	}
	first := (page - 1) * perPage
	if first >= len(products) {
		return []domain.Product{}
	}
	last := first + perPage
	if last > len(products) {
		last = len(products)
	}
	return products[first:last]
}

// CatalogUsecase computes catalog views. Each call fetches its own snapshot
// of the collection and owns it privately; nothing is shared across calls.
type CatalogUsecase struct {
	repo   domain.ProductRepository
	logger *zap.Logger
}

func NewCatalogUsecase(repo domain.ProductRepository, logger *zap.Logger) *CatalogUsecase {
	return &CatalogUsecase{repo: repo, logger: logger}
}

// Browse fetches the full collection and renders the catalog view for sel.
func (uc *CatalogUsecase) Browse(ctx context.Context, sel Selection) (*CatalogPage, error) {
	products, err := uc.repo.FetchAll(ctx)
	if err != nil {
		uc.logger.Error("catalog browse: fetch failed", zap.Error(err))
		return nil, err
	}

	// A stale model selection (e.g. restored from a bookmarked URL after the
	// brand changed) is cleared rather than silently matching nothing.
	if sel.Model != "" && !containsModel(ModelOptions(products, sel.Brand), sel.Model) {
		sel.Model = ""
	}

	filtered := FilterProducts(products, sel)
	return &CatalogPage{
		Products:     Paginate(filtered, sel.Page, CatalogPageSize),
		Page:         pageOrFirst(sel.Page),
		TotalPages:   TotalPages(len(filtered), CatalogPageSize),
		Filtered:     len(filtered),
		BrandOptions: BrandOptions(products),
		ModelOptions: ModelOptions(products, sel.Brand),
		FuelOptions:  FuelOptions(products),
	}, nil
}

// Featured renders the promotional view: products flagged top, in fetch
// order, four per page.
func (uc *CatalogUsecase) Featured(ctx context.Context, page int) (*CatalogPage, error) {
	products, err := uc.repo.FetchAll(ctx)
	if err != nil {
		uc.logger.Error("catalog featured: fetch failed", zap.Error(err))
		return nil, err
	}

	top := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Top {
			top = append(top, p)
		}
	}
	return &CatalogPage{
		Products:   Paginate(top, page, FeaturedPageSize),
		Page:       pageOrFirst(page),
		TotalPages: TotalPages(len(top), FeaturedPageSize),
		Filtered:   len(top),
	}, nil
}

// ProductByID fetches a single listing for the detail page.
func (uc *CatalogUsecase) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := uc.repo.FetchByID(ctx, id)
	if err != nil {
		uc.logger.Warn("catalog detail: fetch failed", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func containsModel(models []string, model string) bool {
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

func pageOrFirst(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
