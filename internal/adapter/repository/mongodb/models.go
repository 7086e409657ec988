package mongodb

import (
	"strconv"
	"strings"
	"time"

	"github.com/standberg/catalog-service/internal/catalog/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// productDocument is the read-side shape of a products record. Price and
// kilometers are decoded untyped because historical records stored them as
// either numbers or strings; Images relies on domain.ImageRef to absorb the
// three image schemas the collection accumulated over time.
type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Brand       string             `bson:"brand"`
	Description string             `bson:"description"`
	Price       interface{}        `bson:"price"`
	Kilometers  interface{}        `bson:"kilometers"`
	Fuel        string             `bson:"fuel"`
	Gearbox     string             `bson:"gearbox"`
	Power       string             `bson:"power"`
	Images      []domain.ImageRef  `bson:"images"`
	Top         bool               `bson:"top"`

	MesAno   string `bson:"mesAno"`
	Cor      string `bson:"cor"`
	Lugares  string `bson:"lugares"`
	Portas   string `bson:"portas"`
	Origem   string `bson:"origem"`
	Registos string `bson:"registos"`
	Inspecao string `bson:"inspecao"`
	Garantia string `bson:"garantia"`
}

// productWriteDocument is the write-side shape: fully typed, current image
// schema only. Legacy shapes are read forever but never written back.
type productWriteDocument struct {
	Name        string            `bson:"name"`
	Brand       string            `bson:"brand"`
	Description string            `bson:"description"`
	Price       float64           `bson:"price"`
	Kilometers  float64           `bson:"kilometers"`
	Fuel        string            `bson:"fuel"`
	Gearbox     string            `bson:"gearbox"`
	Power       string            `bson:"power"`
	Images      []domain.ImageRef `bson:"images"`
	Top         bool              `bson:"top"`

	MesAno    string    `bson:"mesAno"`
	Cor       string    `bson:"cor"`
	Lugares   string    `bson:"lugares"`
	Portas    string    `bson:"portas"`
	Origem    string    `bson:"origem"`
	Registos  string    `bson:"registos"`
	Inspecao  string    `bson:"inspecao"`
	Garantia  string    `bson:"garantia"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toProductWriteDocument(p *domain.Product, now time.Time) *productWriteDocument {
	images := p.Images
	if images == nil {
		images = []domain.ImageRef{}
	}
	return &productWriteDocument{
		Name:        p.Name,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       p.Price,
		Kilometers:  p.Kilometers,
		Fuel:        p.Fuel,
		Gearbox:     p.Gearbox,
		Power:       p.Power,
		Images:      images,
		Top:         p.Top,
		MesAno:      p.MesAno,
		Cor:         p.Cor,
		Lugares:     p.Lugares,
		Portas:      p.Portas,
		Origem:      p.Origem,
		Registos:    p.Registos,
		Inspecao:    p.Inspecao,
		Garantia:    p.Garantia,
		UpdatedAt:   now,
	}
}

// toDomainProduct maps a raw record to the domain entity, substituting the
// documented fallback for every absent or empty field. A present, non-empty
// value is never overridden.
func toDomainProduct(d *productDocument) domain.Product {
	return domain.Product{
		ID:          d.ID.Hex(),
		Name:        orDefault(d.Name, domain.DefaultName),
		Brand:       orDefault(d.Brand, domain.DefaultBrand),
		Description: orDefault(d.Description, domain.DefaultDescription),
		Price:       coerceNumber(d.Price),
		Kilometers:  coerceNumber(d.Kilometers),
		Fuel:        orDefault(d.Fuel, domain.DefaultFuel),
		Gearbox:     orDefault(d.Gearbox, domain.DefaultGearbox),
		Power:       orDefault(d.Power, domain.DefaultPower),
		Images:      validOrPlaceholder(d.Images),
		Top:         d.Top,
		MesAno:      d.MesAno,
		Cor:         d.Cor,
		Lugares:     d.Lugares,
		Portas:      d.Portas,
		Origem:      d.Origem,
		Registos:    d.Registos,
		Inspecao:    d.Inspecao,
		Garantia:    d.Garantia,
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// coerceNumber parses the numeric value a record stored as double, int or
// string. Absent and non-numeric values coerce to 0; negatives are clamped
// since neither price nor kilometers may be negative.
func coerceNumber(v interface{}) float64 {
	var n float64
	switch value := v.(type) {
	case float64:
		n = value
	case float32:
		n = float64(value)
	case int32:
		n = float64(value)
	case int64:
		n = float64(value)
	case int:
		n = float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// validOrPlaceholder drops unresolvable references and guarantees a
// non-empty image list.
func validOrPlaceholder(refs []domain.ImageRef) []domain.ImageRef {
	valid := make([]domain.ImageRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Valid() {
			valid = append(valid, ref)
		}
	}
	if len(valid) == 0 {
		return []domain.ImageRef{{URL: domain.PlaceholderImageURL}}
	}
	return valid
}
