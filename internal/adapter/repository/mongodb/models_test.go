package mongodb

import (
	"testing"
	"time"

	"github.com/standberg/catalog-service/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToDomainProductSubstitutesDefaults(t *testing.T) {
	doc := productDocument{ID: primitive.NewObjectID()}
	p := toDomainProduct(&doc)

	assert.Equal(t, domain.DefaultName, p.Name)
	assert.Equal(t, domain.DefaultBrand, p.Brand)
	assert.Equal(t, domain.DefaultDescription, p.Description)
	assert.Equal(t, domain.DefaultFuel, p.Fuel)
	assert.Equal(t, domain.DefaultGearbox, p.Gearbox)
	assert.Equal(t, domain.DefaultPower, p.Power)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.Kilometers)
	assert.False(t, p.Top)
	assert.Empty(t, p.MesAno)

	require.Len(t, p.Images, 1)
	assert.Equal(t, domain.PlaceholderImageURL, p.Images[0].DisplayURL())
}

func TestToDomainProductKeepsPresentValues(t *testing.T) {
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        "320d Touring",
		Brand:       "BMW",
		Description: "Nacional, um dono",
		Price:       18500.0,
		Kilometers:  "142000",
		Fuel:        "Diesel",
		Gearbox:     "Manual",
		Power:       "190",
		Images:      []domain.ImageRef{{URL: "https://cdn.example.com/bmw.jpg", Path: "products/bmw.jpg-1"}},
		Top:         true,
		MesAno:      "03/2019",
	}
	p := toDomainProduct(&doc)

	assert.Equal(t, "320d Touring", p.Name)
	assert.Equal(t, "BMW", p.Brand)
	assert.Equal(t, 18500.0, p.Price)
	assert.Equal(t, 142000.0, p.Kilometers)
	assert.True(t, p.Top)
	assert.Equal(t, "03/2019", p.MesAno)
	require.Len(t, p.Images, 1)
	assert.Equal(t, "https://cdn.example.com/bmw.jpg", p.Images[0].DisplayURL())
}

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"double", 12500.5, 12500.5},
		{"int32", int32(90000), 90000},
		{"int64", int64(150000), 150000},
		{"numeric string", "15000", 15000},
		{"numeric string with spaces", " 15000 ", 15000},
		{"non-numeric string", "Sem Quilometragem", 0},
		{"absent", nil, 0},
		{"negative clamps", -5.0, 0},
		{"wrong type", true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, coerceNumber(tc.in))
		})
	}
}

func TestValidOrPlaceholderDropsInvalidRefs(t *testing.T) {
	refs := validOrPlaceholder([]domain.ImageRef{
		{},
		{URL: "https://cdn.example.com/a.jpg"},
	})
	require.Len(t, refs, 1)
	assert.Equal(t, "https://cdn.example.com/a.jpg", refs[0].DisplayURL())

	refs = validOrPlaceholder(nil)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.PlaceholderImageURL, refs[0].DisplayURL())
}

func TestProductWriteDocumentRoundTrip(t *testing.T) {
	p := &domain.Product{
		Name:   "Clio V",
		Brand:  "Renault",
		Price:  13900,
		Images: []domain.ImageRef{{URL: "https://cdn.example.com/clio.jpg", Path: "products/clio.jpg-2"}},
	}
	raw, err := bson.Marshal(toProductWriteDocument(p, time.Now()))
	require.NoError(t, err)

	var doc productDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := toDomainProduct(&doc)

	assert.Equal(t, "Clio V", got.Name)
	assert.Equal(t, 13900.0, got.Price)
	require.Len(t, got.Images, 1)
	path, ok := got.Images[0].DeletionPath()
	assert.True(t, ok)
	assert.Equal(t, "products/clio.jpg-2", path)
}
