package domain

// Fallback values substituted when a stored record is missing a field or
// carries an empty one. The storefront copy is Portuguese, so the defaults
// are too.
const (
	DefaultName        = "Produto sem nome"
	DefaultBrand       = "Marca desconhecida"
	DefaultDescription = "Sem descrição"
	DefaultFuel        = "Combustível desconhecido"
	DefaultGearbox     = "Câmbio desconhecido"
	DefaultPower       = "Potência desconhecida"

	// PlaceholderImageURL is served when a record has no usable images.
	PlaceholderImageURL = "/placeholder.jpg"
)

// Product is a vehicle listing as exposed to the catalog and admin panel.
// Field coercion and defaulting happen in the repository adapter; a Product
// handed out by the repository always has every string field non-empty
// (except the extended attributes) and at least one image reference.
type Product struct {
	ID          string
	Name        string
	Brand       string
	Description string
	Price       float64
	Kilometers  float64
	Fuel        string
	Gearbox     string
	Power       string
	Images      []ImageRef
	Top         bool

	// Extended descriptive attributes, optional, empty when not recorded.
	MesAno   string
	Cor      string
	Lugares  string
	Portas   string
	Origem   string
	Registos string
	Inspecao string
	Garantia string
}

// BrandOption is a brand facet entry annotated with the number of products
// carrying that brand.
type BrandOption struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}
