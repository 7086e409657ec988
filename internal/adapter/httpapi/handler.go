package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/standberg/catalog-service/internal/catalog/domain"
	"github.com/standberg/catalog-service/internal/catalog/usecase"
	"github.com/standberg/catalog-service/internal/mailer"
	"go.uber.org/zap"
)

const maxLeadFormSize = 10 << 20

// Handler serves the public storefront API: catalog browsing, product
// detail and the credit-intermediation lead form.
type Handler struct {
	catalog *usecase.CatalogUsecase
	leads   mailer.Sender
	logger  *zap.Logger
}

func NewHandler(catalog *usecase.CatalogUsecase, leads mailer.Sender, logger *zap.Logger) *Handler {
	return &Handler{catalog: catalog, leads: leads, logger: logger}
}

type productSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Brand      string  `json:"brand"`
	Price      float64 `json:"price"`
	Kilometers float64 `json:"kilometers"`
	Fuel       string  `json:"fuel"`
	Gearbox    string  `json:"gearbox"`
	Power      string  `json:"power"`
	Image      string  `json:"image"`
	Top        bool    `json:"top"`
}

type productDetail struct {
	productSummary
	Description string   `json:"description"`
	Images      []string `json:"images"`
	MesAno      string   `json:"mesAno"`
	Cor         string   `json:"cor"`
	Lugares     string   `json:"lugares"`
	Portas      string   `json:"portas"`
	Origem      string   `json:"origem"`
	Registos    string   `json:"registos"`
	Inspecao    string   `json:"inspecao"`
	Garantia    string   `json:"garantia"`
}

type catalogResponse struct {
	Products   []productSummary     `json:"products"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
	Filtered   int                  `json:"filtered"`
	Brands     []domain.BrandOption `json:"brands,omitempty"`
	Models     []string             `json:"models,omitempty"`
	Fuels      []string             `json:"fuels,omitempty"`
}

// HandleListProducts renders a catalog page. Filters come in as query
// parameters: brand, model, fuel, max_price, page.
func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	sel := usecase.Selection{Page: 1}
	q := r.URL.Query()
	if brand := q.Get("brand"); brand != "" {
		sel = sel.WithBrand(brand)
	}
	if model := q.Get("model"); model != "" {
		sel = sel.WithModel(model)
	}
	if fuel := q.Get("fuel"); fuel != "" {
		sel = sel.WithFuel(fuel)
	}
	if raw := q.Get("max_price"); raw != "" {
		if max, err := strconv.ParseFloat(raw, 64); err == nil {
			sel = sel.WithMaxPrice(max)
		}
	}
	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			sel = sel.WithPage(page)
		}
	}

	view, err := h.catalog.Browse(r.Context(), sel)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	h.respondJSON(w, http.StatusOK, toCatalogResponse(view, true))
}

// HandleFeatured renders the "just arrived" view of top-flagged listings.
func (h *Handler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}

	view, err := h.catalog.Featured(r.Context(), page)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load featured listings")
		return
	}
	h.respondJSON(w, http.StatusOK, toCatalogResponse(view, false))
}

// HandleGetProduct renders the detail page payload for one listing.
func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.catalog.ProductByID(r.Context(), id)
	if errors.Is(err, domain.ErrProductNotFound) {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	h.respondJSON(w, http.StatusOK, toProductDetail(p))
}

// HandleIntermediation accepts the multipart lead form and forwards it by
// email. A filled honeypot field rejects the request before any delivery
// attempt.
func (h *Handler) HandleIntermediation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxLeadFormSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	if r.FormValue("honeypot") != "" {
		h.respondError(w, http.StatusBadRequest, "request rejected")
		return
	}

	lead := mailer.Lead{
		Name:         r.FormValue("name"),
		Phone:        r.FormValue("phone"),
		Email:        r.FormValue("email"),
		CarYear:      r.FormValue("carYear"),
		Amount:       r.FormValue("amount"),
		Installments: r.FormValue("installments"),
		Message:      r.FormValue("message"),
	}
	if lead.Name == "" || lead.Phone == "" || lead.Email == "" {
		h.respondError(w, http.StatusBadRequest, "name, phone and email are required")
		return
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "failed to read attachment")
			return
		}
		lead.Attachment = &mailer.Attachment{Filename: header.Filename, Data: data}
	}

	leadID := uuid.New().String()
	if err := h.leads.Send(r.Context(), lead); err != nil {
		h.logger.Error("lead delivery failed", zap.String("lead_id", leadID), zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "failed to send the request")
		return
	}

	h.logger.Info("lead received", zap.String("lead_id", leadID), zap.String("lead_email", lead.Email))
	h.respondJSON(w, http.StatusOK, map[string]string{"id": leadID, "message": "Formulário enviado com sucesso!"})
}

func toCatalogResponse(view *usecase.CatalogPage, withFacets bool) catalogResponse {
	products := make([]productSummary, 0, len(view.Products))
	for i := range view.Products {
		products = append(products, toProductSummary(&view.Products[i]))
	}
	resp := catalogResponse{
		Products:   products,
		Page:       view.Page,
		TotalPages: view.TotalPages,
		Filtered:   view.Filtered,
	}
	if withFacets {
		resp.Brands = view.BrandOptions
		resp.Models = view.ModelOptions
		resp.Fuels = view.FuelOptions
	}
	return resp
}

func toProductSummary(p *domain.Product) productSummary {
	image := domain.PlaceholderImageURL
	if urls := domain.DisplayURLs(p.Images); len(urls) > 0 {
		image = urls[0]
	}
	return productSummary{
		ID:         p.ID,
		Name:       p.Name,
		Brand:      p.Brand,
		Price:      p.Price,
		Kilometers: p.Kilometers,
		Fuel:       p.Fuel,
		Gearbox:    p.Gearbox,
		Power:      p.Power,
		Image:      image,
		Top:        p.Top,
	}
}

func toProductDetail(p *domain.Product) productDetail {
	return productDetail{
		productSummary: toProductSummary(p),
		Description:    p.Description,
		Images:         domain.DisplayURLs(p.Images),
		MesAno:         p.MesAno,
		Cor:            p.Cor,
		Lugares:        p.Lugares,
		Portas:         p.Portas,
		Origem:         p.Origem,
		Registos:       p.Registos,
		Inspecao:       p.Inspecao,
		Garantia:       p.Garantia,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
