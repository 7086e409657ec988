package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/standberg/catalog-service/internal/adapter/httpapi/middleware"
	"go.uber.org/zap"
)

// NewRouter wires the public storefront routes and the cookie-gated admin
// routes.
func NewRouter(h *Handler, ah *AdminHandler, jwtSecret string, allowedOrigins []string, logger *zap.Logger) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(chimiddleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Get("/api/products", h.HandleListProducts)
	mux.Get("/api/products/featured", h.HandleFeatured)
	mux.Get("/api/products/{id}", h.HandleGetProduct)
	mux.Post("/api/intermediation", h.HandleIntermediation)

	mux.Post("/api/session", ah.HandleLogin)
	mux.Delete("/api/session", ah.HandleLogout)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(jwtSecret, logger))

		r.Get("/api/admin/products", ah.HandleListProducts)
		r.Post("/api/admin/products", ah.HandleCreateProduct)
		r.Put("/api/admin/products/{id}", ah.HandleUpdateProduct)
		r.Delete("/api/admin/products/{id}", ah.HandleDeleteProduct)
	})

	return mux
}
