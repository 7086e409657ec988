package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/standberg/catalog-service/internal/adapter/httpapi/middleware"
	"github.com/standberg/catalog-service/internal/catalog/domain"
	"github.com/standberg/catalog-service/internal/catalog/usecase"
	"go.uber.org/zap"
)

const maxProductFormSize = 32 << 20

// AdminHandler serves the authenticated panel: session management and
// listing CRUD. Each mutation request runs its own admin workflow instance;
// the form buffer lives for the duration of one submit.
type AdminHandler struct {
	repo       domain.ProductRepository
	store      domain.ImageStore
	compressor usecase.Compressor
	logger     *zap.Logger

	jwtSecret     string
	adminUsername string
	adminPassword string
}

func NewAdminHandler(repo domain.ProductRepository, store domain.ImageStore, compressor usecase.Compressor,
	jwtSecret, adminUsername, adminPassword string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		repo:          repo,
		store:         store,
		compressor:    compressor,
		logger:        logger,
		jwtSecret:     jwtSecret,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin checks the operator credentials and issues the session cookie
// (1-day expiry, site-wide path).
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) == 1
	if !userOK || !passOK {
		h.logger.Warn("failed admin login attempt", zap.String("username", req.Username))
		h.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	cookie, err := middleware.IssueSessionCookie(h.jwtSecret, req.Username, time.Now())
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	http.SetCookie(w, cookie)
	h.respondJSON(w, http.StatusOK, map[string]string{"operator": req.Username})
}

// HandleLogout expires the session cookie.
func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, middleware.ClearSessionCookie())
	w.WriteHeader(http.StatusNoContent)
}

// HandleListProducts returns the full collection for the panel.
func (h *AdminHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	uc := h.newWorkflow()
	if err := uc.Load(r.Context()); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	products := uc.Products()
	details := make([]productDetail, 0, len(products))
	for i := range products {
		details = append(details, toProductDetail(&products[i]))
	}
	h.respondJSON(w, http.StatusOK, details)
}

// HandleCreateProduct creates a listing from the multipart form: text
// fields plus any number of image files under the "images" field.
func (h *AdminHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	uc := h.newWorkflow()
	uc.BeginCreate()
	h.submit(w, r, uc)
}

// HandleUpdateProduct updates a listing. When no new image files are staged
// the record keeps its existing image references unchanged.
func (h *AdminHandler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uc := h.newWorkflow()
	if err := uc.BeginEdit(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	h.submit(w, r, uc)
}

// HandleDeleteProduct deletes a listing and, best effort, its stored image
// blobs.
func (h *AdminHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uc := h.newWorkflow()
	if err := uc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("product delete failed", zap.String("product_id", id), zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) submit(w http.ResponseWriter, r *http.Request, uc *usecase.AdminUsecase) {
	if err := r.ParseMultipartForm(maxProductFormSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid form payload")
		return
	}
	if err := h.populateBuffer(r, uc); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := uc.Submit(r.Context())
	switch {
	case err == nil:
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, domain.ErrValidation):
		h.respondError(w, http.StatusBadRequest, "name, brand and a non-negative price are required")
	case errors.Is(err, domain.ErrUpload):
		h.logger.Error("image upload failed during submit", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "failed to upload images, nothing was saved")
	case errors.Is(err, domain.ErrProductNotFound):
		h.respondError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error("product submit failed", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "failed to save product")
	}
}

func (h *AdminHandler) populateBuffer(r *http.Request, uc *usecase.AdminUsecase) error {
	buf := uc.Buffer()
	setString := func(field string, set func(string)) {
		if values, ok := r.MultipartForm.Value[field]; ok && len(values) > 0 {
			set(values[0])
		}
	}

	setString("name", buf.SetName)
	setString("brand", buf.SetBrand)
	setString("description", buf.SetDescription)
	setString("fuel", buf.SetFuel)
	setString("gearbox", buf.SetGearbox)
	setString("power", buf.SetPower)
	setString("mesAno", buf.SetMesAno)
	setString("cor", buf.SetCor)
	setString("lugares", buf.SetLugares)
	setString("portas", buf.SetPortas)
	setString("origem", buf.SetOrigem)
	setString("registos", buf.SetRegistos)
	setString("inspecao", buf.SetInspecao)
	setString("garantia", buf.SetGarantia)

	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.New("price must be numeric")
		}
		buf.SetPrice(price)
	}
	if raw := r.FormValue("kilometers"); raw != "" {
		km, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.New("kilometers must be numeric")
		}
		buf.SetKilometers(km)
	}
	if raw := r.FormValue("top"); raw != "" {
		top, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("top must be a boolean")
		}
		buf.SetTop(top)
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				return errors.New("failed to read image file")
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return errors.New("failed to read image file")
			}
			buf.StageFile(header.Filename, data)
		}
	}
	return nil
}

func (h *AdminHandler) newWorkflow() *usecase.AdminUsecase {
	return usecase.NewAdminUsecase(h.repo, h.store, h.compressor, h.logger)
}

func (h *AdminHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *AdminHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
