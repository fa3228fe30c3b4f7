package transport

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"santafe-store/internal/domain"
	"santafe-store/internal/middleware"
	"santafe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// multipart bodies carry the image plus a handful of short text fields
const formOverheadBytes = 1 << 20

// ErrMalformedForm reports a multipart body that could not be parsed
var ErrMalformedForm = errors.New("malformed multipart form")

// ProductRequest is the admin payload for creating or replacing a product
type ProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Stock       int              `json:"stock" validate:"gte=0"`
}

// CatalogHandler handles HTTP requests for categories and products
type CatalogHandler struct {
	catalogService service.CatalogService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, maxUploadBytes int64, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Get("/api/categories", h.ListCategories)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(guards.Admin)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})
}

// ListCategories returns every category ordered by name
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// ListProducts returns products filtered by ?q=, ?category=, ?limit= and ?offset=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		Query:    strings.TrimSpace(query.Get("q")),
		Category: strings.TrimSpace(query.Get("category")),
	}

	var err error
	if filter.Limit, err = intParam(query.Get("limit")); err != nil {
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, service.KindInvalidInput.String(), "limit must be an integer", nil)
		return
	}
	if filter.Offset, err = intParam(query.Get("offset")); err != nil {
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, service.KindInvalidInput.String(), "offset must be an integer", nil)
		return
	}

	products, err := h.catalogService.ListProducts(r.Context(), filter)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"products": views,
	})
}

// GetProduct returns a single product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"product": newProductView(product),
	})
}

// CreateProduct adds a product to the catalog
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), identity(r), input)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("by", identity(r).UserID.String()),
	)
	middleware.RespondWithData(w, http.StatusCreated, map[string]interface{}{
		"product": newProductView(product),
	})
}

// UpdateProduct replaces a product's fields; the image is kept unless a new one is sent
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), identity(r), id, input)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.String("by", identity(r).UserID.String()),
	)
	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"product": newProductView(product),
	})
}

// DeleteProduct removes a product; past order lines keep their snapshot
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), identity(r), id); err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Product deleted",
		zap.String("product_id", id.String()),
		zap.String("by", identity(r).UserID.String()),
	)
	middleware.RespondWithMessage(w, http.StatusOK, "product deleted")
}

// decodeProduct reads a product from a multipart form (with an optional
// "image" file) or from a JSON body
func (h *CatalogHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req ProductRequest
		if err := middleware.DecodeAndValidate(r, &req); err != nil {
			middleware.RespondWithDecodeError(w, err)
			return service.ProductInput{}, false
		}
		return req.toInput(nil), true
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithErrorCode(w, http.StatusBadRequest, service.KindInvalidInput.String(), "image exceeds the upload limit", nil)
			return service.ProductInput{}, false
		}
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, service.KindInvalidInput.String(), ErrMalformedForm.Error(), nil)
		return service.ProductInput{}, false
	}

	req, err := productRequestFromForm(r)
	if err != nil {
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, service.KindInvalidInput.String(), err.Error(), nil)
		return service.ProductInput{}, false
	}
	if err := middleware.ValidateRequest(req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return service.ProductInput{}, false
	}

	image, err := readImage(r)
	if err != nil {
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, service.KindInvalidInput.String(), err.Error(), nil)
		return service.ProductInput{}, false
	}

	return req.toInput(image), true
}

func productRequestFromForm(r *http.Request) (*ProductRequest, error) {
	req := &ProductRequest{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: r.FormValue("description"),
	}

	if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.New("category_id must be a UUID")
		}
		req.CategoryID = &id
	}

	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.New("price must be a number")
		}
		req.Price = &price
	}

	stock, err := intParam(r.FormValue("stock"))
	if err != nil {
		return nil, errors.New("stock must be an integer")
	}
	req.Stock = stock

	return req, nil
}

func readImage(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, ErrMalformedForm
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ErrMalformedForm
	}
	return data, nil
}

func (req *ProductRequest) toInput(image []byte) service.ProductInput {
	input := service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		Image:       image,
	}
	if req.CategoryID != nil {
		input.CategoryID = uuid.NullUUID{UUID: *req.CategoryID, Valid: true}
	}
	if req.Price != nil {
		input.Price = *req.Price
	}
	return input
}

func intParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
