package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lineasupply/storefront-api/internal/application/service"
	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/domain/repository"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/lineasupply/storefront-api/internal/infrastructure/middleware"
)

// CatalogHandler handles HTTP requests for categories, products and
// delivery options
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *service.CatalogService, log logger.Logger) *CatalogHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CatalogHandler{catalog: catalog, logger: log}
}

// CreateCategory handles the creation of a new category
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateCategory):
			h.logger.Warn("Duplicate category name", map[string]interface{}{
				"request_id": requestID,
				"name":       req.Name,
			})
			sendErrorResponse(w, h.logger, "Category already exists",
				"A category with this name already exists", http.StatusConflict, requestID)
		default:
			h.logger.Warn("Category creation rejected", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Invalid category",
				err.Error(), http.StatusBadRequest, requestID)
		}
		return
	}

	sendJSONResponse(w, http.StatusCreated, newCategoryResponse(category))
}

// GetCategories handles listing all categories
func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.listCategories(w, r, false)
}

// GetCategoriesForFilter handles listing categories that have products
func (h *CatalogHandler) GetCategoriesForFilter(w http.ResponseWriter, r *http.Request) {
	h.listCategories(w, r, true)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request, onlyPopulated bool) {
	requestID := middleware.GetRequestID(r.Context())

	var (
		categories []*entity.Category
		err        error
	)
	if onlyPopulated {
		categories, err = h.catalog.GetCategoriesWithProducts(r.Context())
	} else {
		categories, err = h.catalog.GetCategories(r.Context())
	}

	if err != nil {
		h.logger.Error("Failed to list categories", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while listing categories",
			http.StatusInternalServerError, requestID)
		return
	}

	resp := make([]*CategoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, newCategoryResponse(category))
	}

	sendJSONResponse(w, http.StatusOK, resp)
}

// GetCategory handles retrieving a category with its products
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDVar(w, r, h.logger, requestID)
	if !ok {
		return
	}

	result, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, r, err, "category")
		return
	}

	resp := CategoryWithProductsResponse{
		CategoryResponse: *newCategoryResponse(result.Category),
		Products:         make([]ProductResponse, 0, len(result.Products)),
	}
	for _, product := range result.Products {
		resp.Products = append(resp.Products, newProductResponse(product))
	}

	sendJSONResponse(w, http.StatusOK, resp)
}

// CreateProduct handles the creation of a new product
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	product := &entity.Product{
		Title:             req.Title,
		Description:       req.Description,
		Price:             req.Price,
		CategoryID:        req.CategoryID,
		DeliveryOptionIDs: req.DeliveryOptionIDs,
		ImageURL:          req.ImageURL,
	}

	if _, err := h.catalog.CreateProduct(r.Context(), product); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCategory):
			sendErrorResponse(w, h.logger, "Category not found",
				"The referenced category does not exist", http.StatusBadRequest, requestID)
		default:
			h.logger.Warn("Product creation rejected", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Invalid product",
				err.Error(), http.StatusBadRequest, requestID)
		}
		return
	}

	h.logger.Info("Product created", map[string]interface{}{
		"request_id": requestID,
		"id":         product.ID,
	})

	sendJSONResponse(w, http.StatusCreated, newProductResponse(product))
}

// ListProducts handles the plain product listing
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := service.ProductFilter{
		CategoryID:  parseIDParam(r, "category_id"),
		WithSummary: r.URL.Query().Get("include_delivery_summary") == "true",
	}
	h.listProducts(w, r, filter)
}

// ListProductsAPI handles the storefront product listing with filtering
// and sorting
func (h *CatalogHandler) ListProductsAPI(w http.ResponseWriter, r *http.Request) {
	filter := service.ProductFilter{
		CategoryID:       parseIDParam(r, "categoryId"),
		DeliveryOptionID: parseIDParam(r, "deliveryOptionId"),
		Sort:             r.URL.Query().Get("sort"),
		WithSummary:      r.URL.Query().Get("include_delivery_summary") != "false",
	}
	h.listProducts(w, r, filter)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request, filter service.ProductFilter) {
	requestID := middleware.GetRequestID(r.Context())

	views, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while listing products",
			http.StatusInternalServerError, requestID)
		return
	}

	resp := make([]ProductResponse, 0, len(views))
	for _, view := range views {
		resp = append(resp, newProductViewResponse(view))
	}

	sendJSONResponse(w, http.StatusOK, resp)
}

// GetProduct handles retrieving a product with its delivery options
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDVar(w, r, h.logger, requestID)
	if !ok {
		return
	}

	detail, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, r, err, "product")
		return
	}

	resp := ProductDetailResponse{
		ProductResponse: newProductResponse(detail.Product),
		DeliveryOptions: make([]DeliveryOptionResponse, 0, len(detail.DeliveryOptions)),
	}
	resp.Category = newCategoryResponse(detail.Category)
	for _, option := range detail.DeliveryOptions {
		resp.DeliveryOptions = append(resp.DeliveryOptions, newDeliveryOptionResponse(option))
	}

	sendJSONResponse(w, http.StatusOK, resp)
}

// UpdateProduct handles updating an existing product
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDVar(w, r, h.logger, requestID)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	update := service.ProductUpdate{
		Title:             req.Title,
		Description:       req.Description,
		Price:             req.Price,
		CategoryID:        req.CategoryID,
		DeliveryOptionIDs: req.DeliveryOptionIDs,
		ImageURL:          req.ImageURL,
		IsSaved:           req.IsSaved,
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCategory):
			sendErrorResponse(w, h.logger, "Category not found",
				"The referenced category does not exist", http.StatusBadRequest, requestID)
		case errors.Is(err, repository.ErrNotFound):
			h.respondCatalogError(w, r, err, "product")
		default:
			h.logger.Warn("Product update rejected", map[string]interface{}{
				"request_id": requestID,
				"id":         id,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Invalid product",
				err.Error(), http.StatusBadRequest, requestID)
		}
		return
	}

	sendJSONResponse(w, http.StatusOK, newProductResponse(product))
}

// DeleteProduct handles deleting a product
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDVar(w, r, h.logger, requestID)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.respondCatalogError(w, r, err, "product")
		return
	}

	sendJSONResponse(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

// GetDeliveryOptions handles listing active delivery options
func (h *CatalogHandler) GetDeliveryOptions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	options, err := h.catalog.ActiveDeliveryOptions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list delivery options", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while listing delivery options",
			http.StatusInternalServerError, requestID)
		return
	}

	resp := make([]DeliveryOptionResponse, 0, len(options))
	for _, option := range options {
		resp = append(resp, newDeliveryOptionResponse(option))
	}

	sendJSONResponse(w, http.StatusOK, resp)
}

// respondCatalogError maps catalog service errors to HTTP responses
func (h *CatalogHandler) respondCatalogError(w http.ResponseWriter, r *http.Request, err error, kind string) {
	requestID := middleware.GetRequestID(r.Context())

	if errors.Is(err, repository.ErrNotFound) {
		h.logger.Warn("Entity not found", map[string]interface{}{
			"request_id": requestID,
			"kind":       kind,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Not found",
			"The requested "+kind+" could not be found", http.StatusNotFound, requestID)
		return
	}

	h.logger.Error("Unexpected catalog error", map[string]interface{}{
		"request_id": requestID,
		"kind":       kind,
		"error":      err.Error(),
	})
	sendErrorResponse(w, h.logger, "Internal server error",
		"An unexpected error occurred", http.StatusInternalServerError, requestID)
}

// parseIDVar extracts the {id} route variable, responding 400 on garbage
func parseIDVar(w http.ResponseWriter, r *http.Request, log logger.Logger, requestID string) (uint64, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(w, log, "Invalid ID",
			"The ID path parameter must be a positive integer", http.StatusBadRequest, requestID)
		return 0, false
	}
	return id, true
}

// parseIDParam extracts an optional numeric query parameter; 0 means unset
func parseIDParam(r *http.Request, name string) uint64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// RegisterRoutes registers the catalog handler routes
func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/categories", h.CreateCategory).Methods("POST")
	router.HandleFunc("/categories", h.GetCategories).Methods("GET")
	router.HandleFunc("/categories/{id}", h.GetCategory).Methods("GET")
	router.HandleFunc("/api/categories", h.GetCategoriesForFilter).Methods("GET")

	router.HandleFunc("/products", h.CreateProduct).Methods("POST")
	router.HandleFunc("/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	router.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT")
	router.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")
	router.HandleFunc("/api/products", h.ListProductsAPI).Methods("GET")

	router.HandleFunc("/api/delivery-options", h.GetDeliveryOptions).Methods("GET")

	h.logger.Info("Catalog routes registered", map[string]interface{}{
		"routes": []string{
			"POST /categories",
			"GET /categories",
			"GET /categories/{id}",
			"GET /api/categories",
			"POST /products",
			"GET /products",
			"GET /products/{id}",
			"PUT /products/{id}",
			"DELETE /products/{id}",
			"GET /api/products",
			"GET /api/delivery-options",
		},
	})
}
