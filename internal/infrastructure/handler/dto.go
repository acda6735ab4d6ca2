package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lineasupply/storefront-api/internal/application/service"
	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// MessageResponse represents a simple confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// RatesResponse represents the response for the rates endpoint
type RatesResponse struct {
	Base       string             `json:"base"`
	Rates      map[string]float64 `json:"rates"`
	FetchedAt  time.Time          `json:"fetched_at"`
	TTLSeconds int                `json:"ttl_seconds"`
	Stale      bool               `json:"stale"`
}

func newRatesResponse(snapshot *entity.RateSnapshot) RatesResponse {
	return RatesResponse{
		Base:       snapshot.Base,
		Rates:      snapshot.Rates,
		FetchedAt:  snapshot.FetchedAt,
		TTLSeconds: snapshot.TTLSeconds,
		Stale:      snapshot.Stale,
	}
}

// SupportedCurrenciesResponse represents the currency configuration payload
type SupportedCurrenciesResponse struct {
	BaseCurrency        string                `json:"base_currency"`
	SupportedCurrencies []entity.CurrencyInfo `json:"supported_currencies"`
}

// ConvertRequest represents the request body for a currency conversion
type ConvertRequest struct {
	AmountMinor  int64  `json:"amount_minor"`
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
}

// ConvertResponse represents the response for a currency conversion
type ConvertResponse struct {
	AmountMinor    int64   `json:"amount_minor"`
	FromCurrency   string  `json:"from_currency"`
	ToCurrency     string  `json:"to_currency"`
	OriginalAmount int64   `json:"original_amount"`
	Rate           float64 `json:"rate"`
}

// RateResponse represents a single base-to-target rate
type RateResponse struct {
	BaseCurrency   string  `json:"base_currency"`
	TargetCurrency string  `json:"target_currency"`
	Rate           float64 `json:"rate"`
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCategoryResponse(category *entity.Category) *CategoryResponse {
	if category == nil {
		return nil
	}
	return &CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

// CategoryWithProductsResponse represents a category with its products
type CategoryWithProductsResponse struct {
	CategoryResponse
	Products []ProductResponse `json:"products"`
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Price             float64  `json:"price"`
	CategoryID        uint64   `json:"category_id"`
	DeliveryOptionIDs []uint64 `json:"delivery_option_ids,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
}

// UpdateProductRequest represents the request body for updating a product.
// Fields absent from the payload are left unchanged.
type UpdateProductRequest struct {
	Title             *string  `json:"title"`
	Description       *string  `json:"description"`
	Price             *float64 `json:"price"`
	CategoryID        *uint64  `json:"category_id"`
	DeliveryOptionIDs []uint64 `json:"delivery_option_ids,omitempty"`
	ImageURL          *string  `json:"image_url,omitempty"`
	IsSaved           *bool    `json:"is_saved,omitempty"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uint64                  `json:"id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Price           float64                 `json:"price"`
	CategoryID      uint64                  `json:"category_id"`
	IsSaved         bool                    `json:"is_saved"`
	ImageURL        string                  `json:"image_url,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Category        *CategoryResponse       `json:"category,omitempty"`
	DeliverySummary *entity.DeliverySummary `json:"delivery_summary,omitempty"`
}

func newProductResponse(product *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		CategoryID:  product.CategoryID,
		IsSaved:     product.IsSaved,
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func newProductViewResponse(view *service.ProductView) ProductResponse {
	resp := newProductResponse(view.Product)
	resp.Category = newCategoryResponse(view.Category)
	resp.DeliverySummary = view.DeliverySummary
	return resp
}

// DeliveryOptionResponse represents a delivery option in API responses
type DeliveryOptionResponse struct {
	ID               uint64               `json:"id"`
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	Speed            entity.DeliverySpeed `json:"speed"`
	Price            float64              `json:"price"`
	MinOrderAmount   float64              `json:"min_order_amount,omitempty"`
	EstimatedDaysMin int                  `json:"estimated_days_min"`
	EstimatedDaysMax int                  `json:"estimated_days_max"`
	IsActive         bool                 `json:"is_active"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func newDeliveryOptionResponse(option *entity.DeliveryOption) DeliveryOptionResponse {
	return DeliveryOptionResponse{
		ID:               option.ID,
		Name:             option.Name,
		Description:      option.Description,
		Speed:            option.Speed,
		Price:            option.Price,
		MinOrderAmount:   option.MinOrderAmount,
		EstimatedDaysMin: option.EstimatedDaysMin,
		EstimatedDaysMax: option.EstimatedDaysMax,
		IsActive:         option.IsActive,
		CreatedAt:        option.CreatedAt,
		UpdatedAt:        option.UpdatedAt,
	}
}

// ProductDetailResponse represents a product with its delivery options
type ProductDetailResponse struct {
	ProductResponse
	DeliveryOptions []DeliveryOptionResponse `json:"delivery_options"`
}

// sendJSONResponse writes a JSON payload with the given status code
func sendJSONResponse(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSONResponse(w, statusCode, resp)
}
