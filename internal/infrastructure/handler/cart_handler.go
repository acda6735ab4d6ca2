package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lineasupply/storefront-api/internal/application/service"
	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/lineasupply/storefront-api/internal/infrastructure/middleware"
)

// CartHandler handles HTTP requests for cart pricing, checkout and orders
type CartHandler struct {
	cart   *service.CartService
	logger logger.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cart *service.CartService, log logger.Logger) *CartHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CartHandler{cart: cart, logger: log}
}

// GetCart handles pricing the cart in the requested currency
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	currency := requestedCurrency(r)

	totals, err := h.cart.GetCartTotals(r.Context(), currency)
	if err != nil {
		h.respondPricingError(w, requestID, currency, err)
		return
	}

	sendJSONResponse(w, http.StatusOK, totals)
}

// GetCheckout handles pricing the checkout in the requested currency
func (h *CartHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	currency := requestedCurrency(r)

	totals, err := h.cart.GetCheckoutTotals(r.Context(), currency)
	if err != nil {
		h.respondPricingError(w, requestID, currency, err)
		return
	}

	sendJSONResponse(w, http.StatusOK, totals)
}

// CreateOrder handles placing an order priced in the requested currency
func (h *CartHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	currency := requestedCurrency(r)

	order, err := h.cart.CreateOrder(r.Context(), currency)
	if err != nil {
		h.respondPricingError(w, requestID, currency, err)
		return
	}

	h.logger.Info("Order placed", map[string]interface{}{
		"request_id": requestID,
		"order_id":   order.OrderID,
		"currency":   currency,
	})

	sendJSONResponse(w, http.StatusCreated, order)
}

// respondPricingError maps cart pricing errors to HTTP responses
func (h *CartHandler) respondPricingError(w http.ResponseWriter, requestID, currency string, err error) {
	switch {
	case errors.Is(err, service.ErrRatesUnavailable):
		h.logger.Error("Pricing failed, rates unavailable", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Exchange rates unavailable",
			"The cart cannot be priced in "+currency+" because no exchange rate data is available",
			http.StatusServiceUnavailable, requestID)
	default:
		h.logger.Warn("Pricing request rejected", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid pricing request",
			err.Error(), http.StatusBadRequest, requestID)
	}
}

// requestedCurrency reads the ?currency= query parameter, defaulting to the
// base currency
func requestedCurrency(r *http.Request) string {
	currency := strings.ToUpper(r.URL.Query().Get("currency"))
	if currency == "" {
		return entity.BaseCurrency
	}
	return currency
}

// RegisterRoutes registers the cart handler routes
func (h *CartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/cart", h.GetCart).Methods("GET")
	router.HandleFunc("/checkout", h.GetCheckout).Methods("POST")
	router.HandleFunc("/orders", h.CreateOrder).Methods("POST")

	h.logger.Info("Cart routes registered", map[string]interface{}{
		"routes": []string{
			"GET /cart",
			"POST /checkout",
			"POST /orders",
		},
	})
}
