// internal/infrastructure/handler/fx_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lineasupply/storefront-api/internal/application/service"
	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/lineasupply/storefront-api/internal/infrastructure/middleware"
)

// FxHandler handles HTTP requests for exchange rates and currency
// configuration
type FxHandler struct {
	fx      *service.FxService
	convert *service.ConvertService
	logger  logger.Logger
}

// NewFxHandler creates a new FX handler
func NewFxHandler(fx *service.FxService, convert *service.ConvertService, log logger.Logger) *FxHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FxHandler{
		fx:      fx,
		convert: convert,
		logger:  log,
	}
}

// GetRates handles retrieving the current rate snapshot
func (h *FxHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	snapshot, err := h.fx.GetRates(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrRatesUnavailable) {
			h.logger.Error("Rates unavailable in all tiers", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Exchange rates unavailable",
				"No exchange rate data is available and the upstream provider could not be reached. Please try again later.",
				http.StatusServiceUnavailable, requestID)
			return
		}

		h.logger.Error("Unexpected error retrieving rates", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while retrieving exchange rates",
			http.StatusInternalServerError, requestID)
		return
	}

	h.logger.Info("Rates served", map[string]interface{}{
		"request_id": requestID,
		"stale":      snapshot.Stale,
		"fetched_at": snapshot.FetchedAt,
	})

	sendJSONResponse(w, http.StatusOK, newRatesResponse(snapshot))
}

// RefreshRates handles an on-demand provider refresh
func (h *FxHandler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	force := r.URL.Query().Get("force") == "true"

	if err := h.fx.Refresh(r.Context(), force); err != nil {
		h.logger.Error("Manual rate refresh failed", map[string]interface{}{
			"request_id": requestID,
			"force":      force,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Failed to refresh rates",
			"The upstream provider could not be reached or returned invalid data",
			http.StatusServiceUnavailable, requestID)
		return
	}

	h.logger.Info("Rates refreshed on demand", map[string]interface{}{
		"request_id": requestID,
		"force":      force,
	})

	sendJSONResponse(w, http.StatusOK, MessageResponse{Message: "Exchange rates refreshed successfully"})
}

// GetCurrencyConfig handles retrieving the supported-currency configuration
func (h *FxHandler) GetCurrencyConfig(w http.ResponseWriter, r *http.Request) {
	currencies := make([]entity.CurrencyInfo, 0, len(entity.SupportedCurrencies))
	for _, code := range entity.SupportedCurrencies {
		if info, ok := entity.CurrencyInfoFor(code); ok {
			currencies = append(currencies, info)
		}
	}

	sendJSONResponse(w, http.StatusOK, SupportedCurrenciesResponse{
		BaseCurrency:        entity.BaseCurrency,
		SupportedCurrencies: currencies,
	})
}

// GetSupportedCurrencies handles listing the supported currency codes
func (h *FxHandler) GetSupportedCurrencies(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, http.StatusOK, h.fx.SupportedCurrencies())
}

// ConvertCurrency handles a minor-unit currency conversion
func (h *FxHandler) ConvertCurrency(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	from := strings.ToUpper(req.FromCurrency)
	to := strings.ToUpper(req.ToCurrency)

	converted, err := h.convert.ConvertMinor(r.Context(), req.AmountMinor, from, to)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRatesUnavailable):
			sendErrorResponse(w, h.logger, "Exchange rates unavailable",
				"No exchange rate data is available to perform the conversion",
				http.StatusServiceUnavailable, requestID)
		default:
			h.logger.Warn("Conversion rejected", map[string]interface{}{
				"request_id": requestID,
				"from":       from,
				"to":         to,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Invalid conversion request",
				err.Error(), http.StatusBadRequest, requestID)
		}
		return
	}

	sendJSONResponse(w, http.StatusOK, ConvertResponse{
		AmountMinor:    converted.AmountMinor,
		FromCurrency:   from,
		ToCurrency:     to,
		OriginalAmount: req.AmountMinor,
		Rate:           converted.Rate,
	})
}

// GetRate handles retrieving a single base-to-target rate
func (h *FxHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	vars := mux.Vars(r)
	target := strings.ToUpper(vars["currency"])

	rate, err := h.fx.GetRate(r.Context(), target)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRatesUnavailable):
			sendErrorResponse(w, h.logger, "Exchange rates unavailable",
				"No exchange rate data is available. Please try again later.",
				http.StatusServiceUnavailable, requestID)
		default:
			sendErrorResponse(w, h.logger, "Invalid currency",
				err.Error(), http.StatusBadRequest, requestID)
		}
		return
	}

	sendJSONResponse(w, http.StatusOK, RateResponse{
		BaseCurrency:   entity.BaseCurrency,
		TargetCurrency: target,
		Rate:           rate,
	})
}

// RegisterRoutes registers the FX handler routes
func (h *FxHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/fx/rates", h.GetRates).Methods("GET")
	router.HandleFunc("/fx/refresh", h.RefreshRates).Methods("POST")
	router.HandleFunc("/config/currencies", h.GetCurrencyConfig).Methods("GET")
	router.HandleFunc("/api/currencies", h.GetSupportedCurrencies).Methods("GET")
	router.HandleFunc("/api/currencies/convert", h.ConvertCurrency).Methods("POST")
	router.HandleFunc("/api/currencies/rates/{currency}", h.GetRate).Methods("GET")

	h.logger.Info("FX routes registered", map[string]interface{}{
		"routes": []string{
			"GET /fx/rates",
			"POST /fx/refresh",
			"GET /config/currencies",
			"GET /api/currencies",
			"POST /api/currencies/convert",
			"GET /api/currencies/rates/{currency}",
		},
	})
}
