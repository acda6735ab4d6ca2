package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
)

// Demo cart contents in base-currency minor units. The storefront demo has
// no per-user cart persistence; totals are derived from these fixtures.
const (
	demoSubtotalMinor = 2999
	demoDeliveryMinor = 599
	demoTaxMinor      = 240
)

// PriceInfo is a monetary amount in a currency's minor units
type PriceInfo struct {
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

// FXMetadata describes the snapshot a conversion was priced against
type FXMetadata struct {
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale"`
}

// CartTotals is the priced cart in the requested currency
type CartTotals struct {
	Subtotal     PriceInfo   `json:"subtotal"`
	DeliveryCost PriceInfo   `json:"delivery_cost"`
	Total        PriceInfo   `json:"total"`
	FXMetadata   *FXMetadata `json:"fx_metadata,omitempty"`
}

// CheckoutTotals adds the tax line to the cart totals
type CheckoutTotals struct {
	Currency     string      `json:"currency"`
	Subtotal     PriceInfo   `json:"subtotal"`
	DeliveryCost PriceInfo   `json:"delivery_cost"`
	Tax          PriceInfo   `json:"tax"`
	Total        PriceInfo   `json:"total"`
	FXMetadata   *FXMetadata `json:"fx_metadata,omitempty"`
}

// OrderTotals is a placed order with the rate snapshot it was priced at
type OrderTotals struct {
	OrderID string `json:"order_id"`
	CheckoutTotals
	FXRatesSnapshot *entity.RateSnapshot `json:"fx_rates_snapshot"`
}

// CartService prices the demo cart in any supported currency
type CartService struct {
	convert *ConvertService
	fx      *FxService
	logger  logger.Logger
}

// NewCartService creates a new cart service
func NewCartService(convert *ConvertService, fx *FxService, log logger.Logger) *CartService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CartService{convert: convert, fx: fx, logger: log}
}

// GetCartTotals returns the cart subtotal, delivery cost and total in the
// requested currency
func (s *CartService) GetCartTotals(ctx context.Context, currency string) (*CartTotals, error) {
	lines, meta, err := s.priceLines(ctx, currency, demoSubtotalMinor, demoDeliveryMinor)
	if err != nil {
		return nil, err
	}

	subtotal, delivery := lines[0], lines[1]
	total := PriceInfo{
		AmountMinor: subtotal.AmountMinor + delivery.AmountMinor,
		Currency:    currency,
	}

	return &CartTotals{
		Subtotal:     subtotal,
		DeliveryCost: delivery,
		Total:        total,
		FXMetadata:   meta,
	}, nil
}

// GetCheckoutTotals returns the checkout totals including tax in the
// requested currency
func (s *CartService) GetCheckoutTotals(ctx context.Context, currency string) (*CheckoutTotals, error) {
	lines, meta, err := s.priceLines(ctx, currency, demoSubtotalMinor, demoDeliveryMinor, demoTaxMinor)
	if err != nil {
		return nil, err
	}

	subtotal, delivery, tax := lines[0], lines[1], lines[2]
	total := PriceInfo{
		AmountMinor: subtotal.AmountMinor + delivery.AmountMinor + tax.AmountMinor,
		Currency:    currency,
	}

	return &CheckoutTotals{
		Currency:     currency,
		Subtotal:     subtotal,
		DeliveryCost: delivery,
		Tax:          tax,
		Total:        total,
		FXMetadata:   meta,
	}, nil
}

// CreateOrder prices the checkout and embeds the full rate snapshot the
// order was priced against, so the order remains auditable after rates move
func (s *CartService) CreateOrder(ctx context.Context, currency string) (*OrderTotals, error) {
	checkout, err := s.GetCheckoutTotals(ctx, currency)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.fx.GetRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot rates for order: %w", err)
	}

	order := &OrderTotals{
		OrderID:         uuid.New().String(),
		CheckoutTotals:  *checkout,
		FXRatesSnapshot: snapshot,
	}

	s.logger.Info("Order created", map[string]interface{}{
		"order_id":    order.OrderID,
		"currency":    currency,
		"total_minor": order.Total.AmountMinor,
		"fx_stale":    snapshot.Stale,
	})

	return order, nil
}

// priceLines converts each base-currency amount into the target currency,
// returning shared FX metadata when a conversion actually happened
func (s *CartService) priceLines(ctx context.Context, currency string, amounts ...int64) ([]PriceInfo, *FXMetadata, error) {
	if !entity.IsSupportedCurrency(currency) {
		return nil, nil, fmt.Errorf("unsupported currency: %s", currency)
	}

	lines := make([]PriceInfo, 0, len(amounts))

	if currency == entity.BaseCurrency {
		for _, amount := range amounts {
			lines = append(lines, PriceInfo{AmountMinor: amount, Currency: currency})
		}
		return lines, nil, nil
	}

	snapshot, err := s.fx.GetRates(ctx)
	if err != nil {
		return nil, nil, err
	}

	for _, amount := range amounts {
		converted, err := s.convert.ConvertMinor(ctx, amount, entity.BaseCurrency, currency)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, PriceInfo{AmountMinor: converted.AmountMinor, Currency: currency})
	}

	meta := &FXMetadata{
		Rate:      snapshot.Rates[currency],
		FetchedAt: snapshot.FetchedAt,
		Stale:     snapshot.Stale,
	}

	return lines, meta, nil
}
