package service

import (
	"context"
	"fmt"
	"math"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
)

// ConvertedAmount is the result of a minor-unit currency conversion
type ConvertedAmount struct {
	AmountMinor int64   `json:"amount_minor"`
	Currency    string  `json:"currency"`
	Rate        float64 `json:"rate"`
}

// ConvertService converts minor-unit amounts between supported currencies
// using the current rate snapshot. Cross rates go through the base currency.
type ConvertService struct {
	fx     *FxService
	logger logger.Logger
}

// NewConvertService creates a new conversion service
func NewConvertService(fx *FxService, log logger.Logger) *ConvertService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConvertService{fx: fx, logger: log}
}

// ConvertMinor converts an amount in minor units (e.g. cents) of one
// currency into minor units of another, honoring per-currency decimal
// places (JPY has none) and rounding half-up.
func (s *ConvertService) ConvertMinor(ctx context.Context, amountMinor int64, from, to string) (*ConvertedAmount, error) {
	if amountMinor < 0 {
		return nil, fmt.Errorf("amount must not be negative: %d", amountMinor)
	}
	if !entity.IsSupportedCurrency(from) {
		return nil, fmt.Errorf("unsupported source currency: %s", from)
	}
	if !entity.IsSupportedCurrency(to) {
		return nil, fmt.Errorf("unsupported target currency: %s", to)
	}

	if from == to {
		return &ConvertedAmount{AmountMinor: amountMinor, Currency: to, Rate: 1.0}, nil
	}

	snapshot, err := s.fx.GetRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rates: %w", err)
	}

	// Both rates are relative to the base currency, so the cross rate is
	// their ratio; direct base conversions degenerate to a single rate.
	rate := snapshot.Rates[to] / snapshot.Rates[from]

	major := float64(amountMinor) / math.Pow10(entity.CurrencyDecimals(from))
	convertedMinor := major * rate * math.Pow10(entity.CurrencyDecimals(to))

	// Half-up rounding; amounts are non-negative here
	result := int64(math.Floor(convertedMinor + 0.5))

	s.logger.Debug("Converted amount", map[string]interface{}{
		"from":         from,
		"to":           to,
		"amount_minor": amountMinor,
		"result_minor": result,
		"rate":         rate,
	})

	return &ConvertedAmount{AmountMinor: result, Currency: to, Rate: rate}, nil
}
