// internal/application/service/convert_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	domainservice "github.com/lineasupply/storefront-api/internal/domain/service"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/lineasupply/storefront-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConvertService(t *testing.T) *ConvertService {
	t.Helper()

	svc, snapshotCache := newTestFxService(new(mocks.MockSnapshotRepository), new(mocks.MockRateProvider))
	snapshotCache.Put(fixtureSnapshot(1 * time.Hour))

	return NewConvertService(svc, logger.NewJSONLogger(nil, logger.ErrorLevel))
}

func TestConvertMinor(t *testing.T) {
	ctx := context.Background()

	t.Run("Base to two-decimal currency", func(t *testing.T) {
		convert := newTestConvertService(t)

		// 29.99 USD * 0.92 = 27.5908 EUR, rounds to 27.59
		result, err := convert.ConvertMinor(ctx, 2999, "USD", "EUR")

		require.NoError(t, err)
		assert.Equal(t, int64(2759), result.AmountMinor)
		assert.Equal(t, "EUR", result.Currency)
		assert.Equal(t, 0.92, result.Rate)
	})

	t.Run("JPY target uses zero decimal places", func(t *testing.T) {
		convert := newTestConvertService(t)

		// 29.99 USD * 149.50 = 4483.5050 JPY, rounds half-up to 4484
		result, err := convert.ConvertMinor(ctx, 2999, "USD", "JPY")

		require.NoError(t, err)
		assert.Equal(t, int64(4484), result.AmountMinor)
	})

	t.Run("JPY source has no minor units", func(t *testing.T) {
		convert := newTestConvertService(t)

		// 1000 JPY / 149.50 = 6.6890 USD, rounds to 6.69 = 669 cents
		result, err := convert.ConvertMinor(ctx, 1000, "JPY", "USD")

		require.NoError(t, err)
		assert.Equal(t, int64(669), result.AmountMinor)
	})

	t.Run("Cross rate goes through the base currency", func(t *testing.T) {
		convert := newTestConvertService(t)

		// 10.00 GBP * (0.92 / 0.79) = 11.6456 EUR, rounds to 11.65
		result, err := convert.ConvertMinor(ctx, 1000, "GBP", "EUR")

		require.NoError(t, err)
		assert.Equal(t, int64(1165), result.AmountMinor)
		assert.InDelta(t, 0.92/0.79, result.Rate, 1e-12)
	})

	t.Run("Same currency is the identity", func(t *testing.T) {
		convert := newTestConvertService(t)

		result, err := convert.ConvertMinor(ctx, 2999, "EUR", "EUR")

		require.NoError(t, err)
		assert.Equal(t, int64(2999), result.AmountMinor)
		assert.Equal(t, 1.0, result.Rate)
	})

	t.Run("Zero amount converts to zero", func(t *testing.T) {
		convert := newTestConvertService(t)

		result, err := convert.ConvertMinor(ctx, 0, "USD", "JPY")

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.AmountMinor)
	})

	t.Run("Negative amount is rejected", func(t *testing.T) {
		convert := newTestConvertService(t)

		result, err := convert.ConvertMinor(ctx, -1, "USD", "EUR")

		assert.Nil(t, result)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must not be negative")
	})

	t.Run("Unsupported currencies are rejected", func(t *testing.T) {
		convert := newTestConvertService(t)

		_, err := convert.ConvertMinor(ctx, 100, "CHF", "EUR")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported source currency")

		_, err = convert.ConvertMinor(ctx, 100, "USD", "CHF")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported target currency")
	})

	t.Run("Rates unavailable propagates", func(t *testing.T) {
		repo := new(mocks.MockSnapshotRepository)
		provider := new(mocks.MockRateProvider)
		fxSvc, _ := newTestFxService(repo, provider)

		repo.On("Load", ctx).Return(nil, nil).Once()
		provider.On("FetchRates", ctx, entity.BaseCurrency, entity.SupportedCurrencies).
			Return(nil, domainservice.ErrProviderUnavailable).Once()

		convert := NewConvertService(fxSvc, logger.NewJSONLogger(nil, logger.ErrorLevel))

		result, err := convert.ConvertMinor(ctx, 100, "USD", "EUR")

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, ErrRatesUnavailable))
	})
}
