// internal/application/service/cart_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	domainservice "github.com/lineasupply/storefront-api/internal/domain/service"
	"github.com/lineasupply/storefront-api/internal/infrastructure/cache"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/lineasupply/storefront-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartService(t *testing.T, seed bool) (*CartService, *cache.SnapshotCache, *mocks.MockSnapshotRepository, *mocks.MockRateProvider) {
	t.Helper()

	repo := new(mocks.MockSnapshotRepository)
	provider := new(mocks.MockRateProvider)
	fxSvc, snapshotCache := newTestFxService(repo, provider)
	if seed {
		snapshotCache.Put(fixtureSnapshot(1 * time.Hour))
	}

	log := logger.NewJSONLogger(nil, logger.ErrorLevel)
	convert := NewConvertService(fxSvc, log)

	return NewCartService(convert, fxSvc, log), snapshotCache, repo, provider
}

func TestGetCartTotals(t *testing.T) {
	ctx := context.Background()

	t.Run("Base currency needs no conversion", func(t *testing.T) {
		cart, _, repo, provider := newTestCartService(t, false)

		totals, err := cart.GetCartTotals(ctx, "USD")

		require.NoError(t, err)
		assert.Equal(t, int64(2999), totals.Subtotal.AmountMinor)
		assert.Equal(t, int64(599), totals.DeliveryCost.AmountMinor)
		assert.Equal(t, int64(3598), totals.Total.AmountMinor)
		assert.Nil(t, totals.FXMetadata)
		repo.AssertNotCalled(t, "Load")
		provider.AssertNotCalled(t, "FetchRates")
	})

	t.Run("Foreign currency converts each line", func(t *testing.T) {
		cart, _, _, _ := newTestCartService(t, true)

		totals, err := cart.GetCartTotals(ctx, "EUR")

		require.NoError(t, err)
		// 2999 * 0.92 = 2759.08 -> 2759; 599 * 0.92 = 551.08 -> 551
		assert.Equal(t, int64(2759), totals.Subtotal.AmountMinor)
		assert.Equal(t, int64(551), totals.DeliveryCost.AmountMinor)
		assert.Equal(t, int64(3310), totals.Total.AmountMinor)
		require.NotNil(t, totals.FXMetadata)
		assert.Equal(t, 0.92, totals.FXMetadata.Rate)
		assert.False(t, totals.FXMetadata.Stale)
	})

	t.Run("Unsupported currency is rejected", func(t *testing.T) {
		cart, _, _, _ := newTestCartService(t, true)

		totals, err := cart.GetCartTotals(ctx, "CHF")

		assert.Nil(t, totals)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported currency")
	})

	t.Run("Rates unavailable propagates for foreign currencies", func(t *testing.T) {
		cart, _, repo, provider := newTestCartService(t, false)

		repo.On("Load", ctx).Return(nil, nil)
		provider.On("FetchRates", ctx, entity.BaseCurrency, entity.SupportedCurrencies).
			Return(nil, domainservice.ErrProviderUnavailable)

		totals, err := cart.GetCartTotals(ctx, "EUR")

		assert.Nil(t, totals)
		assert.True(t, errors.Is(err, ErrRatesUnavailable))
	})
}

func TestGetCheckoutTotals(t *testing.T) {
	ctx := context.Background()

	t.Run("Checkout adds the tax line", func(t *testing.T) {
		cart, _, _, _ := newTestCartService(t, false)

		totals, err := cart.GetCheckoutTotals(ctx, "USD")

		require.NoError(t, err)
		assert.Equal(t, "USD", totals.Currency)
		assert.Equal(t, int64(2999), totals.Subtotal.AmountMinor)
		assert.Equal(t, int64(599), totals.DeliveryCost.AmountMinor)
		assert.Equal(t, int64(240), totals.Tax.AmountMinor)
		assert.Equal(t, int64(3838), totals.Total.AmountMinor)
	})

	t.Run("JPY totals carry no minor decimals", func(t *testing.T) {
		cart, _, _, _ := newTestCartService(t, true)

		totals, err := cart.GetCheckoutTotals(ctx, "JPY")

		require.NoError(t, err)
		// 29.99 * 149.50 = 4483.505 -> 4484
		assert.Equal(t, int64(4484), totals.Subtotal.AmountMinor)
		// 5.99 * 149.50 = 895.505 -> 896
		assert.Equal(t, int64(896), totals.DeliveryCost.AmountMinor)
		// 2.40 * 149.50 = 358.8 -> 359
		assert.Equal(t, int64(359), totals.Tax.AmountMinor)
		assert.Equal(t, int64(4484+896+359), totals.Total.AmountMinor)
	})
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Order embeds the pricing snapshot", func(t *testing.T) {
		cart, _, _, _ := newTestCartService(t, true)

		order, err := cart.CreateOrder(ctx, "EUR")

		require.NoError(t, err)
		assert.NotEmpty(t, order.OrderID)
		assert.Equal(t, "EUR", order.Currency)
		require.NotNil(t, order.FXRatesSnapshot)
		assert.Equal(t, 0.92, order.FXRatesSnapshot.Rates["EUR"])
		assert.False(t, order.FXRatesSnapshot.Stale)
	})

	t.Run("Order IDs are unique", func(t *testing.T) {
		cart, _, _, _ := newTestCartService(t, true)

		first, err := cart.CreateOrder(ctx, "USD")
		require.NoError(t, err)
		second, err := cart.CreateOrder(ctx, "USD")
		require.NoError(t, err)

		assert.NotEqual(t, first.OrderID, second.OrderID)
	})

	t.Run("Stale rates still price an order, flagged in the snapshot", func(t *testing.T) {
		cart, snapshotCache, repo, provider := newTestCartService(t, false)

		snapshotCache.Put(fixtureSnapshot(10 * time.Hour))
		repo.On("Load", ctx).Return(nil, nil)
		provider.On("FetchRates", ctx, entity.BaseCurrency, entity.SupportedCurrencies).
			Return(nil, domainservice.ErrProviderUnavailable)

		order, err := cart.CreateOrder(ctx, "EUR")

		require.NoError(t, err)
		require.NotNil(t, order.FXMetadata)
		assert.True(t, order.FXMetadata.Stale)
		assert.True(t, order.FXRatesSnapshot.Stale)
	})
}
