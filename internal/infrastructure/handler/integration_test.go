// internal/infrastructure/handler/integration_test.go
package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
	"github.com/lineasupply/storefront-api/internal/application/service"
	"github.com/lineasupply/storefront-api/internal/domain/entity"
	domainservice "github.com/lineasupply/storefront-api/internal/domain/service"
	"github.com/lineasupply/storefront-api/internal/infrastructure/cache"
	"github.com/lineasupply/storefront-api/internal/infrastructure/db"
	"github.com/lineasupply/storefront-api/internal/infrastructure/handler"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/lineasupply/storefront-api/internal/infrastructure/middleware"
	"github.com/lineasupply/storefront-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var integrationRates = map[string]float64{
	"USD": 1.0,
	"GBP": 0.79,
	"EUR": 0.92,
	"AUD": 1.52,
	"MXN": 17.05,
	"JPY": 149.50,
}

// setupTestServer wires the full storefront stack over a throwaway BadgerDB
// and a mocked rate provider
func setupTestServer(t *testing.T, provider *mocks.MockRateProvider) *httptest.Server {
	t.Helper()

	badgerOpts := badger.DefaultOptions(t.TempDir())
	badgerOpts.Logger = nil
	badgerOpts.SyncWrites = false

	badgerDB, err := badger.Open(badgerOpts)
	require.NoError(t, err)
	t.Cleanup(func() { badgerDB.Close() })

	log := logger.NewJSONLogger(nil, logger.ErrorLevel)

	snapshotRepo := db.NewBadgerSnapshotRepository(badgerDB)

	categoryRepo, err := db.NewBadgerCategoryRepository(badgerDB)
	require.NoError(t, err)
	t.Cleanup(func() { categoryRepo.Close() })

	productRepo, err := db.NewBadgerProductRepository(badgerDB)
	require.NoError(t, err)
	t.Cleanup(func() { productRepo.Close() })

	optionRepo, err := db.NewBadgerDeliveryOptionRepository(badgerDB)
	require.NoError(t, err)
	t.Cleanup(func() { optionRepo.Close() })

	require.NoError(t, db.SeedCatalog(context.Background(), categoryRepo, productRepo, optionRepo, log))

	fxService := service.NewFxService(cache.NewSnapshotCache(), snapshotRepo, provider, 6*time.Hour, log)
	convertService := service.NewConvertService(fxService, log)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, optionRepo, log)
	cartService := service.NewCartService(convertService, fxService, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)

	handler.NewFxHandler(fxService, convertService, log).RegisterRoutes(router)
	handler.NewCatalogHandler(catalogService, log).RegisterRoutes(router)
	handler.NewCartHandler(cartService, log).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func onlineProvider() *mocks.MockRateProvider {
	provider := new(mocks.MockRateProvider)
	provider.On("FetchRates", mock.Anything, entity.BaseCurrency, entity.SupportedCurrencies).
		Return(integrationRates, nil)
	return provider
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url, body string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func putJSON(t *testing.T, url, body string, out interface{}) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestCatalogBrowsing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := setupTestServer(t, onlineProvider())

	t.Run("Seeded categories are listed sorted by name", func(t *testing.T) {
		var categories []handler.CategoryResponse
		resp := getJSON(t, server.URL+"/categories", &categories)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, categories, 3)
		assert.Equal(t, "Accessories", categories[0].Name)
	})

	t.Run("Storefront listing carries category and delivery summary", func(t *testing.T) {
		var products []handler.ProductResponse
		resp := getJSON(t, server.URL+"/api/products", &products)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, products, 6)
		for _, product := range products {
			assert.NotNil(t, product.Category, product.Title)
			require.NotNil(t, product.DeliverySummary, product.Title)
			assert.True(t, product.DeliverySummary.HasFree)
		}
	})

	t.Run("Price sorting is honored", func(t *testing.T) {
		var products []handler.ProductResponse
		getJSON(t, server.URL+"/api/products?sort=price_asc", &products)

		require.NotEmpty(t, products)
		for i := 1; i < len(products); i++ {
			assert.LessOrEqual(t, products[i-1].Price, products[i].Price)
		}
	})

	t.Run("Product detail lists active delivery options cheapest first", func(t *testing.T) {
		var detail handler.ProductDetailResponse
		resp := getJSON(t, server.URL+"/products/1", &detail)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, detail.DeliveryOptions)
		assert.Equal(t, 0.0, detail.DeliveryOptions[0].Price)
	})

	t.Run("Missing product returns 404", func(t *testing.T) {
		resp := getJSON(t, server.URL+"/products/999", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Delivery options endpoint lists active options", func(t *testing.T) {
		var options []handler.DeliveryOptionResponse
		resp := getJSON(t, server.URL+"/api/delivery-options", &options)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, options, 3)
	})
}

func TestCatalogWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := setupTestServer(t, onlineProvider())

	t.Run("Create category then product in it", func(t *testing.T) {
		var category handler.CategoryResponse
		resp := postJSON(t, server.URL+"/categories", `{"name": "Outdoor"}`, &category)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotZero(t, category.ID)

		productJSON := `{
			"title": "Camping Mug",
			"description": "Enamel, 350ml",
			"price": 14.50,
			"category_id": ` + jsonUint(category.ID) + `,
			"delivery_option_ids": [1, 2]
		}`

		var product handler.ProductResponse
		resp = postJSON(t, server.URL+"/products", productJSON, &product)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, category.ID, product.CategoryID)
	})

	t.Run("Duplicate category name returns 409", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/categories", `{"name": "Apparel"}`, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Product in a missing category returns 400", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/products",
			`{"title": "Ghost", "price": 1, "category_id": 999}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Partial update keeps untouched fields and CreatedAt", func(t *testing.T) {
		var before handler.ProductDetailResponse
		getJSON(t, server.URL+"/products/1", &before)
		require.False(t, before.CreatedAt.IsZero())

		var updated handler.ProductResponse
		resp := putJSON(t, server.URL+"/products/1", `{"price": 24.99}`, &updated)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 24.99, updated.Price)
		assert.Equal(t, before.Title, updated.Title)
		assert.Equal(t, before.Description, updated.Description)
		assert.True(t, before.CreatedAt.Equal(updated.CreatedAt))

		var stored handler.ProductDetailResponse
		getJSON(t, server.URL+"/products/1", &stored)
		assert.True(t, before.CreatedAt.Equal(stored.CreatedAt))
	})

	t.Run("Update with an empty title returns 400", func(t *testing.T) {
		resp := putJSON(t, server.URL+"/products/1", `{"title": ""}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Update to a missing category returns 400", func(t *testing.T) {
		resp := putJSON(t, server.URL+"/products/1", `{"category_id": 999}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Update of a missing product returns 404", func(t *testing.T) {
		resp := putJSON(t, server.URL+"/products/999", `{"price": 1}`, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Delete then fetch returns 404", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, server.URL+"/products/2", nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = getJSON(t, server.URL+"/products/2", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRatesAndPricingFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := setupTestServer(t, onlineProvider())

	t.Run("Rates are fetched and served fresh", func(t *testing.T) {
		var rates handler.RatesResponse
		resp := getJSON(t, server.URL+"/fx/rates", &rates)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "USD", rates.Base)
		assert.False(t, rates.Stale)
		assert.Equal(t, 0.92, rates.Rates["EUR"])
	})

	t.Run("Cart prices in EUR with FX metadata", func(t *testing.T) {
		var totals service.CartTotals
		resp := getJSON(t, server.URL+"/cart?currency=EUR", &totals)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(2759), totals.Subtotal.AmountMinor)
		assert.Equal(t, int64(551), totals.DeliveryCost.AmountMinor)
		require.NotNil(t, totals.FXMetadata)
		assert.Equal(t, 0.92, totals.FXMetadata.Rate)
	})

	t.Run("Cart defaults to the base currency without metadata", func(t *testing.T) {
		var totals service.CartTotals
		resp := getJSON(t, server.URL+"/cart", &totals)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(2999), totals.Subtotal.AmountMinor)
		assert.Nil(t, totals.FXMetadata)
	})

	t.Run("Checkout adds the tax line", func(t *testing.T) {
		var totals service.CheckoutTotals
		resp := postJSON(t, server.URL+"/checkout?currency=USD", "", &totals)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(240), totals.Tax.AmountMinor)
		assert.Equal(t, int64(3838), totals.Total.AmountMinor)
	})

	t.Run("Order embeds the rate snapshot it was priced at", func(t *testing.T) {
		var order service.OrderTotals
		resp := postJSON(t, server.URL+"/orders?currency=JPY", "", &order)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, order.OrderID)
		require.NotNil(t, order.FXRatesSnapshot)
		assert.Equal(t, 149.50, order.FXRatesSnapshot.Rates["JPY"])
		// JPY minor units are whole yen
		assert.Equal(t, int64(4484), order.Subtotal.AmountMinor)
	})

	t.Run("Unsupported currency returns 400", func(t *testing.T) {
		resp := getJSON(t, server.URL+"/cart?currency=CHF", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStaleFallbackFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Provider succeeds once, then goes dark
	provider := new(mocks.MockRateProvider)
	provider.On("FetchRates", mock.Anything, entity.BaseCurrency, entity.SupportedCurrencies).
		Return(integrationRates, nil).Once()
	provider.On("FetchRates", mock.Anything, entity.BaseCurrency, entity.SupportedCurrencies).
		Return(nil, domainservice.ErrProviderUnavailable)

	server := setupTestServer(t, provider)

	// First call fetches and persists
	var fresh handler.RatesResponse
	resp := getJSON(t, server.URL+"/fx/rates", &fresh)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, fresh.Stale)

	// A forced refresh now fails upstream
	refreshResp := postJSON(t, server.URL+"/fx/refresh?force=true", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, refreshResp.StatusCode)

	// But rates are still served from the warm tiers
	var served handler.RatesResponse
	resp = getJSON(t, server.URL+"/fx/rates", &served)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, fresh.Rates, served.Rates)
}

func jsonUint(v uint64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
