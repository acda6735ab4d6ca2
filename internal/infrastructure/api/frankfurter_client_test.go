// internal/infrastructure/api/frankfurter_client_test.go
package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/domain/service"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRates(t *testing.T) {
	log := logger.NewJSONLogger(nil, logger.ErrorLevel)
	ctx := context.Background()

	t.Run("Successful fetch", func(t *testing.T) {
		// Setup a mock provider
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "USD", r.URL.Query().Get("from"))
			assert.Contains(t, r.URL.Query().Get("to"), "EUR")
			assert.NotContains(t, r.URL.Query().Get("to"), "USD")

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"base": "USD",
				"date": "2025-06-01",
				"rates": {"GBP": 0.79, "EUR": 0.92, "AUD": 1.52, "MXN": 17.05, "JPY": 149.5}
			}`))
		}))
		defer server.Close()

		client := NewFrankfurterClient(server.URL, 5*time.Second, log)

		rates, err := client.FetchRates(ctx, entity.BaseCurrency, entity.SupportedCurrencies)

		require.NoError(t, err)
		assert.Len(t, rates, len(entity.SupportedCurrencies))
		assert.Equal(t, 1.0, rates["USD"])
		assert.Equal(t, 0.92, rates["EUR"])
		assert.Equal(t, 149.5, rates["JPY"])
	})

	t.Run("Non-200 response is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewFrankfurterClient(server.URL, 5*time.Second, log)

		rates, err := client.FetchRates(ctx, entity.BaseCurrency, entity.SupportedCurrencies)

		assert.Nil(t, rates)
		assert.True(t, errors.Is(err, service.ErrProviderUnavailable))
	})

	t.Run("Connection failure is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // Close immediately so the request fails

		client := NewFrankfurterClient(server.URL, 1*time.Second, log)

		rates, err := client.FetchRates(ctx, entity.BaseCurrency, entity.SupportedCurrencies)

		assert.Nil(t, rates)
		assert.True(t, errors.Is(err, service.ErrProviderUnavailable))
	})

	t.Run("Invalid JSON is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewFrankfurterClient(server.URL, 5*time.Second, log)

		rates, err := client.FetchRates(ctx, entity.BaseCurrency, entity.SupportedCurrencies)

		assert.Nil(t, rates)
		assert.True(t, errors.Is(err, service.ErrProviderMalformed))
	})

	t.Run("Missing currency is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"base": "USD", "rates": {"GBP": 0.79, "EUR": 0.92}}`))
		}))
		defer server.Close()

		client := NewFrankfurterClient(server.URL, 5*time.Second, log)

		rates, err := client.FetchRates(ctx, entity.BaseCurrency, entity.SupportedCurrencies)

		assert.Nil(t, rates)
		assert.True(t, errors.Is(err, service.ErrProviderMalformed))
		assert.Contains(t, err.Error(), "missing rate")
	})

	t.Run("Non-positive rate is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"base": "USD",
				"rates": {"GBP": 0.79, "EUR": -0.92, "AUD": 1.52, "MXN": 17.05, "JPY": 149.5}
			}`))
		}))
		defer server.Close()

		client := NewFrankfurterClient(server.URL, 5*time.Second, log)

		rates, err := client.FetchRates(ctx, entity.BaseCurrency, entity.SupportedCurrencies)

		assert.Nil(t, rates)
		assert.True(t, errors.Is(err, service.ErrProviderMalformed))
	})

	t.Run("Context cancellation aborts the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer server.Close()

		client := NewFrankfurterClient(server.URL, 5*time.Second, log)

		cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		rates, err := client.FetchRates(cancelCtx, entity.BaseCurrency, entity.SupportedCurrencies)

		assert.Nil(t, rates)
		assert.Error(t, err)
	})
}
