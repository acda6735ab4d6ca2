package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/service"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
)

const defaultBaseURL = "https://api.frankfurter.app/latest"

// FrankfurterClient implements the RateProvider interface against a
// Frankfurter-compatible FX endpoint (base + targets in, rate map out).
type FrankfurterClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewFrankfurterClient creates a new provider client. The HTTP client
// carries a short timeout so a hung upstream never stalls the caller;
// exactly one attempt is made per call, stale fallback handles the rest.
func NewFrankfurterClient(baseURL string, timeout time.Duration, log logger.Logger) *FrankfurterClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FrankfurterClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// frankfurterResponse represents the response structure from the provider
type frankfurterResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRates retrieves conversion rates for the target currencies relative
// to the base currency. The base currency itself is excluded from the query
// and added to the result with rate 1.0.
func (c *FrankfurterClient) FetchRates(ctx context.Context, base string, targets []string) (map[string]float64, error) {
	symbols := make([]string, 0, len(targets))
	for _, code := range targets {
		if code != base {
			symbols = append(symbols, code)
		}
	}

	reqURL := fmt.Sprintf("%s?from=%s&to=%s",
		c.baseURL,
		url.QueryEscape(base),
		url.QueryEscape(strings.Join(symbols, ",")))

	c.logger.Debug("Fetching rates from provider", map[string]interface{}{
		"url":  reqURL,
		"base": base,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrProviderUnavailable, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing provider response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", service.ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s",
			service.ErrProviderUnavailable, resp.StatusCode, string(bodyBytes))
	}

	var payload frankfurterResponse
	if err := json.Unmarshal(bodyBytes, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", service.ErrProviderMalformed, err)
	}

	rates := make(map[string]float64, len(targets))
	rates[base] = 1.0

	for _, code := range symbols {
		rate, ok := payload.Rates[code]
		if !ok {
			return nil, fmt.Errorf("%w: missing rate for %s", service.ErrProviderMalformed, code)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("%w: non-positive rate %f for %s", service.ErrProviderMalformed, rate, code)
		}
		rates[code] = rate
	}

	return rates, nil
}
