package service

import (
	"context"
	"errors"
)

// Provider failure modes. Both are recovered locally by falling back to
// the last persisted snapshot; they only surface in logs and metrics.
var (
	// ErrProviderUnavailable indicates a network failure, timeout, or
	// non-success response from the upstream provider.
	ErrProviderUnavailable = errors.New("rate provider unavailable")

	// ErrProviderMalformed indicates the provider responded but the
	// payload was missing expected currencies or carried invalid rates.
	ErrProviderMalformed = errors.New("rate provider returned malformed response")
)

// RateProvider defines the interface for the upstream FX rate provider.
// Any provider with the same contract (base + targets in, rate map out)
// is substitutable.
type RateProvider interface {
	// FetchRates retrieves conversion rates for the target currencies
	// relative to the base currency. Implementations carry a bounded
	// timeout; a hung upstream never stalls the caller indefinitely.
	FetchRates(ctx context.Context, base string, targets []string) (map[string]float64, error)
}
