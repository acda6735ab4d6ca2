// internal/application/service/fx_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/domain/repository"
	domainservice "github.com/lineasupply/storefront-api/internal/domain/service"
	"github.com/lineasupply/storefront-api/internal/infrastructure/cache"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/lineasupply/storefront-api/internal/infrastructure/metrics"
	"github.com/lineasupply/storefront-api/internal/infrastructure/middleware"
)

// ErrRatesUnavailable indicates no snapshot exists in any tier and the
// provider is unreachable. Maps to a service-unavailable response at the
// HTTP boundary.
var ErrRatesUnavailable = errors.New("exchange rates unavailable")

// FxService supplies conversion rates for the supported currency set with
// bounded staleness. Reads walk the tiers in order: memory cache, persistent
// store, remote provider; faster tiers are repopulated as data is obtained,
// and the last good snapshot is served stale when the provider fails.
//
// Concurrent expired reads may each call the provider; refreshes are not
// deduplicated. Every write path replaces a whole validated snapshot, so
// callers never observe a partial one regardless of interleaving.
type FxService struct {
	cache    *cache.SnapshotCache
	repo     repository.SnapshotRepository
	provider domainservice.RateProvider
	ttl      time.Duration
	logger   logger.Logger
}

// NewFxService creates a new FX rate service
func NewFxService(snapshotCache *cache.SnapshotCache, repo repository.SnapshotRepository,
	provider domainservice.RateProvider, ttl time.Duration, log logger.Logger) *FxService {
	if snapshotCache == nil {
		snapshotCache = cache.NewSnapshotCache()
	}
	if ttl <= 0 {
		ttl = entity.DefaultTTLSeconds * time.Second
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FxService{
		cache:    snapshotCache,
		repo:     repo,
		provider: provider,
		ttl:      ttl,
		logger:   log,
	}
}

// SupportedCurrencies returns the fixed supported currency set
func (s *FxService) SupportedCurrencies() []string {
	codes := make([]string, len(entity.SupportedCurrencies))
	copy(codes, entity.SupportedCurrencies)
	return codes
}

// GetRates returns the current rate snapshot, fresh when possible and
// clearly flagged stale otherwise. It never blocks beyond one bounded
// provider call; ErrRatesUnavailable is returned only when no snapshot
// exists in any tier and the provider is unreachable.
func (s *FxService) GetRates(ctx context.Context) (*entity.RateSnapshot, error) {
	requestID := middleware.GetRequestID(ctx)
	now := time.Now().UTC()

	// Tier 1: fresh memory snapshot
	if snapshot := s.cache.GetFresh(now); snapshot != nil {
		s.logger.Debug("Serving rates from memory tier", map[string]interface{}{
			"request_id":  requestID,
			"fetched_at":  snapshot.FetchedAt,
			"age_seconds": snapshot.Age(now).Seconds(),
		})
		metrics.FXSnapshotAgeSeconds.Set(snapshot.Age(now).Seconds())
		return snapshot, nil
	}

	// Tier 2: fresh persistent snapshot
	stored, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to read persistent rate tier", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}

	if stored != nil && !stored.Expired(now) {
		stored.Stale = false
		s.cache.Put(stored)
		s.logger.Debug("Serving rates from persistent tier", map[string]interface{}{
			"request_id":  requestID,
			"fetched_at":  stored.FetchedAt,
			"age_seconds": stored.Age(now).Seconds(),
		})
		metrics.FXSnapshotAgeSeconds.Set(stored.Age(now).Seconds())
		return stored.Clone(), nil
	}

	// Tier 3: remote provider, single bounded attempt
	snapshot, fetchErr := s.fetchSnapshot(ctx, now)
	if fetchErr == nil {
		if err := s.repo.Save(ctx, snapshot); err != nil {
			// Memory tier still gets the fresh data; durability catches up
			// on the next successful refresh.
			s.logger.Error("Failed to persist rate snapshot", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
		}
		s.cache.Put(snapshot)
		s.logger.Info("Refreshed rates from provider", map[string]interface{}{
			"request_id": requestID,
			"fetched_at": snapshot.FetchedAt,
			"currencies": len(snapshot.Rates),
		})
		metrics.FXSnapshotAgeSeconds.Set(0)
		return snapshot.Clone(), nil
	}

	s.logger.Error("Provider fetch failed, attempting stale fallback", map[string]interface{}{
		"request_id": requestID,
		"error":      fetchErr.Error(),
		"tier":       "provider",
		"timestamp":  now,
	})

	// Fallback: last snapshot from the persistent tier (expired or not),
	// or whatever the memory tier still holds if the store is unreadable.
	fallback := stored
	if fallback == nil {
		fallback = s.cache.Get()
	}

	if fallback != nil {
		fallback.Stale = true
		s.cache.Put(fallback)
		s.logger.Warn("Serving stale rate snapshot", map[string]interface{}{
			"request_id":  requestID,
			"fetched_at":  fallback.FetchedAt,
			"age_seconds": fallback.Age(now).Seconds(),
		})
		metrics.FXStaleServedTotal.Inc()
		metrics.FXSnapshotAgeSeconds.Set(fallback.Age(now).Seconds())
		return fallback.Clone(), nil
	}

	s.logger.Error("No rate snapshot available in any tier", map[string]interface{}{
		"request_id": requestID,
		"error":      fetchErr.Error(),
	})
	return nil, fmt.Errorf("%w: %v", ErrRatesUnavailable, fetchErr)
}

// GetRate returns the conversion rate from the base currency to the target
func (s *FxService) GetRate(ctx context.Context, target string) (float64, error) {
	if !entity.IsSupportedCurrency(target) {
		return 0, fmt.Errorf("unsupported currency: %s", target)
	}

	snapshot, err := s.GetRates(ctx)
	if err != nil {
		return 0, err
	}

	return snapshot.Rates[target], nil
}

// Refresh fetches a fresh snapshot from the provider and persists it.
// Unless forced, it is a no-op while the persisted snapshot is still fresh.
func (s *FxService) Refresh(ctx context.Context, force bool) error {
	now := time.Now().UTC()

	if !force {
		stored, err := s.repo.Load(ctx)
		if err == nil && stored != nil && !stored.Expired(now) {
			s.logger.Debug("Rates are still fresh, skipping refresh", map[string]interface{}{
				"fetched_at": stored.FetchedAt,
			})
			return nil
		}
	}

	snapshot, err := s.fetchSnapshot(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to refresh rates: %w", err)
	}

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist refreshed rates: %w", err)
	}
	s.cache.Put(snapshot)

	s.logger.Info("Exchange rates refreshed", map[string]interface{}{
		"fetched_at": snapshot.FetchedAt,
		"currencies": len(snapshot.Rates),
	})

	return nil
}

// fetchSnapshot performs one provider call and builds a validated snapshot
func (s *FxService) fetchSnapshot(ctx context.Context, now time.Time) (*entity.RateSnapshot, error) {
	rates, err := s.provider.FetchRates(ctx, entity.BaseCurrency, entity.SupportedCurrencies)
	if err != nil {
		metrics.FXProviderRequestsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	snapshot := &entity.RateSnapshot{
		Base:       entity.BaseCurrency,
		Rates:      rates,
		FetchedAt:  now,
		TTLSeconds: int(s.ttl.Seconds()),
		Stale:      false,
	}

	if err := snapshot.Validate(); err != nil {
		metrics.FXProviderRequestsTotal.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %v", domainservice.ErrProviderMalformed, err)
	}

	metrics.FXProviderRequestsTotal.WithLabelValues("success").Inc()
	return snapshot, nil
}
