package entity

import (
	"fmt"
	"time"
)

// DefaultTTLSeconds is how long a snapshot is considered fresh (6 hours).
const DefaultTTLSeconds = 21600

// RateSnapshot represents one fetched set of conversion rates relative to
// the base currency, together with its fetch timestamp and freshness state.
type RateSnapshot struct {
	Base       string             `json:"base"`
	Rates      map[string]float64 `json:"rates"`
	FetchedAt  time.Time          `json:"fetched_at"`
	TTLSeconds int                `json:"ttl_seconds"`
	Stale      bool               `json:"stale"`
}

// Age returns how old the snapshot is at the given instant.
func (s *RateSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Expired reports whether the snapshot has outlived its TTL.
func (s *RateSnapshot) Expired(now time.Time) bool {
	return s.Age(now) >= time.Duration(s.TTLSeconds)*time.Second
}

// Validate ensures the snapshot covers every supported currency with a
// positive rate and that the base currency's own rate is exactly 1.0.
func (s *RateSnapshot) Validate() error {
	if s.Base != BaseCurrency {
		return fmt.Errorf("unexpected base currency %q", s.Base)
	}

	for _, code := range SupportedCurrencies {
		rate, ok := s.Rates[code]
		if !ok {
			return fmt.Errorf("missing rate for currency %s", code)
		}
		if rate <= 0 {
			return fmt.Errorf("non-positive rate %f for currency %s", rate, code)
		}
	}

	if s.Rates[s.Base] != 1.0 {
		return fmt.Errorf("base currency rate must be 1.0, got %f", s.Rates[s.Base])
	}

	return nil
}

// Clone returns a deep copy so cached snapshots are never mutated by callers.
func (s *RateSnapshot) Clone() *RateSnapshot {
	rates := make(map[string]float64, len(s.Rates))
	for code, rate := range s.Rates {
		rates[code] = rate
	}

	return &RateSnapshot{
		Base:       s.Base,
		Rates:      rates,
		FetchedAt:  s.FetchedAt,
		TTLSeconds: s.TTLSeconds,
		Stale:      s.Stale,
	}
}
