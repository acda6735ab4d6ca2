// internal/infrastructure/cache/snapshot_cache_test.go
package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func testSnapshot(fetchedAt time.Time) *entity.RateSnapshot {
	return &entity.RateSnapshot{
		Base: entity.BaseCurrency,
		Rates: map[string]float64{
			"USD": 1.0,
			"GBP": 0.79,
			"EUR": 0.92,
			"AUD": 1.52,
			"MXN": 17.05,
			"JPY": 149.50,
		},
		FetchedAt:  fetchedAt,
		TTLSeconds: entity.DefaultTTLSeconds,
	}
}

func TestSnapshotCache(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Empty cache returns nil", func(t *testing.T) {
		c := NewSnapshotCache()
		assert.Nil(t, c.Get())
		assert.Nil(t, c.GetFresh(now))
	})

	t.Run("Put then Get returns the snapshot", func(t *testing.T) {
		c := NewSnapshotCache()
		snapshot := testSnapshot(now)

		c.Put(snapshot)

		got := c.Get()
		assert.NotNil(t, got)
		assert.Equal(t, snapshot.Rates, got.Rates)
		assert.Equal(t, snapshot.FetchedAt, got.FetchedAt)
	})

	t.Run("GetFresh rejects expired snapshots", func(t *testing.T) {
		c := NewSnapshotCache()
		c.Put(testSnapshot(now.Add(-7 * time.Hour)))

		assert.Nil(t, c.GetFresh(now))
		// Plain Get still serves it as the stale-fallback candidate
		assert.NotNil(t, c.Get())
	})

	t.Run("GetFresh returns fresh snapshots", func(t *testing.T) {
		c := NewSnapshotCache()
		c.Put(testSnapshot(now.Add(-1 * time.Hour)))

		assert.NotNil(t, c.GetFresh(now))
	})

	t.Run("Returned snapshots are copies", func(t *testing.T) {
		c := NewSnapshotCache()
		c.Put(testSnapshot(now))

		first := c.Get()
		first.Rates["EUR"] = 123.45
		first.Stale = true

		second := c.Get()
		assert.Equal(t, 0.92, second.Rates["EUR"])
		assert.False(t, second.Stale)
	})

	t.Run("Put stores a copy of the argument", func(t *testing.T) {
		c := NewSnapshotCache()
		snapshot := testSnapshot(now)
		c.Put(snapshot)

		snapshot.Rates["EUR"] = 123.45

		assert.Equal(t, 0.92, c.Get().Rates["EUR"])
	})

	t.Run("Clear empties the cache", func(t *testing.T) {
		c := NewSnapshotCache()
		c.Put(testSnapshot(now))
		c.Clear()

		assert.Nil(t, c.Get())
	})
}

func TestSnapshotCacheConcurrentAccess(t *testing.T) {
	c := NewSnapshotCache()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put(testSnapshot(now))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get()
				c.GetFresh(now)
			}
		}()
	}
	wg.Wait()

	assert.NotNil(t, c.Get())
}
