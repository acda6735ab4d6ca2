package cache

import (
	"sync"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
)

// SnapshotCache provides a thread-safe in-memory cache holding the current
// rate snapshot. It is the fastest tier of the FX fallback chain; empty on
// startup and repopulated from the persistent tier or the provider.
type SnapshotCache struct {
	snapshot *entity.RateSnapshot
	mutex    sync.RWMutex
}

// NewSnapshotCache creates an empty snapshot cache
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Get returns a copy of the cached snapshot, or nil if the cache is empty.
// Expired snapshots are still returned; freshness is the caller's call,
// since an expired snapshot remains the stale-fallback candidate.
func (c *SnapshotCache) Get() *entity.RateSnapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.snapshot == nil {
		return nil
	}

	return c.snapshot.Clone()
}

// GetFresh returns a copy of the cached snapshot only if it is younger
// than its TTL at the given instant.
func (c *SnapshotCache) GetFresh(now time.Time) *entity.RateSnapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.snapshot == nil || c.snapshot.Expired(now) {
		return nil
	}

	return c.snapshot.Clone()
}

// Put replaces the cached snapshot
func (c *SnapshotCache) Put(snapshot *entity.RateSnapshot) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.snapshot = snapshot.Clone()
}

// Clear empties the cache
func (c *SnapshotCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.snapshot = nil
}
