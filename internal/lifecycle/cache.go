package lifecycle

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/taskreel/lifecycle/internal/domain"
)

// CacheSchemaVersion is the current version of the cached snapshot shape.
// Increment this when the snapshot structure changes to auto-invalidate
// old entries.
const CacheSchemaVersion = "1.0"

type cachedSnapshotEntry struct {
	Version  string           `json:"version"`
	Snapshot *domain.Snapshot `json:"snapshot"`
	CachedAt time.Time        `json:"cached_at"`
}

// snapshotCache provides an in-memory LRU cache for computed lifecycle
// snapshots with time-based expiration. Snapshots are derived data, so
// a stale entry is only ever a few minutes behind and is evicted
// eagerly whenever a new event lands for the user.
type snapshotCache struct {
	lru *expirable.LRU[string, *cachedSnapshotEntry]
}

func newSnapshotCache(size int, ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		lru: expirable.NewLRU[string, *cachedSnapshotEntry](size, nil, ttl),
	}
}

// Get retrieves a snapshot from the cache. Entries with a mismatched
// schema version are removed and reported as a miss.
func (c *snapshotCache) Get(userID string) (*domain.Snapshot, bool) {
	entry, found := c.lru.Get(userID)
	if !found {
		return nil, false
	}
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(userID)
		return nil, false
	}
	return entry.Snapshot, true
}

// Set stores a snapshot in the cache with the current schema version.
func (c *snapshotCache) Set(userID string, snap *domain.Snapshot) {
	c.lru.Add(userID, &cachedSnapshotEntry{
		Version:  CacheSchemaVersion,
		Snapshot: snap,
		CachedAt: time.Now(),
	})
}

// Invalidate removes a user's snapshot from the cache.
func (c *snapshotCache) Invalidate(userID string) {
	c.lru.Remove(userID)
}

// Clear removes all entries from the cache.
func (c *snapshotCache) Clear() {
	c.lru.Purge()
}
