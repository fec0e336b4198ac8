package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// exportCache is one cached export index.
type exportCache struct {
	index Index
	built time.Time
	ttl   time.Duration
}

func (c *exportCache) expired() bool {
	if c.ttl == 0 {
		return true
	}
	return time.Since(c.built) > c.ttl
}

// Cache holds export indices keyed by run ID.
type Cache struct {
	mu     sync.RWMutex
	caches map[string]*exportCache
	sf     singleflight.Group
	ttl    time.Duration
}

// NewCache creates a cache keeping indices for ttl. A zero ttl disables
// reuse, but concurrent loads of one run are still shared.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{caches: make(map[string]*exportCache), ttl: ttl}
}

// Get returns the export index for runID, loading it when absent or expired.
func (c *Cache) Get(ctx context.Context, db *gorm.DB, runID string) (Index, error) {
	c.mu.RLock()
	cached, ok := c.caches[runID]
	c.mu.RUnlock()
	if ok && !cached.expired() {
		return cached.index, nil
	}

	result, err, _ := c.sf.Do(runID, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.caches[runID]
		c.mu.RUnlock()
		if ok && !cached.expired() {
			return cached.index, nil
		}

		idx, err := LoadExportIndex(ctx, db, runID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.caches[runID] = &exportCache{index: idx, built: time.Now(), ttl: c.ttl}
		c.mu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Index), nil
}

// Invalidate drops the cached index of runID.
func (c *Cache) Invalidate(runID string) {
	c.mu.Lock()
	delete(c.caches, runID)
	c.mu.Unlock()
}
