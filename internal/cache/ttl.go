// Package cache provides an in-memory TTL key-value store for memoized quotes.
package cache

import (
	"sync"
	"time"

	"github.com/minjaelee/finboard/internal/interfaces"
)

// entry is one cached value with its expiry instant.
type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is a thread-safe in-memory key-value store with per-entry TTL.
// Access is read-mostly, so reads take the shared lock. Expired entries are
// dropped lazily on read and swept opportunistically on write.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time // injectable clock for testing
	writes  int
}

// sweepInterval is the number of writes between full expiry sweeps.
const sweepInterval = 64

// NewTTLCache creates an empty cache.
func NewTTLCache() *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewTTLCacheWithClock creates a cache with an injectable clock.
func NewTTLCacheWithClock(now func() time.Time) *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the cached value and true when present and unexpired.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value that expires after ttl. A non-positive ttl stores
// nothing.
func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}

	c.writes++
	if c.writes%sweepInterval == 0 {
		now := c.now()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
}

// Delete removes a key.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of unexpired entries.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, e := range c.entries {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// Ensure TTLCache implements QuoteCache
var _ interfaces.QuoteCache = (*TTLCache)(nil)
