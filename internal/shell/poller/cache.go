package poller

import (
	"sync"
	"time"
)

// DefaultCacheTTL is short on purpose: the cache only absorbs redundant
// refreshes of the same deployments within one dashboard cycle.
const DefaultCacheTTL = 5 * time.Second

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// Cache is a TTL-bounded response cache. It is constructed explicitly and
// passed down; there is no process-wide instance.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry

	now func() time.Time
}

// NewCache creates a cache. A zero TTL uses DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached value when present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value under key with the current timestamp.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
