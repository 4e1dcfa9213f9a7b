package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Cache Tests
// =============================================================================

func TestCache_SetAndGet(t *testing.T) {
	cache := NewCache(5 * time.Second)
	cache.Set("k", "v")

	got, ok := cache.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCache_MissingKey(t *testing.T) {
	cache := NewCache(5 * time.Second)
	_, ok := cache.Get("absent")
	assert.False(t, ok)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	cache := NewCache(5 * time.Second)
	clock := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	cache.Set("k", "v")

	clock = clock.Add(4 * time.Second)
	_, ok := cache.Get("k")
	assert.True(t, ok)

	clock = clock.Add(1 * time.Second)
	_, ok = cache.Get("k")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache(5 * time.Second)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Clear()

	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestNewCache_ZeroTTLUsesDefault(t *testing.T) {
	cache := NewCache(0)
	assert.Equal(t, DefaultCacheTTL, cache.ttl)
}
