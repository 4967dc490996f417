package amazon

import (
	"sync"
	"time"
)

// TokenCache is the durable cache slot for access tokens, keyed by
// credential fingerprint. The default implementation lives in memory;
// deployments that share tokens across processes can plug in their own.
type TokenCache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Delete(key string)
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryTokenCache is a thread-safe TTL cache.
type MemoryTokenCache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{
		items: make(map[string]cacheEntry),
	}
}

func (c *MemoryTokenCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.items[key]
	if !exists {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (c *MemoryTokenCache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *MemoryTokenCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}
