// internal/cache/cache.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is an in-memory TTL cache for upstream responses.
// It is purely advisory: a disabled Cache misses on every lookup.
type Cache struct {
	store   *gocache.Cache
	enabled bool
}

// New creates a Cache. When enabled is false every Get misses and Set is a no-op.
func New(enabled bool) *Cache {
	return &Cache{
		store:   gocache.New(5*time.Minute, 10*time.Minute),
		enabled: enabled,
	}
}

// Get returns the cached value for key, if any.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil || !c.enabled {
		return nil, false
	}
	return c.store.Get(key)
}

// Set stores value under key for ttl.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if c == nil || !c.enabled || ttl <= 0 {
		return
	}
	c.store.Set(key, value, ttl)
}

// Key builds a cache key scoped to a credential, so responses fetched with one
// user's token are never served to another.
func Key(token, path string) string {
	if token == "" {
		return "anon|" + path
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8]) + "|" + path
}
