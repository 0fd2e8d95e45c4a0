// Package infra provides shared infrastructure components used across
// the application: the expiring cache that fronts every adapter call,
// the outbound HTTP client, and the cache janitor.
package infra

import (
	"sync"
	"time"
)

// --- Simple in-memory cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a simple thread-safe in-memory cache with TTL.
// It is scoped to one process.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries and returns how many were dropped.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, v := range c.entries {
		if now.After(v.ExpiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Memoize returns the cached value for key when present, otherwise calls fn
// and caches a successful result for ttl. Errors are never cached, so the
// next call after a failure goes back to the source.
//
// A nil cache disables memoization.
func Memoize[T any](c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, bool, error) {
	if c != nil {
		if v, ok := c.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, true, nil
			}
		}
	}
	v, err := fn()
	if err != nil {
		return v, false, err
	}
	if c != nil {
		c.SetWithTTL(key, v, ttl)
	}
	return v, false, nil
}
