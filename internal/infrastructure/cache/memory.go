package cache

import (
	"context"
	"sync"
	"time"

	"github.com/macronotes/backend/internal/domain"
)

// cacheItem holds one parsed block with its expiration
type cacheItem struct {
	view       *domain.BlockView
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache of parsed block results
// with TTL support. It belongs to the delivery layer; the parsing core
// never consults it and always recomputes from the lines it is given.
type MemoryCache struct {
	data  map[string]cacheItem
	ttl   time.Duration
	mutex sync.RWMutex
}

// NewMemoryCache creates an in-memory block cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]cacheItem),
		ttl:  ttl,
	}

	// Cleanup goroutine removes expired entries every 10 minutes
	go c.cleanupExpired()

	return c
}

// Get retrieves a parsed block from the cache.
func (c *MemoryCache) Get(ctx context.Context, id string) (*domain.BlockView, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[id]
	if !exists {
		return nil, domain.ErrCacheMiss
	}
	if time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}
	return item.view, nil
}

// Set stores a parsed block in the cache.
func (c *MemoryCache) Set(ctx context.Context, id string, view *domain.BlockView) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[id] = cacheItem{
		view:       view,
		expiration: time.Now().Add(c.ttl),
	}
	return nil
}

// Delete removes one block from the cache.
func (c *MemoryCache) Delete(ctx context.Context, id string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, id)
	return nil
}

// Clear removes all cached blocks. Used when the food database reloads,
// since previously resolved rows may no longer be accurate.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]cacheItem)
	return nil
}

// Size returns the current number of cached blocks (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for id, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, id)
			}
		}
		c.mutex.Unlock()
	}
}
