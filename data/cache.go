package data

import (
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
)

type CacheItem[T any] struct {
	Value     *T
	ExpiresAt time.Time
}
type Cache[K comparable, V any] struct {
	items     map[K]*CacheItem[V]
	ttl       time.Duration
	maxItems  int
	nextSweep time.Time
	clock     clock.Clock
	mutex     sync.Mutex
}

// NewCache creates a new cache.
func NewCache[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return NewCacheWithClock[K, V](ttl, clock.NewClock())
}

func NewCacheWithClock[K comparable, V any](ttl time.Duration, clk clock.Clock) *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*CacheItem[V]),
		ttl:   ttl,
		clock: clk,
		mutex: sync.Mutex{},
	}
}

// WithMaxItems bounds the cache; when full, Set evicts the item closest to
// expiry. Zero means unbounded.
func (c *Cache[K, V]) WithMaxItems(n int) *Cache[K, V] {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.maxItems = n
	return c
}

// Len returns the number of stored items, expired ones included until the
// next sweep.
func (c *Cache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Get returns the value associated with the key, or nil if it is missing or expired.
// Getting an item extends its TTL
func (c *Cache[K, V]) Get(key K) *V {
	return c.get(key, true)
}

// Peek is Get without extending the TTL.
func (c *Cache[K, V]) Peek(key K) *V {
	return c.get(key, false)
}

func (c *Cache[K, V]) get(key K, extend bool) *V {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, found := c.items[key]
	if !found {
		return nil
	}
	now := c.clock.Now().UTC()
	if now.After(item.ExpiresAt) {
		delete(c.items, key)
		return nil
	}
	if extend {
		item.ExpiresAt = now.Add(c.ttl)
	}

	return item.Value
}

// Set sets the value associated with the key and the expiration time.
func (c *Cache[K, V]) Set(key K, value *V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.clock.Now().UTC()
	if !now.Before(c.nextSweep) {
		c.sweep(now)
		c.nextSweep = now.Add(c.ttl)
	}
	if _, exists := c.items[key]; !exists && c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.sweep(now)
		if len(c.items) >= c.maxItems {
			c.evictOldest()
		}
	}
	expiresAt := now.Add(c.ttl)

	c.items[key] = &CacheItem[V]{
		Value:     value,
		ExpiresAt: expiresAt,
	}
}

func (c *Cache[K, V]) sweep(now time.Time) {
	for k, item := range c.items {
		if now.After(item.ExpiresAt) {
			delete(c.items, k)
		}
	}
}

func (c *Cache[K, V]) evictOldest() {
	var (
		oldest K
		at     time.Time
		found  bool
	)
	for k, item := range c.items {
		if !found || item.ExpiresAt.Before(at) {
			oldest, at, found = k, item.ExpiresAt, true
		}
	}
	if found {
		delete(c.items, oldest)
	}
}
