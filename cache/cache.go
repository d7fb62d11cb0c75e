// Package cache provides a small memoization cache whose entries expire after
// a fixed age.
//
// Entries are computed on demand by GetOrCompute. Two callers asking for the
// same missing key may both compute it; the last one to finish is stored.
// Computation is expected to be idempotent so that race has no visible effect.
package cache

import (
	"sync"
	"time"
)

// DefaultMaxAge is how long memoized entries are served before being recomputed.
const DefaultMaxAge = 10 * time.Second

// Clock returns the current time.
type Clock func() time.Time

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache maps keys to values that expire maxAge after insertion.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	maxAge  time.Duration
	now     Clock
}

type Option func(*config)

type config struct {
	maxAge time.Duration
	now    Clock
}

// WithMaxAge sets the entry lifetime. A non-positive age disables expiry.
func WithMaxAge(age time.Duration) Option {
	return func(c *config) {
		c.maxAge = age
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now Clock) Option {
	return func(c *config) {
		c.now = now
	}
}

func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	cfg := config{maxAge: DefaultMaxAge, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		maxAge:  cfg.maxAge,
		now:     cfg.now,
	}
}

// Get returns the live value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value for key, replacing any previous entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// GetOrCompute returns the live value for key, calling compute when it is
// absent or stale. Errors are returned without being cached.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, v)
	return v, nil
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Prune drops expired entries and returns how many were removed.
func (c *Cache[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return c.maxAge > 0 && c.now().Sub(e.insertedAt) >= c.maxAge
}
