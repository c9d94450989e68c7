// Package cache provides a process-local expiring memo for expensive
// external lookups. Values carry a per-entry TTL and are evicted lazily:
// on access, or by explicit invalidation. Keys follow a
// "namespace:discriminator" convention so related entries can be dropped
// by prefix after an external write.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache is a generic in-memory cache with per-entry TTL expiry and
// built-in singleflight for concurrent computes.
type Cache[V any] struct {
	mu       sync.Mutex
	items    map[string]entry[V]
	counters counters

	// singleflight: in-progress computes keyed by cache key
	inflight map[string]*call[V]
}

// An entry is active iff expiresAt > now. Entries are replaced whole on
// recompute, never mutated in place.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type call[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

type counters struct {
	hits      int64
	misses    int64
	evictions int64
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{
		items:    make(map[string]entry[V]),
		inflight: make(map[string]*call[V]),
	}
}

// Get retrieves a value from the cache. Returns the value and true if an
// active entry exists, or the zero value and false otherwise. An expired
// entry found here is evicted.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.counters.misses++
		var zero V
		return zero, false
	}
	if !e.expiresAt.After(time.Now()) {
		delete(c.items, key)
		c.counters.evictions++
		c.counters.misses++
		var zero V
		return zero, false
	}
	c.counters.hits++
	return e.value, true
}

// Set stores a value with the given TTL, replacing any prior entry for
// the key, expired or not.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

// GetOrCompute returns the active cached value for key, or calls compute
// to populate it with the given TTL. A failed compute propagates to the
// caller unchanged and stores nothing. Concurrent calls for the same key
// share a single compute (singleflight).
func (c *Cache[V]) GetOrCompute(key string, ttl time.Duration, compute func() (V, error)) (V, error) {
	// Fast path: check cache.
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	// Singleflight: check if another goroutine is already computing.
	c.mu.Lock()
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		cl.wg.Wait()
		if cl.err != nil {
			return cl.val, cl.err
		}
		// The computing goroutine already cached the result; try to get it.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		return cl.val, nil
	}

	cl := &call[V]{}
	cl.wg.Add(1)
	c.inflight[key] = cl
	c.mu.Unlock()

	// Run the compute outside the lock.
	cl.val, cl.err = compute()
	if cl.err == nil {
		c.Set(key, cl.val, ttl)
	}
	cl.wg.Done()

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()

	return cl.val, cl.err
}

// Invalidate removes a single key from the cache.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// InvalidateFunc removes all entries whose key the predicate accepts.
func (c *Cache[V]) InvalidateFunc(predicate func(string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if predicate(key) {
			delete(c.items, key)
		}
	}
}

// InvalidatePrefix removes every entry whose key starts with prefix.
// Entries outside the prefix are untouched.
func (c *Cache[V]) InvalidatePrefix(prefix string) {
	c.InvalidateFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// InvalidateAll drops every entry unconditionally. Intended to be called
// after an external write (such as a sync) that could stale any derived
// value.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry[V])
}

// Len returns the number of stored entries, active or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of cache contents and counters. It never
// evicts: expired entries still count toward Entries until the next
// access or invalidation touches them.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	s := Stats{
		Entries:   len(c.items),
		Keys:      make([]string, 0, len(c.items)),
		Hits:      c.counters.hits,
		Misses:    c.counters.misses,
		Evictions: c.counters.evictions,
	}
	for key, e := range c.items {
		s.Keys = append(s.Keys, key)
		if e.expiresAt.After(now) {
			s.ActiveEntries++
		}
	}
	sort.Strings(s.Keys)
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
