// Package cache implements the multi-tier cache subsystem (spec.md §4.1):
// a generic bounded cache with LRU-with-tenure eviction and TTL expiry, plus
// a semantically-normalized query-result cache built on top of it.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats holds per-tier counters (spec.md §4.1).
type Stats struct {
	TotalRequests int64
	Hits          int64
	Misses        int64
	Evictions     int64
	Size          int
}

type entry[V any] struct {
	key       string
	value     V
	insertTS  time.Time
	ttl       time.Duration
	hits      int64
	listElem  *list.Element
}

// Cache is a bounded ordered mapping from key to (value, insert_ts, ttl,
// hits). Eviction picks the lowest composite key (hits, insert_ts) — plain
// LRU with a slight tenure preference for hot items, per spec.md §4.1.
// hashicorp/golang-lru's fixed recency policy cannot express this composite
// key, so the base tier is hand-rolled on container/list (see DESIGN.md).
type Cache[V any] struct {
	mu        sync.Mutex
	capacity  int
	defaultTTL time.Duration

	items map[string]*entry[V]
	order *list.List // MRU at front, LRU-ish candidates toward back

	stats Stats

	// onEvict is invoked (under lock release) whenever an entry leaves the
	// cache via eviction, explicit delete, clear, or expiry-on-access. The
	// semantic query cache uses this to keep its inverted index consistent.
	onEvict func(key string)
}

// New creates a Cache with the given capacity and default TTL (used when
// Set is called without an explicit ttl).
func New[V any](capacity int, defaultTTL time.Duration) *Cache[V] {
	return &Cache[V]{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*entry[V]),
		order:      list.New(),
	}
}

// OnEvict registers a callback fired whenever a key leaves the cache for
// any reason (eviction, explicit delete, clear, or lazy expiry).
func (c *Cache[V]) OnEvict(fn func(key string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

func (c *Cache[V]) expired(e *entry[V], now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.insertTS) > e.ttl
}

// Get returns (value, true) on a live hit, incrementing the hit counter and
// moving the entry to MRU position. Expired entries are dropped on access
// (spec.md §4.1 get contract).
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	var zero V
	c.stats.TotalRequests++

	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		c.mu.Unlock()
		return zero, false
	}
	if c.expired(e, time.Now()) {
		c.removeLocked(e)
		c.stats.Misses++
		evicted := c.onEvict
		c.mu.Unlock()
		if evicted != nil {
			evicted(key)
		}
		return zero, false
	}

	e.hits++
	c.order.MoveToFront(e.listElem)
	c.stats.Hits++
	val := e.value
	c.mu.Unlock()
	return val, true
}

// Set drops expired entries, evicts if at capacity, inserts/updates, and
// moves the entry to MRU position. ttl of 0 uses the cache's default TTL.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	now := time.Now()
	expiredKeys := c.pruneExpiredLocked(now)

	if e, ok := c.items[key]; ok {
		e.value = value
		e.insertTS = now
		e.ttl = ttl
		c.order.MoveToFront(e.listElem)
		cb := c.onEvict
		c.mu.Unlock()
		if cb != nil {
			for _, k := range expiredKeys {
				cb(k)
			}
		}
		return
	}

	var evictedKey string
	evicted := false
	if c.capacity > 0 && len(c.items) >= c.capacity {
		evictedKey, evicted = c.evictOneLocked()
	}

	e := &entry[V]{key: key, value: value, insertTS: now, ttl: ttl}
	e.listElem = c.order.PushFront(e)
	c.items[key] = e

	cb := c.onEvict
	c.mu.Unlock()
	if cb != nil {
		for _, k := range expiredKeys {
			cb(k)
		}
		if evicted {
			cb(evictedKey)
		}
	}
}

// Delete removes key unconditionally.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	e, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	c.removeLocked(e)
	cb := c.onEvict
	c.mu.Unlock()
	if cb != nil {
		cb(key)
	}
}

// Clear empties the cache, invoking onEvict for every key it held.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	c.items = make(map[string]*entry[V])
	c.order = list.New()
	cb := c.onEvict
	c.mu.Unlock()

	if cb != nil {
		for _, k := range keys {
			cb(k)
		}
	}
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.items)
	return s
}

func (c *Cache[V]) removeLocked(e *entry[V]) {
	delete(c.items, e.key)
	c.order.Remove(e.listElem)
}

func (c *Cache[V]) pruneExpiredLocked(now time.Time) []string {
	var keys []string
	for k, e := range c.items {
		if c.expired(e, now) {
			c.removeLocked(e)
			delete(c.items, k)
			keys = append(keys, k)
		}
	}
	return keys
}

// evictOneLocked removes the entry with the lowest composite key
// (hits, insert_ts) and reports it so callers can fire onEvict outside the
// lock.
func (c *Cache[V]) evictOneLocked() (string, bool) {
	var victim *entry[V]
	for _, e := range c.items {
		if victim == nil {
			victim = e
			continue
		}
		if e.hits < victim.hits || (e.hits == victim.hits && e.insertTS.Before(victim.insertTS)) {
			victim = e
		}
	}
	if victim == nil {
		return "", false
	}
	c.removeLocked(victim)
	c.stats.Evictions++
	return victim.key, true
}
