package cache

import "time"

// ClassifierTTL is the default lifetime of a cached classification result
// (spec.md §4.1 — long-lived, since a question's intent/category rarely
// changes meaning week to week).
const ClassifierTTL = 7 * 24 * time.Hour

// ClassifierCache memoizes classifier output (e.g. intent/category labels)
// keyed by normalized question hash.
type ClassifierCache struct {
	inner *Cache[string]
}

// NewClassifierCache builds a classifier tier with the given capacity.
func NewClassifierCache(capacity int) *ClassifierCache {
	return &ClassifierCache{inner: New[string](capacity, ClassifierTTL)}
}

// Get returns the cached label for semanticHash, if present and live.
func (c *ClassifierCache) Get(semanticHash string) (string, bool) {
	return c.inner.Get(semanticHash)
}

// Set stores label under semanticHash with the tier's default TTL.
func (c *ClassifierCache) Set(semanticHash, label string) {
	c.inner.Set(semanticHash, label, 0)
}

// Stats exposes the tier's hit/miss counters.
func (c *ClassifierCache) Stats() Stats { return c.inner.Stats() }

// Clear empties the tier.
func (c *ClassifierCache) Clear() { c.inner.Clear() }
