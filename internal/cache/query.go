package cache

import (
	"sync"
	"time"
)

// QueryTTL is the default lifetime of a cached query result (spec.md §4.1) —
// zero means entries persist until explicitly invalidated or evicted.
const QueryTTL time.Duration = 0

// QueryCache caches answer payloads under the exact question text, while a
// secondary inverted index maps a semantic hash (normalized keyword set) to
// the exact key that produced it. A lookup by semantic hash that resolves to
// an exact key still has to hit the base cache — if that exact entry is gone
// (expired, evicted, deleted) the inverted index entry is stale and must be
// dropped too. The base cache's onEvict callback is how every such removal
// path — delete, clear, TTL expiry-on-access, and size eviction — gets
// funneled into keeping semantic_index consistent, which the three events
// the original source forgets are exactly those last three.
type QueryCache struct {
	mu     sync.Mutex
	exact  *Cache[any]
	byHash map[string]string // semantic hash -> exact key
}

// NewQueryCache builds a semantic query-result tier with the given capacity
// and TTL (0 means entries never expire on their own).
func NewQueryCache(capacity int, ttl time.Duration) *QueryCache {
	qc := &QueryCache{
		exact:  New[any](capacity, ttl),
		byHash: make(map[string]string),
	}
	qc.exact.OnEvict(qc.onExactEvicted)
	return qc
}

func (qc *QueryCache) onExactEvicted(exactKey string) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	for hash, key := range qc.byHash {
		if key == exactKey {
			delete(qc.byHash, hash)
		}
	}
}

// Set stores value under exactKey and indexes it under semanticHash.
func (qc *QueryCache) Set(exactKey, semanticHash string, value any) {
	qc.exact.Set(exactKey, value, 0)
	qc.mu.Lock()
	qc.byHash[semanticHash] = exactKey
	qc.mu.Unlock()
}

// GetExact looks up a cached value by its exact key.
func (qc *QueryCache) GetExact(exactKey string) (any, bool) {
	return qc.exact.Get(exactKey)
}

// GetSemantic resolves semanticHash to its exact key and fetches the
// underlying value. A hit here means the question was a lexical variant of
// something already answered.
func (qc *QueryCache) GetSemantic(semanticHash string) (any, bool) {
	qc.mu.Lock()
	exactKey, ok := qc.byHash[semanticHash]
	qc.mu.Unlock()
	if !ok {
		return nil, false
	}
	val, ok := qc.exact.Get(exactKey)
	if !ok {
		// Stale index entry: the exact key expired between the index
		// lookup and this fetch. Drop it so future lookups don't repeat
		// the miss-then-cleanup cycle.
		qc.mu.Lock()
		delete(qc.byHash, semanticHash)
		qc.mu.Unlock()
		return nil, false
	}
	return val, true
}

// Delete removes exactKey and every semantic hash pointing at it.
func (qc *QueryCache) Delete(exactKey string) {
	qc.exact.Delete(exactKey)
}

// Clear empties both the exact cache and the inverted index.
func (qc *QueryCache) Clear() {
	qc.exact.Clear()
	qc.mu.Lock()
	qc.byHash = make(map[string]string)
	qc.mu.Unlock()
}

// Stats exposes the exact tier's hit/miss counters.
func (qc *QueryCache) Stats() Stats { return qc.exact.Stats() }
