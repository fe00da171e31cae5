package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EmbeddingTTL is the default lifetime of a cached embedding vector
// (spec.md §4.1 — roughly a day, since the underlying text/model pairing
// never changes meaning).
const EmbeddingTTL = 24 * time.Hour

// EmbeddingCache memoizes embedding vectors keyed by (text, model).
type EmbeddingCache struct {
	inner *Cache[[]float32]
}

// NewEmbeddingCache builds an embedding tier with the given capacity.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	return &EmbeddingCache{inner: New[[]float32](capacity, EmbeddingTTL)}
}

func embeddingKey(text, model string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + model))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached vector for (text, model), if present and live.
func (c *EmbeddingCache) Get(text, model string) ([]float32, bool) {
	return c.inner.Get(embeddingKey(text, model))
}

// Set stores vec under (text, model) with the tier's default TTL.
func (c *EmbeddingCache) Set(text, model string, vec []float32) {
	c.inner.Set(embeddingKey(text, model), vec, 0)
}

// GetBatch splits texts into cached results and the subset that must still
// be embedded. results[i] is nil wherever texts[i] missed; uncachedTexts
// and uncachedIndices enumerate the misses in input order so a caller can
// embed just those and splice the response back into results by index.
func (c *EmbeddingCache) GetBatch(texts []string, model string) (results [][]float32, uncachedTexts []string, uncachedIndices []int) {
	results = make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := c.Get(text, model); ok {
			results[i] = vec
			continue
		}
		uncachedTexts = append(uncachedTexts, text)
		uncachedIndices = append(uncachedIndices, i)
	}
	return results, uncachedTexts, uncachedIndices
}

// SetBatch stores freshly computed vectors for the texts at uncachedIndices.
func (c *EmbeddingCache) SetBatch(texts []string, model string, uncachedIndices []int, vectors [][]float32) {
	for i, idx := range uncachedIndices {
		if i >= len(vectors) {
			break
		}
		c.Set(texts[idx], model, vectors[i])
	}
}

// Stats exposes the tier's hit/miss counters.
func (c *EmbeddingCache) Stats() Stats { return c.inner.Stats() }

// Clear empties the tier.
func (c *EmbeddingCache) Clear() { c.inner.Clear() }
