package embed

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/ragkb/ragkb/internal/cache"
)

// DefaultEmbeddingCacheSize is the default number of embeddings to cache.
const DefaultEmbeddingCacheSize = 1000

// CachedEmbedder wraps an Embedder with the shared embedding cache tier
// (internal/cache) and in-flight request coalescing, so concurrent callers
// asking for the same uncached text share one provider call instead of
// each issuing their own.
type CachedEmbedder struct {
	inner Embedder
	cache *cache.EmbeddingCache
	group singleflight.Group
}

// NewCachedEmbedder wraps inner with an embedding cache of the given
// capacity.
func NewCachedEmbedder(inner Embedder, cacheSize int) *CachedEmbedder {
	if cacheSize <= 0 {
		cacheSize = DefaultEmbeddingCacheSize
	}
	return &CachedEmbedder{
		inner: inner,
		cache: cache.NewEmbeddingCache(cacheSize),
	}
}

// NewCachedEmbedderWithDefaults wraps inner with default cache settings.
func NewCachedEmbedderWithDefaults(inner Embedder) *CachedEmbedder {
	return NewCachedEmbedder(inner, DefaultEmbeddingCacheSize)
}

// Embed returns a cached vector if present, otherwise computes and caches
// one, coalescing concurrent requests for the same text.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text, c.inner.ModelName()); ok {
		return vec, nil
	}

	key := c.inner.ModelName() + "\x00" + text
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		vec, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Set(text, c.inner.ModelName(), vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// EmbedBatch returns cached vectors where available and embeds the rest in
// one provider call, splicing the fresh vectors back into position.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	model := c.inner.ModelName()
	results, uncachedTexts, uncachedIndices := c.cache.GetBatch(texts, model)
	if len(uncachedTexts) == 0 {
		return results, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, uncachedTexts)
	if err != nil {
		return nil, fmt.Errorf("embed uncached batch: %w", err)
	}
	if len(fresh) != len(uncachedTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d uncached texts", len(fresh), len(uncachedTexts))
	}

	for i, idx := range uncachedIndices {
		results[idx] = fresh[i]
	}
	c.cache.SetBatch(texts, model, uncachedIndices, fresh)

	return results, nil
}

// Dimensions returns the embedding dimension (passthrough to inner).
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName returns the model identifier (passthrough to inner).
func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

// Available checks if the embedder is ready (passthrough to inner).
func (c *CachedEmbedder) Available(ctx context.Context) bool {
	return c.inner.Available(ctx)
}

// Close releases resources and closes the inner embedder.
func (c *CachedEmbedder) Close() error {
	return c.inner.Close()
}

// Inner returns the underlying embedder, for callers that need to reach
// provider-specific behavior not part of the Embedder interface.
func (c *CachedEmbedder) Inner() Embedder {
	return c.inner
}

// Stats exposes the embedding cache tier's hit/miss counters.
func (c *CachedEmbedder) Stats() cache.Stats {
	return c.cache.Stats()
}

var _ Embedder = (*CachedEmbedder)(nil)
