package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingCache_SetGet_RoundTrips(t *testing.T) {
	c := NewEmbeddingCache(10)
	vec := []float32{0.1, 0.2, 0.3}
	c.Set("hello", "model-a", vec)

	got, ok := c.Get("hello", "model-a")
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestEmbeddingCache_Get_DistinguishesByModel(t *testing.T) {
	c := NewEmbeddingCache(10)
	c.Set("hello", "model-a", []float32{1})

	_, ok := c.Get("hello", "model-b")
	assert.False(t, ok)
}

func TestEmbeddingCache_GetBatch_SplitsHitsAndMisses(t *testing.T) {
	c := NewEmbeddingCache(10)
	c.Set("a", "m", []float32{1})
	c.Set("c", "m", []float32{3})

	results, uncachedTexts, uncachedIndices := c.GetBatch([]string{"a", "b", "c"}, "m")

	require.Len(t, results, 3)
	assert.Equal(t, []float32{1}, results[0])
	assert.Nil(t, results[1])
	assert.Equal(t, []float32{3}, results[2])
	assert.Equal(t, []string{"b"}, uncachedTexts)
	assert.Equal(t, []int{1}, uncachedIndices)
}

func TestEmbeddingCache_SetBatch_FillsInMisses(t *testing.T) {
	c := NewEmbeddingCache(10)
	texts := []string{"a", "b", "c"}
	results, uncachedTexts, uncachedIndices := c.GetBatch(texts, "m")
	require.Equal(t, []string{"a", "b", "c"}, uncachedTexts)

	fresh := [][]float32{{1}, {2}, {3}}
	c.SetBatch(texts, "m", uncachedIndices, fresh)

	results, _, _ = c.GetBatch(texts, "m")
	assert.Equal(t, [][]float32{{1}, {2}, {3}}, results)
}
