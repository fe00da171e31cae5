package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_FiltersOtherKBs(t *testing.T) {
	raw := []RawResult{
		{ChunkID: "a", Content: "hello world", Distance: 1, KBID: "kb1"},
		{ChunkID: "b", Content: "other kb", Distance: 0.5, KBID: "kb2"},
	}
	out := Process(raw, "kb1", "", DefaultConfig())
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ChunkID)
}

func TestProcess_DropsResultsBeyondSimilarityThreshold(t *testing.T) {
	raw := []RawResult{
		{ChunkID: "a", Content: "close", Distance: 1, KBID: "kb1"},
		{ChunkID: "b", Content: "far", Distance: 50, KBID: "kb1"},
	}
	cfg := Config{TopK: 10, SimilarityThreshold: 10}
	out := Process(raw, "kb1", "", cfg)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ChunkID)
}

func TestProcess_DedupsByNormalizedContentKeepingSmallestDistance(t *testing.T) {
	raw := []RawResult{
		{ChunkID: "a", Content: "  Hello World  ", Distance: 2, KBID: "kb1"},
		{ChunkID: "b", Content: "hello world", Distance: 0.5, KBID: "kb1"},
	}
	out := Process(raw, "kb1", "", DefaultConfig())
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ChunkID)
}

func TestProcess_NoQueryTextSortsByRawDistance(t *testing.T) {
	raw := []RawResult{
		{ChunkID: "a", Content: "aaa", Distance: 3, KBID: "kb1"},
		{ChunkID: "b", Content: "bbb", Distance: 1, KBID: "kb1"},
		{ChunkID: "c", Content: "ccc", Distance: 2, KBID: "kb1"},
	}
	out := Process(raw, "kb1", "", DefaultConfig())
	require.Len(t, out, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{out[0].ChunkID, out[1].ChunkID, out[2].ChunkID})
}

func TestProcess_RerankFavorsKeywordMatchOverRawDistance(t *testing.T) {
	raw := []RawResult{
		{ChunkID: "closer-no-keyword", Content: "irrelevant padding text here", Distance: 1, KBID: "kb1"},
		{ChunkID: "farther-with-keyword", Content: "python is a programming language", Distance: 1.5, KBID: "kb1"},
		{ChunkID: "farthest-no-keyword", Content: "unrelated filler", Distance: 5, KBID: "kb1"},
	}
	out := Process(raw, "kb1", "what is python", DefaultConfig())
	require.Len(t, out, 3)
	assert.Equal(t, "farther-with-keyword", out[0].ChunkID)
}

func TestProcess_TruncatesToTopK(t *testing.T) {
	raw := []RawResult{
		{ChunkID: "a", Content: "a", Distance: 1, KBID: "kb1"},
		{ChunkID: "b", Content: "b", Distance: 2, KBID: "kb1"},
		{ChunkID: "c", Content: "c", Distance: 3, KBID: "kb1"},
	}
	out := Process(raw, "kb1", "", Config{TopK: 2, SimilarityThreshold: 10})
	assert.Len(t, out, 2)
}

func TestProcess_EmptyInputReturnsEmpty(t *testing.T) {
	out := Process(nil, "kb1", "anything", DefaultConfig())
	assert.Empty(t, out)
}

func TestProcess_TopKZeroReturnsEmptyWithoutError(t *testing.T) {
	raw := []RawResult{{ChunkID: "a", Content: "a", Distance: 1, KBID: "kb1"}}
	out := Process(raw, "kb1", "", Config{TopK: 0, SimilarityThreshold: 10})
	assert.Empty(t, out)
}
