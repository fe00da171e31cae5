package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCache_GetExact_RoundTrips(t *testing.T) {
	qc := NewQueryCache(10, 0)
	qc.Set("exact:what is go", "hash-1", "go is a language")

	val, ok := qc.GetExact("exact:what is go")
	require.True(t, ok)
	assert.Equal(t, "go is a language", val)
}

func TestQueryCache_GetSemantic_ResolvesToSameValue(t *testing.T) {
	qc := NewQueryCache(10, 0)
	qc.Set("exact:what is go", "hash-1", "go is a language")

	val, ok := qc.GetSemantic("hash-1")
	require.True(t, ok)
	assert.Equal(t, "go is a language", val)
}

func TestQueryCache_GetSemantic_MissOnUnknownHash(t *testing.T) {
	qc := NewQueryCache(10, 0)
	_, ok := qc.GetSemantic("nope")
	assert.False(t, ok)
}

func TestQueryCache_Delete_RemovesBothExactAndSemanticEntries(t *testing.T) {
	qc := NewQueryCache(10, 0)
	qc.Set("exact:q1", "hash-1", "answer")

	qc.Delete("exact:q1")

	_, exactOK := qc.GetExact("exact:q1")
	_, semOK := qc.GetSemantic("hash-1")
	assert.False(t, exactOK)
	assert.False(t, semOK, "semantic index entry must be cleaned up on delete")
}

func TestQueryCache_Clear_EmptiesSemanticIndex(t *testing.T) {
	qc := NewQueryCache(10, 0)
	qc.Set("exact:q1", "hash-1", "answer")
	qc.Clear()

	_, semOK := qc.GetSemantic("hash-1")
	assert.False(t, semOK)
	assert.Empty(t, qc.byHash)
}

func TestQueryCache_Eviction_CleansUpSemanticIndex(t *testing.T) {
	qc := NewQueryCache(1, 0)
	qc.Set("exact:q1", "hash-1", "answer-1")
	qc.Set("exact:q2", "hash-2", "answer-2") // evicts q1, capacity 1

	_, semOK := qc.GetSemantic("hash-1")
	assert.False(t, semOK, "evicted exact entry must drop its semantic index entry too")

	val, ok := qc.GetSemantic("hash-2")
	require.True(t, ok)
	assert.Equal(t, "answer-2", val)
}

func TestQueryCache_Expiry_CleansUpSemanticIndexOnAccess(t *testing.T) {
	qc := NewQueryCache(10, time.Millisecond)
	qc.Set("exact:q1", "hash-1", "answer-1")
	time.Sleep(5 * time.Millisecond)

	_, exactOK := qc.GetExact("exact:q1")
	assert.False(t, exactOK)

	_, semOK := qc.GetSemantic("hash-1")
	assert.False(t, semOK)
}
