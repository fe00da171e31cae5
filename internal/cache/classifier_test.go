package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifierCache_SetGet_RoundTrips(t *testing.T) {
	c := NewClassifierCache(10)
	c.Set("hash-1", "how-to")

	got, ok := c.Get("hash-1")
	require.True(t, ok)
	assert.Equal(t, "how-to", got)
}

func TestClassifierCache_Get_MissOnUnknownHash(t *testing.T) {
	c := NewClassifierCache(10)
	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestClassifierCache_Clear_RemovesAllEntries(t *testing.T) {
	c := NewClassifierCache(10)
	c.Set("hash-1", "how-to")
	c.Clear()

	_, ok := c.Get("hash-1")
	assert.False(t, ok)
}
