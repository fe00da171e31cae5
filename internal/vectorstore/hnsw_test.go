package vectorstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Dimensions: 3, DistanceMetric: MetricCosine}
}

func vec(x, y, z float32) []float32 { return []float32{x, y, z} }

func TestHNSWStore_AddAndSearch_ReturnsClosestFirst(t *testing.T) {
	s, err := Open(t.TempDir(), testConfig(), nil)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{
		{ChunkID: "a", Vector: vec(1, 0, 0), Content: "a"},
		{ChunkID: "b", Vector: vec(0, 1, 0), Content: "b"},
	})
	require.NoError(t, err)

	results, err := s.Search(context.Background(), vec(1, 0, 0), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ChunkID)
}

func TestHNSWStore_Add_RejectsWrongDimension(t *testing.T) {
	s, err := Open(t.TempDir(), testConfig(), nil)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{{Vector: vec(1, 0, 0)[:2]}})
	assert.Error(t, err)
}

func TestHNSWStore_Add_RespectsMaxElements(t *testing.T) {
	cfg := testConfig()
	cfg.MaxElements = 1
	s, err := Open(t.TempDir(), cfg, nil)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{{Vector: vec(1, 0, 0)}})
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{{Vector: vec(0, 1, 0)}})
	assert.Error(t, err)
}

func TestHNSWStore_Delete_TombstonesAndHidesFromSearch(t *testing.T) {
	s, err := Open(t.TempDir(), testConfig(), nil)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{{ChunkID: "a", Vector: vec(1, 0, 0)}})
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "a"))
	assert.Equal(t, 1, s.DeletionCount())
	assert.Equal(t, 0, s.Len())

	results, err := s.Search(context.Background(), vec(1, 0, 0), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHNSWStore_Delete_UnknownChunkReturnsNotFound(t *testing.T) {
	s, err := Open(t.TempDir(), testConfig(), nil)
	require.NoError(t, err)

	err = s.Delete(context.Background(), "missing")
	assert.Error(t, err)
}

func TestHNSWStore_DeleteWhere_MatchesOnEveryFilterKey(t *testing.T) {
	s, err := Open(t.TempDir(), testConfig(), nil)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{
		{ChunkID: "a", Vector: vec(1, 0, 0), Metadata: map[string]string{"doc": "1"}},
		{ChunkID: "b", Vector: vec(0, 1, 0), Metadata: map[string]string{"doc": "2"}},
	})
	require.NoError(t, err)

	n, err := s.DeleteWhere(context.Background(), map[string]string{"doc": "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())
}

func TestHNSWStore_Rebuild_CompactsTombstonesAndPreservesLiveVectors(t *testing.T) {
	s, err := Open(t.TempDir(), testConfig(), nil)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{
		{ChunkID: "a", Vector: vec(1, 0, 0)},
		{ChunkID: "b", Vector: vec(0, 1, 0)},
	})
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), "a"))

	require.NoError(t, s.Rebuild(context.Background()))
	assert.Equal(t, 0, s.DeletionCount())
	assert.Equal(t, 1, s.Len())

	results, err := s.Search(context.Background(), vec(0, 1, 0), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ChunkID)
}

func TestHNSWStore_Clear_ResetsToEmpty(t *testing.T) {
	s, err := Open(t.TempDir(), testConfig(), nil)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{{ChunkID: "a", Vector: vec(1, 0, 0)}})
	require.NoError(t, err)

	require.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.DeletionCount())
}

func TestHNSWStore_MaybeRebuild_OnlyTriggersPastThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.RebuildThreshold = 2
	s, err := Open(t.TempDir(), cfg, nil)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), []AddItem{
		{ChunkID: "a", Vector: vec(1, 0, 0)},
		{ChunkID: "b", Vector: vec(0, 1, 0)},
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "a"))
	require.NoError(t, s.MaybeRebuild(context.Background()))
	assert.Equal(t, 1, s.DeletionCount(), "below threshold: rebuild should not have run")

	require.NoError(t, s.Delete(context.Background(), "b"))
	require.NoError(t, s.MaybeRebuild(context.Background()))
	assert.Equal(t, 0, s.DeletionCount(), "at threshold: rebuild should have run")
}

func TestOpen_ReloadsPersistedStateAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir, testConfig(), nil)
	require.NoError(t, err)
	_, err = s1.Add(context.Background(), []AddItem{{ChunkID: "a", Vector: vec(1, 0, 0), Content: "hello"}})
	require.NoError(t, err)

	s2, err := Open(dir, testConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s2.Len())

	results, err := s2.Search(context.Background(), vec(1, 0, 0), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hello", results[0].Content)
}

func TestOpen_PartialOnDiskPairIsTreatedAsCorruption(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testConfig(), nil)
	require.NoError(t, err)
	_, err = s.Add(context.Background(), []AddItem{{ChunkID: "a", Vector: vec(1, 0, 0)}})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, metaFileName)))

	_, err = Open(dir, testConfig(), nil)
	assert.Error(t, err)
}
