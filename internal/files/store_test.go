package files

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	s, err := Open(cfg)
	require.NoError(t, err)
	return s
}

func TestStore_Put_DedupesIdenticalContentByHash(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	f1, err := s.Put(ctx, "conv1", "a.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)
	f2, err := s.Put(ctx, "conv1", "a-copy.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, f1.ContentHash, f2.ContentHash)
}

func TestStore_Extract_TextPassesThroughUnchanged(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	f, err := s.Put(ctx, "conv1", "notes.txt", "text/plain", []byte("some notes"))
	require.NoError(t, err)

	env, err := s.Extract("conv1", f.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, KindText, env.Kind)
	assert.Equal(t, "some notes", env.Text)
}

func TestStore_Extract_ImageBuildsStructuredMetadata(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	pngHeader := append([]byte{0x89, 0x50, 0x4E, 0x47}, make([]byte, 20)...)
	f, err := s.Put(ctx, "conv1", "pic.png", "image/png", pngHeader)
	require.NoError(t, err)

	env, err := s.Extract("conv1", f.ContentHash)
	require.NoError(t, err)
	require.Equal(t, KindImage, env.Kind)
	require.NotNil(t, env.Image)
	assert.Equal(t, "png", env.Image.Format)
	assert.Contains(t, env.Image.DataURL, "data:image/png;base64,")
}

func TestStore_Extract_UnsupportedMimeClassErrors(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	f, err := s.Put(ctx, "conv1", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	_, err = s.Extract("conv1", f.ContentHash)
	assert.Error(t, err)
}

func TestStore_ListEnvelopes_KeyedByFilename(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "conv1", "a.txt", "text/plain", []byte("aaa"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "conv1", "b.txt", "text/plain", []byte("bbb"))
	require.NoError(t, err)

	envs, err := s.ListEnvelopes("conv1")
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, "aaa", envs["a.txt"].Text)
	assert.Equal(t, "bbb", envs["b.txt"].Text)
}

func TestJanitor_Sweep_EvictsExpiredFiles(t *testing.T) {
	s := testStore(t)
	s.cfg.TTL = time.Millisecond
	ctx := context.Background()

	_, err := s.Put(ctx, "conv1", "a.txt", "text/plain", []byte("aaa"))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	j := NewJanitor(s, nil)
	j.Sweep()

	envs, err := s.ListEnvelopes("conv1")
	require.NoError(t, err)
	assert.Empty(t, envs)
}

func TestJanitor_Sweep_TrimsToTargetRatioWhenOverQuota(t *testing.T) {
	s := testStore(t)
	s.cfg.TTL = 0
	s.cfg.QuotaBytes = 10
	s.cfg.TargetRatio = 0.5
	ctx := context.Background()

	_, err := s.Put(ctx, "conv1", "old.txt", "text/plain", []byte("0123456789"))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.Put(ctx, "conv1", "new.txt", "text/plain", []byte("abcdefghij"))
	require.NoError(t, err)

	j := NewJanitor(s, nil)
	j.Sweep()

	envs, err := s.ListEnvelopes("conv1")
	require.NoError(t, err)
	assert.NotContains(t, envs, "old.txt")
}

func TestJanitor_StartStop_RunsWithoutPanicking(t *testing.T) {
	s := testStore(t)
	s.cfg.SweepInterval = time.Millisecond
	j := NewJanitor(s, nil)
	j.Start()
	time.Sleep(10 * time.Millisecond)
	j.Stop()
}
