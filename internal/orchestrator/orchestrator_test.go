package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/ragkb/ragkb/internal/cache"
	"github.com/ragkb/ragkb/internal/confidence"
	"github.com/ragkb/ragkb/internal/llmclient"
	"github.com/ragkb/ragkb/internal/retrieval"
	"github.com/ragkb/ragkb/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	dims int
	err  error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

func (f *fakeEmbedder) Available(_ context.Context) bool { return f.err == nil }

func (f *fakeEmbedder) Close() error { return nil }

func (f *fakeEmbedder) ModelName() string { return "fake" }

type fakeStore struct {
	results []vectorstore.Result
	err     error
}

func (f *fakeStore) Add(_ context.Context, items []vectorstore.AddItem) ([]string, error) {
	ids := make([]string, len(items))
	return ids, nil
}

func (f *fakeStore) Search(_ context.Context, _ []float32, k int) ([]vectorstore.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.results) {
		return f.results[:k], nil
	}
	return f.results, nil
}

func (f *fakeStore) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeStore) DeleteWhere(_ context.Context, _ map[string]string) (int, error) {
	return 0, nil
}

func (f *fakeStore) Clear(_ context.Context) error        { return nil }
func (f *fakeStore) Rebuild(_ context.Context) error       { return nil }
func (f *fakeStore) Len() int                              { return len(f.results) }
func (f *fakeStore) DeletionCount() int                    { return 0 }
func (f *fakeStore) Close() error                          { return nil }

type fakeLLM struct {
	answer string
	err    error
}

func (f *fakeLLM) Complete(_ context.Context, _ llmclient.Request) (string, error) {
	return f.answer, f.err
}

func (f *fakeLLM) Stream(_ context.Context, _ llmclient.Request, onChunk func(llmclient.Chunk)) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if onChunk != nil {
		onChunk(llmclient.Chunk{Delta: f.answer, Done: true})
	}
	return f.answer, nil
}

func (f *fakeLLM) Close() error { return nil }

func baseDeps(store vectorstore.Store, llm llmclient.Client) *Dependencies {
	return &Dependencies{
		Embedder:          &fakeEmbedder{},
		VectorStore:       store,
		LLM:               llm,
		QueryCache:        cache.NewQueryCache(16, 0),
		RetrievalConfig:   retrieval.Config{TopK: 5, SimilarityThreshold: retrieval.DefaultSimilarityThreshold},
		ConfidenceWeights: confidence.DefaultWeights(),
		LLMModel:          "test-model",
		MaxIterations:     10,
		FetchMultiplier:   3,
		KBContextWeight:   1.0,
		FileContentWeight: 1.0,
	}
}

func TestRun_EmptyQuestionShortCircuits(t *testing.T) {
	deps := baseDeps(&fakeStore{}, &fakeLLM{})
	orch := New(deps)

	resp, err := orch.Run(context.Background(), Request{KBID: "kb1", Question: ""})

	require.NoError(t, err)
	assert.Empty(t, resp.Answer)
	assert.Equal(t, confidence.LevelLow, resp.Confidence.Level)
	assert.Empty(t, resp.RetrievedDocs)
}

func TestRun_HappyPathRetrievesAndGenerates(t *testing.T) {
	store := &fakeStore{results: []vectorstore.Result{
		{ChunkID: "c1", Content: "Go is a statically typed language.", Score: 0.1, Metadata: map[string]string{"kb_id": "kb1"}},
	}}
	llm := &fakeLLM{answer: "Go is a statically typed, compiled language designed at Google."}
	deps := baseDeps(store, llm)
	orch := New(deps)

	resp, err := orch.Run(context.Background(), Request{KBID: "kb1", Question: "What is Go?"})

	require.NoError(t, err)
	assert.Equal(t, llm.answer, resp.Answer)
	assert.NotEmpty(t, resp.RetrievedDocs)
	assert.Empty(t, resp.Error)
}

func TestRun_EmbedderFailureSurfacesAsResponseError(t *testing.T) {
	deps := baseDeps(&fakeStore{}, &fakeLLM{})
	deps.Embedder = &fakeEmbedder{err: errors.New("embedding backend unreachable")}
	orch := New(deps)

	resp, err := orch.Run(context.Background(), Request{KBID: "kb1", Question: "What is Go?"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, confidence.LevelLow, resp.Confidence.Level)
}

func TestRun_NoDocumentsFoundExhaustsIterationsWithFallback(t *testing.T) {
	deps := baseDeps(&fakeStore{}, &fakeLLM{})
	deps.MaxIterations = 2
	orch := New(deps)

	resp, err := orch.Run(context.Background(), Request{KBID: "kb1", Question: "What is Go?"})

	require.NoError(t, err)
	assert.Equal(t, FallbackIterationExhausted, resp.Answer)
	assert.Equal(t, confidence.LevelLow, resp.Confidence.Level)
}

func TestRun_CachedQueryIsServedWithoutCallingTheProvider(t *testing.T) {
	store := &fakeStore{results: []vectorstore.Result{
		{ChunkID: "c1", Content: "Go is a statically typed language.", Score: 0.1, Metadata: map[string]string{"kb_id": "kb1"}},
	}}
	llm := &fakeLLM{answer: "Go is a statically typed, compiled language."}
	deps := baseDeps(store, llm)
	orch := New(deps)

	first, err := orch.Run(context.Background(), Request{KBID: "kb1", Question: "What is Go?"})
	require.NoError(t, err)
	require.False(t, first.FromCache)

	second, err := orch.Run(context.Background(), Request{KBID: "kb1", Question: "what's go??"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Answer, second.Answer)
}

func TestNew_FillsDependencyDefaults(t *testing.T) {
	deps := &Dependencies{}
	orch := New(deps)

	assert.Equal(t, DefaultMaxIterations, orch.deps.MaxIterations)
	assert.Equal(t, DefaultQueryTimeout, orch.deps.QueryTimeout)
	assert.Equal(t, 3, orch.deps.FetchMultiplier)
}
