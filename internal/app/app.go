// Package app wires the config-driven set of dependencies every entry point
// (CLI commands, the MCP server) needs: the embedder, vector store, metadata
// store, query cache, file store, LLM client, and the orchestrator built
// over all of them.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ragkb/ragkb/internal/cache"
	"github.com/ragkb/ragkb/internal/config"
	"github.com/ragkb/ragkb/internal/confidence"
	"github.com/ragkb/ragkb/internal/embed"
	"github.com/ragkb/ragkb/internal/files"
	"github.com/ragkb/ragkb/internal/ingest"
	"github.com/ragkb/ragkb/internal/kb"
	"github.com/ragkb/ragkb/internal/llmclient"
	"github.com/ragkb/ragkb/internal/metastore"
	"github.com/ragkb/ragkb/internal/orchestrator"
	"github.com/ragkb/ragkb/internal/retrieval"
	"github.com/ragkb/ragkb/internal/vectorstore"
)

// App bundles every long-lived dependency for one process. Build once at
// startup, Close once at shutdown.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Embedder    embed.Embedder
	VectorStore vectorstore.Store
	MetaStore   *metastore.Store
	QueryCache  *cache.QueryCache
	FileStore   *files.Store
	FileJanitor *files.Janitor
	LLM         llmclient.Client
	Pipeline    *ingest.Pipeline
	KB          *kb.Service
	Orchestrator *orchestrator.Orchestrator
}

// New constructs every dependency from cfg and wires the orchestrator over
// them. Callers own the returned App and must call Close.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}

	vecStore, err := vectorstore.Open(filepath.Join(cfg.Storage.DataDir, "vectors"), vectorstore.Config{
		Dimensions:       cfg.Embedding.Dimension,
		MaxElements:      cfg.HNSW.MaxElements,
		EfConstruction:   cfg.HNSW.EfConstruction,
		EfSearch:         cfg.HNSW.EfSearch,
		M:                cfg.HNSW.M,
		DistanceMetric:   vectorstore.DistanceMetric(cfg.HNSW.DistanceMetric),
		RebuildThreshold: cfg.HNSW.RebuildThreshold,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	metaStore, err := metastore.Open(filepath.Join(cfg.Storage.DataDir, "metadata.db"))
	if err != nil {
		vecStore.Close()
		return nil, fmt.Errorf("open metastore: %w", err)
	}

	fileStore, err := files.Open(fileStoreConfig(cfg))
	if err != nil {
		vecStore.Close()
		metaStore.Close()
		return nil, fmt.Errorf("open file store: %w", err)
	}
	janitor := files.NewJanitor(fileStore, logger)
	janitor.Start()

	llm, err := llmclient.NewHTTPClient(llmclient.Config{
		Endpoint:   cfg.LLM.Endpoint,
		Model:      cfg.LLM.Model,
		APIKey:     os.Getenv(cfg.LLM.APIKeyEnv),
		Timeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		MaxRetries: llmclient.DefaultMaxRetries,
	})
	if err != nil {
		janitor.Stop()
		vecStore.Close()
		metaStore.Close()
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	pipeline := ingest.NewPipeline(embedder, vecStore, metaStore,
		filepath.Join(cfg.Storage.DataDir, "ingest-tmp"),
		filepath.Join(cfg.Storage.DataDir, "ingest-stable"),
		logger)

	queryCache := cache.NewQueryCache(cfg.Cache.QuerySize, time.Duration(cfg.Cache.QueryTTLSeconds)*time.Second)

	kbService := kb.New(metaStore, vecStore,
		filepath.Join(cfg.Storage.DataDir, "ingest-tmp"),
		filepath.Join(cfg.Storage.DataDir, "ingest-stable"),
		logger)

	deps := &orchestrator.Dependencies{
		Embedder:    embedder,
		VectorStore: vecStore,
		QueryCache:  queryCache,
		FileStore:   fileStore,
		LLM:         llm,
		Logger:      logger,
		RetrievalConfig: retrieval.Config{
			TopK:                cfg.Retrieval.TopK,
			SimilarityThreshold: float32(cfg.Retrieval.SimilarityThreshold),
		},
		ConfidenceWeights: confidence.Weights{
			Retrieval:     cfg.Confidence.RetrievalWeight,
			Completeness:  cfg.Confidence.CompletenessWeight,
			KeywordMatch:  cfg.Confidence.KeywordMatchWeight,
			AnswerQuality: cfg.Confidence.AnswerQualityWeight,
			Consistency:   cfg.Confidence.ConsistencyWeight,
		},
		LLMModel:          cfg.LLM.Model,
		MaxIterations:     cfg.Orchestrator.MaxIterations,
		FetchMultiplier:   cfg.Retrieval.FetchMultiplier,
		FileContentWeight: cfg.Files.FileContentContextWeight,
		KBContextWeight:   cfg.Files.KnowledgeBaseContextWeight,
		QueryTimeout:      time.Duration(cfg.Orchestrator.QueryTimeoutSeconds) * time.Second,
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		Embedder:     embedder,
		VectorStore:  vecStore,
		MetaStore:    metaStore,
		QueryCache:   queryCache,
		FileStore:    fileStore,
		FileJanitor:  janitor,
		LLM:          llm,
		Pipeline:     pipeline,
		KB:           kbService,
		Orchestrator: orchestrator.New(deps),
	}, nil
}

// buildEmbedder constructs the configured provider. embed.NewEmbedder
// already wraps the result in the C1 embedding cache (internal/embed's own
// default size) unless RAGKB_EMBED_CACHE disables it.
func buildEmbedder(ctx context.Context, cfg *config.Config) (embed.Embedder, error) {
	provider := embed.ProviderType(cfg.Embedding.Provider)
	httpCfg := embed.HTTPConfig{
		Endpoint:   cfg.Embedding.Endpoint,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimension,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
		APIKey:     os.Getenv(cfg.Embedding.APIKeyEnv),
		MaxRetries: embed.DefaultMaxRetries,
	}
	return embed.NewEmbedder(ctx, provider, httpCfg)
}

func fileStoreConfig(cfg *config.Config) files.Config {
	fc := files.DefaultConfig(filepath.Join(cfg.Storage.DataDir, "conversation-files"))
	if d, err := time.ParseDuration(cfg.Files.MaxAge); err == nil {
		fc.TTL = d
	}
	if d, err := time.ParseDuration(cfg.Files.JanitorInterval); err == nil {
		fc.SweepInterval = d
	}
	return fc
}

// Close releases every resource App opened, in reverse dependency order.
func (a *App) Close() error {
	a.FileJanitor.Stop()
	_ = a.LLM.Close()
	var err error
	if cerr := a.MetaStore.Close(); cerr != nil {
		err = cerr
	}
	if cerr := a.VectorStore.Close(); cerr != nil {
		err = cerr
	}
	return err
}
