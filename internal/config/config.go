package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete engine configuration.
// It mirrors the recognised keys enumerated in specification Section 6.
type Config struct {
	Version     int              `yaml:"version" json:"version"`
	Embedding   EmbeddingConfig  `yaml:"embedding" json:"embedding"`
	HNSW        HNSWConfig       `yaml:"hnsw" json:"hnsw"`
	Retrieval   RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Chunking    ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Confidence  ConfidenceConfig `yaml:"confidence" json:"confidence"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator" json:"orchestrator"`
	LLM         LLMConfig        `yaml:"llm" json:"llm"`
	Cache       CacheConfig      `yaml:"cache" json:"cache"`
	Files       FilesConfig      `yaml:"files" json:"files"`
	Server      ServerConfig     `yaml:"server" json:"server"`
	Storage     StorageConfig    `yaml:"storage" json:"storage"`
}

// EmbeddingConfig configures the embedding provider (C2).
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" json:"provider"`
	Model      string `yaml:"model" json:"model"`
	Dimension  int    `yaml:"dim" json:"dim"`
	BatchSize  int    `yaml:"batch_size" json:"batch_size"`
	Endpoint   string `yaml:"endpoint" json:"endpoint"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
	APIKeyEnv      string `yaml:"api_key_env" json:"api_key_env"` // name of the env var holding the key, optional
}

// HNSWConfig configures the vector index (C4).
// Field names follow the recognised keys verbatim: hnsw_max_elements,
// hnsw_ef_construction, hnsw_ef_search, hnsw_m, hnsw_distance_metric.
type HNSWConfig struct {
	MaxElements      int    `yaml:"max_elements" json:"max_elements"`
	EfConstruction   int    `yaml:"ef_construction" json:"ef_construction"`
	EfSearch         int    `yaml:"ef_search" json:"ef_search"`
	M                int    `yaml:"m" json:"m"`
	DistanceMetric   string `yaml:"distance_metric" json:"distance_metric"` // "cosine" or "l2"
	RebuildThreshold int    `yaml:"rebuild_threshold" json:"rebuild_threshold"`
}

// RetrievalConfig configures post-processing of raw HNSW hits (C7).
type RetrievalConfig struct {
	TopK                int     `yaml:"top_k" json:"top_k"`
	FetchMultiplier     int     `yaml:"fetch_multiplier" json:"fetch_multiplier"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
	DedupThreshold      float64 `yaml:"dedup_threshold" json:"dedup_threshold"`
}

// ChunkingConfig configures the text chunker (C3).
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size" json:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`
	MinChunkSize int `yaml:"min_chunk_size" json:"min_chunk_size"`
}

// ConfidenceConfig configures the five-dimensional confidence scorer (C8).
// The five weights must sum to 1.
type ConfidenceConfig struct {
	RetrievalWeight    float64 `yaml:"retrieval_weight" json:"retrieval_weight"`
	CompletenessWeight float64 `yaml:"completeness_weight" json:"completeness_weight"`
	KeywordMatchWeight float64 `yaml:"keyword_match_weight" json:"keyword_match_weight"`
	AnswerQualityWeight float64 `yaml:"answer_quality_weight" json:"answer_quality_weight"`
	ConsistencyWeight  float64 `yaml:"consistency_weight" json:"consistency_weight"`
}

// OrchestratorConfig configures the bounded query state machine (C9).
type OrchestratorConfig struct {
	MaxIterations       int `yaml:"max_iterations" json:"max_iterations"`
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds" json:"query_timeout_seconds"`
}

// CacheConfig configures the per-tier LRU+TTL cache (C1).
type CacheConfig struct {
	EmbeddingSize      int `yaml:"embedding_size" json:"embedding_size"`
	EmbeddingTTLSeconds int `yaml:"embedding_ttl_seconds" json:"embedding_ttl_seconds"`
	QuerySize          int `yaml:"query_size" json:"query_size"`
	QueryTTLSeconds    int `yaml:"query_ttl_seconds" json:"query_ttl_seconds"`
}

// FilesConfig configures ephemeral conversation file fusion (C10).
// FileContentContextWeight and KnowledgeBaseContextWeight are read from
// config but never defaulted in the source system; this port defaults
// both to 1.0 and documents the deviation (DESIGN.md).
type FilesConfig struct {
	FileContentContextWeight  float64 `yaml:"file_content_context_weight" json:"file_content_context_weight"`
	KnowledgeBaseContextWeight float64 `yaml:"knowledge_base_context_weight" json:"knowledge_base_context_weight"`
	JanitorInterval            string  `yaml:"janitor_interval" json:"janitor_interval"`
	MaxAge                     string  `yaml:"max_age" json:"max_age"`
}

// LLMConfig configures the chat-completions provider the orchestrator (C9)
// calls to generate answers.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint" json:"endpoint"`
	Model          string `yaml:"model" json:"model"`
	APIKeyEnv      string `yaml:"api_key_env" json:"api_key_env"` // name of the env var holding the key
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// ServerConfig configures the MCP server transport.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	Port      int    `yaml:"port" json:"port"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// StorageConfig configures on-disk locations for the vector and metadata stores.
type StorageConfig struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Embedding: EmbeddingConfig{
			Provider:       "openai",
			Model:          "text-embedding-3-small",
			Dimension:      1536,
			BatchSize:      32,
			TimeoutSeconds: 60,
			APIKeyEnv:      "RAGKB_EMBED_API_KEY",
		},
		HNSW: HNSWConfig{
			MaxElements:      1_000_000,
			EfConstruction:   200,
			EfSearch:         64,
			M:                16,
			DistanceMetric:   "cosine",
			RebuildThreshold: 1000,
		},
		Retrieval: RetrievalConfig{
			TopK:                5,
			FetchMultiplier:     5,
			SimilarityThreshold: 10.0,
			DedupThreshold:      0.95,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
			MinChunkSize: 20,
		},
		Confidence: ConfidenceConfig{
			RetrievalWeight:     0.45,
			CompletenessWeight:  0.25,
			KeywordMatchWeight:  0.15,
			AnswerQualityWeight: 0.10,
			ConsistencyWeight:   0.05,
		},
		Orchestrator: OrchestratorConfig{
			MaxIterations:       10,
			QueryTimeoutSeconds: 60,
		},
		LLM: LLMConfig{
			Endpoint:       "http://localhost:8000/v1/chat/completions",
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "RAGKB_LLM_API_KEY",
			TimeoutSeconds: 120,
		},
		Cache: CacheConfig{
			EmbeddingSize:       10000,
			EmbeddingTTLSeconds: 86400,
			QuerySize:           1000,
			QueryTTLSeconds:     3600,
		},
		Files: FilesConfig{
			FileContentContextWeight:   1.0,
			KnowledgeBaseContextWeight: 1.0,
			JanitorInterval:            "5m",
			MaxAge:                     "1h",
		},
		Server: ServerConfig{
			Transport: "stdio",
			Port:      8765,
			LogLevel:  "info",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
	}
}

// defaultDataDir returns the default directory for the HNSW store and
// SQLite metadata database (~/.ragkb/data).
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ragkb", "data")
	}
	return filepath.Join(home, ".ragkb", "data")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/ragkb/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/ragkb/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ragkb", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "ragkb", "config.yaml")
	}
	return filepath.Join(home, ".config", "ragkb", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist (that's OK).
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()

	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}

	return cfg, nil
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/ragkb/config.yaml)
//  3. Project config (.ragkb.yaml in dir)
//  4. Environment variables (RAGKB_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .ragkb.yaml or .ragkb.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".ragkb.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".ragkb.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Embedding.Provider != "" {
		c.Embedding.Provider = other.Embedding.Provider
	}
	if other.Embedding.Model != "" {
		c.Embedding.Model = other.Embedding.Model
	}
	if other.Embedding.Dimension != 0 {
		c.Embedding.Dimension = other.Embedding.Dimension
	}
	if other.Embedding.BatchSize != 0 {
		c.Embedding.BatchSize = other.Embedding.BatchSize
	}
	if other.Embedding.Endpoint != "" {
		c.Embedding.Endpoint = other.Embedding.Endpoint
	}
	if other.Embedding.TimeoutSeconds != 0 {
		c.Embedding.TimeoutSeconds = other.Embedding.TimeoutSeconds
	}
	if other.Embedding.APIKeyEnv != "" {
		c.Embedding.APIKeyEnv = other.Embedding.APIKeyEnv
	}

	if other.HNSW.MaxElements != 0 {
		c.HNSW.MaxElements = other.HNSW.MaxElements
	}
	if other.HNSW.EfConstruction != 0 {
		c.HNSW.EfConstruction = other.HNSW.EfConstruction
	}
	if other.HNSW.EfSearch != 0 {
		c.HNSW.EfSearch = other.HNSW.EfSearch
	}
	if other.HNSW.M != 0 {
		c.HNSW.M = other.HNSW.M
	}
	if other.HNSW.DistanceMetric != "" {
		c.HNSW.DistanceMetric = other.HNSW.DistanceMetric
	}
	if other.HNSW.RebuildThreshold != 0 {
		c.HNSW.RebuildThreshold = other.HNSW.RebuildThreshold
	}

	if other.Retrieval.TopK != 0 {
		c.Retrieval.TopK = other.Retrieval.TopK
	}
	if other.Retrieval.FetchMultiplier != 0 {
		c.Retrieval.FetchMultiplier = other.Retrieval.FetchMultiplier
	}
	if other.Retrieval.SimilarityThreshold != 0 {
		c.Retrieval.SimilarityThreshold = other.Retrieval.SimilarityThreshold
	}
	if other.Retrieval.DedupThreshold != 0 {
		c.Retrieval.DedupThreshold = other.Retrieval.DedupThreshold
	}

	if other.Chunking.ChunkSize != 0 {
		c.Chunking.ChunkSize = other.Chunking.ChunkSize
	}
	if other.Chunking.ChunkOverlap != 0 {
		c.Chunking.ChunkOverlap = other.Chunking.ChunkOverlap
	}
	if other.Chunking.MinChunkSize != 0 {
		c.Chunking.MinChunkSize = other.Chunking.MinChunkSize
	}

	if sumWeights(other.Confidence) != 0 {
		c.Confidence = other.Confidence
	}

	if other.Orchestrator.MaxIterations != 0 {
		c.Orchestrator.MaxIterations = other.Orchestrator.MaxIterations
	}
	if other.Orchestrator.QueryTimeoutSeconds != 0 {
		c.Orchestrator.QueryTimeoutSeconds = other.Orchestrator.QueryTimeoutSeconds
	}

	if other.LLM.Endpoint != "" {
		c.LLM.Endpoint = other.LLM.Endpoint
	}
	if other.LLM.Model != "" {
		c.LLM.Model = other.LLM.Model
	}
	if other.LLM.APIKeyEnv != "" {
		c.LLM.APIKeyEnv = other.LLM.APIKeyEnv
	}
	if other.LLM.TimeoutSeconds != 0 {
		c.LLM.TimeoutSeconds = other.LLM.TimeoutSeconds
	}

	if other.Cache.EmbeddingSize != 0 {
		c.Cache.EmbeddingSize = other.Cache.EmbeddingSize
	}
	if other.Cache.EmbeddingTTLSeconds != 0 {
		c.Cache.EmbeddingTTLSeconds = other.Cache.EmbeddingTTLSeconds
	}
	if other.Cache.QuerySize != 0 {
		c.Cache.QuerySize = other.Cache.QuerySize
	}
	if other.Cache.QueryTTLSeconds != 0 {
		c.Cache.QueryTTLSeconds = other.Cache.QueryTTLSeconds
	}

	if other.Files.FileContentContextWeight != 0 {
		c.Files.FileContentContextWeight = other.Files.FileContentContextWeight
	}
	if other.Files.KnowledgeBaseContextWeight != 0 {
		c.Files.KnowledgeBaseContextWeight = other.Files.KnowledgeBaseContextWeight
	}
	if other.Files.JanitorInterval != "" {
		c.Files.JanitorInterval = other.Files.JanitorInterval
	}
	if other.Files.MaxAge != "" {
		c.Files.MaxAge = other.Files.MaxAge
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	if other.Storage.DataDir != "" {
		c.Storage.DataDir = other.Storage.DataDir
	}
}

func sumWeights(cc ConfidenceConfig) float64 {
	return cc.RetrievalWeight + cc.CompletenessWeight + cc.KeywordMatchWeight +
		cc.AnswerQualityWeight + cc.ConsistencyWeight
}

// applyEnvOverrides applies RAGKB_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RAGKB_EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("RAGKB_EMBEDDING_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("RAGKB_EMBEDDING_ENDPOINT"); v != "" {
		c.Embedding.Endpoint = v
	}
	if v := os.Getenv("RAGKB_EMBEDDING_DIM"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			c.Embedding.Dimension = d
		}
	}

	if v := os.Getenv("RAGKB_HNSW_MAX_ELEMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.HNSW.MaxElements = n
		}
	}
	if v := os.Getenv("RAGKB_HNSW_DISTANCE_METRIC"); v != "" {
		c.HNSW.DistanceMetric = v
	}
	if v := os.Getenv("RAGKB_HNSW_REBUILD_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.HNSW.RebuildThreshold = n
		}
	}

	if v := os.Getenv("RAGKB_RETRIEVAL_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Retrieval.TopK = n
		}
	}

	if v := os.Getenv("RAGKB_LLM_ENDPOINT"); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv("RAGKB_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv("RAGKB_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("RAGKB_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("RAGKB_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}

	if v := os.Getenv("RAGKB_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Orchestrator.MaxIterations = n
		}
	}
	if v := os.Getenv("RAGKB_QUERY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Orchestrator.QueryTimeoutSeconds = n
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dim must be positive, got %d", c.Embedding.Dimension)
	}

	if c.HNSW.MaxElements <= 0 {
		return fmt.Errorf("hnsw.max_elements must be positive, got %d", c.HNSW.MaxElements)
	}
	validMetrics := map[string]bool{"cosine": true, "l2": true}
	if !validMetrics[strings.ToLower(c.HNSW.DistanceMetric)] {
		return fmt.Errorf("hnsw.distance_metric must be 'cosine' or 'l2', got %s", c.HNSW.DistanceMetric)
	}
	if c.HNSW.RebuildThreshold <= 0 {
		return fmt.Errorf("hnsw.rebuild_threshold must be positive, got %d", c.HNSW.RebuildThreshold)
	}

	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("retrieval.top_k must be non-negative, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.FetchMultiplier < 5 {
		return fmt.Errorf("retrieval.fetch_multiplier must be at least 5, got %d", c.Retrieval.FetchMultiplier)
	}

	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.chunk_overlap must be in [0, chunk_size), got %d", c.Chunking.ChunkOverlap)
	}

	sum := sumWeights(c.Confidence)
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("confidence weights must sum to 1.0, got %.2f", sum)
	}

	if c.Orchestrator.MaxIterations <= 0 {
		return fmt.Errorf("orchestrator.max_iterations must be positive, got %d", c.Orchestrator.MaxIterations)
	}
	if c.Orchestrator.QueryTimeoutSeconds <= 0 {
		return fmt.Errorf("orchestrator.query_timeout_seconds must be positive, got %d", c.Orchestrator.QueryTimeoutSeconds)
	}

	if c.LLM.Endpoint == "" {
		return fmt.Errorf("llm.endpoint must be set")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}

	validTransports := map[string]bool{"stdio": true, "sse": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio' or 'sse', got %s", c.Server.Transport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// MergeNewDefaults adds new default fields while preserving existing values.
// Returns a list of field names that were added with their default values.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	if c.Retrieval.FetchMultiplier == 0 {
		c.Retrieval.FetchMultiplier = defaults.Retrieval.FetchMultiplier
		added = append(added, "retrieval.fetch_multiplier")
	}
	if c.Retrieval.DedupThreshold == 0 {
		c.Retrieval.DedupThreshold = defaults.Retrieval.DedupThreshold
		added = append(added, "retrieval.dedup_threshold")
	}

	if c.HNSW.RebuildThreshold == 0 {
		c.HNSW.RebuildThreshold = defaults.HNSW.RebuildThreshold
		added = append(added, "hnsw.rebuild_threshold")
	}

	if sumWeights(c.Confidence) == 0 {
		c.Confidence = defaults.Confidence
		added = append(added, "confidence.*")
	}

	// Deviation from the source system: these two weights are read from
	// config but never defaulted there. Default both to 1.0 here.
	if c.Files.FileContentContextWeight == 0 {
		c.Files.FileContentContextWeight = defaults.Files.FileContentContextWeight
		added = append(added, "files.file_content_context_weight")
	}
	if c.Files.KnowledgeBaseContextWeight == 0 {
		c.Files.KnowledgeBaseContextWeight = defaults.Files.KnowledgeBaseContextWeight
		added = append(added, "files.knowledge_base_context_weight")
	}

	if c.Cache.EmbeddingSize == 0 {
		c.Cache.EmbeddingSize = defaults.Cache.EmbeddingSize
		added = append(added, "cache.embedding_size")
	}
	if c.Cache.QuerySize == 0 {
		c.Cache.QuerySize = defaults.Cache.QuerySize
		added = append(added, "cache.query_size")
	}

	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = defaults.LLM.Endpoint
		c.LLM.Model = defaults.LLM.Model
		c.LLM.APIKeyEnv = defaults.LLM.APIKeyEnv
		c.LLM.TimeoutSeconds = defaults.LLM.TimeoutSeconds
		added = append(added, "llm.*")
	}

	if c.Storage.DataDir == "" {
		c.Storage.DataDir = defaults.Storage.DataDir
		added = append(added, "storage.data_dir")
	}

	return added
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
