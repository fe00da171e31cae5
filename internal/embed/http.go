package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ragkb/ragkb/internal/errkit"
)

// HTTPConfig configures an HTTPEmbedder.
type HTTPConfig struct {
	Endpoint   string // e.g. http://localhost:8000/v1/embeddings
	Model      string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
	MaxRetries int
}

// DefaultHTTPConfig returns sane defaults for HTTPConfig.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Dimensions: DefaultDimensions,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// HTTPEmbedder calls an OpenAI-style embeddings endpoint: a POST of
// {"model": ..., "input": [...]} returning {"data": [{"index", "embedding"}]}
// (spec.md §6). Any provider speaking this contract — a local inference
// server or a hosted API — can sit behind it.
type HTTPEmbedder struct {
	cfg     HTTPConfig
	client  *http.Client
	breaker *errkit.CircuitBreaker

	mu     sync.RWMutex
	closed bool
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponseItem struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embedResponse struct {
	Data []embedResponseItem `json:"data"`
}

// NewHTTPEmbedder constructs an HTTPEmbedder from cfg.
func NewHTTPEmbedder(cfg HTTPConfig) (*HTTPEmbedder, error) {
	if cfg.Endpoint == "" {
		return nil, errkit.New(errkit.ErrCodeEmbeddingUnavailable, "embedding endpoint not configured", nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &HTTPEmbedder{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: errkit.NewCircuitBreaker("embedding-provider"),
	}, nil
}

// Embed generates an embedding for a single text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch posts texts to the configured endpoint and returns vectors in
// the same order they were supplied, re-sorting the response by its
// declared index per spec.md §6 (providers are not required to preserve
// request order).
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, errkit.New(errkit.ErrCodeEmbeddingUnavailable, "embedder is closed", nil)
	}

	body, err := json.Marshal(embedRequest{Model: e.cfg.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	retryCfg := errkit.DefaultRetryConfig()
	retryCfg.MaxRetries = e.cfg.MaxRetries
	retryCfg.Jitter = true

	return errkit.CircuitExecuteWithResult(e.breaker, func() ([][]float32, error) {
		return e.doEmbedBatch(ctx, retryCfg, texts, body)
	}, func() ([][]float32, error) {
		return nil, errkit.New(errkit.ErrCodeEmbeddingUnavailable, "embedding provider circuit open", errkit.ErrCircuitOpen)
	})
}

func (e *HTTPEmbedder) doEmbedBatch(ctx context.Context, retryCfg errkit.RetryConfig, texts []string, body []byte) ([][]float32, error) {
	return errkit.RetryWithResult(ctx, retryCfg, func() ([][]float32, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build embed request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if e.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return nil, errkit.Wrap(errkit.ErrCodeEmbeddingUnavailable, err)
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read embed response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, errkit.New(errkit.ErrCodeEmbeddingUnavailable,
				fmt.Sprintf("embedding provider returned status %d", resp.StatusCode), nil).
				WithDetail("body", string(payload))
		}

		var parsed embedResponse
		if err := json.Unmarshal(payload, &parsed); err != nil {
			return nil, errkit.Wrap(errkit.ErrCodeEmbeddingUnavailable, err)
		}
		if len(parsed.Data) != len(texts) {
			return nil, errkit.New(errkit.ErrCodeEmbeddingUnavailable,
				fmt.Sprintf("embedding provider returned %d vectors for %d inputs", len(parsed.Data), len(texts)), nil)
		}

		sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })

		out := make([][]float32, len(texts))
		for i, item := range parsed.Data {
			out[i] = item.Embedding
		}
		return out, nil
	})
}

// Dimensions returns the embedding dimension.
func (e *HTTPEmbedder) Dimensions() int { return e.cfg.Dimensions }

// ModelName returns the model identifier.
func (e *HTTPEmbedder) ModelName() string { return e.cfg.Model }

// Available probes the endpoint with a cheap single-text request.
func (e *HTTPEmbedder) Available(ctx context.Context) bool {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return false
	}
	e.mu.RUnlock()

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := e.Embed(probeCtx, "ping")
	return err == nil
}

// Close marks the embedder closed; the underlying HTTP client needs no
// explicit teardown.
func (e *HTTPEmbedder) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

var _ Embedder = (*HTTPEmbedder)(nil)
