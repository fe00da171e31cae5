package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/ragkb/ragkb/internal/errkit"
)

// Client is the C9 generate-node contract: a non-streaming call and a
// streaming call that concatenates deltas into the final text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request, onChunk func(Chunk)) (string, error)
	Close() error
}

// HTTPClient calls an OpenAI-style chat-completions endpoint (spec.md §6).
type HTTPClient struct {
	cfg     Config
	client  *http.Client
	breaker *errkit.CircuitBreaker

	mu     sync.RWMutex
	closed bool
}

type wireMessage struct {
	Role    Role            `json:"role"`
	Content json.RawMessage `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type streamChoice struct {
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

type streamResponse struct {
	Choices []streamChoice `json:"choices"`
}

// NewHTTPClient constructs an HTTPClient from cfg.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.Endpoint == "" {
		return nil, errkit.New(errkit.ErrCodeLLMUnavailable, "llm endpoint not configured", nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &HTTPClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: errkit.NewCircuitBreaker("llm-provider"),
	}, nil
}

func buildWireMessages(msgs []Message) ([]wireMessage, error) {
	out := make([]wireMessage, len(msgs))
	for i, m := range msgs {
		var raw json.RawMessage
		var err error
		if len(m.Parts) == 0 {
			raw, err = json.Marshal(m.Text)
		} else {
			raw, err = json.Marshal(m.Parts)
		}
		if err != nil {
			return nil, fmt.Errorf("marshal message %d content: %w", i, err)
		}
		out[i] = wireMessage{Role: m.Role, Content: raw}
	}
	return out, nil
}

func (c *HTTPClient) buildBody(req Request, stream bool) ([]byte, error) {
	messages, err := buildWireMessages(req.Messages)
	if err != nil {
		return nil, err
	}
	return json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	})
}

func (c *HTTPClient) newHTTPRequest(ctx context.Context, body []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	return httpReq, nil
}

func (c *HTTPClient) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Complete issues a non-streaming chat completion and returns its content,
// retrying transient failures up to MaxRetries with exponential backoff
// (spec.md §5).
func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.isClosed() {
		return "", errkit.New(errkit.ErrCodeLLMUnavailable, "llm client is closed", nil)
	}

	body, err := c.buildBody(req, false)
	if err != nil {
		return "", err
	}

	retryCfg := errkit.DefaultRetryConfig()
	retryCfg.MaxRetries = c.cfg.MaxRetries
	retryCfg.Jitter = true

	return errkit.CircuitExecuteWithResult(c.breaker, func() (string, error) {
		return errkit.RetryWithResult(ctx, retryCfg, func() (string, error) {
			httpReq, err := c.newHTTPRequest(ctx, body)
			if err != nil {
				return "", err
			}

			resp, err := c.client.Do(httpReq)
			if err != nil {
				return "", errkit.Wrap(errkit.ErrCodeLLMUnavailable, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return "", errkit.New(errkit.ErrCodeLLMUnavailable,
					fmt.Sprintf("llm provider returned status %d", resp.StatusCode), nil)
			}

			var parsed chatResponse
			if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
				return "", errkit.Wrap(errkit.ErrCodeLLMUnavailable, err)
			}
			if len(parsed.Choices) == 0 {
				return "", nil
			}
			return parsed.Choices[0].Message.Content, nil
		})
	}, func() (string, error) {
		return "", errkit.New(errkit.ErrCodeLLMUnavailable, "llm provider circuit open", errkit.ErrCircuitOpen)
	})
}

// Stream issues a streaming chat completion, invoking onChunk for every
// delta fragment as it arrives, and returns the concatenated final text.
func (c *HTTPClient) Stream(ctx context.Context, req Request, onChunk func(Chunk)) (string, error) {
	if c.isClosed() {
		return "", errkit.New(errkit.ErrCodeLLMUnavailable, "llm client is closed", nil)
	}

	body, err := c.buildBody(req, true)
	if err != nil {
		return "", err
	}

	httpReq, err := c.newHTTPRequest(ctx, body)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errkit.Wrap(errkit.ErrCodeLLMUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errkit.New(errkit.ErrCodeLLMUnavailable,
			fmt.Sprintf("llm provider returned status %d", resp.StatusCode), nil)
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk streamResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onChunk != nil {
			onChunk(Chunk{Delta: delta})
		}
	}
	if err := scanner.Err(); err != nil {
		return sb.String(), errkit.Wrap(errkit.ErrCodeLLMUnavailable, err)
	}
	if onChunk != nil {
		onChunk(Chunk{Done: true})
	}
	return sb.String(), nil
}

// Close marks the client closed.
func (c *HTTPClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

var _ Client = (*HTTPClient)(nil)
