package embed

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ProviderType identifies an embedding backend.
type ProviderType string

const (
	// ProviderHTTP calls an HTTP embedding endpoint speaking the
	// {model, input} -> {data: [{index, embedding}]} contract.
	ProviderHTTP ProviderType = "http"

	// ProviderStatic uses hash-based embeddings (no network, fallback).
	ProviderStatic ProviderType = "static"
)

// NewEmbedder creates an embedder for provider, wrapped with the embedding
// cache unless disabled via RAGKB_EMBED_CACHE=false.
//
// The RAGKB_EMBEDDER environment variable overrides provider when set.
func NewEmbedder(ctx context.Context, provider ProviderType, httpCfg HTTPConfig) (Embedder, error) {
	if envProvider := os.Getenv("RAGKB_EMBEDDER"); envProvider != "" {
		provider = ParseProvider(envProvider)
	}

	var embedder Embedder
	var err error
	switch provider {
	case ProviderStatic:
		embedder = NewStaticEmbedder()
	default:
		embedder, err = NewHTTPEmbedder(httpCfg)
	}
	if err != nil {
		return nil, err
	}

	if !isCacheDisabled() {
		embedder = NewCachedEmbedderWithDefaults(embedder)
	}
	return embedder, nil
}

func isCacheDisabled() bool {
	v := strings.ToLower(os.Getenv("RAGKB_EMBED_CACHE"))
	return v == "false" || v == "0" || v == "off" || v == "disabled"
}

// ParseProvider converts a string to ProviderType, defaulting to HTTP.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(s) {
	case "static":
		return ProviderStatic
	default:
		return ProviderHTTP
	}
}

// String returns the string representation of ProviderType.
func (p ProviderType) String() string { return string(p) }

// ValidProviders returns all valid provider names.
func ValidProviders() []string {
	return []string{string(ProviderHTTP), string(ProviderStatic)}
}

// IsValidProvider checks if a provider name is valid.
func IsValidProvider(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range ValidProviders() {
		if lower == p {
			return true
		}
	}
	return false
}

// EmbedderInfo describes a constructed embedder for diagnostics.
type EmbedderInfo struct {
	Provider   ProviderType
	Model      string
	Dimensions int
	Available  bool
}

// GetInfo inspects embedder, unwrapping CachedEmbedder to find the
// underlying provider type.
func GetInfo(ctx context.Context, embedder Embedder) EmbedderInfo {
	info := EmbedderInfo{
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		Available:  embedder.Available(ctx),
	}

	inner := embedder
	if cached, ok := embedder.(*CachedEmbedder); ok {
		inner = cached.inner
	}

	switch inner.(type) {
	case *HTTPEmbedder:
		info.Provider = ProviderHTTP
	default:
		info.Provider = ProviderStatic
	}
	return info
}

// MustNewEmbedder creates an embedder and panics on failure. Use only in
// tests or initialization code where failure is fatal.
func MustNewEmbedder(ctx context.Context, provider ProviderType, httpCfg HTTPConfig) Embedder {
	embedder, err := NewEmbedder(ctx, provider, httpCfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create embedder: %v", err))
	}
	return embedder
}
