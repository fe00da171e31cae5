package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ragkb/ragkb/internal/errkit"
)

// Registry dispatches on a file's extension to the extractor that can
// flatten it into chunker-ready text (spec.md §4.6 step 2). An extension
// with no registered extractor yields an errkit.UnsupportedFormat error.
type Registry struct {
	text *TextExtractor
	code *CodeExtractor
}

// NewRegistry constructs a Registry with the default text and code
// extractors.
func NewRegistry() *Registry {
	return &Registry{
		text: NewTextExtractor(),
		code: NewCodeExtractor(),
	}
}

// Extract flattens content into text ready for chunk.Split, dispatching on
// path's extension.
func (r *Registry) Extract(ctx context.Context, path string, content []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return r.text.ExtractText(content), nil
	case ".md", ".markdown":
		return r.text.ExtractMarkdown(content), nil
	default:
		if _, ok := r.code.LanguageForPath(path); ok {
			return r.code.Extract(ctx, path, content)
		}
		return "", errkit.UnsupportedFormat(path, nil)
	}
}

// SupportedExtensions lists every extension this registry can extract.
func (r *Registry) SupportedExtensions() []string {
	exts := []string{".txt", ".md", ".markdown"}
	return append(exts, r.code.registry.SupportedExtensions()...)
}
