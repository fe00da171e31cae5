package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextExtractor_ExtractText_PassesThroughUnchanged(t *testing.T) {
	e := NewTextExtractor()
	assert.Equal(t, "hello\nworld", e.ExtractText([]byte("hello\nworld")))
}

func TestTextExtractor_ExtractMarkdown_StripsFrontmatter(t *testing.T) {
	e := NewTextExtractor()
	input := "---\ntitle: Doc\n---\n\n# Heading\n\nBody text.\n"
	out := e.ExtractMarkdown([]byte(input))
	assert.NotContains(t, out, "title: Doc")
	assert.Contains(t, out, "# Heading")
}

func TestTextExtractor_ExtractMarkdown_NoFrontmatterUnchanged(t *testing.T) {
	e := NewTextExtractor()
	input := "# Heading\n\nBody text.\n"
	assert.Equal(t, input, e.ExtractMarkdown([]byte(input)))
}
