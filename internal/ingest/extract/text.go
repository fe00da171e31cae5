package extract

import (
	"regexp"
	"strings"
)

var frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.+?)\n---\n*`)

// TextExtractor handles the plain-prose formats: .txt is passed through
// unchanged, .md has any leading YAML frontmatter block stripped (the
// generic chunker has no use for it and it would otherwise pollute the
// first chunk's content).
type TextExtractor struct{}

// NewTextExtractor constructs a TextExtractor. It is stateless.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractText returns content unchanged as a string.
func (e *TextExtractor) ExtractText(content []byte) string {
	return string(content)
}

// ExtractMarkdown strips a leading frontmatter block, if present, and
// returns the remaining Markdown verbatim.
func (e *TextExtractor) ExtractMarkdown(content []byte) string {
	text := string(content)
	if m := frontmatterPattern.FindString(text); m != "" {
		text = strings.TrimPrefix(text, m)
	}
	return text
}
