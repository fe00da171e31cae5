package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ragkb/ragkb/internal/errkit"
)

// defaultGrammarCacheSize bounds how many constructed tree-sitter Language
// handles are kept around at once. There's no semantic-equivalence or TTL
// requirement here like C1's caches — plain LRU is the correct policy, so
// the off-the-shelf cache is used directly instead of internal/cache.
const defaultGrammarCacheSize = 8

var languageConstructors = map[string]func() *sitter.Language{
	"go":         golang.GetLanguage,
	"typescript": typescript.GetLanguage,
	"tsx":        tsx.GetLanguage,
	"javascript": javascript.GetLanguage,
	"jsx":        javascript.GetLanguage,
	"python":     python.GetLanguage,
}

// grammarCache lazily constructs and caches tree-sitter Language handles by
// name, evicting the least recently used entry once full.
type grammarCache struct {
	cache *lru.Cache[string, *sitter.Language]
}

func newGrammarCache(size int) *grammarCache {
	c, err := lru.New[string, *sitter.Language](size)
	if err != nil {
		// Only returns an error for size <= 0, which never happens with
		// the constant above.
		panic(err)
	}
	return &grammarCache{cache: c}
}

func (g *grammarCache) get(language string) (*sitter.Language, bool) {
	if lang, ok := g.cache.Get(language); ok {
		return lang, true
	}
	ctor, ok := languageConstructors[language]
	if !ok {
		return nil, false
	}
	lang := ctor()
	g.cache.Add(language, lang)
	return lang, true
}

// CodeExtractor pulls top-level symbols out of a source file and flattens
// them into text the semantic chunker can split like any other document.
type CodeExtractor struct {
	registry  *LanguageRegistry
	grammars  *grammarCache
	extractor *symbolExtractor
}

// NewCodeExtractor constructs a CodeExtractor backed by the default
// language registry.
func NewCodeExtractor() *CodeExtractor {
	registry := DefaultRegistry()
	return &CodeExtractor{
		registry:  registry,
		grammars:  newGrammarCache(defaultGrammarCacheSize),
		extractor: newSymbolExtractor(registry),
	}
}

// LanguageForPath resolves path's extension to a registered language name.
func (c *CodeExtractor) LanguageForPath(path string) (string, bool) {
	cfg, ok := c.registry.GetByExtension(filepath.Ext(path))
	if !ok {
		return "", false
	}
	return cfg.Name, true
}

// Extract parses source as the language implied by path's extension and
// returns a flattened, chunker-ready text listing each top-level symbol's
// name, doc comment, and signature.
func (c *CodeExtractor) Extract(ctx context.Context, path string, source []byte) (string, error) {
	lang, ok := c.LanguageForPath(path)
	if !ok {
		return "", errkit.UnsupportedFormat(path, nil)
	}

	tsLang, ok := c.grammars.get(lang)
	if !ok {
		return "", errkit.UnsupportedFormat(path, nil)
	}

	p := newParser()
	defer p.close()

	tree, err := p.parse(ctx, source, tsLang, lang)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}

	symbols := c.extractor.extract(tree)
	return flattenSymbols(path, symbols), nil
}

// flattenSymbols renders symbols as a document: one section per symbol with
// its doc comment and signature, so the generic text chunker can treat a
// source file exactly like any other piece of prose.
func flattenSymbols(path string, symbols []*Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n\n", path)

	for _, s := range symbols {
		fmt.Fprintf(&b, "%s %s (lines %d-%d)\n", s.Type, s.Name, s.StartLine, s.EndLine)
		if s.DocComment != "" {
			b.WriteString(s.DocComment)
			b.WriteString("\n")
		}
		if s.Signature != "" {
			b.WriteString(s.Signature)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
