// Package normalize canonicalises a raw question into a normalized text,
// sorted keyword set, and semantic hash, so lexical variants of the same
// question can share one cache entry (spec.md §3, §4.11).
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"unicode"
)

// Result is the canonicalised form of a question.
type Result struct {
	NormalizedText string
	Keywords       []string
	SemanticHash   string
}

// synonyms maps a variant token to its canonical form. Kept small and
// explicit per spec.md §4.11's "fixed small table".
var synonyms = map[string]string{
	"啥":  "什么",
	"怎样": "怎么",
	"咋":  "怎么",
	"啥样": "什么样",
}

var stopwords = map[string]struct{}{
	"的": {}, "了": {}, "是": {}, "在": {}, "和": {}, "就": {}, "都": {}, "吗": {}, "呢": {}, "吧": {},
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "of": {}, "to": {}, "in": {}, "and": {}, "or": {},
	"for": {}, "on": {}, "with": {}, "what": {}, "how": {}, "do": {}, "does": {}, "it": {}, "this": {}, "that": {},
}

// Normalize implements spec.md §4.11's pipeline exactly: lowercase+trim,
// synonym substitution, punctuation stripping, tokenization, stopword and
// short-token removal, sort+dedupe, then hash the colon-joined keywords.
func Normalize(raw string) Result {
	text := strings.ToLower(strings.TrimSpace(raw))
	text = substituteSynonyms(text)
	text = stripPunctuation(text)

	tokens := strings.Fields(text)
	keywords := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if len([]rune(tok)) <= 1 {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	sort.Strings(keywords)

	return Result{
		NormalizedText: text,
		Keywords:       keywords,
		SemanticHash:   hashKeywords(keywords),
	}
}

func substituteSynonyms(text string) string {
	for variant, canonical := range synonyms {
		text = strings.ReplaceAll(text, variant, canonical)
	}
	return text
}

func stripPunctuation(text string) string {
	var sb strings.Builder
	for _, r := range text {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func hashKeywords(keywords []string) string {
	sum := sha256.Sum256([]byte(strings.Join(keywords, ":")))
	return hex.EncodeToString(sum[:])
}
