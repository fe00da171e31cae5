// Package chunk splits cleaned document text into overlapping, deduplicated
// chunks sized for embedding and retrieval (spec.md §4.3).
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

type taggedSentence struct {
	text         string
	newParagraph bool
}

// Split runs the full chunking pipeline: language probe, paragraph/sentence
// split, greedy pack, sliding-window overlap, dedup, and size validation.
func Split(text string, cfg Config) []*Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = DefaultMinChunkSize
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lang := probeLanguage(text)
	sentences := tokenizeParagraphs(text, lang)
	packed := greedyPack(sentences, cfg.ChunkSize)
	withOverlap := applyOverlap(packed, cfg.ChunkOverlap)
	deduped := dedupe(withOverlap)
	validated := validate(deduped, cfg.MinChunkSize)

	chunks := make([]*Chunk, 0, len(validated))
	for i, content := range validated {
		chunks = append(chunks, &Chunk{
			ID:          contentHash(content),
			Content:     content,
			ContentType: ContentTypeText,
			Index:       i,
		})
	}
	return chunks
}

// probeLanguage samples up to 2000 runes and classifies the text as "zh"
// (CJK-dominant), "en" (Latin-dominant), or "mixed", which selects the
// sentence-boundary pattern used to split paragraphs into sentences.
func probeLanguage(text string) string {
	runes := []rune(text)
	if len(runes) > 2000 {
		runes = runes[:2000]
	}

	var cjk, latin int
	for _, r := range runes {
		switch {
		case unicode.Is(unicode.Han, r):
			cjk++
		case unicode.IsLetter(r) && r < unicode.MaxASCII:
			latin++
		}
	}

	total := cjk + latin
	if total == 0 {
		return "en"
	}
	ratio := float64(cjk) / float64(total)
	switch {
	case ratio > 0.6:
		return "zh"
	case ratio < 0.1:
		return "en"
	default:
		return "mixed"
	}
}

// tokenizeParagraphs splits text into paragraphs on blank lines, then each
// paragraph into sentences per lang's boundary rule, tagging the first
// sentence of every paragraph after the first so greedy packing can insert
// a paragraph break instead of a plain space between them.
func tokenizeParagraphs(text string, lang string) []taggedSentence {
	paragraphs := strings.Split(text, "\n\n")

	var out []taggedSentence
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for i, s := range splitSentences(para, lang) {
			out = append(out, taggedSentence{text: s, newParagraph: i == 0 && len(out) > 0})
		}
	}
	return out
}

func isZhBoundary(r rune) bool {
	return r == '。' || r == '！' || r == '？' || r == '…'
}

func isEnBoundary(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences splits a single paragraph into sentences. Trailing
// punctuation stays attached to the sentence it ends.
func splitSentences(para string, lang string) []string {
	runes := []rune(para)
	var sentences []string
	var cur []rune

	for i, r := range runes {
		cur = append(cur, r)

		boundary := false
		switch lang {
		case "zh":
			boundary = isZhBoundary(r)
		case "en":
			boundary = isEnBoundary(r) && (i+1 >= len(runes) || unicode.IsSpace(runes[i+1]))
		default: // mixed
			boundary = isZhBoundary(r) || (isEnBoundary(r) && (i+1 >= len(runes) || unicode.IsSpace(runes[i+1])))
		}

		if boundary {
			if s := strings.TrimSpace(string(cur)); s != "" {
				sentences = append(sentences, s)
			}
			cur = nil
		}
	}
	if s := strings.TrimSpace(string(cur)); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// greedyPack appends sentences into the current chunk until the next
// sentence would overflow chunkSize, at which point it emits the current
// chunk and starts a new one with that sentence.
func greedyPack(sentences []taggedSentence, chunkSize int) []string {
	var chunks []string
	var cur strings.Builder

	for _, s := range sentences {
		sep := " "
		if s.newParagraph {
			sep = "\n\n"
		}

		addLen := len(s.text)
		if cur.Len() > 0 {
			addLen += len(sep)
		}

		if cur.Len() > 0 && cur.Len()+addLen > chunkSize {
			chunks = append(chunks, cur.String())
			cur.Reset()
			cur.WriteString(s.text)
			continue
		}

		if cur.Len() > 0 {
			cur.WriteString(sep)
		}
		cur.WriteString(s.text)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// applyOverlap prepends, to every chunk after the first, the trailing
// min(chunkOverlap, len(prev)/3) characters of the chunk emitted just
// before it (spec.md §4.3's sliding window).
func applyOverlap(chunks []string, chunkOverlap int) []string {
	if len(chunks) < 2 {
		return chunks
	}

	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		prevRunes := []rune(out[i-1])
		overlapLen := chunkOverlap
		if maxOverlap := len(prevRunes) / 3; overlapLen > maxOverlap {
			overlapLen = maxOverlap
		}
		if overlapLen <= 0 {
			out[i] = chunks[i]
			continue
		}
		prefix := string(prevRunes[len(prevRunes)-overlapLen:])
		out[i] = prefix + chunks[i]
	}
	return out
}

// dedupe drops any chunk whose case-and-whitespace-normalized content
// hashes to one already seen, keeping the first occurrence.
func dedupe(chunks []string) []string {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		key := normalizeForDedup(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func normalizeForDedup(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// validate discards chunks below minChunkSize, unless doing so would drop
// the total to zero, in which case the input is returned unmodified.
func validate(chunks []string, minChunkSize int) []string {
	if len(chunks) == 0 {
		return chunks
	}

	filtered := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if len(c) >= minChunkSize {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return chunks
	}
	return filtered
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}
