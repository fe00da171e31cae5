// Package retrieval post-processes the over-fetched raw results returned by
// the vector store into a ranked, deduplicated top_k list (spec.md §4.7).
package retrieval

// RawResult is one hit from the vector store, before post-processing.
type RawResult struct {
	ChunkID  string
	Content  string
	Distance float32
	KBID     string
	Metadata map[string]string
}

// Breakdown records how a Result's combined score was derived, kept for
// debugging per spec.md §4.7 step 5.
type Breakdown struct {
	VectorScore       float64
	KeywordScore      float64
	CompletenessScore float64
	CombinedScore     float64
}

// Result is a single post-processed, ranked hit.
type Result struct {
	ChunkID   string
	Content   string
	Distance  float32
	Metadata  map[string]string
	Breakdown Breakdown
}

// Config tunes the post-processing pipeline.
type Config struct {
	TopK                int
	SimilarityThreshold float32 // max acceptable raw distance
}

// DefaultSimilarityThreshold is sensible for L2 distance on 1536-d
// OpenAI-family embeddings (spec.md §4.7 step 2) — too tight a threshold
// empties the result set, a known footgun.
const DefaultSimilarityThreshold = 10.0
