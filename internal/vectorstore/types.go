// Package vectorstore persists chunk vectors alongside their envelopes in an
// HNSW graph, with lazy tombstone deletion and an explicit compaction path.
package vectorstore

import "context"

// Envelope is the payload carried by a vector record: the chunk it embeds,
// its text (kept here per the duplication decision recorded in DESIGN.md),
// and a free-form metadata bag (kb_id, doc_id, chunk_index, filename, ...).
type Envelope struct {
	ChunkID  string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// Result is a single search hit. Score is the raw distance; smaller is
// better. Callers that need a similarity transform do it themselves.
type Result struct {
	ChunkID  string
	Content  string
	Score    float32
	Metadata map[string]string
}

// DistanceMetric selects the HNSW distance function.
type DistanceMetric string

const (
	MetricCosine DistanceMetric = "cosine"
	MetricL2     DistanceMetric = "l2"
)

// Config configures a Store instance.
type Config struct {
	Dimensions      int
	MaxElements     int
	EfConstruction  int
	EfSearch        int
	M               int
	DistanceMetric  DistanceMetric
	RebuildThreshold int
}

// Store is the C4 contract: persistent vector index with tombstones,
// metadata-filtered search and deletion, and an explicit compaction path.
type Store interface {
	// Add inserts N (text, vector, metadata) triples and returns their
	// chunk IDs in input order. Fails atomically with CapacityExhausted if
	// N exceeds the remaining headroom under max_elements.
	Add(ctx context.Context, items []AddItem) ([]string, error)

	// Search returns at most k results ordered by ascending distance,
	// never including a tombstoned label.
	Search(ctx context.Context, query []float32, k int) ([]Result, error)

	// Delete tombstones the vector for chunkID. Returns NotFound if absent.
	Delete(ctx context.Context, chunkID string) error

	// DeleteWhere tombstones every envelope whose metadata matches filter
	// on every key (equality). Returns the number of matches tombstoned.
	DeleteWhere(ctx context.Context, filter map[string]string) (int, error)

	// Clear tombstones everything and resets state to empty.
	Clear(ctx context.Context) error

	// Rebuild performs compaction: a fresh index is built from the live
	// set under dense zero-based labels and persisted atomically.
	Rebuild(ctx context.Context) error

	// Len returns the live vector count (|label map| - |tombstones|).
	Len() int

	// DeletionCount returns the current tombstone count since last rebuild.
	DeletionCount() int

	Close() error
}

// AddItem is one input record to Store.Add. ChunkID is optional; if empty,
// the store synthesises one.
type AddItem struct {
	ChunkID  string
	Vector   []float32
	Content  string
	Metadata map[string]string
}
