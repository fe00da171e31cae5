// Package ingest drives one document from raw bytes on disk through
// extraction, chunking, embedding, and indexing, all-or-nothing per
// document (spec.md §4.6).
package ingest

import (
	"log/slog"
	"time"

	"github.com/ragkb/ragkb/internal/chunk"
	"github.com/ragkb/ragkb/internal/embed"
	"github.com/ragkb/ragkb/internal/ingest/extract"
	"github.com/ragkb/ragkb/internal/metastore"
	"github.com/ragkb/ragkb/internal/vectorstore"
)

// Options carries the per-call flags spec.md §4.6 lists alongside kb_id and
// the file path.
type Options struct {
	Metadata          map[string]string // merged into every chunk's metadata envelope
	PersistSourceCopy bool              // also copy the source to a stable, non-temp location
	PersistChunkText  bool              // also write each chunk's text to disk next to the source copy
}

// Summary is the document record returned on successful ingest (spec.md
// §4.6 step 7).
type Summary struct {
	DocumentID string
	KBID       string
	Filename   string
	ChunkCount int
	SourcePath string
	CreatedAt  time.Time
}

// Pipeline wires together the extractor, chunker, embedder, vector store
// and metadata store that one ingest call drives.
type Pipeline struct {
	Extractor   *extract.Registry
	ChunkConfig chunk.Config
	Embedder    embed.Embedder
	VectorStore vectorstore.Store
	MetaStore   *metastore.Store
	Logger      *slog.Logger

	// TempDir is the KB-scoped staging directory step 1 preserves the raw
	// source copy under. StableDir is where PersistSourceCopy additionally
	// writes a durable copy.
	TempDir   string
	StableDir string
}

// NewPipeline builds a Pipeline with a default extractor registry and
// chunker configuration.
func NewPipeline(embedder embed.Embedder, store vectorstore.Store, meta *metastore.Store, tempDir, stableDir string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Extractor:   extract.NewRegistry(),
		ChunkConfig: chunk.DefaultConfig(),
		Embedder:    embedder,
		VectorStore: store,
		MetaStore:   meta,
		Logger:      logger,
		TempDir:     tempDir,
		StableDir:   stableDir,
	}
}
