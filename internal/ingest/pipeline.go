package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ragkb/ragkb/internal/chunk"
	"github.com/ragkb/ragkb/internal/errkit"
	"github.com/ragkb/ragkb/internal/metastore"
	"github.com/ragkb/ragkb/internal/vectorstore"
)

// IngestFile runs spec.md §4.6 steps 1-7 against one file: preserve the
// source, extract, chunk, embed, and index, all in one document's worth of
// atomicity. A failure at any step after the source copy leaves the KB
// exactly as it was before the call.
func (p *Pipeline) IngestFile(ctx context.Context, kbID, path string, opts Options) (*Summary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errkit.Wrap(errkit.ErrCodeInternal, fmt.Errorf("read %s: %w", path, err))
	}

	sourcePath, err := p.preserveSource(kbID, path, content, opts)
	if err != nil {
		return nil, err
	}

	text, err := p.Extractor.Extract(ctx, path, content)
	if err != nil {
		return nil, err
	}

	chunks := chunk.Split(text, p.ChunkConfig)
	if len(chunks) == 0 {
		return nil, errkit.New(errkit.ErrCodeInternal, "extraction produced no chunkable content", nil)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := p.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, errkit.Wrap(errkit.ErrCodeEmbeddingUnavailable, err)
	}

	docID := uuid.NewString()
	filename := filepath.Base(path)

	items := make([]vectorstore.AddItem, len(chunks))
	for i, c := range chunks {
		items[i] = vectorstore.AddItem{
			Vector:   vectors[i],
			Content:  c.Content,
			Metadata: chunkMetadata(kbID, docID, filename, i, opts.Metadata),
		}
	}

	chunkIDs, err := p.VectorStore.Add(ctx, items)
	if err != nil {
		return nil, err
	}

	if opts.PersistChunkText {
		p.persistChunkText(sourcePath, chunks)
	}

	metaChunks := make([]*metastore.Chunk, len(chunks))
	for i, c := range chunks {
		metaChunks[i] = &metastore.Chunk{
			ID:         chunkIDs[i],
			DocumentID: docID,
			KBID:       kbID,
			Content:    c.Content,
			ChunkIndex: i,
			VectorID:   chunkIDs[i],
			Metadata:   chunkMetadata(kbID, docID, filename, i, opts.Metadata),
		}
	}

	doc := &metastore.Document{
		ID:       docID,
		KBID:     kbID,
		Filename: filename,
		FilePath: sourcePath,
	}

	if err := p.MetaStore.CreateDocument(ctx, doc, metaChunks); err != nil {
		if _, delErr := p.VectorStore.DeleteWhere(ctx, map[string]string{"doc_id": docID}); delErr != nil {
			p.Logger.Error("rollback after failed document insert also failed",
				"doc_id", docID, "rollback_error", delErr, "original_error", err)
		}
		return nil, err
	}

	p.Logger.Info("document ingested", "kb_id", kbID, "doc_id", docID, "filename", filename, "chunks", len(chunks))

	return &Summary{
		DocumentID: docID,
		KBID:       kbID,
		Filename:   filename,
		ChunkCount: len(chunks),
		SourcePath: sourcePath,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

// preserveSource writes a timestamped copy of the source under the KB's
// temp directory unconditionally (step 1), then, if requested, a second
// durable copy under StableDir.
func (p *Pipeline) preserveSource(kbID string, path string, content []byte, opts Options) (string, error) {
	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	tempPath := filepath.Join(p.TempDir, kbID, stamp+"-"+filepath.Base(path))
	if err := writeFile(tempPath, content); err != nil {
		return "", errkit.Wrap(errkit.ErrCodeInternal, fmt.Errorf("preserve source copy: %w", err))
	}

	if !opts.PersistSourceCopy || p.StableDir == "" {
		return tempPath, nil
	}

	stablePath := filepath.Join(p.StableDir, kbID, filepath.Base(path))
	if err := writeFile(stablePath, content); err != nil {
		return "", errkit.Wrap(errkit.ErrCodeInternal, fmt.Errorf("persist stable source copy: %w", err))
	}
	return stablePath, nil
}

// persistChunkText writes each chunk's text alongside the source copy.
// Best-effort: a failure here does not fail the ingest, since the chunks
// are already durable in C4/C5.
func (p *Pipeline) persistChunkText(sourcePath string, chunks []*chunk.Chunk) {
	dir := sourcePath + ".chunks"
	for i, c := range chunks {
		name := filepath.Join(dir, fmt.Sprintf("%04d-%s.txt", i, c.ID))
		if err := writeFile(name, []byte(c.Content)); err != nil {
			p.Logger.Warn("failed to persist chunk text", "path", name, "error", err)
		}
	}
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func chunkMetadata(kbID, docID, filename string, index int, userMetadata map[string]string) map[string]string {
	md := map[string]string{
		"kb_id":       kbID,
		"doc_id":      docID,
		"chunk_index": strconv.Itoa(index),
		"filename":    filename,
	}
	for k, v := range userMetadata {
		md[k] = v
	}
	return md
}
