package metastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// insertChunksLocked bulk-inserts chunks inside an already-open transaction.
func insertChunksLocked(ctx context.Context, tx *sql.Tx, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO text_chunks (id, document_id, kb_id, content, chunk_index, vector_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	now := nowUTC()
	for _, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}
		c.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.KBID, c.Content, c.ChunkIndex, c.VectorID, string(meta), c.CreatedAt); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

// ListChunksByDocument returns every chunk belonging to documentID, ordered
// by chunk_index.
func (s *Store) ListChunksByDocument(ctx context.Context, documentID string) ([]*Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, kb_id, content, chunk_index, vector_id, metadata, created_at
		FROM text_chunks WHERE document_id = ? ORDER BY chunk_index ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var out []*Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteChunksByDocument removes every chunk belonging to documentID. Used
// by the ingest pipeline's rollback path (spec.md §4.6 failure semantics).
func (s *Store) DeleteChunksByDocument(ctx context.Context, documentID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM text_chunks WHERE document_id = ?`, documentID)
		if err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		return nil
	})
}

func scanChunk(row scannable) (*Chunk, error) {
	var c Chunk
	var meta string
	if err := row.Scan(&c.ID, &c.DocumentID, &c.KBID, &c.Content, &c.ChunkIndex, &c.VectorID, &meta, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
		c.Metadata = nil
	}
	return &c, nil
}
