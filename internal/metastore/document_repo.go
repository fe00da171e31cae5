package metastore

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateDocument inserts a document row, its chunk rows, and bumps the
// owning KB's counters in one transaction (spec.md §4.5/§4.6 step 6).
func (s *Store) CreateDocument(ctx context.Context, doc *Document, chunks []*Chunk) error {
	doc.CreatedAt = nowUTC()
	doc.ChunkCount = len(chunks)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, kb_id, filename, file_path, chunk_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			doc.ID, doc.KBID, doc.Filename, doc.FilePath, doc.ChunkCount, doc.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}

		if err := insertChunksLocked(ctx, tx, chunks); err != nil {
			return err
		}

		return bumpKBCounters(ctx, tx, doc.KBID, 1, len(chunks))
	})
}

// GetDocument returns a document by ID, or NotFound.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kb_id, filename, file_path, chunk_count, created_at
		FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, wrapNotFound(err, "document", id)
	}
	return doc, nil
}

// ListDocumentsByKB returns every document belonging to kbID.
func (s *Store) ListDocumentsByKB(ctx context.Context, kbID string) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kb_id, filename, file_path, chunk_count, created_at
		FROM documents WHERE kb_id = ? ORDER BY created_at ASC`, kbID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document, its chunks (cascade), and decrements
// the owning KB's counters, all in one transaction. Second call on an
// already-deleted document is a no-op returning NotFound (spec.md §8
// round-trip law).
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var kbID string
		var chunkCount int
		err := tx.QueryRowContext(ctx, `SELECT kb_id, chunk_count FROM documents WHERE id = ?`, id).
			Scan(&kbID, &chunkCount)
		if err != nil {
			return wrapNotFound(err, "document", id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}

		return bumpKBCounters(ctx, tx, kbID, -1, -chunkCount)
	})
}

func scanDocument(row scannable) (*Document, error) {
	var d Document
	if err := row.Scan(&d.ID, &d.KBID, &d.Filename, &d.FilePath, &d.ChunkCount, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
