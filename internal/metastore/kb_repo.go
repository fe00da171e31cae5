package metastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ragkb/ragkb/internal/errkit"
)

// CreateKB inserts a new knowledge base. Name must be unique.
func (s *Store) CreateKB(ctx context.Context, kb *KnowledgeBase) error {
	tags, err := json.Marshal(kb.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	now := nowUTC()
	kb.CreatedAt, kb.UpdatedAt = now, now

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO knowledge_bases (id, name, description, tags, created_at, updated_at, document_count, total_chunks)
			VALUES (?, ?, ?, ?, ?, ?, 0, 0)`,
			kb.ID, kb.Name, kb.Description, string(tags), kb.CreatedAt, kb.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert knowledge base: %w", err)
		}
		return nil
	})
}

// GetKB returns a knowledge base by ID, or NotFound.
func (s *Store) GetKB(ctx context.Context, id string) (*KnowledgeBase, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, tags, created_at, updated_at, document_count, total_chunks
		FROM knowledge_bases WHERE id = ?`, id)
	kb, err := scanKB(row)
	if err != nil {
		return nil, wrapNotFound(err, "knowledge_base", id)
	}
	return kb, nil
}

// ListKBs returns every knowledge base, ordered by creation time.
func (s *Store) ListKBs(ctx context.Context) ([]*KnowledgeBase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, tags, created_at, updated_at, document_count, total_chunks
		FROM knowledge_bases ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}
	defer rows.Close()

	var out []*KnowledgeBase
	for rows.Next() {
		kb, err := scanKB(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, kb)
	}
	return out, rows.Err()
}

// DeleteKB removes a knowledge base row. Cascading documents/chunks are
// removed by foreign key ON DELETE CASCADE; callers are responsible for the
// vector store and on-disk side effects (spec.md §3's cascade contract).
func (s *Store) DeleteKB(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM knowledge_bases WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete knowledge base: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return errkit.NotFound("knowledge_base", id)
		}
		return nil
	})
}

// bumpKBCounters updates document_count/total_chunks inside an existing
// transaction, preserving invariant I1 (spec.md §8).
func bumpKBCounters(ctx context.Context, tx *sql.Tx, kbID string, docDelta, chunkDelta int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE knowledge_bases
		SET document_count = document_count + ?, total_chunks = total_chunks + ?, updated_at = ?
		WHERE id = ?`, docDelta, chunkDelta, nowUTC(), kbID)
	if err != nil {
		return fmt.Errorf("bump kb counters: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanKB(row scannable) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	var tags string
	if err := row.Scan(&kb.ID, &kb.Name, &kb.Description, &tags, &kb.CreatedAt, &kb.UpdatedAt, &kb.DocumentCount, &kb.TotalChunks); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &kb.Tags); err != nil {
		kb.Tags = nil
	}
	return &kb, nil
}
