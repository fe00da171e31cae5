// Package kb implements knowledge-base lifecycle operations that span the
// metadata store, the vector store, and on-disk source copies: creation,
// listing, and the best-effort cascade delete (spec.md §3).
package kb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ragkb/ragkb/internal/metastore"
	"github.com/ragkb/ragkb/internal/vectorstore"
)

// Service wires the stores a KB lifecycle op touches.
type Service struct {
	Meta        *metastore.Store
	VectorStore vectorstore.Store
	TempDir     string
	StableDir   string
	Logger      *slog.Logger
}

// New builds a Service. logger defaults to slog.Default() when nil.
func New(meta *metastore.Store, vecStore vectorstore.Store, tempDir, stableDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Meta: meta, VectorStore: vecStore, TempDir: tempDir, StableDir: stableDir, Logger: logger}
}

// Create registers a new knowledge base with a generated ID.
func (s *Service) Create(ctx context.Context, name, description string, tags []string) (*metastore.KnowledgeBase, error) {
	k := &metastore.KnowledgeBase{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Tags:        tags,
	}
	if err := s.Meta.CreateKB(ctx, k); err != nil {
		return nil, fmt.Errorf("create knowledge base: %w", err)
	}
	return k, nil
}

// Get returns one knowledge base by ID.
func (s *Service) Get(ctx context.Context, id string) (*metastore.KnowledgeBase, error) {
	return s.Meta.GetKB(ctx, id)
}

// List returns every knowledge base.
func (s *Service) List(ctx context.Context) ([]*metastore.KnowledgeBase, error) {
	return s.Meta.ListKBs(ctx)
}

// Delete destroys a knowledge base: its vectors, source file copies, and
// relational row. Each sub-step is idempotent and best-effort except the
// final relational delete, which is the source of truth and must succeed
// (spec.md §3: "failure of a sub-step is logged but must not leave the
// relational record alive" — so relational delete happens last).
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.VectorStore.DeleteWhere(ctx, map[string]string{"kb_id": id}); err != nil {
		s.Logger.Warn("vector deletion failed during kb cascade, orphans remain until rebuild",
			slog.String("kb_id", id), slog.String("error", err.Error()))
	}

	for _, dir := range []string{filepath.Join(s.TempDir, id), filepath.Join(s.StableDir, id)} {
		if err := os.RemoveAll(dir); err != nil {
			s.Logger.Warn("source copy cleanup failed during kb cascade",
				slog.String("kb_id", id), slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}

	if err := s.Meta.DeleteKB(ctx, id); err != nil {
		return fmt.Errorf("delete knowledge base %s: %w", id, err)
	}
	return nil
}
