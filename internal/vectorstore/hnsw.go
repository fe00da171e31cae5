package vectorstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"
	"github.com/google/uuid"

	"github.com/ragkb/ragkb/internal/errkit"
)

// HNSWStore implements Store on top of coder/hnsw, adding the tombstone set,
// envelope map and compaction contract spec'd for this engine (the teacher's
// HNSWStore only ever lazily orphans keys and never rebuilds).
type HNSWStore struct {
	mu  sync.RWMutex
	dir string

	graph  *hnsw.Graph[uint64]
	config Config

	meta    map[uint64]Envelope
	byChunk map[string]uint64
	deleted map[uint64]struct{}

	nextLabel     uint64
	deletionCount int

	lock   *fileLock
	logger *slog.Logger
}

type onDiskMetadata struct {
	Metadata      map[uint64]Envelope `json:"metadata"`
	DeletionCount int                  `json:"deletion_count"`
	DeletedLabels []uint64             `json:"deleted_labels"`
}

const (
	indexFileName = "hnsw.bin"
	metaFileName  = "metadata.json"
)

// Open loads a store from dir, or initializes a fresh one if neither on-disk
// file exists. A partial pair (one file present, the other missing) is
// treated as corruption.
func Open(dir string, cfg Config, logger *slog.Logger) (*HNSWStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfConstruction == 0 {
		cfg.EfConstruction = 200
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 64
	}
	if cfg.DistanceMetric == "" {
		cfg.DistanceMetric = MetricCosine
	}
	if cfg.RebuildThreshold == 0 {
		cfg.RebuildThreshold = 1000
	}

	s := &HNSWStore{
		dir:     dir,
		config:  cfg,
		meta:    make(map[uint64]Envelope),
		byChunk: make(map[string]uint64),
		deleted: make(map[uint64]struct{}),
		logger:  logger,
	}
	if dir != "" {
		s.lock = newFileLock(dir)
	}
	s.graph = newGraph(cfg)

	indexPath := filepath.Join(dir, indexFileName)
	metaPath := filepath.Join(dir, metaFileName)
	_, indexErr := os.Stat(indexPath)
	_, metaErr := os.Stat(metaPath)

	switch {
	case os.IsNotExist(indexErr) && os.IsNotExist(metaErr):
		return s, nil
	case os.IsNotExist(indexErr) || os.IsNotExist(metaErr):
		return nil, errkit.IndexCorruption(fmt.Sprintf("store at %s has only one of hnsw.bin/metadata.json", dir), nil)
	}

	if err := s.load(indexPath, metaPath); err != nil {
		return nil, err
	}
	return s, nil
}

func newGraph(cfg Config) *hnsw.Graph[uint64] {
	g := hnsw.NewGraph[uint64]()
	switch cfg.DistanceMetric {
	case MetricL2:
		g.Distance = hnsw.EuclideanDistance
	default:
		g.Distance = hnsw.CosineDistance
	}
	g.M = cfg.M
	g.EfSearch = cfg.EfSearch
	return g
}

func (s *HNSWStore) load(indexPath, metaPath string) error {
	metaFile, err := os.Open(metaPath)
	if err != nil {
		return errkit.IndexCorruption("cannot open metadata.json", err)
	}
	defer metaFile.Close()

	var onDisk onDiskMetadata
	if err := json.NewDecoder(metaFile).Decode(&onDisk); err != nil {
		return errkit.IndexCorruption("cannot decode metadata.json", err)
	}

	indexFile, err := os.Open(indexPath)
	if err != nil {
		return errkit.IndexCorruption("cannot open hnsw.bin", err)
	}
	defer indexFile.Close()

	graph := newGraph(s.config)
	if err := graph.Import(bufio.NewReader(indexFile)); err != nil {
		return errkit.IndexCorruption("cannot import hnsw.bin", err)
	}

	s.graph = graph
	s.meta = onDisk.Metadata
	if s.meta == nil {
		s.meta = make(map[uint64]Envelope)
	}
	s.deletionCount = onDisk.DeletionCount
	s.deleted = make(map[uint64]struct{}, len(onDisk.DeletedLabels))
	for _, l := range onDisk.DeletedLabels {
		s.deleted[l] = struct{}{}
	}

	s.byChunk = make(map[string]uint64, len(s.meta))
	var maxLabel uint64
	for label, env := range s.meta {
		s.byChunk[env.ChunkID] = label
		if label > maxLabel {
			maxLabel = label
		}
	}
	for l := range s.deleted {
		if l > maxLabel {
			maxLabel = l
		}
	}
	s.nextLabel = maxLabel + 1
	if len(s.meta) == 0 && len(s.deleted) == 0 {
		s.nextLabel = 0
	}

	return nil
}

// Add implements Store.
func (s *HNSWStore) Add(ctx context.Context, items []AddItem) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	live := len(s.meta)
	if s.config.MaxElements > 0 && live+len(items) > s.config.MaxElements {
		return nil, errkit.CapacityExhausted(live, s.config.MaxElements)
	}

	for _, it := range items {
		if len(it.Vector) != s.config.Dimensions {
			return nil, errkit.New(errkit.ErrCodeInternal,
				fmt.Sprintf("vector dimension mismatch: expected %d, got %d", s.config.Dimensions, len(it.Vector)), nil)
		}
	}

	ids := make([]string, len(items))
	for i, it := range items {
		chunkID := it.ChunkID
		if chunkID == "" {
			chunkID = uuid.NewString()
		}
		label := s.nextLabel
		s.nextLabel++

		vec := make([]float32, len(it.Vector))
		copy(vec, it.Vector)

		s.graph.Add(hnsw.MakeNode(label, vec))
		s.meta[label] = Envelope{ChunkID: chunkID, Content: it.Content, Metadata: it.Metadata}
		s.byChunk[chunkID] = label

		ids[i] = chunkID
	}

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Search implements Store.
func (s *HNSWStore) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		return nil, nil
	}
	liveCount := len(s.meta)
	actualK := k
	if liveCount < actualK {
		actualK = liveCount
	}
	if actualK == 0 {
		return nil, nil
	}

	origEfSearch := s.graph.EfSearch
	if actualK*10 > origEfSearch {
		s.graph.EfSearch = actualK * 10
		defer func() { s.graph.EfSearch = origEfSearch }()
	}

	fetch := 2 * actualK
	graphSize := s.graph.Len()
	if fetch > graphSize {
		fetch = graphSize
	}

	nodes := s.graph.Search(query, fetch)

	results := make([]Result, 0, actualK)
	for _, node := range nodes {
		if _, tombstoned := s.deleted[node.Key]; tombstoned {
			continue
		}
		env, ok := s.meta[node.Key]
		if !ok {
			continue
		}
		dist := s.graph.Distance(query, node.Value)
		results = append(results, Result{
			ChunkID:  env.ChunkID,
			Content:  env.Content,
			Score:    dist,
			Metadata: env.Metadata,
		})
		if len(results) == actualK {
			break
		}
	}
	return results, nil
}

// Delete implements Store.
func (s *HNSWStore) Delete(ctx context.Context, chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	label, ok := s.byChunk[chunkID]
	if !ok {
		return errkit.NotFound("chunk", chunkID)
	}
	s.tombstoneLocked(label)
	return s.persistLocked()
}

// DeleteWhere implements Store.
func (s *HNSWStore) DeleteWhere(ctx context.Context, filter map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []uint64
	for label, env := range s.meta {
		if envelopeMatches(env, filter) {
			matched = append(matched, label)
		}
	}
	for _, label := range matched {
		s.tombstoneLocked(label)
	}
	if len(matched) == 0 {
		return 0, nil
	}
	if err := s.persistLocked(); err != nil {
		return 0, err
	}
	return len(matched), nil
}

func envelopeMatches(env Envelope, filter map[string]string) bool {
	for k, v := range filter {
		if env.Metadata[k] != v {
			return false
		}
	}
	return true
}

func (s *HNSWStore) tombstoneLocked(label uint64) {
	env, ok := s.meta[label]
	if !ok {
		return
	}
	delete(s.meta, label)
	delete(s.byChunk, env.ChunkID)
	s.deleted[label] = struct{}{}
	s.deletionCount++
}

// Clear implements Store.
func (s *HNSWStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = newGraph(s.config)
	s.meta = make(map[uint64]Envelope)
	s.byChunk = make(map[string]uint64)
	s.deleted = make(map[uint64]struct{})
	s.nextLabel = 0
	s.deletionCount = 0
	return s.persistLocked()
}

// Rebuild implements Store: compaction per spec.md §4.4 step 1-5. Vectors
// for the live set are re-extracted from the current graph via Lookup (the
// Go analogue of the library's get_items primitive); a label whose vector
// cannot be recovered is logged and dropped rather than aborting.
func (s *HNSWStore) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := newGraph(s.config)
	newMeta := make(map[uint64]Envelope, len(s.meta))
	newByChunk := make(map[string]uint64, len(s.meta))

	var nextLabel uint64
	for label, env := range s.meta {
		vec, ok := s.graph.Lookup(label)
		if !ok {
			s.logger.Warn("rebuild: vector missing for live label, skipping",
				slog.Uint64("label", label), slog.String("chunk_id", env.ChunkID))
			continue
		}
		newLabel := nextLabel
		nextLabel++

		fresh.Add(hnsw.MakeNode(newLabel, vec))
		newMeta[newLabel] = env
		newByChunk[env.ChunkID] = newLabel
	}

	s.graph = fresh
	s.meta = newMeta
	s.byChunk = newByChunk
	s.deleted = make(map[uint64]struct{})
	s.nextLabel = nextLabel
	s.deletionCount = 0

	return s.persistLocked()
}

// Len implements Store.
func (s *HNSWStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meta)
}

// DeletionCount implements Store.
func (s *HNSWStore) DeletionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deletionCount
}

// Close implements Store.
func (s *HNSWStore) Close() error {
	return nil
}

// MaybeRebuild triggers compaction if deletion_count has crossed the
// configured threshold. Callers invoke this after Delete/DeleteWhere on a
// background path, never inline on a request (spec.md §4.4: "callers must
// not hold it on the hot path").
func (s *HNSWStore) MaybeRebuild(ctx context.Context) error {
	if s.DeletionCount() < s.config.RebuildThreshold {
		return nil
	}
	return s.Rebuild(ctx)
}

func (s *HNSWStore) persistLocked() error {
	if s.dir == "" {
		return nil
	}
	return s.lock.withLock(s.dir, s.persistUnlocked)
}

func (s *HNSWStore) persistUnlocked() error {
	indexPath := filepath.Join(s.dir, indexFileName)
	if err := writeAtomic(indexPath, func(w writerLike) error {
		return s.graph.Export(w)
	}); err != nil {
		return fmt.Errorf("persist hnsw.bin: %w", err)
	}

	deletedLabels := make([]uint64, 0, len(s.deleted))
	for l := range s.deleted {
		deletedLabels = append(deletedLabels, l)
	}
	onDisk := onDiskMetadata{
		Metadata:      s.meta,
		DeletionCount: s.deletionCount,
		DeletedLabels: deletedLabels,
	}
	metaPath := filepath.Join(s.dir, metaFileName)
	if err := writeAtomic(metaPath, func(w writerLike) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(onDisk)
	}); err != nil {
		return fmt.Errorf("persist metadata.json: %w", err)
	}
	return nil
}

type writerLike = interface {
	Write(p []byte) (n int, err error)
}

func writeAtomic(path string, write func(w writerLike) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

var _ Store = (*HNSWStore)(nil)
