package ingest

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ragkb/ragkb/internal/async"
)

// op classifies a raw fsnotify event the way the coalescing rules need:
// collapsed to create/modify/delete, ignoring chmod-only and rename
// bookkeeping events this watcher doesn't act on directly.
type op int

const (
	opCreate op = iota
	opModify
	opDelete
)

type pendingEvent struct {
	op       op
	lastSeen time.Time
}

// Watcher keeps a KB's chunks in sync with a source directory: file
// changes are debounced and coalesced, then each surviving path is
// re-ingested through the same Pipeline.IngestFile used by the one-shot
// path. Disabled by default — spec.md's seed tests never require it.
type Watcher struct {
	pipeline *Pipeline
	kbID     string
	dir      string
	window   time.Duration

	mu      sync.Mutex
	pending map[string]*pendingEvent
	timer   *time.Timer

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	done     chan struct{}
	progress *async.IndexProgress
}

// DefaultDebounceWindow is how long the watcher waits after the last event
// for a path before re-ingesting it, coalescing bursts of saves/renames
// into one pass (grounded on the teacher's watcher package debounce idiom).
const DefaultDebounceWindow = 2 * time.Second

// NewWatcher builds a Watcher over dir for kbID. Call Start to begin.
func NewWatcher(pipeline *Pipeline, kbID, dir string) *Watcher {
	return &Watcher{
		pipeline: pipeline,
		kbID:     kbID,
		dir:      dir,
		window:   DefaultDebounceWindow,
		pending:  make(map[string]*pendingEvent),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		progress: async.NewIndexProgress(),
	}
}

// Status reports how many paths the watcher has reconciled in its current
// or most recent debounced batch, for a CLI or MCP caller to poll while
// Start runs in the background.
func (w *Watcher) Status() async.IndexProgressSnapshot {
	return w.progress.Snapshot()
}

// Start begins watching dir and blocks until Stop is called or ctx is
// cancelled. Run it in its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return err
	}
	w.watcher = fw
	defer fw.Close()
	defer close(w.done)

	w.progress.SetReady()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.pipeline.Logger.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}

// Stop ends the watch loop. Safe to call once.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.done
}

func (w *Watcher) handle(event fsnotify.Event) {
	var newOp op
	switch {
	case event.Has(fsnotify.Create):
		newOp = opCreate
	case event.Has(fsnotify.Write):
		newOp = opModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		newOp = opDelete
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.pending[event.Name]; ok {
		coalesced, drop := coalesce(existing.op, newOp)
		if drop {
			delete(w.pending, event.Name)
		} else {
			existing.op = coalesced
			existing.lastSeen = time.Now()
		}
	} else {
		w.pending[event.Name] = &pendingEvent{op: newOp, lastSeen: time.Now()}
	}

	w.scheduleFlushLocked()
}

// coalesce merges two operations on the same path within one debounce
// window (CREATE+MODIFY=CREATE, CREATE+DELETE=nothing, MODIFY+DELETE=DELETE,
// DELETE+CREATE=MODIFY), the same rules the teacher's debouncer applies to
// its own Operation type.
func coalesce(existing, incoming op) (result op, drop bool) {
	switch existing {
	case opCreate:
		if incoming == opDelete {
			return 0, true
		}
		return opCreate, false
	case opModify:
		return incoming, false
	case opDelete:
		if incoming == opCreate {
			return opModify, false
		}
		return incoming, false
	default:
		return incoming, false
	}
}

func (w *Watcher) scheduleFlushLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.window, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]*pendingEvent)
	w.mu.Unlock()

	w.progress.SetStage(async.StageIndexing, len(batch))
	processed := 0
	for path, pe := range batch {
		w.reconcile(path, pe.op)
		processed++
		w.progress.UpdateFiles(processed)
	}
}

// reconcile re-ingests a changed path: delete the old document's chunks (if
// any), then run it through the exact same Pipeline.IngestFile the one-shot
// path uses, so every invariant that holds for manual ingestion holds here
// too.
func (w *Watcher) reconcile(path string, operation op) {
	ctx := context.Background()

	existing, err := w.findDocumentByPath(ctx, path)
	if err == nil && existing != "" {
		if err := w.pipeline.MetaStore.DeleteDocument(ctx, existing); err != nil {
			w.pipeline.Logger.Error("watch: failed to delete stale document", "path", path, "error", err)
			return
		}
		if _, err := w.pipeline.VectorStore.DeleteWhere(ctx, map[string]string{"doc_id": existing}); err != nil {
			w.pipeline.Logger.Error("watch: failed to delete stale vectors", "path", path, "error", err)
			return
		}
	}

	if operation == opDelete {
		return
	}

	if _, err := w.pipeline.IngestFile(ctx, w.kbID, path, Options{}); err != nil {
		w.pipeline.Logger.Error("watch: re-ingest failed", "path", path, "error", err)
	}
}

func (w *Watcher) findDocumentByPath(ctx context.Context, path string) (string, error) {
	docs, err := w.pipeline.MetaStore.ListDocumentsByKB(ctx, w.kbID)
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if d.Filename == filepath.Base(path) {
			return d.ID, nil
		}
	}
	return "", nil
}
