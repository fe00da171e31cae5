package vectorstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// fileLock guards a store directory against concurrent writers from other
// processes (e.g. a CLI invocation and a running MCP server both pointed at
// the same directory). spec.md §4.4 does not require cross-instance
// coordination; this is hardening layered on top of the required in-process
// sync.RWMutex, not a substitute for it.
type fileLock struct {
	flock *flock.Flock
}

func newFileLock(dir string) *fileLock {
	return &fileLock{flock: flock.New(filepath.Join(dir, ".store.lock"))}
}

func (l *fileLock) withLock(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	defer l.flock.Unlock()
	return fn()
}
