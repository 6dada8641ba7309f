// Package lock serializes packsync runs. A file lock under the config
// directory guarantees at most one process is merging and writing back pack
// files at a time.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/packsync/packsync/internal/util"
)

const lockFile = "packsync.lock"

// ErrLocked reports that another packsync process holds the run lock.
var ErrLocked = errors.New("another packsync process is running")

// RunLock is an exclusive advisory lock over the sync workflow.
type RunLock struct {
	flock *flock.Flock
}

// New creates a run lock under dir, defaulting to the packsync config
// directory.
func New(dir string) *RunLock {
	if dir == "" {
		dir = util.PacksyncConfigPath()
	}
	return &RunLock{flock: flock.New(filepath.Join(dir, lockFile))}
}

// Acquire takes the lock without blocking. It returns ErrLocked when
// another process already holds it.
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.flock.Path()), 0o750); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *RunLock) Release() error {
	return l.flock.Unlock()
}
