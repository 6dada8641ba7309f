// Package writeback persists merged artifact content atomically. Content is
// written to a temporary file in the destination's directory, synced, and
// renamed over the destination, so a crash mid-write never leaves a
// truncated artifact behind.
package writeback

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/packsync/packsync/internal/logging"
)

// WriteError reports a failed write-back for one artifact. The destination
// file is untouched when a WriteError is returned.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write-back of %s failed: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Commit atomically replaces the file at path with data. The parent
// directory is created if missing. An existing file's permissions are
// preserved; new files are created with mode 0644.
func Commit(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	logging.Debug("wrote artifact",
		logging.Path(path),
		logging.Count(len(data)),
	)
	return nil
}
