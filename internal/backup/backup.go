// Package backup snapshots managed artifacts before they are written back,
// so a bad merge can always be undone. Backups are content-addressed files
// under the packsync backups directory with a JSON index alongside.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/model"
	"github.com/packsync/packsync/internal/util"
)

const (
	// DirPerm is the permission for backup directories (rwxr-x---)
	DirPerm = 0o750
	// FilePerm is the permission for backup files (rw-r-----)
	FilePerm = 0o640
)

// Store manages the backup directory and its index.
type Store struct {
	dir string
}

// NewStore opens a backup store rooted at dir, defaulting to the packsync
// backups directory.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = util.PacksyncBackupsPath()
	}
	return &Store{dir: dir}
}

// Create snapshots the file at sourcePath before a sync touches it. The
// relPath is the artifact's pack-relative path; rev is the upstream revision
// the pending merge targets.
func (s *Store) Create(sourcePath, relPath string, kind model.ArtifactKind, rev model.Revision) (*Metadata, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", sourcePath, err)
	}

	// #nosec G304 - sourcePath is a managed pack file
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", sourcePath, err)
	}

	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])
	id := time.Now().Format("20060102-150405-") + digest[:8]

	kindDir := filepath.Join(s.dir, string(kind))
	if err := os.MkdirAll(kindDir, DirPerm); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	backupPath := filepath.Join(kindDir, id+filepath.Ext(sourcePath))
	if err := os.WriteFile(backupPath, content, FilePerm); err != nil {
		return nil, fmt.Errorf("write backup file: %w", err)
	}

	meta := &Metadata{
		ID:         id,
		Artifact:   filepath.ToSlash(relPath),
		BackupPath: backupPath,
		Kind:       kind,
		Revision:   rev.String(),
		CreatedAt:  time.Now(),
		ModifiedAt: info.ModTime(),
		Hash:       digest,
		Size:       info.Size(),
	}

	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("load backup index: %w", err)
	}
	if err := s.addToIndex(index, *meta); err != nil {
		return nil, fmt.Errorf("update backup index: %w", err)
	}

	logging.Debug("created backup",
		logging.Artifact(meta.Artifact),
		logging.Path(backupPath),
	)
	return meta, nil
}

// Restore writes the backup identified by id to targetPath, verifying the
// stored hash first.
func (s *Store) Restore(id, targetPath string) error {
	index, err := s.loadIndex()
	if err != nil {
		return fmt.Errorf("load backup index: %w", err)
	}

	meta, ok := index.Backups[id]
	if !ok {
		return fmt.Errorf("backup %q not found", id)
	}

	// #nosec G304 - backup path comes from our own index
	content, err := os.ReadFile(meta.BackupPath)
	if err != nil {
		return fmt.Errorf("read backup file: %w", err)
	}

	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != meta.Hash {
		return fmt.Errorf("backup %q corrupted: hash mismatch", id)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), DirPerm); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}
	if err := os.WriteFile(targetPath, content, FilePerm); err != nil {
		return fmt.Errorf("write target file: %w", err)
	}

	logging.Info("restored backup",
		logging.Artifact(meta.Artifact),
		logging.Path(targetPath),
	)
	return nil
}

// List returns all backups, optionally filtered by artifact kind, newest
// first.
func (s *Store) List(kind model.ArtifactKind) ([]Metadata, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("load backup index: %w", err)
	}

	backups := index.sorted()
	if kind == "" {
		return backups, nil
	}

	filtered := make([]Metadata, 0, len(backups))
	for _, b := range backups {
		if b.Kind == kind {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// History returns all backups of one artifact, newest first.
func (s *Store) History(relPath string) ([]Metadata, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("load backup index: %w", err)
	}

	rel := filepath.ToSlash(relPath)
	var history []Metadata
	for _, b := range index.sorted() {
		if b.Artifact == rel {
			history = append(history, b)
		}
	}
	return history, nil
}

// Delete removes a backup file and its index entry.
func (s *Store) Delete(id string) error {
	index, err := s.loadIndex()
	if err != nil {
		return fmt.Errorf("load backup index: %w", err)
	}

	meta, ok := index.Backups[id]
	if !ok {
		return fmt.Errorf("backup %q not found", id)
	}

	if err := os.Remove(meta.BackupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete backup file: %w", err)
	}
	delete(index.Backups, id)
	return s.saveIndex(index)
}
