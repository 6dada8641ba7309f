package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/packsync/packsync/internal/model"
)

// Metadata describes a single artifact snapshot.
type Metadata struct {
	ID         string             `json:"id"`
	Artifact   string             `json:"artifact"`
	BackupPath string             `json:"backup_path"`
	Kind       model.ArtifactKind `json:"kind"`
	Revision   string             `json:"revision,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	ModifiedAt time.Time          `json:"modified_at"`
	Hash       string             `json:"hash"`
	Size       int64              `json:"size"`
}

// index is the on-disk catalog of all backups in a store.
type index struct {
	Version string              `json:"version"`
	Updated time.Time           `json:"updated"`
	Backups map[string]Metadata `json:"backups"`
}

const (
	indexVersion  = "1.0"
	indexFilename = "index.json"
)

func (s *Store) indexPath() string {
	return filepath.Join(s.dir, indexFilename)
}

func (s *Store) loadIndex() (*index, error) {
	path := s.indexPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &index{
			Version: indexVersion,
			Updated: time.Now(),
			Backups: make(map[string]Metadata),
		}, nil
	}

	// #nosec G304 - path is inside the store directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}

	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index file: %w", err)
	}
	if idx.Backups == nil {
		idx.Backups = make(map[string]Metadata)
	}
	return &idx, nil
}

func (s *Store) saveIndex(idx *index) error {
	if err := os.MkdirAll(s.dir, DirPerm); err != nil {
		return fmt.Errorf("create backups directory: %w", err)
	}

	idx.Updated = time.Now()
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	// #nosec G306 - index.json is metadata and can be group-readable
	if err := os.WriteFile(s.indexPath(), data, FilePerm); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	return nil
}

func (s *Store) addToIndex(idx *index, meta Metadata) error {
	idx.Backups[meta.ID] = meta
	return s.saveIndex(idx)
}

// sorted returns all entries newest first.
func (idx *index) sorted() []Metadata {
	backups := make([]Metadata, 0, len(idx.Backups))
	for _, b := range idx.Backups {
		backups = append(backups, b)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups
}
