// Package state persists the per-artifact sync ledger: which upstream
// revision each managed file was last reconciled against, and a digest of
// the content written at that time. The ledger lives in a TOML sidecar under
// the packsync config directory so the managed pack stays clean.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/model"
	"github.com/packsync/packsync/internal/util"
)

const stateVersion = 1

// Entry records one artifact's last successful sync.
type Entry struct {
	// Revision is the upstream revision the artifact was merged against.
	Revision string `toml:"revision"`

	// Digest is the SHA-256 of the content written back, used to detect
	// user edits made since the last sync.
	Digest string `toml:"digest"`

	// SyncedAt is when the write-back happened.
	SyncedAt time.Time `toml:"synced_at"`
}

// Store is the on-disk ledger. Artifact keys are slash-separated paths
// relative to the pack root.
type Store struct {
	Version   int              `toml:"version"`
	Revision  string           `toml:"revision"`
	Artifacts map[string]Entry `toml:"artifacts"`

	path string
}

// Load reads the ledger from dir, or returns an empty one when the sidecar
// does not exist yet. A corrupt sidecar also yields an empty ledger, since
// the worst case of losing it is a full re-sync.
func Load(dir string) (*Store, error) {
	if dir == "" {
		dir = util.PacksyncConfigPath()
	}
	path := filepath.Join(dir, "state.toml")

	s := &Store{
		Version:   stateVersion,
		Artifacts: make(map[string]Entry),
		path:      path,
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is under the config dir
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, s); err != nil {
		logging.Warn("state sidecar unreadable, starting fresh",
			logging.Path(path),
			logging.Err(err),
		)
		s.Artifacts = make(map[string]Entry)
		s.Revision = ""
	}
	if s.Version != stateVersion {
		s.Artifacts = make(map[string]Entry)
		s.Revision = ""
		s.Version = stateVersion
	}
	if s.Artifacts == nil {
		s.Artifacts = make(map[string]Entry)
	}
	s.path = path
	return s, nil
}

// LastRevision returns the revision the whole pack was last synced against.
func (s *Store) LastRevision() model.Revision {
	return model.Revision(s.Revision)
}

// SetRevision records the pack-wide revision of the current sync.
func (s *Store) SetRevision(rev model.Revision) {
	s.Revision = rev.String()
}

// Get returns the ledger entry for an artifact path.
func (s *Store) Get(relPath string) (Entry, bool) {
	e, ok := s.Artifacts[filepath.ToSlash(relPath)]
	return e, ok
}

// Record notes a successful sync of one artifact at the given revision.
func (s *Store) Record(relPath string, rev model.Revision, content []byte) {
	s.Artifacts[filepath.ToSlash(relPath)] = Entry{
		Revision: rev.String(),
		Digest:   Digest(content),
		SyncedAt: time.Now().UTC(),
	}
}

// Forget drops the ledger entry for an artifact, forcing a first-sync on
// the next run.
func (s *Store) Forget(relPath string) {
	delete(s.Artifacts, filepath.ToSlash(relPath))
}

// Save writes the ledger back to its sidecar.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return err
	}

	f, err := os.Create(s.path) // #nosec G304 - path is under the config dir
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return err
	}

	logging.Debug("saved state sidecar",
		logging.Path(s.path),
		logging.Count(len(s.Artifacts)),
	)
	return nil
}

// Digest returns the hex SHA-256 of content, the form stored in the ledger.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
