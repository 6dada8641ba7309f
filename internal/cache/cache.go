// Package cache persists the last revision resolved for each upstream
// remote, so status and sync can keep working against the local mirror when
// the remote is unreachable.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/packsync/packsync/internal/util"
)

const cacheVersion = "1.0"

// Entry is the last successful revision resolution for one remote.
type Entry struct {
	Revision   string    `json:"revision"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Revisions maps remote URLs to their last resolved revision.
type Revisions struct {
	Version string           `json:"version"`
	Entries map[string]Entry `json:"entries"`
	path    string
}

// Load opens the revision cache in cacheDir, defaulting to the packsync
// config directory. A missing or corrupt cache starts empty.
func Load(cacheDir string) (*Revisions, error) {
	if cacheDir == "" {
		cacheDir = filepath.Join(util.PacksyncConfigPath(), "cache")
	}
	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		return nil, err
	}

	path := filepath.Join(cacheDir, "revisions.json")
	c := &Revisions{
		Version: cacheVersion,
		Entries: make(map[string]Entry),
		path:    path,
	}

	// #nosec G304 - path is constructed from the trusted config directory
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, c); err != nil {
			c.Entries = make(map[string]Entry)
		}
		if c.Version != cacheVersion {
			c.Entries = make(map[string]Entry)
			c.Version = cacheVersion
		}
		if c.Entries == nil {
			c.Entries = make(map[string]Entry)
		}
	}

	c.path = path
	return c, nil
}

// Get returns the cached entry for a remote URL.
func (c *Revisions) Get(url string) (Entry, bool) {
	e, ok := c.Entries[url]
	return e, ok
}

// Put records the latest resolved revision for a remote URL.
func (c *Revisions) Put(url string, e Entry) {
	c.Entries[url] = e
}

// Save writes the cache back to disk.
func (c *Revisions) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}
