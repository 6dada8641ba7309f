package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const remote = "https://github.com/VATSIM-UK/uk-controller-pack.git"

func TestLoadEmpty(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := c.Get(remote); ok {
		t.Error("empty cache returned an entry")
	}
}

func TestPutGetSaveReload(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	c.Put(remote, Entry{Revision: "2024/06", ResolvedAt: time.Now().UTC()})
	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	e, ok := reloaded.Get(remote)
	if !ok {
		t.Fatal("entry missing after reload")
	}
	if e.Revision != "2024/06" {
		t.Errorf("Revision = %q, want 2024/06", e.Revision)
	}
}

func TestLoadCorruptCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "revisions.json"), []byte("{corrupt"), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c.Entries) != 0 {
		t.Errorf("corrupt cache did not reset: %v", c.Entries)
	}
}

func TestLoadVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	stale := `{"version":"0.9","entries":{"` + remote + `":{"revision":"2023/01"}}}`
	if err := os.WriteFile(filepath.Join(dir, "revisions.json"), []byte(stale), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := c.Get(remote); ok {
		t.Error("stale-version entry survived load")
	}
	if c.Version != cacheVersion {
		t.Errorf("Version = %q, want %q", c.Version, cacheVersion)
	}
}
