package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/packsync/packsync/internal/model"
)

func TestLoadMissingSidecar(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.LastRevision() != "" {
		t.Errorf("LastRevision = %q, want empty", s.LastRevision())
	}
	if len(s.Artifacts) != 0 {
		t.Errorf("Artifacts = %v, want empty", s.Artifacts)
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.SetRevision(model.Revision("2024/06"))
	content := []byte("[POSITIONS]\nEGLL_APP 119.180\n")
	s.Record("UK/Data/Sector/UK.sct", "2024/06", content)
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.LastRevision() != "2024/06" {
		t.Errorf("LastRevision = %q, want 2024/06", reloaded.LastRevision())
	}
	e, ok := reloaded.Get("UK/Data/Sector/UK.sct")
	if !ok {
		t.Fatal("artifact entry missing after reload")
	}
	if e.Revision != "2024/06" {
		t.Errorf("Revision = %q, want 2024/06", e.Revision)
	}
	if e.Digest != Digest(content) {
		t.Errorf("Digest = %q, want %q", e.Digest, Digest(content))
	}
	if e.SyncedAt.IsZero() {
		t.Error("SyncedAt is zero")
	}
}

func TestGetNormalizesSeparators(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s.Record(filepath.Join("UK", "iTEC.prf"), "2024/06", []byte("x"))
	if _, ok := s.Get("UK/iTEC.prf"); !ok {
		t.Error("entry not found under slash-separated key")
	}
}

func TestForget(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s.Record("UK/iTEC.prf", "2024/06", []byte("x"))
	s.Forget("UK/iTEC.prf")
	if _, ok := s.Get("UK/iTEC.prf"); ok {
		t.Error("entry survived Forget")
	}
}

func TestLoadCorruptSidecar(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "state.toml"), []byte("not = [toml"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Artifacts) != 0 || s.Revision != "" {
		t.Errorf("corrupt sidecar did not reset: %+v", s)
	}
}

func TestDigestStable(t *testing.T) {
	a := Digest([]byte("abc"))
	b := Digest([]byte("abc"))
	if a != b {
		t.Errorf("Digest not stable: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Digest length = %d, want 64", len(a))
	}
}
