package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/packsync/packsync/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Upstream.URL == "" {
		t.Error("default upstream URL is empty")
	}
	if cfg.Upstream.Branch != "main" {
		t.Errorf("default branch = %q, want main", cfg.Upstream.Branch)
	}
	if cfg.Upstream.Timeout != 2*time.Minute {
		t.Errorf("default timeout = %v, want 2m", cfg.Upstream.Timeout)
	}
	if !cfg.Sync.AutoBackup {
		t.Error("auto backup should default to enabled")
	}
}

func TestPluginsEnabled(t *testing.T) {
	pc := PluginsConfig{VSMR: true, CDM: false}

	tests := []struct {
		id   model.PluginID
		want bool
	}{
		{"", true},
		{model.PluginVSMR, true},
		{model.PluginCDM, false},
		{model.PluginID("unknown"), false},
	}

	for _, tt := range tests {
		if got := pc.Enabled(tt.id); got != tt.want {
			t.Errorf("Enabled(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
pack:
  dir: /opt/euroscope/pack
upstream:
  branch: develop
  timeout: 30s
plugins:
  vfpc: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Pack.Dir != "/opt/euroscope/pack" {
		t.Errorf("pack dir = %q", cfg.Pack.Dir)
	}
	if cfg.Upstream.Branch != "develop" {
		t.Errorf("branch = %q, want develop", cfg.Upstream.Branch)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Upstream.Timeout)
	}
	if !cfg.Plugins.VFPC {
		t.Error("vfpc should be enabled")
	}
	// Untouched keys keep defaults.
	if cfg.Upstream.URL == "" {
		t.Error("upstream URL should keep default")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PACKSYNC_PACK_DIR", "/env/pack")
	t.Setenv("PACKSYNC_UPSTREAM_TIMEOUT", "45s")
	t.Setenv("PACKSYNC_SYNC_AUTO_BACKUP", "no")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Pack.Dir != "/env/pack" {
		t.Errorf("pack dir = %q, want /env/pack", cfg.Pack.Dir)
	}
	if cfg.Upstream.Timeout != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", cfg.Upstream.Timeout)
	}
	if cfg.Sync.AutoBackup {
		t.Error("auto backup should be disabled by env")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := Default()
	cfg.Upstream.Branch = "release"
	if err := cfg.SaveToPath(path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Upstream.Branch != "release" {
		t.Errorf("branch = %q, want release", loaded.Upstream.Branch)
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "1", "yes", "on", " TRUE "}
	falsy := []string{"false", "0", "off", "", "bogus"}

	for _, s := range truthy {
		if !parseBool(s) {
			t.Errorf("parseBool(%q) = false, want true", s)
		}
	}
	for _, s := range falsy {
		if parseBool(s) {
			t.Errorf("parseBool(%q) = true, want false", s)
		}
	}
}
