package util

import (
	"path/filepath"
	"testing"
)

func TestHomeDir(t *testing.T) {
	home := HomeDir()
	if home == "" {
		t.Error("HomeDir() returned empty string")
	}

	if !filepath.IsAbs(home) {
		t.Errorf("HomeDir() returned relative path: %s", home)
	}
}

func TestPacksyncConfigPath(t *testing.T) {
	path := PacksyncConfigPath()

	expected := filepath.Join(HomeDir(), ".packsync")
	if path != expected {
		t.Errorf("PacksyncConfigPath() = %q, want %q", path, expected)
	}
}

func TestEuroScopeDirWithAppData(t *testing.T) {
	t.Setenv("APPDATA", filepath.Join("/tmp", "appdata"))

	expected := filepath.Join("/tmp", "appdata", "EuroScope")
	if got := EuroScopeDir(); got != expected {
		t.Errorf("EuroScopeDir() = %q, want %q", got, expected)
	}
}

func TestEuroScopeDirWithoutAppData(t *testing.T) {
	t.Setenv("APPDATA", "")

	expected := filepath.Join(HomeDir(), "EuroScope")
	if got := EuroScopeDir(); got != expected {
		t.Errorf("EuroScopeDir() = %q, want %q", got, expected)
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		baseDir string
		want    string
	}{
		{"empty", "", "/base", ""},
		{"tilde only", "~", "/base", HomeDir()},
		{"tilde prefix", "~/EuroScope", "/base", filepath.Join(HomeDir(), "EuroScope")},
		{"absolute", "/abs/path", "/base", "/abs/path"},
		{"relative with base", "sub/dir", "/base", filepath.Join("/base", "sub", "dir")},
		{"relative without base", "sub/dir", "", filepath.Join("sub", "dir")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.path, tt.baseDir); got != tt.want {
				t.Errorf("ExpandPath(%q, %q) = %q, want %q", tt.path, tt.baseDir, got, tt.want)
			}
		})
	}
}
