package cli

import (
	"path/filepath"
	"testing"
)

func TestPackRelative(t *testing.T) {
	pack := t.TempDir()

	tests := []struct {
		name   string
		target string
		want   string
		ok     bool
	}{
		{"inside pack", filepath.Join(pack, "UK", "Data", "Sector", "UK.sct"), "UK/Data/Sector/UK.sct", true},
		{"pack root file", filepath.Join(pack, "iTEC.prf"), "iTEC.prf", true},
		{"outside pack", filepath.Join(t.TempDir(), "UK.sct"), "", false},
		{"parent of pack", filepath.Dir(pack), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := packRelative(pack, tt.target)
			if ok != tt.ok {
				t.Fatalf("packRelative(%q) ok = %v, want %v", tt.target, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("packRelative(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}
