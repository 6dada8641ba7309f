// Package detector locates an existing controller pack installation.
// It scans the environment and a handful of conventional EuroScope
// locations so that first-time setup can propose a pack directory
// instead of asking for one.
package detector

import (
	"os"
	"path/filepath"

	"github.com/packsync/packsync/internal/util"
)

// DetectedPack is a candidate pack directory with a confidence level.
type DetectedPack struct {
	Path       string
	Confidence float64 // 0.0-1.0, higher means more confident
	Source     string  // how it was found: "env_var", "filesystem", "indicator_file"
}

// indicators are files whose presence marks a directory as a controller
// pack working copy.
var indicators = []string{
	filepath.Join("UK", "Data", "Sector"),
	filepath.Join(".git", "HEAD"),
}

// Detect returns candidate pack directories ordered by confidence.
func Detect() []DetectedPack {
	var detected []DetectedPack

	if envPath := os.Getenv("PACKSYNC_PACK_DIR"); envPath != "" {
		path := util.ExpandPath(envPath, "")
		if pathExists(path) {
			detected = append(detected, DetectedPack{
				Path:       path,
				Confidence: 1.0,
				Source:     "env_var",
			})
		}
	}

	if dir := util.DefaultPackDir(); hasIndicator(dir) {
		detected = append(detected, DetectedPack{
			Path:       dir,
			Confidence: 0.95,
			Source:     "indicator_file",
		})
	} else if pathExists(dir) {
		detected = append(detected, DetectedPack{
			Path:       dir,
			Confidence: 0.8,
			Source:     "filesystem",
		})
	}

	if cwd, err := os.Getwd(); err == nil && hasIndicator(cwd) {
		detected = append(detected, DetectedPack{
			Path:       cwd,
			Confidence: 0.7,
			Source:     "indicator_file",
		})
	}

	return detected
}

// Best returns the highest-confidence candidate, or false when no pack
// installation could be found.
func Best() (DetectedPack, bool) {
	candidates := Detect()
	if len(candidates) == 0 {
		return DetectedPack{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best, true
}

func hasIndicator(dir string) bool {
	if !pathExists(dir) {
		return false
	}
	for _, ind := range indicators {
		if pathExists(filepath.Join(dir, ind)) {
			return true
		}
	}
	return false
}

func pathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
