package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// PacksyncConfigPath returns the packsync configuration directory
func PacksyncConfigPath() string {
	return filepath.Join(HomeDir(), ".packsync")
}

// PacksyncBackupsPath returns the packsync backups directory
func PacksyncBackupsPath() string {
	return filepath.Join(PacksyncConfigPath(), "backups")
}

// EuroScopeDir returns the EuroScope data directory. On Windows this lives
// under %APPDATA%; elsewhere it falls back to the home directory.
func EuroScopeDir() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "EuroScope")
	}
	return filepath.Join(HomeDir(), "EuroScope")
}

// DefaultPackDir returns the default location of the controller pack clone.
func DefaultPackDir() string {
	return filepath.Join(EuroScopeDir(), "uk-controller-pack")
}

// ExpandPath expands a leading ~ to the home directory and resolves relative
// paths against baseDir. Returns "" for empty input.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}
