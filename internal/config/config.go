// Package config provides configuration management for packsync.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/packsync/packsync/internal/model"
	"github.com/packsync/packsync/internal/util"
)

// Config represents the complete packsync configuration.
type Config struct {
	// Pack configures the local controller pack installation
	Pack PackConfig `yaml:"pack"`

	// Upstream configures the version-controlled source of truth
	Upstream UpstreamConfig `yaml:"upstream"`

	// Plugins toggles plugin-specific artifact handling
	Plugins PluginsConfig `yaml:"plugins"`

	// Sync configures synchronization behavior
	Sync SyncConfig `yaml:"sync"`

	// Backup configures backup behavior
	Backup BackupConfig `yaml:"backup"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`
}

// PackConfig holds the local installation settings.
type PackConfig struct {
	// Dir is the local working copy of the controller pack
	Dir string `yaml:"dir"`
	// SectorDir is the pack-relative directory holding sector files
	SectorDir string `yaml:"sector_dir"`
}

// UpstreamConfig holds version-control settings.
type UpstreamConfig struct {
	// URL is the upstream repository
	URL string `yaml:"url"`
	// Branch is the branch tracked between releases
	Branch string `yaml:"branch"`
	// Remote is the git remote name
	Remote string `yaml:"remote"`
	// Timeout bounds network operations
	Timeout time.Duration `yaml:"timeout"`
}

// PluginsConfig holds per-plugin enablement.
type PluginsConfig struct {
	VSMR bool `yaml:"vsmr"`
	VFPC bool `yaml:"vfpc"`
	CDM  bool `yaml:"cdm"`
	UKCP bool `yaml:"ukcp"`
}

// Enabled reports whether the given plugin's artifacts should be managed.
// Plugin-agnostic artifacts (empty id) are always managed.
func (pc PluginsConfig) Enabled(id model.PluginID) bool {
	switch id {
	case "":
		return true
	case model.PluginVSMR:
		return pc.VSMR
	case model.PluginVFPC:
		return pc.VFPC
	case model.PluginCDM:
		return pc.CDM
	case model.PluginUKCP:
		return pc.UKCP
	default:
		return false
	}
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// AutoBackup enables automatic backup before rewriting an artifact
	AutoBackup bool `yaml:"auto_backup"`
	// RewriteSectorRefs keeps SECTORFILE/SECTORTITLE references current
	RewriteSectorRefs bool `yaml:"rewrite_sector_refs"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	// Enabled enables automatic backups
	Enabled bool `yaml:"enabled"`
	// Location is the backup directory path
	Location string `yaml:"location"`
	// MaxBackups is the maximum number of backups to keep per artifact
	MaxBackups int `yaml:"max_backups"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Pack: PackConfig{
			Dir:       util.DefaultPackDir(),
			SectorDir: filepath.Join("UK", "Data", "Sector"),
		},
		Upstream: UpstreamConfig{
			URL:     "https://github.com/VATSIM-UK/uk-controller-pack.git",
			Branch:  "main",
			Remote:  "origin",
			Timeout: 2 * time.Minute,
		},
		Plugins: PluginsConfig{
			VSMR: true,
			VFPC: false,
			CDM:  false,
			UKCP: true,
		},
		Sync: SyncConfig{
			AutoBackup:        true,
			RewriteSectorRefs: true,
		},
		Backup: BackupConfig{
			Enabled:    true,
			Location:   util.PacksyncBackupsPath(),
			MaxBackups: 10,
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.PacksyncConfigPath(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults with environment overrides
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	// Parse YAML over defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern PACKSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("PACKSYNC_PACK_DIR"); v != "" {
		c.Pack.Dir = v
	}
	if v := os.Getenv("PACKSYNC_UPSTREAM_URL"); v != "" {
		c.Upstream.URL = v
	}
	if v := os.Getenv("PACKSYNC_UPSTREAM_BRANCH"); v != "" {
		c.Upstream.Branch = v
	}
	if v := os.Getenv("PACKSYNC_UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Upstream.Timeout = d
		}
	}
	if v := os.Getenv("PACKSYNC_SYNC_AUTO_BACKUP"); v != "" {
		c.Sync.AutoBackup = parseBool(v)
	}
	if v := os.Getenv("PACKSYNC_BACKUP_ENABLED"); v != "" {
		c.Backup.Enabled = parseBool(v)
	}
	if v := os.Getenv("PACKSYNC_BACKUP_LOCATION"); v != "" {
		c.Backup.Location = v
	}
	if v := os.Getenv("PACKSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("PACKSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// PackDir returns the expanded local pack directory.
func (c *Config) PackDir() string {
	return util.ExpandPath(c.Pack.Dir, "")
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
