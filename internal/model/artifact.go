// Package model defines the shared types for managed artifacts, parsed
// records and upstream revisions.
package model

// ArtifactKind identifies the grammar of a managed file.
type ArtifactKind string

const (
	// Sector covers sector definition files (.sct, .ese, .rwy).
	Sector ArtifactKind = "sector"
	// Profile covers EuroScope profile files (.prf).
	Profile ArtifactKind = "profile"
	// Settings covers settings and scratchpad files (.txt, .asr).
	Settings ArtifactKind = "settings"
)

// IsValid returns true if the kind is recognized.
func (k ArtifactKind) IsValid() bool {
	switch k {
	case Sector, Profile, Settings:
		return true
	default:
		return false
	}
}

// AllKinds returns all managed artifact kinds.
func AllKinds() []ArtifactKind {
	return []ArtifactKind{Sector, Profile, Settings}
}

// PluginID identifies an optional client plugin with its own settings
// surface. The empty PluginID means the artifact is plugin-agnostic.
type PluginID string

const (
	PluginVSMR PluginID = "vsmr"
	PluginVFPC PluginID = "vfpc"
	PluginCDM  PluginID = "cdm"
	PluginUKCP PluginID = "ukcp"
)

// AllPlugins returns the plugins packsync knows how to classify.
func AllPlugins() []PluginID {
	return []PluginID{PluginVSMR, PluginVFPC, PluginCDM, PluginUKCP}
}

// Target pairs an artifact kind with the plugin it belongs to. A single
// upstream path can map to more than one target.
type Target struct {
	Kind   ArtifactKind
	Plugin PluginID
}

// ManagedArtifact is a local file the engine may rewrite. Its last-synced
// revision is advanced only after a successful write-back; artifacts are
// never deleted by the engine.
type ManagedArtifact struct {
	// Kind selects the parser grammar.
	Kind ArtifactKind

	// Path is the pack-relative path, shared between the local working
	// copy and the upstream tree.
	Path string

	// Plugin is the owning plugin, or empty for plugin-agnostic files.
	Plugin PluginID

	// LastSynced is the upstream revision this file was last reconciled
	// against. Zero on first sync.
	LastSynced Revision
}
