// Package classify maps upstream paths to the managed artifact targets they
// affect, using the controller pack's path and naming conventions.
package classify

import (
	"path"
	"strings"

	"github.com/packsync/packsync/internal/model"
)

// pluginMarkers maps path substrings to the plugin that owns them. Matching
// is case-insensitive against slash-normalized paths.
var pluginMarkers = []struct {
	marker string
	id     model.PluginID
}{
	{"vsmr", model.PluginVSMR},
	{"vfpc", model.PluginVFPC},
	{"cdm", model.PluginCDM},
	{"uk controller plugin", model.PluginUKCP},
	{"ukcp", model.PluginUKCP},
}

// Classify maps a pack-relative path to the artifact targets it feeds. A
// single path can produce more than one target: a settings file inside a
// plugin directory feeds both the plain settings artifact and the plugin's
// own settings surface. Unrecognized paths yield nil; upstream repositories
// carry plenty of files outside the managed surface, so this is not an
// error.
func Classify(p string) []model.Target {
	norm := strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	ext := path.Ext(norm)

	var targets []model.Target
	switch ext {
	case ".sct", ".ese", ".rwy":
		targets = append(targets, model.Target{Kind: model.Sector})
	case ".prf":
		targets = append(targets, model.Target{Kind: model.Profile})
	case ".asr", ".txt":
		targets = append(targets, model.Target{Kind: model.Settings})
	default:
		return nil
	}

	if plugin := pluginFor(norm); plugin != "" && ext != ".prf" {
		targets = append(targets, model.Target{Kind: model.Settings, Plugin: plugin})
	}

	return targets
}

// pluginFor returns the plugin owning the path, or "" when none matches.
func pluginFor(norm string) model.PluginID {
	for _, m := range pluginMarkers {
		if strings.Contains(norm, m.marker) {
			return m.id
		}
	}
	return ""
}

// Kind returns the artifact kind for a path, ignoring plugin ownership.
// It reports false for unmanaged paths.
func Kind(p string) (model.ArtifactKind, bool) {
	targets := Classify(p)
	if len(targets) == 0 {
		return "", false
	}
	return targets[0].Kind, true
}
