package sync

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/packsync/packsync/internal/artifact"
	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/model"
	"github.com/packsync/packsync/internal/rewrite"
)

// newSectorFile returns the pack-relative path of a .sct file this run
// installed or updated, or empty when the sector file did not change.
func (o *Orchestrator) newSectorFile(result *Result) string {
	for _, ar := range result.Artifacts {
		if ar.Status != StatusSynced && ar.Status != StatusInstalled {
			continue
		}
		if strings.EqualFold(filepath.Ext(ar.Path), ".sct") {
			return ar.Path
		}
	}
	return ""
}

// rewriteSectorRefs re-points every local profile and screen setup at the
// newly installed sector file, and refreshes plugin columns in departure
// lists. These files live outside the upstream diff: their references go
// stale locally whenever the sector file version changes.
func (o *Orchestrator) rewriteSectorRefs(sctRel string, to model.Revision, opts Options) []ArtifactResult {
	sctAbs := filepath.Join(o.cfg.PackDir(), filepath.FromSlash(sctRel))
	logging.Info("rewriting sector file references",
		logging.Path(sctAbs),
	)

	var results []ArtifactResult
	root := o.cfg.PackDir()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		var kind model.ArtifactKind
		var apply func(*model.Document) bool
		switch ext := strings.ToLower(filepath.Ext(path)); {
		case ext == ".prf":
			kind = model.Profile
			apply = func(doc *model.Document) bool {
				return rewrite.ProfileSectorRef(doc, sctAbs)
			}
		case ext == ".asr":
			kind = model.Settings
			apply = func(doc *model.Document) bool {
				return rewrite.SectorRefs(doc, sctAbs)
			}
		case rewrite.IsDepartureList(path):
			kind = model.Settings
			apply = func(doc *model.Document) bool {
				return rewrite.DepartureListColumns(doc, o.cfg.Plugins.Enabled)
			}
		case rewrite.IsAppScreen(path):
			kind = model.Settings
			apply = rewrite.ShowVccsMiniControl
		default:
			return nil
		}

		if ar, changed := o.rewriteOne(path, rel, kind, to, apply, opts); changed {
			results = append(results, ar)
		}
		return nil
	})
	if err != nil {
		logging.Warn("sector reference rewrite incomplete",
			logging.Err(err),
		)
	}
	return results
}

// rewriteOne applies a single rewrite to one local file, writing back only
// when something changed.
func (o *Orchestrator) rewriteOne(path, rel string, kind model.ArtifactKind, to model.Revision, apply func(*model.Document) bool, opts Options) (ArtifactResult, bool) {
	ar := ArtifactResult{Path: rel, Kind: kind}

	content, err := os.ReadFile(path) // #nosec G304 - path comes from walking the pack dir
	if err != nil {
		return fail(ar, err), true
	}
	doc, err := artifact.Parse(kind, content)
	if err != nil {
		return fail(ar, err), true
	}

	if !apply(doc) {
		return ar, false
	}

	ar = o.commit(ar, path, artifact.Serialize(doc), to, opts)
	return ar, true
}
