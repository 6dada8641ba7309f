package sync

import (
	"fmt"
	"strings"

	"github.com/packsync/packsync/internal/merge"
	"github.com/packsync/packsync/internal/model"
)

// Status is the terminal state of one artifact within a sync run.
type Status string

const (
	// StatusSynced indicates the artifact was merged and written back.
	StatusSynced Status = "synced"

	// StatusInstalled indicates the artifact did not exist locally and
	// was written fresh from upstream.
	StatusInstalled Status = "installed"

	// StatusUnchanged indicates no write was needed.
	StatusUnchanged Status = "unchanged"

	// StatusFailed indicates the artifact could not be synced. Other
	// artifacts in the run are unaffected.
	StatusFailed Status = "failed"
)

// ArtifactResult is the outcome of syncing a single artifact.
type ArtifactResult struct {
	// Path is the pack-relative path.
	Path string

	// Kind is the artifact's grammar.
	Kind model.ArtifactKind

	// Status is the terminal state.
	Status Status

	// Outcomes holds the per-record merge decisions, when a merge ran.
	Outcomes merge.Outcomes

	// BytesWritten is the size of the written file, zero when no write
	// happened.
	BytesWritten int64

	// Error is set when Status is StatusFailed.
	Error error
}

// SkippedKeys returns the record keys whose upstream change was held back
// because the user customized them.
func (ar *ArtifactResult) SkippedKeys() []model.RecordID {
	return ar.Outcomes.SkippedByUser()
}

// Result is the complete outcome of one sync run.
type Result struct {
	// From is the revision the pack was previously synced against, zero
	// on a first sync.
	From model.Revision

	// To is the revision synced to.
	To model.Revision

	// Artifacts holds one entry per processed artifact.
	Artifacts []ArtifactResult

	// DryRun indicates no files were modified.
	DryRun bool
}

// Synced returns artifacts that were merged and written.
func (r *Result) Synced() []ArtifactResult {
	return r.filterByStatus(StatusSynced)
}

// Installed returns artifacts written fresh from upstream.
func (r *Result) Installed() []ArtifactResult {
	return r.filterByStatus(StatusInstalled)
}

// Unchanged returns artifacts that needed no write.
func (r *Result) Unchanged() []ArtifactResult {
	return r.filterByStatus(StatusUnchanged)
}

// Failed returns artifacts that could not be synced.
func (r *Result) Failed() []ArtifactResult {
	return r.filterByStatus(StatusFailed)
}

// WithSkips returns artifacts where at least one upstream change was held
// back in favor of a user customization.
func (r *Result) WithSkips() []ArtifactResult {
	var filtered []ArtifactResult
	for _, ar := range r.Artifacts {
		if len(ar.SkippedKeys()) > 0 {
			filtered = append(filtered, ar)
		}
	}
	return filtered
}

func (r *Result) filterByStatus(status Status) []ArtifactResult {
	var filtered []ArtifactResult
	for _, ar := range r.Artifacts {
		if ar.Status == status {
			filtered = append(filtered, ar)
		}
	}
	return filtered
}

// Success reports whether every artifact synced cleanly.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0
}

// BytesWritten totals the bytes written across all artifacts.
func (r *Result) BytesWritten() int64 {
	var total int64
	for _, ar := range r.Artifacts {
		total += ar.BytesWritten
	}
	return total
}

// Summary returns a human-readable recap of the run.
func (r *Result) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	if r.From.IsZero() {
		sb.WriteString(fmt.Sprintf("Synced pack to %s\n", r.To))
	} else {
		sb.WriteString(fmt.Sprintf("Synced pack %s -> %s\n", r.From, r.To))
	}

	sb.WriteString(fmt.Sprintf("  Synced:    %d\n", len(r.Synced())))
	sb.WriteString(fmt.Sprintf("  Installed: %d\n", len(r.Installed())))
	sb.WriteString(fmt.Sprintf("  Unchanged: %d\n", len(r.Unchanged())))
	sb.WriteString(fmt.Sprintf("  Failed:    %d\n", len(r.Failed())))

	if skips := r.WithSkips(); len(skips) > 0 {
		sb.WriteString("\nCustomizations kept:\n")
		for _, ar := range skips {
			for _, id := range ar.SkippedKeys() {
				sb.WriteString(fmt.Sprintf("  - %s: %s\n", ar.Path, id))
			}
		}
	}

	if !r.Success() {
		sb.WriteString("\nErrors:\n")
		for _, ar := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", ar.Path, ar.Error))
		}
	}

	return sb.String()
}
