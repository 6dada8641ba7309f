// Package upstream tracks the published controller pack repository. It
// resolves revisions (AIRAC release tags or the branch head), diffs file
// lists between revisions, and materializes file content at a revision, all
// from a bare local mirror so the user's installed pack is never touched by
// fetches.
package upstream

import (
	"context"
	"errors"
	"fmt"

	"github.com/packsync/packsync/internal/model"
)

// ErrUpstreamUnavailable reports that the remote could not be reached and no
// usable local mirror state exists. Callers holding a previously resolved
// revision may continue against the mirror instead.
var ErrUpstreamUnavailable = errors.New("upstream repository unavailable")

// RevisionNotFoundError reports that a revision recorded in the sync ledger
// no longer resolves upstream, typically because a release tag was deleted
// or rewritten. The caller should fall back to a full re-sync.
type RevisionNotFoundError struct {
	Revision model.Revision
}

func (e *RevisionNotFoundError) Error() string {
	return fmt.Sprintf("revision %q not found upstream", e.Revision)
}

// Tracker answers questions about the upstream pack repository.
type Tracker interface {
	// Refresh brings the local mirror up to date with the remote. A
	// remote failure is reported as ErrUpstreamUnavailable; the mirror,
	// if one exists, remains usable for the revisions it already holds.
	Refresh(ctx context.Context) error

	// Current resolves the latest published revision: the newest AIRAC
	// release tag at or before the current cycle, or the branch head
	// when no release tag exists.
	Current(ctx context.Context) (model.Revision, error)

	// ChangedPaths lists the pack-relative paths that differ between two
	// revisions, in repository order. A zero from revision means
	// everything at to is reported.
	ChangedPaths(ctx context.Context, from, to model.Revision) ([]string, error)

	// Files lists every pack-relative path present at a revision.
	Files(ctx context.Context, rev model.Revision) ([]string, error)

	// Materialize returns the content of one file at a revision. A file
	// absent at that revision yields (nil, nil).
	Materialize(ctx context.Context, rev model.Revision, path string) ([]byte, error)
}
