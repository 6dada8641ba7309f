package merge

import (
	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/model"
)

// Engine applies upstream change sets to local documents.
type Engine struct{}

// New creates a merge engine.
func New() *Engine {
	return &Engine{}
}

// Apply reconciles the upstream change between oldUpstream and newUpstream
// into local, returning the merged document and the per-key outcomes. The
// input documents are not mutated.
//
// A user edit is detected as content inequality between the local record and
// oldUpstream's version of it. This cannot distinguish "user edited after
// upstream changed underneath them" from "user never edited"; the
// approximation is deliberate and matches the tool's historical behavior.
//
// oldUpstream may be nil on a first-ever sync: every upstream key is then an
// addition, and a pre-existing local key with different content than
// newUpstream is treated as user-customized rather than overwritten.
func (e *Engine) Apply(oldUpstream, newUpstream, local *model.Document) (*model.Document, Outcomes) {
	defer logging.Timer("merge")()

	merged := local.Clone()
	cs := Diff(oldUpstream, newUpstream)

	logging.Debug("computed upstream change set",
		logging.Count(cs.Len()),
	)

	var oldIdx map[model.RecordID]model.Record
	if oldUpstream != nil {
		oldIdx = oldUpstream.Index()
	}
	newIdx := newUpstream.Index()

	var outcomes Outcomes

	for _, id := range cs.Added {
		rec := newIdx[id]
		if i := merged.Find(id); i >= 0 {
			// The user pre-added this key by hand; their version
			// stands.
			if merged.Records[i].ContentEqual(rec) {
				outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionNoop})
			} else {
				outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionSkippedUser})
			}
			continue
		}
		if !hasTag(merged, rec.Tag) {
			// A tag new to the local file brings its section header
			// (or other raw preamble) along so the appended record
			// serializes under the right heading.
			if hdr, ok := rawPreamble(newUpstream, rec.Tag); ok {
				merged.Append(hdr)
			}
		}
		merged.Append(rec)
		outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionAdded})
	}

	for _, id := range cs.Removed {
		if merged.Remove(id) {
			outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionRemoved})
		} else {
			// Already removed by the user independently.
			outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionNoop})
		}
	}

	for _, id := range cs.Modified {
		i := merged.Find(id)
		if i < 0 {
			// The user removed a record upstream went on to modify;
			// their removal stands.
			outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionSkippedUser})
			continue
		}
		cur := merged.Records[i]
		switch {
		case cur.ContentEqual(oldIdx[id]):
			// Untouched by the user, safe to update in place.
			merged.Records[i] = newIdx[id].Clone()
			outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionUpdated})
		case cur.ContentEqual(newIdx[id]):
			outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionNoop})
		default:
			outcomes = append(outcomes, KeyOutcome{ID: id, Action: ActionSkippedUser})
		}
	}

	// Keys present only locally are purely manual entries and are left
	// untouched by construction.

	logging.Debug("merge applied",
		logging.Count(len(outcomes)),
	)
	return merged, outcomes
}

func hasTag(doc *model.Document, tag string) bool {
	for _, r := range doc.Records {
		if r.Tag == tag {
			return true
		}
	}
	return false
}

// rawPreamble returns the first unkeyed record carrying the given tag, which
// for sector documents is the bracketed section header.
func rawPreamble(doc *model.Document, tag string) (model.Record, bool) {
	for _, r := range doc.Records {
		if r.Tag == tag && !r.Keyed() {
			return r, true
		}
	}
	return model.Record{}, false
}
