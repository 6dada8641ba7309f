// Package merge reconciles upstream structural changes into locally
// customized artifacts. It compares the previous and latest upstream parses
// of a file, partitions the differences, and applies them to the user's
// on-disk parse under a fixed precedence policy: explicit user customization
// wins over upstream updates, which win over insertion order.
package merge

import (
	"github.com/packsync/packsync/internal/model"
)

// ChangeSet partitions the keyed records of two revisions of the same
// artifact into three disjoint sets. A key appears in exactly one set, or in
// none when its content is unchanged.
type ChangeSet struct {
	// Added keys exist only in the new revision, in new-revision order.
	Added []model.RecordID

	// Removed keys exist only in the old revision, in old-revision order.
	Removed []model.RecordID

	// Modified keys exist in both revisions with differing content, in
	// new-revision order.
	Modified []model.RecordID
}

// Empty reports whether the two revisions carry identical keyed records.
func (cs ChangeSet) Empty() bool {
	return len(cs.Added) == 0 && len(cs.Removed) == 0 && len(cs.Modified) == 0
}

// Len returns the total number of changed keys.
func (cs ChangeSet) Len() int {
	return len(cs.Added) + len(cs.Removed) + len(cs.Modified)
}

// Diff computes the ChangeSet between two parses of the same artifact. A nil
// old document is treated as empty, which makes every key in new an
// addition (the first-sync case).
func Diff(old, new *model.Document) ChangeSet {
	var cs ChangeSet

	var oldIdx map[model.RecordID]model.Record
	if old != nil {
		oldIdx = old.Index()
	}

	newKeys := make(map[model.RecordID]bool)
	if new != nil {
		for _, rec := range new.Records {
			if !rec.Keyed() {
				continue
			}
			id := rec.ID()
			newKeys[id] = true
			prev, existed := oldIdx[id]
			switch {
			case !existed:
				cs.Added = append(cs.Added, id)
			case !prev.ContentEqual(rec):
				cs.Modified = append(cs.Modified, id)
			}
		}
	}

	if old != nil {
		for _, rec := range old.Records {
			if rec.Keyed() && !newKeys[rec.ID()] {
				cs.Removed = append(cs.Removed, rec.ID())
			}
		}
	}

	return cs
}
