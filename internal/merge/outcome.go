package merge

import "github.com/packsync/packsync/internal/model"

// KeyAction describes what the engine did with one changed key.
type KeyAction string

const (
	// ActionAdded means the new upstream record was inserted locally.
	ActionAdded KeyAction = "added"

	// ActionRemoved means the record was deleted locally.
	ActionRemoved KeyAction = "removed"

	// ActionUpdated means the local record was replaced with the new
	// upstream content.
	ActionUpdated KeyAction = "updated"

	// ActionSkippedUser means the user's local content took precedence
	// and upstream's version was not applied. Expected and user-visible,
	// not an error.
	ActionSkippedUser KeyAction = "skipped-by-user"

	// ActionNoop means the change required no local edit (the user had
	// already made the equivalent change).
	ActionNoop KeyAction = "noop"
)

// KeyOutcome records the engine's decision for one key.
type KeyOutcome struct {
	ID     model.RecordID
	Action KeyAction
}

// Outcomes is the per-key decision list for one artifact merge.
type Outcomes []KeyOutcome

// Changed reports whether any outcome mutated the local document.
func (o Outcomes) Changed() bool {
	for _, ko := range o {
		switch ko.Action {
		case ActionAdded, ActionRemoved, ActionUpdated:
			return true
		}
	}
	return false
}

// SkippedByUser returns the keys where user customization won.
func (o Outcomes) SkippedByUser() []model.RecordID {
	var out []model.RecordID
	for _, ko := range o {
		if ko.Action == ActionSkippedUser {
			out = append(out, ko.ID)
		}
	}
	return out
}
