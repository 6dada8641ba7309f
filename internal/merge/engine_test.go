package merge

import (
	"strings"
	"testing"

	"github.com/packsync/packsync/internal/artifact"
	"github.com/packsync/packsync/internal/model"
)

func mustParse(t *testing.T, kind model.ArtifactKind, content string) *model.Document {
	t.Helper()
	doc, err := artifact.Parse(kind, []byte(content))
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", kind, err)
	}
	return doc
}

func mustSerialize(t *testing.T, doc *model.Document) string {
	t.Helper()
	return string(artifact.Serialize(doc))
}

func actionFor(o Outcomes, id model.RecordID) KeyAction {
	for _, ko := range o {
		if ko.ID == id {
			return ko.Action
		}
	}
	return ""
}

const oldPositions = `[POSITIONS]
EGLL_APP 119.725
EGLL_TWR 118.500
`

const newPositions = `[POSITIONS]
EGLL_APP 119.180
EGLL_TWR 118.500
EGLL_GND 121.900
`

func TestApplyUpstreamUpdateAndAddition(t *testing.T) {
	oldUp := mustParse(t, model.Sector, oldPositions)
	newUp := mustParse(t, model.Sector, newPositions)
	local := mustParse(t, model.Sector, `[POSITIONS]
EGLL_APP 119.725
EGLL_TWR 118.500
MANUAL_X 123.450
`)

	eng := New()
	merged, outcomes := eng.Apply(oldUp, newUp, local)

	got := mustSerialize(t, merged)
	want := `[POSITIONS]
EGLL_APP 119.180
EGLL_TWR 118.500
MANUAL_X 123.450
EGLL_GND 121.900
`
	if got != want {
		t.Errorf("merged output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	app := model.RecordID{Tag: "POSITIONS", Key: "EGLL_APP"}
	gnd := model.RecordID{Tag: "POSITIONS", Key: "EGLL_GND"}
	if a := actionFor(outcomes, app); a != ActionUpdated {
		t.Errorf("EGLL_APP action = %q, want %q", a, ActionUpdated)
	}
	if a := actionFor(outcomes, gnd); a != ActionAdded {
		t.Errorf("EGLL_GND action = %q, want %q", a, ActionAdded)
	}
}

func TestApplyUserEditWinsOverUpstreamUpdate(t *testing.T) {
	oldUp := mustParse(t, model.Sector, oldPositions)
	newUp := mustParse(t, model.Sector, newPositions)
	local := mustParse(t, model.Sector, `[POSITIONS]
EGLL_APP 119.000
EGLL_TWR 118.500
`)

	merged, outcomes := New().Apply(oldUp, newUp, local)

	if !strings.Contains(mustSerialize(t, merged), "EGLL_APP 119.000") {
		t.Error("user-edited EGLL_APP value was overwritten")
	}
	app := model.RecordID{Tag: "POSITIONS", Key: "EGLL_APP"}
	if a := actionFor(outcomes, app); a != ActionSkippedUser {
		t.Errorf("EGLL_APP action = %q, want %q", a, ActionSkippedUser)
	}
	skipped := outcomes.SkippedByUser()
	if len(skipped) != 1 || skipped[0] != app {
		t.Errorf("SkippedByUser() = %v, want [%v]", skipped, app)
	}
}

func TestApplyUpstreamRemoval(t *testing.T) {
	oldUp := mustParse(t, model.Sector, oldPositions)
	newUp := mustParse(t, model.Sector, "[POSITIONS]\nEGLL_APP 119.725\n")

	t.Run("record present locally", func(t *testing.T) {
		local := mustParse(t, model.Sector, oldPositions)
		merged, outcomes := New().Apply(oldUp, newUp, local)
		if strings.Contains(mustSerialize(t, merged), "EGLL_TWR") {
			t.Error("upstream-removed record survived the merge")
		}
		twr := model.RecordID{Tag: "POSITIONS", Key: "EGLL_TWR"}
		if a := actionFor(outcomes, twr); a != ActionRemoved {
			t.Errorf("EGLL_TWR action = %q, want %q", a, ActionRemoved)
		}
	})

	t.Run("already removed by user", func(t *testing.T) {
		local := mustParse(t, model.Sector, "[POSITIONS]\nEGLL_APP 119.725\n")
		_, outcomes := New().Apply(oldUp, newUp, local)
		twr := model.RecordID{Tag: "POSITIONS", Key: "EGLL_TWR"}
		if a := actionFor(outcomes, twr); a != ActionNoop {
			t.Errorf("EGLL_TWR action = %q, want %q", a, ActionNoop)
		}
	})
}

func TestApplyUserRemovalWinsOverUpstreamUpdate(t *testing.T) {
	oldUp := mustParse(t, model.Sector, oldPositions)
	newUp := mustParse(t, model.Sector, newPositions)
	local := mustParse(t, model.Sector, "[POSITIONS]\nEGLL_TWR 118.500\n")

	merged, outcomes := New().Apply(oldUp, newUp, local)

	if strings.Contains(mustSerialize(t, merged), "EGLL_APP") {
		t.Error("user-removed record was reintroduced by an upstream update")
	}
	app := model.RecordID{Tag: "POSITIONS", Key: "EGLL_APP"}
	if a := actionFor(outcomes, app); a != ActionSkippedUser {
		t.Errorf("EGLL_APP action = %q, want %q", a, ActionSkippedUser)
	}
}

func TestApplyFirstSync(t *testing.T) {
	newUp := mustParse(t, model.Sector, newPositions)

	t.Run("empty local", func(t *testing.T) {
		local := &model.Document{Kind: model.Sector}
		merged, outcomes := New().Apply(nil, newUp, local)
		if got, want := mustSerialize(t, merged), newPositions; got != want {
			t.Errorf("merged output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
		}
		for _, ko := range outcomes {
			if ko.Action != ActionAdded {
				t.Errorf("%v action = %q, want %q", ko.ID, ko.Action, ActionAdded)
			}
		}
	})

	t.Run("pre-existing edited local key", func(t *testing.T) {
		local := mustParse(t, model.Sector, "[POSITIONS]\nEGLL_APP 119.000\n")
		merged, outcomes := New().Apply(nil, newUp, local)
		if !strings.Contains(mustSerialize(t, merged), "EGLL_APP 119.000") {
			t.Error("pre-existing local record was overwritten on first sync")
		}
		app := model.RecordID{Tag: "POSITIONS", Key: "EGLL_APP"}
		if a := actionFor(outcomes, app); a != ActionSkippedUser {
			t.Errorf("EGLL_APP action = %q, want %q", a, ActionSkippedUser)
		}
	})
}

func TestApplyIdempotent(t *testing.T) {
	oldUp := mustParse(t, model.Sector, oldPositions)
	newUp := mustParse(t, model.Sector, newPositions)
	local := mustParse(t, model.Sector, `[POSITIONS]
EGLL_APP 119.725
EGLL_TWR 118.500
MANUAL_X 123.450
`)

	eng := New()
	once, _ := eng.Apply(oldUp, newUp, local)
	twice, again := eng.Apply(newUp, newUp, once)

	if mustSerialize(t, once) != mustSerialize(t, twice) {
		t.Error("second application with an unchanged upstream altered the document")
	}
	if again.Changed() {
		t.Errorf("second application reported changes: %v", again)
	}
}

func TestApplyDoesNotMutateInputs(t *testing.T) {
	oldUp := mustParse(t, model.Sector, oldPositions)
	newUp := mustParse(t, model.Sector, newPositions)
	local := mustParse(t, model.Sector, oldPositions)
	before := mustSerialize(t, local)

	New().Apply(oldUp, newUp, local)

	if got := mustSerialize(t, local); got != before {
		t.Errorf("local document mutated:\ngot:\n%s\nwant:\n%s", got, before)
	}
}

func TestApplyProfileDocuments(t *testing.T) {
	oldUp := mustParse(t, model.Profile, "Settings\tsector\tUK\\2024_05\\UK.sct\r\nWindow\ttop\t100\r\n")
	newUp := mustParse(t, model.Profile, "Settings\tsector\tUK\\2024_06\\UK.sct\r\nWindow\ttop\t100\r\n")
	local := mustParse(t, model.Profile, "Settings\tsector\tUK\\2024_05\\UK.sct\r\nWindow\ttop\t100\r\nLastSession\tcertificate\t1234567\r\n")

	merged, outcomes := New().Apply(oldUp, newUp, local)

	got := mustSerialize(t, merged)
	want := "Settings\tsector\tUK\\2024_06\\UK.sct\r\nWindow\ttop\t100\r\nLastSession\tcertificate\t1234567\r\n"
	if got != want {
		t.Errorf("merged profile mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
	sector := model.RecordID{Tag: "Settings", Key: "sector"}
	if a := actionFor(outcomes, sector); a != ActionUpdated {
		t.Errorf("sector action = %q, want %q", a, ActionUpdated)
	}
}

func TestDiff(t *testing.T) {
	oldUp := mustParse(t, model.Sector, oldPositions)
	newUp := mustParse(t, model.Sector, newPositions)

	cs := Diff(oldUp, newUp)
	if len(cs.Added) != 1 || cs.Added[0] != (model.RecordID{Tag: "POSITIONS", Key: "EGLL_GND"}) {
		t.Errorf("Added = %v", cs.Added)
	}
	if len(cs.Modified) != 1 || cs.Modified[0] != (model.RecordID{Tag: "POSITIONS", Key: "EGLL_APP"}) {
		t.Errorf("Modified = %v", cs.Modified)
	}
	if len(cs.Removed) != 0 {
		t.Errorf("Removed = %v", cs.Removed)
	}

	if got := Diff(newUp, newUp); !got.Empty() {
		t.Errorf("Diff of identical documents = %v, want empty", got)
	}
}
