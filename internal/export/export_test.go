package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/packsync/packsync/internal/merge"
	"github.com/packsync/packsync/internal/model"
	"github.com/packsync/packsync/internal/sync"
)

func sampleResult() *sync.Result {
	return &sync.Result{
		From: "2024/05",
		To:   "2024/06",
		Artifacts: []sync.ArtifactResult{
			{
				Path:         "UK/Data/Sector/UK.sct",
				Kind:         model.Sector,
				Status:       sync.StatusSynced,
				BytesWritten: 128,
				Outcomes: merge.Outcomes{
					{ID: model.RecordID{Tag: "POSITIONS", Key: "EGLL_APP"}, Action: merge.ActionUpdated},
					{ID: model.RecordID{Tag: "POSITIONS", Key: "EGLL_TWR"}, Action: merge.ActionSkippedUser},
				},
			},
			{
				Path:   "UK/Data/Settings/iTEC/EGLL_APP.txt",
				Kind:   model.Settings,
				Status: sync.StatusFailed,
				Error:  errors.New("duplicate key"),
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" YAML ", FormatYAML, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(DefaultOptions()).Export(sampleResult(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var rep map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if rep["to"] != "2024/06" {
		t.Errorf("to = %v, want 2024/06", rep["to"])
	}
	if rep["failed"] != float64(1) {
		t.Errorf("failed = %v, want 1", rep["failed"])
	}
	if !strings.Contains(buf.String(), "POSITIONS/EGLL_TWR") {
		t.Errorf("output missing skipped key:\n%s", buf.String())
	}
}

func TestExportYAML(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = FormatYAML

	var buf bytes.Buffer
	if err := New(opts).Export(sampleResult(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, want := range []string{"to: 2024/06", "status: failed", "error: duplicate key"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestExportMarkdown(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = FormatMarkdown

	var buf bytes.Buffer
	if err := New(opts).Export(sampleResult(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Sync Report",
		"2024/05 -> 2024/06",
		"`UK/Data/Sector/UK.sct`",
		"Error for `UK/Data/Settings/iTEC/EGLL_APP.txt`: duplicate key",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportUnknownFormat(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = Format("xml")

	var buf bytes.Buffer
	if err := New(opts).Export(sampleResult(), &buf); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
