// Package export renders a sync run as a machine-readable report.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/sync"
)

// Format represents the output format for sync reports.
type Format string

const (
	// FormatJSON renders the report as JSON.
	FormatJSON Format = "json"
	// FormatYAML renders the report as YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders the report as Markdown.
	FormatMarkdown Format = "markdown"
)

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatMarkdown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a string into a Format.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if !format.IsValid() {
		return "", fmt.Errorf("unsupported format %q (valid: json, yaml, markdown)", s)
	}
	return format, nil
}

// Options configures report rendering.
type Options struct {
	// Format specifies the output format.
	Format Format
	// Pretty enables indentation for JSON.
	Pretty bool
	// IncludeOutcomes includes per-record merge decisions.
	IncludeOutcomes bool
}

// DefaultOptions returns the default report options.
func DefaultOptions() Options {
	return Options{
		Format:          FormatJSON,
		Pretty:          true,
		IncludeOutcomes: true,
	}
}

// Exporter renders sync results in the configured format.
type Exporter struct {
	opts Options
}

// New creates a new Exporter.
func New(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// report is the serialized shape of a sync run.
type report struct {
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	From        string           `json:"from,omitempty" yaml:"from,omitempty"`
	To          string           `json:"to" yaml:"to"`
	DryRun      bool             `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Synced      int              `json:"synced" yaml:"synced"`
	Installed   int              `json:"installed" yaml:"installed"`
	Unchanged   int              `json:"unchanged" yaml:"unchanged"`
	Failed      int              `json:"failed" yaml:"failed"`
	Bytes       int64            `json:"bytes_written" yaml:"bytes_written"`
	Artifacts   []reportArtifact `json:"artifacts" yaml:"artifacts"`
}

// reportArtifact is one artifact entry in the report.
type reportArtifact struct {
	Path     string   `json:"path" yaml:"path"`
	Kind     string   `json:"kind" yaml:"kind"`
	Status   string   `json:"status" yaml:"status"`
	Bytes    int64    `json:"bytes_written,omitempty" yaml:"bytes_written,omitempty"`
	Skipped  []string `json:"skipped_keys,omitempty" yaml:"skipped_keys,omitempty"`
	Outcomes []string `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Export renders the result to w in the configured format.
func (e *Exporter) Export(result *sync.Result, w io.Writer) error {
	defer logging.Timer("export")()

	rep := e.toReport(result)

	logging.Debug("rendering sync report",
		slog.String("format", string(e.opts.Format)),
		logging.Count(len(rep.Artifacts)),
	)

	var err error
	switch e.opts.Format {
	case FormatJSON:
		err = e.exportJSON(rep, w)
	case FormatYAML:
		err = e.exportYAML(rep, w)
	case FormatMarkdown:
		err = e.exportMarkdown(rep, w)
	default:
		err = fmt.Errorf("unsupported format: %s", e.opts.Format)
	}
	if err != nil {
		logging.Error("report rendering failed",
			slog.String("format", string(e.opts.Format)),
			logging.Err(err),
		)
	}
	return err
}

func (e *Exporter) toReport(result *sync.Result) report {
	rep := report{
		GeneratedAt: time.Now().UTC(),
		From:        string(result.From),
		To:          string(result.To),
		DryRun:      result.DryRun,
		Synced:      len(result.Synced()),
		Installed:   len(result.Installed()),
		Unchanged:   len(result.Unchanged()),
		Failed:      len(result.Failed()),
		Bytes:       result.BytesWritten(),
		Artifacts:   make([]reportArtifact, 0, len(result.Artifacts)),
	}

	for _, ar := range result.Artifacts {
		ra := reportArtifact{
			Path:   ar.Path,
			Kind:   string(ar.Kind),
			Status: string(ar.Status),
			Bytes:  ar.BytesWritten,
		}
		for _, id := range ar.SkippedKeys() {
			ra.Skipped = append(ra.Skipped, id.String())
		}
		if e.opts.IncludeOutcomes {
			for _, ko := range ar.Outcomes {
				ra.Outcomes = append(ra.Outcomes, fmt.Sprintf("%s: %s", ko.ID, ko.Action))
			}
		}
		if ar.Error != nil {
			ra.Error = ar.Error.Error()
		}
		rep.Artifacts = append(rep.Artifacts, ra)
	}

	return rep
}

func (e *Exporter) exportJSON(rep report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if e.opts.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(rep)
}

func (e *Exporter) exportYAML(rep report, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(rep); err != nil {
		_ = encoder.Close()
		return err
	}
	return encoder.Close()
}

func (e *Exporter) exportMarkdown(rep report, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("# Sync Report\n\n")
	if rep.From != "" {
		sb.WriteString(fmt.Sprintf("Revision: %s -> %s\n\n", rep.From, rep.To))
	} else {
		sb.WriteString(fmt.Sprintf("Revision: %s (first sync)\n\n", rep.To))
	}
	if rep.DryRun {
		sb.WriteString("*Dry run - no changes made*\n\n")
	}

	sb.WriteString("| Path | Kind | Status | Kept customizations |\n")
	sb.WriteString("|------|------|--------|--------------------|\n")
	for _, ra := range rep.Artifacts {
		sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n",
			ra.Path, ra.Kind, ra.Status, strings.Join(ra.Skipped, ", ")))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Synced %d, installed %d, unchanged %d, failed %d.\n",
		rep.Synced, rep.Installed, rep.Unchanged, rep.Failed))

	for _, ra := range rep.Artifacts {
		if ra.Error != "" {
			sb.WriteString(fmt.Sprintf("\nError for `%s`: %s\n", ra.Path, ra.Error))
		}
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}
