// Package notify reports sync outcomes to the user. The console notifier
// prints styled per-artifact lines and a closing summary; the silent
// notifier drops everything, for --quiet runs and tests.
package notify

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/packsync/packsync/internal/ui"
)

// Summary aggregates one sync run.
type Summary struct {
	Revision  string
	Synced    int
	Unchanged int
	Skipped   int
	Failed    int
	Bytes     int64
	Started   time.Time
}

// Notifier receives user-facing sync events.
type Notifier interface {
	// SyncStarted announces the run and the revision being synced to.
	SyncStarted(revision string, artifacts int)

	// ArtifactSynced reports one successfully written artifact.
	ArtifactSynced(path string, detail string)

	// ArtifactUnchanged reports an artifact that needed no write.
	ArtifactUnchanged(path string)

	// ArtifactSkipped reports record keys left alone because the user
	// customized them.
	ArtifactSkipped(path string, keys []string)

	// ArtifactFailed reports one artifact that could not be synced.
	ArtifactFailed(path string, err error)

	// Done closes the run with the aggregate summary.
	Done(s Summary)
}

// Console prints sync events to a terminal.
type Console struct {
	out io.Writer
}

// NewConsole creates a console notifier writing to w (stdout when nil).
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{out: w}
}

func (c *Console) SyncStarted(revision string, artifacts int) {
	fmt.Fprintf(c.out, "Syncing %d artifacts to revision %s\n",
		artifacts, ui.Bold(revision))
}

func (c *Console) ArtifactSynced(path string, detail string) {
	line := ui.StatusSuccess(path)
	if detail != "" {
		line += " " + ui.Dim("("+detail+")")
	}
	fmt.Fprintln(c.out, line)
}

func (c *Console) ArtifactUnchanged(path string) {
	fmt.Fprintln(c.out, ui.StatusSkipped(path+" unchanged"))
}

func (c *Console) ArtifactSkipped(path string, keys []string) {
	fmt.Fprintln(c.out, ui.StatusWarning(fmt.Sprintf(
		"%s: kept %d customized %s", path, len(keys), plural(len(keys), "record"))))
	for _, key := range keys {
		fmt.Fprintf(c.out, "    %s\n", ui.Dim(key))
	}
}

func (c *Console) ArtifactFailed(path string, err error) {
	fmt.Fprintln(c.out, ui.StatusError(fmt.Sprintf("%s: %v", path, err)))
}

func (c *Console) Done(s Summary) {
	fmt.Fprintf(c.out, "\n%s synced, %d unchanged, %d with kept customizations, %d failed\n",
		ui.Bold(fmt.Sprintf("%d %s", s.Synced, plural(s.Synced, "artifact"))),
		s.Unchanged, s.Skipped, s.Failed)
	if s.Bytes > 0 {
		fmt.Fprintf(c.out, "Wrote %s in %s\n",
			humanize.Bytes(uint64(s.Bytes)),
			time.Since(s.Started).Round(time.Millisecond))
	}
	if s.Revision != "" {
		fmt.Fprintf(c.out, "Pack is at revision %s (synced %s)\n",
			ui.Bold(s.Revision), humanize.Time(time.Now()))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Silent drops all events.
type Silent struct{}

func (Silent) SyncStarted(string, int)          {}
func (Silent) ArtifactSynced(string, string)    {}
func (Silent) ArtifactUnchanged(string)         {}
func (Silent) ArtifactSkipped(string, []string) {}
func (Silent) ArtifactFailed(string, error)     {}
func (Silent) Done(Summary)                     {}
