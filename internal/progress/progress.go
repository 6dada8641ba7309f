// Package progress renders a progress bar while artifacts are synced.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/ui"
)

// Bar tracks progress across the artifacts of one sync run. It draws
// nothing when output is piped, colors are off, or debug logging is active,
// so logs stay parseable.
type Bar struct {
	bar     *progressbar.ProgressBar
	enabled bool
	desc    string
}

// New creates a bar over max steps writing to w (stderr when nil).
func New(max int64, description string, w io.Writer) *Bar {
	if w == nil {
		w = os.Stderr
	}

	b := &Bar{
		enabled: shouldShow(w),
		desc:    description,
	}
	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s started", description),
			logging.Count(int(max)))
		return b
	}

	b.bar = progressbar.NewOptions64(
		max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(ui.IsColorEnabled()),
	)
	return b
}

// Add advances the bar by n steps.
func (b *Bar) Add(n int) {
	if b.enabled {
		_ = b.bar.Add(n)
	}
}

// Describe updates the text shown next to the bar.
func (b *Bar) Describe(desc string) {
	b.desc = desc
	if b.enabled {
		b.bar.Describe(desc)
	}
}

// Finish completes the bar.
func (b *Bar) Finish() {
	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s completed", b.desc))
		return
	}
	_ = b.bar.Finish()
}

// Clear erases the bar from the terminal, for interleaving other output.
func (b *Bar) Clear() {
	if b.enabled {
		_ = b.bar.Clear()
	}
}

func shouldShow(w io.Writer) bool {
	if !ui.IsColorEnabled() {
		return false
	}
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || (stat.Mode()&os.ModeCharDevice) == 0 {
			return false
		}
	}
	// Debug output and a live bar fight over the terminal.
	if logging.Default().Enabled(context.Background(), logging.LevelDebug) {
		return false
	}
	return true
}
