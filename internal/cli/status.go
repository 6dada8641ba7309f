package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/packsync/packsync/internal/airac"
	"github.com/packsync/packsync/internal/config"
	"github.com/packsync/packsync/internal/state"
	"github.com/packsync/packsync/internal/ui"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the pack's sync state and the current AIRAC cycle",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			ledger, err := state.Load("")
			if err != nil {
				return fmt.Errorf("open sync ledger: %w", err)
			}

			cal := airac.New()
			fmt.Printf("Pack directory:  %s\n", cfg.PackDir())
			fmt.Printf("Upstream:        %s (%s)\n", cfg.Upstream.URL, cfg.Upstream.Branch)
			fmt.Printf("Current AIRAC:   %s\n", ui.Bold(cal.CurrentTag()))
			fmt.Printf("Next cycle:      %s\n",
				humanize.Time(cal.NextCycle(cal.CurrentCycle())))

			if rev := ledger.LastRevision(); rev.IsZero() {
				fmt.Println(ui.StatusWarning("pack has never been synced, run 'packsync sync'"))
			} else {
				fmt.Printf("Synced revision: %s\n", ui.Bold(rev.String()))
				fmt.Printf("Tracked files:   %d\n", len(ledger.Artifacts))
				if rev.String() != cal.CurrentTag() {
					fmt.Println(ui.StatusWarning("a newer AIRAC cycle may be available"))
				} else {
					fmt.Println(ui.StatusSuccess("pack is current"))
				}
			}
			return nil
		},
	}
}
