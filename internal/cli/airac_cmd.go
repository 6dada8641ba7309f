package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/packsync/packsync/internal/airac"
	"github.com/packsync/packsync/internal/ui"
)

func airacCommand() *cli.Command {
	return &cli.Command{
		Name:  "airac",
		Usage: "Show the current AIRAC cycle",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cal := airac.New()
			current := cal.CurrentCycle()
			next := cal.NextCycle(current)

			fmt.Printf("Current AIRAC:  %s\n", ui.Bold(cal.CurrentTag()))
			fmt.Printf("Effective from: %s\n", current.Format(time.DateOnly))
			fmt.Printf("Next cycle:     %s on %s (%s)\n",
				cal.Tag(next), next.Format(time.DateOnly), humanize.Time(next))
			return nil
		},
	}
}
