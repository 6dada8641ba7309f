package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/packsync/packsync/internal/config"
	"github.com/packsync/packsync/internal/ui"
	"github.com/packsync/packsync/internal/validation"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate the configuration and the local pack",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-artifacts",
				Usage: "Skip re-parsing artifacts on disk",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			opts := validation.DefaultOptions()
			if cmd.Bool("skip-artifacts") {
				opts.ParseArtifacts = false
			}

			result := validation.Check(cfg, opts)
			for _, w := range result.Warnings {
				fmt.Println(ui.StatusWarning(w))
			}
			for _, e := range result.Errors {
				fmt.Println(ui.StatusError(e.Error()))
			}
			if result.HasErrors() {
				return cli.Exit(result.Summary(), 1)
			}
			fmt.Println(ui.StatusSuccess(result.Summary()))
			return nil
		},
	}
}
