package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/packsync/packsync/internal/config"
	"github.com/packsync/packsync/internal/detector"
	"github.com/packsync/packsync/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage packsync configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					out, err := yaml.Marshal(cfg)
					if err != nil {
						return err
					}
					fmt.Printf("# %s\n%s", config.FilePath(), out)
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing configuration",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if config.Exists() && !cmd.Bool("force") {
						return cli.Exit(fmt.Sprintf("configuration already exists at %s (use --force to overwrite)", config.FilePath()), 1)
					}
					cfg := config.Default()
					if pack, found := detector.Best(); found {
						cfg.Pack.Dir = pack.Path
						fmt.Println(ui.Info("detected pack directory: " + pack.Path))
					}
					if err := cfg.Save(); err != nil {
						return err
					}
					fmt.Println(ui.StatusSuccess("wrote " + config.FilePath()))
					return nil
				},
			},
			{
				Name:  "path",
				Usage: "Print the configuration file path",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintln(os.Stdout, config.FilePath())
					return nil
				},
			},
		},
	}
}
