package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/packsync/packsync/internal/artifact"
	"github.com/packsync/packsync/internal/config"
	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/model"
	"github.com/packsync/packsync/internal/session"
	"github.com/packsync/packsync/internal/ui"
	"github.com/packsync/packsync/internal/writeback"
)

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Carry session settings from existing profiles into the pack",
		Description: `Scans the pack directory for profile files, collects login details,
plugin paths and voice settings from previous sessions, and writes the
chosen values back into every profile. Conflicting values are resolved
interactively.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would change without writing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runSession(cfg, cmd.Bool("dry-run"))
		},
	}
}

func runSession(cfg *config.Config, dryRun bool) error {
	root := cfg.PackDir()
	found, err := session.Harvest(root)
	if err != nil {
		return fmt.Errorf("scanning profiles: %w", err)
	}
	if len(found) == 0 {
		fmt.Println(ui.Dim("no session settings found in " + root))
		return nil
	}

	settings, err := session.Resolve(found, session.NewConsolePrompter())
	if err != nil {
		return err
	}

	var updated int
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".prf") {
			return nil
		}
		changed, aerr := applySession(path, settings, dryRun)
		if aerr != nil {
			slog.Warn("profile not updated", logging.Path(path), logging.Err(aerr))
			return nil
		}
		if changed {
			updated++
			rel, _ := filepath.Rel(root, path)
			fmt.Println(ui.StatusSuccess(rel))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if updated == 0 {
		fmt.Println(ui.Dim("all profiles already up to date"))
	} else if dryRun {
		fmt.Printf("%d profile(s) would be updated\n", updated)
	} else {
		fmt.Printf("%d profile(s) updated\n", updated)
	}
	return nil
}

func applySession(path string, s session.Settings, dryRun bool) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	doc, err := artifact.Parse(model.Profile, raw)
	if err != nil {
		return false, err
	}
	session.Apply(doc, s)
	out := artifact.Serialize(doc)
	if string(out) == string(raw) {
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	if err := writeback.Commit(path, out); err != nil {
		return false, err
	}
	return true, nil
}
