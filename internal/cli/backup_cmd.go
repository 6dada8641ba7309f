package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/packsync/packsync/internal/archive"
	"github.com/packsync/packsync/internal/backup"
	"github.com/packsync/packsync/internal/config"
	"github.com/packsync/packsync/internal/model"
	"github.com/packsync/packsync/internal/state"
	"github.com/packsync/packsync/internal/ui"
)

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Inspect and manage artifact backups",
		Commands: []*cli.Command{
			backupListCommand(),
			backupRestoreCommand(),
			backupCleanupCommand(),
			backupExportCommand(),
			backupImportCommand(),
		},
	}
}

func backupListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored backups",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Filter by artifact kind (sector, profile, settings)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store := backup.NewStore(cfg.Backup.Location)
			backups, err := store.List(model.ArtifactKind(cmd.String("kind")))
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println(ui.Dim("no backups found"))
				return nil
			}
			for _, b := range backups {
				fmt.Printf("%s  %-8s  %-10s  %s  %s\n",
					b.ID,
					b.Kind,
					humanize.Bytes(uint64(b.Size)),
					b.CreatedAt.Local().Format(time.DateTime),
					b.Artifact,
				)
			}
			return nil
		},
	}
}

func backupRestoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a backup to a target path",
		ArgsUsage: "<id> <target>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return cli.Exit("usage: packsync backup restore <id> <target>", 1)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store := backup.NewStore(cfg.Backup.Location)
			id, target := cmd.Args().Get(0), cmd.Args().Get(1)
			if err := store.Restore(id, target); err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("restored %s to %s", id, target)))

			// A restore over a tracked artifact invalidates its sync
			// record: the next run must reconcile the restored content.
			if rel, ok := packRelative(cfg.PackDir(), target); ok {
				ledger, err := state.Load("")
				if err != nil {
					return err
				}
				if entry, tracked := ledger.Get(rel); tracked {
					ledger.Forget(rel)
					if err := ledger.Save(); err != nil {
						return err
					}
					fmt.Println(ui.Dim(fmt.Sprintf("dropped sync record for %s (was %s)", rel, entry.Revision)))
				}
			}
			return nil
		},
	}
}

// packRelative resolves target against the pack directory and reports the
// pack-relative slash path, or false when the target lies outside the pack.
func packRelative(packDir, target string) (string, bool) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(packDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func backupExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export all tracked artifacts as a tar.gz snapshot",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("usage: packsync backup export <file>", 1)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ledger, err := state.Load("")
			if err != nil {
				return err
			}
			if len(ledger.Artifacts) == 0 {
				return cli.Exit("nothing tracked yet, run packsync sync first", 1)
			}

			paths := make([]string, 0, len(ledger.Artifacts))
			for rel := range ledger.Artifacts {
				paths = append(paths, rel)
			}
			sort.Strings(paths)

			out, err := os.Create(cmd.Args().Get(0))
			if err != nil {
				return err
			}
			defer out.Close()

			if err := archive.Create(cfg.PackDir(), paths, ledger.LastRevision(), out); err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("exported %d artifact(s) to %s", len(paths), cmd.Args().Get(0))))
			return nil
		},
	}
}

func backupImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Restore artifacts from a tar.gz snapshot into the pack",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "List the snapshot contents without writing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("usage: packsync backup import <file>", 1)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			in, err := os.Open(cmd.Args().Get(0))
			if err != nil {
				return err
			}
			defer in.Close()

			restored, manifest, err := archive.Extract(in, archive.ExtractOptions{
				TargetDir: cfg.PackDir(),
				DryRun:    cmd.Bool("dry-run"),
			})
			if err != nil {
				return err
			}
			for _, rel := range restored {
				fmt.Println("  " + rel)
			}
			verb := "restored"
			if cmd.Bool("dry-run") {
				verb = "snapshot contains"
			}
			rev := string(manifest.Revision)
			if rev == "" {
				rev = "unknown revision"
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s %d artifact(s) (%s)", verb, len(restored), rev)))
			return nil
		},
	}
}

func backupCleanupCommand() *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Remove old backups",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-backups",
				Usage: "Maximum backups to keep per artifact",
				Value: backup.DefaultCleanupOptions().MaxBackups,
			},
			&cli.DurationFlag{
				Name:  "max-age",
				Usage: "Remove backups older than this",
				Value: backup.DefaultCleanupOptions().MaxAge,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be removed without deleting",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store := backup.NewStore(cfg.Backup.Location)
			opts := backup.DefaultCleanupOptions()
			opts.MaxBackups = cmd.Int("max-backups")
			opts.MaxAge = cmd.Duration("max-age")
			opts.DryRun = cmd.Bool("dry-run")

			removed, err := store.Cleanup(opts)
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				fmt.Println(ui.Dim("nothing to clean up"))
				return nil
			}
			verb := "removed"
			if opts.DryRun {
				verb = "would remove"
			}
			for _, id := range removed {
				fmt.Printf("  %s %s\n", verb, id)
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s %d backup(s)", verb, len(removed))))
			return nil
		},
	}
}
