package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/packsync/packsync/internal/airac"
	"github.com/packsync/packsync/internal/backup"
	"github.com/packsync/packsync/internal/cache"
	"github.com/packsync/packsync/internal/config"
	"github.com/packsync/packsync/internal/export"
	"github.com/packsync/packsync/internal/lock"
	"github.com/packsync/packsync/internal/notify"
	"github.com/packsync/packsync/internal/progress"
	"github.com/packsync/packsync/internal/state"
	"github.com/packsync/packsync/internal/sync"
	"github.com/packsync/packsync/internal/upstream"
	"github.com/packsync/packsync/internal/util"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile the local pack with the latest upstream release",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Preview changes without writing anything",
			},
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Reconcile every artifact, ignoring the stored revision",
			},
			&cli.BoolFlag{
				Name:  "skip-backup",
				Usage: "Skip the pre-write snapshot for this run",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress per-artifact output",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a machine-readable run report to this file",
			},
			&cli.StringFlag{
				Name:  "report-format",
				Usage: "Report format: json, yaml or markdown",
				Value: "json",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			var reportFormat export.Format
			if cmd.String("report") != "" {
				reportFormat, err = export.ParseFormat(cmd.String("report-format"))
				if err != nil {
					return err
				}
			}

			runLock := lock.New("")
			if err := runLock.Acquire(); err != nil {
				if errors.Is(err, lock.ErrLocked) {
					return cli.Exit("another packsync process is running", 1)
				}
				return err
			}
			defer runLock.Release()

			orch, err := buildOrchestrator(cfg, cmd.Bool("quiet"))
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithTimeout(ctx, cfg.Upstream.Timeout)
			defer cancel()

			var bar *progress.Bar
			opts := sync.Options{
				DryRun:     cmd.Bool("dry-run"),
				Full:       cmd.Bool("full"),
				SkipBackup: cmd.Bool("skip-backup"),
				Progress: func(done, total int, path string) {
					if bar == nil {
						bar = progress.New(int64(total), "Syncing pack", nil)
					}
					bar.Describe(filepath.Base(path))
					bar.Add(1)
				},
			}

			result, err := orch.Sync(runCtx, opts)
			if bar != nil {
				bar.Finish()
			}
			if err != nil {
				return err
			}
			if path := cmd.String("report"); path != "" {
				if err := writeReport(result, path, reportFormat); err != nil {
					return err
				}
			}
			if !result.Success() {
				return cli.Exit(fmt.Sprintf("%d artifacts failed to sync", len(result.Failed())), 1)
			}
			return nil
		},
	}
}

// writeReport renders the run result to a file.
func writeReport(result *sync.Result, path string, format export.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	opts := export.DefaultOptions()
	opts.Format = format
	return export.New(opts).Export(result, f)
}

// buildOrchestrator wires the sync dependencies from configuration.
func buildOrchestrator(cfg *config.Config, quiet bool) (*sync.Orchestrator, error) {
	revCache, err := cache.Load("")
	if err != nil {
		return nil, fmt.Errorf("open revision cache: %w", err)
	}

	mirror := filepath.Join(util.PacksyncConfigPath(), "mirror")
	tracker := upstream.NewGitTracker(
		cfg.Upstream.URL,
		cfg.Upstream.Remote,
		cfg.Upstream.Branch,
		mirror,
		airac.New(),
		revCache,
	)

	ledger, err := state.Load("")
	if err != nil {
		return nil, fmt.Errorf("open sync ledger: %w", err)
	}

	var notifier notify.Notifier = notify.NewConsole(nil)
	if quiet {
		notifier = notify.Silent{}
	}

	backups := backup.NewStore(cfg.Backup.Location)
	return sync.New(cfg, tracker, ledger, backups, notifier), nil
}
