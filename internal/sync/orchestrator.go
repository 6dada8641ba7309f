// Package sync drives a full pack reconciliation: resolving the target
// upstream revision, diffing it against the last synced one, merging each
// changed artifact with the user's local copy, and writing the results back.
// Artifacts fail independently; one bad file never aborts the run.
package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/packsync/packsync/internal/artifact"
	"github.com/packsync/packsync/internal/backup"
	"github.com/packsync/packsync/internal/classify"
	"github.com/packsync/packsync/internal/config"
	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/merge"
	"github.com/packsync/packsync/internal/model"
	"github.com/packsync/packsync/internal/notify"
	"github.com/packsync/packsync/internal/state"
	"github.com/packsync/packsync/internal/upstream"
	"github.com/packsync/packsync/internal/writeback"
)

// Options configures one sync run.
type Options struct {
	// DryRun previews what would change without writing anything.
	DryRun bool

	// Full ignores the stored revision and reconciles every artifact.
	Full bool

	// SkipBackup disables the pre-write snapshot for this run.
	SkipBackup bool

	// Progress, when set, is called after each artifact with the number
	// processed so far and the total.
	Progress func(done, total int, path string)
}

// Orchestrator wires the tracker, merge engine, ledger, and backups into
// the sync workflow.
type Orchestrator struct {
	cfg      *config.Config
	tracker  upstream.Tracker
	ledger   *state.Store
	backups  *backup.Store
	engine   *merge.Engine
	notifier notify.Notifier
}

// New creates an orchestrator. A nil notifier is replaced with a silent one.
func New(cfg *config.Config, tracker upstream.Tracker, ledger *state.Store, backups *backup.Store, notifier notify.Notifier) *Orchestrator {
	if notifier == nil {
		notifier = notify.Silent{}
	}
	return &Orchestrator{
		cfg:      cfg,
		tracker:  tracker,
		ledger:   ledger,
		backups:  backups,
		engine:   merge.New(),
		notifier: notifier,
	}
}

// Sync reconciles the local pack with the latest upstream revision.
func (o *Orchestrator) Sync(ctx context.Context, opts Options) (*Result, error) {
	defer logging.Timer("sync")()
	started := time.Now()

	if err := o.tracker.Refresh(ctx); err != nil {
		if !errors.Is(err, upstream.ErrUpstreamUnavailable) {
			return nil, err
		}
		// The mirror may still serve a previously fetched revision.
		logging.Warn("upstream unreachable, syncing against local mirror",
			logging.Err(err),
		)
	}

	to, err := o.tracker.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve upstream revision: %w", err)
	}

	from := o.ledger.LastRevision()
	if opts.Full {
		from = ""
	}

	paths, err := o.changedPaths(ctx, &from, to)
	if err != nil {
		return nil, err
	}

	managed := o.managedTargets(paths)
	result := &Result{From: from, To: to, DryRun: opts.DryRun}

	o.notifier.SyncStarted(to.String(), len(managed))
	logging.Info("starting sync",
		logging.Revision(to.String()),
		logging.Count(len(managed)),
	)

	for i, m := range managed {
		ar := o.syncArtifact(ctx, m, from, to, opts)
		result.Artifacts = append(result.Artifacts, ar)
		o.reportArtifact(ar)
		if opts.Progress != nil {
			opts.Progress(i+1, len(managed), m.path)
		}
	}

	if newSct := o.newSectorFile(result); newSct != "" && o.cfg.Sync.RewriteSectorRefs {
		refs := o.rewriteSectorRefs(newSct, to, opts)
		result.Artifacts = append(result.Artifacts, refs...)
		for _, ar := range refs {
			o.reportArtifact(ar)
		}
	}

	if !opts.DryRun {
		o.ledger.SetRevision(to)
		if err := o.ledger.Save(); err != nil {
			return result, fmt.Errorf("save sync ledger: %w", err)
		}
	}

	o.notifier.Done(notify.Summary{
		Revision:  to.String(),
		Synced:    len(result.Synced()) + len(result.Installed()),
		Unchanged: len(result.Unchanged()),
		Skipped:   len(result.WithSkips()),
		Failed:    len(result.Failed()),
		Bytes:     result.BytesWritten(),
		Started:   started,
	})
	return result, nil
}

// changedPaths diffs the ledger revision against to. A zero from revision,
// or a stored revision that no longer resolves upstream, turns into a full
// reconciliation over every file at to.
func (o *Orchestrator) changedPaths(ctx context.Context, from *model.Revision, to model.Revision) ([]string, error) {
	if *from == to {
		return nil, nil
	}
	if (*from).IsZero() {
		return o.allPaths(ctx, to)
	}

	paths, err := o.tracker.ChangedPaths(ctx, *from, to)
	var notFound *upstream.RevisionNotFoundError
	if errors.As(err, &notFound) {
		logging.Warn("last synced revision gone upstream, running full reconciliation",
			logging.Revision((*from).String()),
		)
		*from = ""
		return o.allPaths(ctx, to)
	}
	if err != nil {
		return nil, fmt.Errorf("diff upstream revisions: %w", err)
	}
	return paths, nil
}

func (o *Orchestrator) allPaths(ctx context.Context, to model.Revision) ([]string, error) {
	paths, err := o.tracker.Files(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("list upstream files: %w", err)
	}
	return paths, nil
}

// managedArtifact couples a changed path with its classification.
type managedArtifact struct {
	path    string
	targets []model.Target
}

// managedTargets filters the changed paths down to recognized artifacts of
// enabled plugins, sorted for stable processing order.
func (o *Orchestrator) managedTargets(paths []string) []managedArtifact {
	var managed []managedArtifact
	for _, p := range paths {
		targets := classify.Classify(p)
		if len(targets) == 0 {
			logging.Debug("ignoring unmanaged file",
				logging.Path(p),
			)
			continue
		}
		if plugin := owningPlugin(targets); plugin != "" && !o.cfg.Plugins.Enabled(plugin) {
			logging.Debug("ignoring artifact of disabled plugin",
				logging.Path(p),
				logging.Plugin(string(plugin)),
			)
			continue
		}
		managed = append(managed, managedArtifact{path: p, targets: targets})
	}
	sort.Slice(managed, func(i, j int) bool { return managed[i].path < managed[j].path })
	return managed
}

// owningPlugin returns the plugin a target set belongs to, if any.
func owningPlugin(targets []model.Target) model.PluginID {
	for _, t := range targets {
		if t.Plugin != "" {
			return t.Plugin
		}
	}
	return ""
}

// syncArtifact runs one artifact through the merge pipeline. Every error is
// captured in the result rather than returned, so siblings keep syncing.
func (o *Orchestrator) syncArtifact(ctx context.Context, m managedArtifact, from, to model.Revision, opts Options) ArtifactResult {
	kind := m.targets[0].Kind
	ar := ArtifactResult{Path: m.path, Kind: kind}

	newContent, err := o.tracker.Materialize(ctx, to, m.path)
	if err != nil {
		return fail(ar, fmt.Errorf("materialize upstream content: %w", err))
	}
	if newContent == nil {
		// Removed upstream. The local file may carry customizations,
		// deleting it is the user's call.
		logging.Info("artifact removed upstream, keeping local copy",
			logging.Artifact(m.path),
		)
		ar.Status = StatusUnchanged
		return ar
	}

	localPath := filepath.Join(o.cfg.PackDir(), filepath.FromSlash(m.path))
	localContent, err := os.ReadFile(localPath) // #nosec G304 - path is inside the managed pack
	if os.IsNotExist(err) {
		return o.install(ar, localPath, newContent, to, opts)
	}
	if err != nil {
		return fail(ar, fmt.Errorf("read local artifact: %w", err))
	}

	var oldDoc *model.Document
	if !from.IsZero() {
		oldContent, err := o.tracker.Materialize(ctx, from, m.path)
		if err != nil {
			return fail(ar, fmt.Errorf("materialize previous content: %w", err))
		}
		if oldContent != nil {
			oldDoc, err = artifact.Parse(kind, oldContent)
			if err != nil {
				return fail(ar, err)
			}
		}
	}

	newDoc, err := artifact.Parse(kind, newContent)
	if err != nil {
		return fail(ar, err)
	}
	localDoc, err := artifact.Parse(kind, localContent)
	if err != nil {
		return fail(ar, err)
	}

	merged, outcomes := o.engine.Apply(oldDoc, newDoc, localDoc)
	ar.Outcomes = outcomes

	serialized := artifact.Serialize(merged)
	if bytes.Equal(serialized, localContent) {
		ar.Status = StatusUnchanged
		return ar
	}

	return o.commit(ar, localPath, serialized, to, opts)
}

// install writes an artifact that has no local copy yet.
func (o *Orchestrator) install(ar ArtifactResult, localPath string, content []byte, to model.Revision, opts Options) ArtifactResult {
	ar.Status = StatusInstalled
	if opts.DryRun {
		return ar
	}
	if err := writeback.Commit(localPath, content); err != nil {
		return fail(ar, err)
	}
	ar.BytesWritten = int64(len(content))
	o.ledger.Record(ar.Path, to, content)
	return ar
}

// commit snapshots the current file, writes the merged content atomically,
// and records the sync in the ledger.
func (o *Orchestrator) commit(ar ArtifactResult, localPath string, after []byte, to model.Revision, opts Options) ArtifactResult {
	ar.Status = StatusSynced
	if opts.DryRun {
		return ar
	}

	if o.cfg.Sync.AutoBackup && !opts.SkipBackup {
		if _, err := o.backups.Create(localPath, ar.Path, ar.Kind, to); err != nil {
			return fail(ar, fmt.Errorf("backup before write: %w", err))
		}
	}
	if err := writeback.Commit(localPath, after); err != nil {
		return fail(ar, err)
	}
	ar.BytesWritten = int64(len(after))
	o.ledger.Record(ar.Path, to, after)
	return ar
}

func (o *Orchestrator) reportArtifact(ar ArtifactResult) {
	switch ar.Status {
	case StatusSynced:
		o.notifier.ArtifactSynced(ar.Path, changeDetail(ar.Outcomes))
	case StatusInstalled:
		o.notifier.ArtifactSynced(ar.Path, "installed")
	case StatusUnchanged:
		o.notifier.ArtifactUnchanged(ar.Path)
	case StatusFailed:
		o.notifier.ArtifactFailed(ar.Path, ar.Error)
		logging.Error("artifact sync failed",
			logging.Artifact(ar.Path),
			logging.Err(ar.Error),
		)
	}
	if skipped := ar.SkippedKeys(); len(skipped) > 0 {
		keys := make([]string, len(skipped))
		for i, id := range skipped {
			keys[i] = id.String()
		}
		o.notifier.ArtifactSkipped(ar.Path, keys)
	}
}

func changeDetail(outcomes merge.Outcomes) string {
	counts := make(map[merge.KeyAction]int)
	for _, ko := range outcomes {
		counts[ko.Action]++
	}
	var parts []string
	for _, action := range []merge.KeyAction{merge.ActionAdded, merge.ActionUpdated, merge.ActionRemoved} {
		if n := counts[action]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, action))
		}
	}
	return strings.Join(parts, ", ")
}

func fail(ar ArtifactResult, err error) ArtifactResult {
	ar.Status = StatusFailed
	ar.Error = err
	return ar
}
