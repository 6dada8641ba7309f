package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/packsync/packsync/internal/airac"
	"github.com/packsync/packsync/internal/cache"
	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/model"
)

// tagLookback is how many AIRAC cycles behind the current one Current is
// willing to walk before giving up on release tags. A year of cycles covers
// packs that skip the occasional release.
const tagLookback = 13

// GitTracker implements Tracker against a bare local mirror of the pack
// repository. The mirror lives outside the user's pack directory, so
// fetching never disturbs installed files.
type GitTracker struct {
	url      string
	remote   string
	branch   string
	mirror   string
	calendar *airac.Calendar
	cache    *cache.Revisions

	repo *git.Repository
}

// NewGitTracker opens or clones the mirror for url at mirrorDir. The clone
// is deferred to the first Refresh when the mirror does not exist yet, so
// construction works offline.
func NewGitTracker(url, remote, branch, mirrorDir string, cal *airac.Calendar, revCache *cache.Revisions) *GitTracker {
	if remote == "" {
		remote = git.DefaultRemoteName
	}
	return &GitTracker{
		url:      url,
		remote:   remote,
		branch:   branch,
		mirror:   mirrorDir,
		calendar: cal,
		cache:    revCache,
	}
}

// Refresh clones the mirror if needed and fetches the remote's branches and
// tags. When the remote is unreachable but a mirror exists, Refresh reports
// ErrUpstreamUnavailable and the tracker keeps serving the mirror's state.
func (t *GitTracker) Refresh(ctx context.Context) error {
	defer logging.Timer("upstream refresh")()

	repo, err := git.PlainOpen(t.mirror)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainCloneContext(ctx, t.mirror, true, &git.CloneOptions{
			URL:        t.url,
			RemoteName: t.remote,
			Tags:       git.AllTags,
		})
		if err != nil {
			return fmt.Errorf("%w: clone %s: %v", ErrUpstreamUnavailable, t.url, err)
		}
		t.repo = repo
		logging.Info("cloned upstream mirror",
			logging.Path(t.mirror),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open mirror %s: %w", t.mirror, err)
	}
	t.repo = repo

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: t.remote,
		Tags:       git.AllTags,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		logging.Warn("fetch failed, continuing against local mirror",
			logging.Err(err),
		)
		return fmt.Errorf("%w: fetch from %s: %v", ErrUpstreamUnavailable, t.url, err)
	}
	return nil
}

func (t *GitTracker) open() (*git.Repository, error) {
	if t.repo != nil {
		return t.repo, nil
	}
	repo, err := git.PlainOpen(t.mirror)
	if err != nil {
		return nil, fmt.Errorf("%w: no usable mirror at %s: %v", ErrUpstreamUnavailable, t.mirror, err)
	}
	t.repo = repo
	return repo, nil
}

// Current resolves the newest AIRAC release tag at or before the current
// cycle, walking back up to tagLookback cycles, and falls back to the
// branch head commit when the pack carries no release tags.
func (t *GitTracker) Current(ctx context.Context) (model.Revision, error) {
	repo, err := t.open()
	if err != nil {
		if rev, ok := t.cachedRevision(); ok {
			return rev, nil
		}
		return "", err
	}

	names, err := tagNames(repo)
	if err != nil {
		return "", err
	}

	now := t.calendar.CurrentCycle()
	for i := 0; i < tagLookback; i++ {
		tag := t.calendar.Tag(now.AddDate(0, 0, -28*i))
		if names[tag] {
			rev := model.Revision(tag)
			t.rememberRevision(rev)
			logging.Debug("resolved release tag",
				logging.Revision(tag),
			)
			return rev, nil
		}
	}

	head, err := t.branchHead(repo)
	if err != nil {
		if rev, ok := t.cachedRevision(); ok {
			return rev, nil
		}
		return "", err
	}
	rev := model.Revision(head.String())
	t.rememberRevision(rev)
	return rev, nil
}

// ChangedPaths diffs the trees of two revisions and returns each touched
// path once, sorted. Renames surface as a removal plus an addition.
func (t *GitTracker) ChangedPaths(ctx context.Context, from, to model.Revision) ([]string, error) {
	repo, err := t.open()
	if err != nil {
		return nil, err
	}

	toTree, err := t.treeAt(repo, to)
	if err != nil {
		return nil, err
	}

	if from.IsZero() {
		return treePaths(toTree)
	}

	fromTree, err := t.treeAt(repo, from)
	if err != nil {
		return nil, err
	}

	changes, err := fromTree.DiffContext(ctx, toTree)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", from, to, err)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, ch := range changes {
		for _, name := range []string{ch.From.Name, ch.To.Name} {
			if name != "" && !seen[name] {
				seen[name] = true
				paths = append(paths, name)
			}
		}
	}
	sort.Strings(paths)

	logging.Debug("diffed upstream revisions",
		logging.Revision(to.String()),
		logging.Count(len(paths)),
	)
	return paths, nil
}

// Files lists every path present at a revision.
func (t *GitTracker) Files(ctx context.Context, rev model.Revision) ([]string, error) {
	repo, err := t.open()
	if err != nil {
		return nil, err
	}
	tree, err := t.treeAt(repo, rev)
	if err != nil {
		return nil, err
	}
	return treePaths(tree)
}

// Materialize returns the content of path at rev from the object store. A
// path absent at that revision yields (nil, nil).
func (t *GitTracker) Materialize(ctx context.Context, rev model.Revision, path string) ([]byte, error) {
	repo, err := t.open()
	if err != nil {
		return nil, err
	}
	tree, err := t.treeAt(repo, rev)
	if err != nil {
		return nil, err
	}

	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s at %s: %w", path, rev, err)
	}

	r, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", path, rev, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// treeAt resolves a revision to its commit tree. Release tags are tried
// first (annotated or lightweight), then raw commit hashes. An unresolvable
// revision is a RevisionNotFoundError.
func (t *GitTracker) treeAt(repo *git.Repository, rev model.Revision) (*object.Tree, error) {
	hash, err := t.resolveCommit(repo, rev)
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, &RevisionNotFoundError{Revision: rev}
	}
	return commit.Tree()
}

func (t *GitTracker) resolveCommit(repo *git.Repository, rev model.Revision) (plumbing.Hash, error) {
	if rev.IsZero() {
		return plumbing.ZeroHash, &RevisionNotFoundError{Revision: rev}
	}

	if ref, err := repo.Tag(rev.String()); err == nil {
		h := ref.Hash()
		// Annotated tags point at a tag object, not the commit.
		if tag, err := repo.TagObject(h); err == nil {
			return tag.Target, nil
		}
		return h, nil
	}

	if h := plumbing.NewHash(rev.String()); !h.IsZero() && len(rev.String()) == 40 {
		return h, nil
	}

	return plumbing.ZeroHash, &RevisionNotFoundError{Revision: rev}
}

func (t *GitTracker) branchHead(repo *git.Repository) (plumbing.Hash, error) {
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(t.branch),
		plumbing.NewRemoteReferenceName(t.remote, t.branch),
	} {
		if ref, err := repo.Reference(name, true); err == nil {
			return ref.Hash(), nil
		}
	}
	ref, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve branch %s: %w", t.branch, err)
	}
	return ref.Hash(), nil
}

func (t *GitTracker) cachedRevision() (model.Revision, bool) {
	if t.cache == nil {
		return "", false
	}
	entry, ok := t.cache.Get(t.url)
	if !ok {
		return "", false
	}
	logging.Warn("using cached revision, remote unavailable",
		logging.Revision(entry.Revision),
	)
	return model.Revision(entry.Revision), true
}

func (t *GitTracker) rememberRevision(rev model.Revision) {
	if t.cache == nil {
		return
	}
	t.cache.Put(t.url, cache.Entry{
		Revision:   rev.String(),
		ResolvedAt: time.Now().UTC(),
	})
	if err := t.cache.Save(); err != nil {
		logging.Warn("failed to persist revision cache",
			logging.Err(err),
		)
	}
}

func tagNames(repo *git.Repository) (map[string]bool, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make(map[string]bool)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names[strings.TrimPrefix(ref.Name().String(), "refs/tags/")] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func treePaths(tree *object.Tree) ([]string, error) {
	var paths []string
	err := tree.Files().ForEach(func(f *object.File) error {
		paths = append(paths, f.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
