package e2e

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// UpstreamRepo is a local controller-pack repository the CLI syncs from.
type UpstreamRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
}

// NewUpstreamRepo initializes an empty pack repository in a temp directory.
// Its path doubles as the upstream URL for the local git transport.
func NewUpstreamRepo(t *testing.T) *UpstreamRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}
	return &UpstreamRepo{t: t, dir: dir, repo: repo}
}

// URL returns the repository location for configuration.
func (u *UpstreamRepo) URL() string {
	return u.dir
}

// Commit writes the given files and commits them.
func (u *UpstreamRepo) Commit(files map[string]string, msg string) {
	u.t.Helper()
	wt, err := u.repo.Worktree()
	if err != nil {
		u.t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(u.dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			u.t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			u.t.Fatal(err)
		}
		if _, err := wt.Add(name); err != nil {
			u.t.Fatal(err)
		}
	}
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Pack Release",
			Email: "releases@example.com",
			When:  time.Now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		u.t.Fatal(err)
	}
}

// Tag marks the current head as a release.
func (u *UpstreamRepo) Tag(name string) {
	u.t.Helper()
	head, err := u.repo.Head()
	if err != nil {
		u.t.Fatal(err)
	}
	if _, err := u.repo.CreateTag(name, head.Hash(), nil); err != nil {
		u.t.Fatal(err)
	}
}

// Fixture provides helpers for creating files in a test directory.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{t: t, baseDir: baseDir}
}

// WriteFile writes content to a file relative to the fixture base directory,
// creating parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		f.t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
	return fullPath
}

// ReadFile reads a file relative to the fixture base directory.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.baseDir, filepath.FromSlash(relPath)))
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(data)
}

// Exists reports whether a path exists relative to the base directory.
func (f *Fixture) Exists(relPath string) bool {
	_, err := os.Stat(filepath.Join(f.baseDir, filepath.FromSlash(relPath)))
	return err == nil
}
