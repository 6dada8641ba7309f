// Package e2e provides testing infrastructure for end-to-end CLI tests:
// an isolated environment per test, a local upstream repository fixture,
// and output capture around cli.Run.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/packsync/packsync/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs packsync commands against an isolated home directory, so
// config, state, cache, lock and backups never touch the real user
// environment.
type Harness struct {
	t       *testing.T
	homeDir string
	packDir string
}

// NewHarness creates an isolated environment. The pack directory lives
// under the temp home and is wired through PACKSYNC_PACK_DIR.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()
	packDir := filepath.Join(homeDir, "pack")

	h := &Harness{t: t, homeDir: homeDir, packDir: packDir}

	t.Setenv("HOME", homeDir)
	t.Setenv("PACKSYNC_PACK_DIR", packDir)

	return h
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// PackDir returns the pack directory the harness syncs into.
func (h *Harness) PackDir() string {
	return h.packDir
}

// SetUpstream points the CLI at a repository, usually a local fixture.
func (h *Harness) SetUpstream(url, branch string) {
	h.t.Setenv("PACKSYNC_UPSTREAM_URL", url)
	h.t.Setenv("PACKSYNC_UPSTREAM_BRANCH", branch)
}

// Run executes a CLI command with the given arguments and captures stdout.
// Color is disabled so assertions can match plain text.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	args = append([]string{"packsync", "--no-color"}, args...)

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Read concurrently; output larger than the pipe buffer would
	// otherwise block the command.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
