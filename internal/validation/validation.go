// Package validation provides pre-sync checks for the local environment:
// configuration sanity, pack directory access, and artifact integrity.
package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/packsync/packsync/internal/artifact"
	"github.com/packsync/packsync/internal/classify"
	"github.com/packsync/packsync/internal/config"
)

// Error represents a validation failure with context.
type Error struct {
	// Field is the name of the setting or file that failed validation
	Field string
	// Message describes the validation failure
	Message string
	// Err is the underlying error (if any)
	Err error
}

// Error returns a formatted validation error message.
func (ve *Error) Error() string {
	if ve.Err != nil {
		return fmt.Sprintf("validation failed for %q: %s: %v", ve.Field, ve.Message, ve.Err)
	}
	return fmt.Sprintf("validation failed for %q: %s", ve.Field, ve.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (ve *Error) Unwrap() error {
	return ve.Err
}

// Errors collects multiple validation errors.
type Errors []error

// Error returns a formatted error message for all validation failures.
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors:\n- %s", len(ve), errors.Join(ve...))
}

// Options configures validation behavior.
type Options struct {
	// RequireWritePermission checks that the pack directory is writable
	RequireWritePermission bool
	// ParseArtifacts re-parses every managed artifact on disk
	ParseArtifacts bool
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{
		RequireWritePermission: true,
		ParseArtifacts:         true,
	}
}

// Result contains the outcome of a validation run.
type Result struct {
	// Valid indicates whether all checks passed
	Valid bool
	// Warnings contains non-fatal issues
	Warnings []string
	// Errors contains failures that would prevent a sync
	Errors []error
}

// AddError adds an error to the validation result.
func (r *Result) AddError(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning to the validation result.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns the combined validation error message.
func (r *Result) Error() error {
	if !r.HasErrors() {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return Errors(r.Errors)
}

// Summary returns a human-readable summary of the validation result.
func (r *Result) Summary() string {
	if r.Valid && len(r.Warnings) == 0 {
		return "All checks passed"
	}
	var msg string
	if r.Valid {
		msg = "Checks passed with warnings"
	} else {
		msg = "Checks failed"
	}
	if len(r.Warnings) > 0 {
		msg += fmt.Sprintf(" (%d warning(s))", len(r.Warnings))
	}
	return msg
}

// Check validates the configuration and the local pack installation.
func Check(cfg *config.Config, opts Options) *Result {
	result := &Result{Valid: true}

	validateUpstream(cfg, result)
	packOK := validatePackDir(cfg.PackDir(), opts, result)

	if packOK && opts.ParseArtifacts {
		validateArtifacts(cfg.PackDir(), result)
	}

	return result
}

func validateUpstream(cfg *config.Config, result *Result) {
	if cfg.Upstream.URL == "" {
		result.AddError(&Error{
			Field:   "upstream.url",
			Message: "repository URL cannot be empty",
		})
	}
	if cfg.Upstream.Branch == "" {
		result.AddWarning("upstream.branch not set, the remote HEAD will be used")
	}
	if cfg.Upstream.Timeout <= 0 {
		result.AddWarning("upstream.timeout not set, network operations are unbounded")
	}
}

// validatePackDir reports whether the pack directory is usable for
// artifact checks.
func validatePackDir(dir string, opts Options, result *Result) bool {
	if dir == "" {
		result.AddError(&Error{
			Field:   "pack.dir",
			Message: "pack directory cannot be empty",
		})
		return false
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			result.AddWarning(fmt.Sprintf("pack directory %s does not exist yet, first sync will create it", dir))
			return false
		}
		result.AddError(&Error{
			Field:   "pack.dir",
			Message: fmt.Sprintf("cannot access %s", dir),
			Err:     err,
		})
		return false
	}
	if !info.IsDir() {
		result.AddError(&Error{
			Field:   "pack.dir",
			Message: fmt.Sprintf("%s is not a directory", dir),
		})
		return false
	}

	if opts.RequireWritePermission {
		testFile := filepath.Join(dir, ".packsync-write-test")
		f, err := os.Create(testFile)
		if err != nil {
			result.AddError(&Error{
				Field:   "pack.dir",
				Message: fmt.Sprintf("directory is not writable: %s", dir),
				Err:     err,
			})
			return false
		}
		_ = f.Close()
		_ = os.Remove(testFile)
	}

	return true
}

// validateArtifacts re-parses every managed file under the pack directory
// and records each malformed one as an error.
func validateArtifacts(dir string, result *Result) {
	var managed int
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		targets := classify.Classify(rel)
		if len(targets) == 0 {
			return nil
		}
		managed++

		content, err := os.ReadFile(path)
		if err != nil {
			result.AddError(&Error{
				Field:   rel,
				Message: "cannot read artifact",
				Err:     err,
			})
			return nil
		}
		if _, err := artifact.Parse(targets[0].Kind, content); err != nil {
			result.AddError(&Error{
				Field:   rel,
				Message: "artifact is malformed",
				Err:     err,
			})
		}
		return nil
	})
	if err != nil {
		result.AddError(&Error{
			Field:   "pack.dir",
			Message: "scanning pack directory",
			Err:     err,
		})
		return
	}

	if managed == 0 {
		result.AddWarning("no managed artifacts found in pack directory")
	}
}
