package backup

import (
	"fmt"
	"time"
)

// CleanupOptions bounds how many snapshots a store retains.
type CleanupOptions struct {
	// MaxBackups limits snapshots kept per artifact (0 = unlimited).
	MaxBackups int

	// MaxAge drops snapshots older than this (0 = unlimited).
	MaxAge time.Duration

	// KeepAtLeastOne keeps the newest snapshot of each artifact even
	// when MaxAge would drop it.
	KeepAtLeastOne bool

	// DryRun reports what would be deleted without deleting.
	DryRun bool
}

// DefaultCleanupOptions keeps ten snapshots per artifact for thirty days.
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		MaxBackups:     10,
		MaxAge:         30 * 24 * time.Hour,
		KeepAtLeastOne: true,
	}
}

// Cleanup prunes old snapshots per CleanupOptions and returns the IDs of
// removed (or, under DryRun, removable) backups.
func (s *Store) Cleanup(opts CleanupOptions) ([]string, error) {
	idx, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("load backup index: %w", err)
	}

	byArtifact := make(map[string][]Metadata)
	for _, b := range idx.Backups {
		byArtifact[b.Artifact] = append(byArtifact[b.Artifact], b)
	}

	cutoff := time.Time{}
	if opts.MaxAge > 0 {
		cutoff = time.Now().Add(-opts.MaxAge)
	}

	var removed []string
	for _, group := range byArtifact {
		// Newest first within each artifact.
		sorted := (&index{Backups: toMap(group)}).sorted()

		for i, b := range sorted {
			keepNewest := opts.KeepAtLeastOne && i == 0
			tooMany := opts.MaxBackups > 0 && i >= opts.MaxBackups
			tooOld := !cutoff.IsZero() && b.CreatedAt.Before(cutoff)

			if keepNewest || (!tooMany && !tooOld) {
				continue
			}
			removed = append(removed, b.ID)
		}
	}

	if opts.DryRun {
		return removed, nil
	}
	for _, id := range removed {
		if err := s.Delete(id); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func toMap(backups []Metadata) map[string]Metadata {
	m := make(map[string]Metadata, len(backups))
	for _, b := range backups {
		m[b.ID] = b
	}
	return m
}
