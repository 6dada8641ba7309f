// Package archive bundles the managed artifacts of a pack into a single
// portable tar.gz snapshot, and restores them from one. Snapshots carry a
// manifest recording the upstream revision and a digest per file so a
// restore can detect corruption.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/packsync/packsync/internal/model"
)

// Manifest describes the contents of a snapshot.
type Manifest struct {
	Version   string         `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Revision  model.Revision `json:"revision,omitempty"`
	FileCount int            `json:"file_count"`
	Files     []ManifestFile `json:"files"`
}

// ManifestFile is one artifact entry in the manifest.
type ManifestFile struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Digest  string    `json:"digest"`
}

// ExtractOptions configures snapshot restoration.
type ExtractOptions struct {
	TargetDir string // target directory for extraction
	DryRun    bool   // list contents without writing
}

const manifestVersion = "1.0"

// Create writes a tar.gz snapshot of the given pack-relative paths to w.
// Paths that no longer exist on disk are skipped.
func Create(packDir string, paths []string, rev model.Revision, w io.Writer) error {
	if len(paths) == 0 {
		return fmt.Errorf("nothing to archive")
	}

	gzWriter := gzip.NewWriter(w)
	defer gzWriter.Close()
	tarWriter := tar.NewWriter(gzWriter)
	defer tarWriter.Close()

	manifest := Manifest{
		Version:   manifestVersion,
		CreatedAt: time.Now().UTC(),
		Revision:  rev,
	}

	for _, rel := range paths {
		rel = filepath.ToSlash(rel)
		data, err := os.ReadFile(filepath.Join(packDir, filepath.FromSlash(rel)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}

		sum := sha256.Sum256(data)
		info, _ := os.Stat(filepath.Join(packDir, filepath.FromSlash(rel)))
		modTime := time.Now()
		if info != nil {
			modTime = info.ModTime()
		}

		manifest.Files = append(manifest.Files, ManifestFile{
			Path:    rel,
			Size:    int64(len(data)),
			ModTime: modTime,
			Digest:  hex.EncodeToString(sum[:]),
		})

		header := &tar.Header{
			Name:    "pack/" + rel,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: modTime,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("writing header for %s: %w", rel, err)
		}
		if _, err := tarWriter.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
	}

	if len(manifest.Files) == 0 {
		return fmt.Errorf("nothing to archive")
	}
	manifest.FileCount = len(manifest.Files)

	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing manifest: %w", err)
	}
	header := &tar.Header{
		Name:    "manifest.json",
		Mode:    0o644,
		Size:    int64(len(manifestData)),
		ModTime: manifest.CreatedAt,
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("writing manifest header: %w", err)
	}
	if _, err := tarWriter.Write(manifestData); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	return nil
}

// Extract restores a snapshot into opts.TargetDir and returns the restored
// paths. Files whose content does not match the manifest digest fail the
// restore. Under DryRun nothing is written.
func Extract(r io.Reader, opts ExtractOptions) ([]string, *Manifest, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	defer gzReader.Close()
	tarReader := tar.NewReader(gzReader)

	var manifest *Manifest
	contents := make(map[string][]byte)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading archive: %w", err)
		}
		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, nil, fmt.Errorf("reading entry %s: %w", header.Name, err)
		}

		if header.Name == "manifest.json" {
			if err := json.Unmarshal(data, &manifest); err != nil {
				return nil, nil, fmt.Errorf("parsing manifest: %w", err)
			}
			continue
		}
		if rel, ok := packEntry(header.Name); ok {
			contents[rel] = data
		}
	}

	if manifest == nil {
		return nil, nil, fmt.Errorf("archive missing manifest.json")
	}

	var restored []string
	for _, mf := range manifest.Files {
		data, ok := contents[mf.Path]
		if !ok {
			return nil, nil, fmt.Errorf("archive missing %s", mf.Path)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != mf.Digest {
			return nil, nil, fmt.Errorf("digest mismatch for %s", mf.Path)
		}

		if opts.TargetDir != "" && !opts.DryRun {
			target := filepath.Join(opts.TargetDir, filepath.FromSlash(mf.Path))
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return nil, nil, fmt.Errorf("creating directory for %s: %w", mf.Path, err)
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return nil, nil, fmt.Errorf("writing %s: %w", mf.Path, err)
			}
		}
		restored = append(restored, mf.Path)
	}

	return restored, manifest, nil
}

// packEntry strips the pack/ prefix and rejects entries that would escape
// the target directory.
func packEntry(name string) (string, bool) {
	const prefix = "pack/"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return "", false
	}
	rel := name[len(prefix):]
	clean := path.Clean(rel)
	if clean != rel || path.IsAbs(clean) || clean == ".." || len(clean) >= 3 && clean[:3] == "../" {
		return "", false
	}
	return rel, true
}
