package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Fuabioo/unsheet/internal/errors"
	"github.com/Fuabioo/unsheet/internal/security"
	"github.com/klauspost/compress/zip"
)

// ExtractStats summarises a native extraction.
type ExtractStats struct {
	Files   int    `json:"files"`
	Bytes   uint64 `json:"bytes"`
	Skipped int    `json:"skipped"` // symlink entries, never materialised
}

// Extract unpacks zipPath into destDir, creating destDir if absent and
// overwriting files that already exist.
//
// The central directory is checked against limits and every entry name is
// validated before anything is written; one bad entry aborts the whole
// archive.
func Extract(ctx context.Context, zipPath, destDir string, limits security.Limits) (*ExtractStats, error) {
	if _, err := os.Stat(zipPath); err != nil {
		return nil, fmt.Errorf("cannot open archive: %w", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, errors.ZipInvalid(zipPath, err)
	}
	defer r.Close()

	if check := security.CheckZipBombFromReader(&r.Reader, limits); !check.IsSafe {
		return nil, errors.ZipBombDetected(check.Reason)
	}

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	if err := security.ValidateEntries(destDir, names); err != nil {
		return nil, errors.PathTraversal(err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}

	stats := &ExtractStats{}
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := extractFile(f, destDir, stats); err != nil {
			return stats, fmt.Errorf("failed to extract %q: %w", f.Name, err)
		}
	}

	return stats, nil
}

func extractFile(f *zip.File, destDir string, stats *ExtractStats) error {
	destPath := filepath.Join(destDir, filepath.FromSlash(f.Name))
	mode := f.Mode()

	switch {
	case mode&os.ModeSymlink != 0:
		stats.Skipped++
		return nil
	case f.FileInfo().IsDir():
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open file in archive: %w", err)
	}
	defer rc.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := io.Copy(out, rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	stats.Files++
	stats.Bytes += uint64(written)
	return nil
}
