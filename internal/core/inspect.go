package core

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/cespare/xxhash/v2"
)

// SheetStatus is the on-disk state of one catalog entry.
type SheetStatus struct {
	Code             string `json:"code"`
	Archive          string `json:"archive"`
	Folder           string `json:"folder"`
	ArchivePresent   bool   `json:"archive_present"`
	ArchiveSizeBytes int64  `json:"archive_size_bytes"`
	ArchiveXXHash    string `json:"archive_xxhash,omitempty"`
	FolderPresent    bool   `json:"folder_present"`
	FolderFiles      int    `json:"folder_files"`
}

// Extracted reports whether the destination folder exists and holds files.
func (s SheetStatus) Extracted() bool {
	return s.FolderPresent && s.FolderFiles > 0
}

// Inspect reports the archive and folder state of each entry under workDir.
// Missing archives and folders are reported, not treated as errors.
func Inspect(workDir string, entries []catalog.Entry) ([]SheetStatus, error) {
	statuses := make([]SheetStatus, 0, len(entries))

	for _, e := range entries {
		st := SheetStatus{Code: e.Code, Archive: e.Archive, Folder: e.Folder}

		archivePath := filepath.Join(workDir, e.Archive)
		if info, err := os.Stat(archivePath); err == nil && info.Mode().IsRegular() {
			st.ArchivePresent = true
			st.ArchiveSizeBytes = info.Size()
			sum, err := fingerprint(archivePath)
			if err != nil {
				return nil, fmt.Errorf("failed to fingerprint %s: %w", e.Archive, err)
			}
			st.ArchiveXXHash = sum
		} else if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Archive, err)
		}

		folderPath := filepath.Join(workDir, e.Folder)
		if info, err := os.Stat(folderPath); err == nil && info.IsDir() {
			st.FolderPresent = true
			n, err := countFiles(folderPath)
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", e.Folder, err)
			}
			st.FolderFiles = n
		} else if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Folder, err)
		}

		statuses = append(statuses, st)
	}

	return statuses, nil
}

// fingerprint returns the hex xxhash64 of a file's contents.
func fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func countFiles(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n, err
}
