package core

import (
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/Fuabioo/unsheet/internal/errors"
	"github.com/klauspost/compress/zip"
)

// VerifyResult compares an extracted folder with the archive it came from.
type VerifyResult struct {
	Code           string   `json:"code"`
	Archive        string   `json:"archive"`
	Folder         string   `json:"folder"`
	Modified       []string `json:"modified"`
	Added          []string `json:"added"`
	Missing        []string `json:"missing"`
	UnchangedCount int      `json:"unchanged_count"`
}

// Clean reports whether the folder matches the archive exactly.
func (r *VerifyResult) Clean() bool {
	return len(r.Modified) == 0 && len(r.Added) == 0 && len(r.Missing) == 0
}

// Verify compares <workDir>/<folder> with <workDir>/sheet<code>.zip for each
// entry. Files are compared by size and CRC-32, so timestamps set by
// different extractors do not matter. A missing folder reports every archive
// file as missing; a missing or unreadable archive is an error.
func Verify(workDir string, entries []catalog.Entry) ([]*VerifyResult, error) {
	results := make([]*VerifyResult, 0, len(entries))
	for _, e := range entries {
		r, err := verifyEntry(workDir, e)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func verifyEntry(workDir string, e catalog.Entry) (*VerifyResult, error) {
	archivePath := filepath.Join(workDir, e.Archive)
	folderPath := filepath.Join(workDir, e.Folder)

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.ZipInvalid(archivePath, err)
	}
	defer zr.Close()

	// Build map of archived files
	archived := make(map[string]*zip.File)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || f.Mode()&os.ModeSymlink != 0 {
			continue
		}
		archived[strings.TrimPrefix(f.Name, "./")] = f
	}

	// Build map of extracted files
	current := make(map[string]bool)
	err = filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == folderPath && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(folderPath, path)
		if err != nil {
			return err
		}
		current[filepath.ToSlash(relPath)] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", e.Folder, err)
	}

	result := &VerifyResult{
		Code:     e.Code,
		Archive:  e.Archive,
		Folder:   e.Folder,
		Modified: []string{},
		Added:    []string{},
		Missing:  []string{},
	}

	for relPath := range current {
		f, ok := archived[relPath]
		if !ok {
			result.Added = append(result.Added, relPath)
			continue
		}

		same, err := sameContent(filepath.Join(folderPath, filepath.FromSlash(relPath)), f)
		if err != nil {
			return nil, fmt.Errorf("failed to compare %s: %w", relPath, err)
		}
		if same {
			result.UnchangedCount++
		} else {
			result.Modified = append(result.Modified, relPath)
		}
	}

	for relPath := range archived {
		if !current[relPath] {
			result.Missing = append(result.Missing, relPath)
		}
	}

	sort.Strings(result.Modified)
	sort.Strings(result.Added)
	sort.Strings(result.Missing)

	return result, nil
}

// sameContent checks a file on disk against an archive entry's size and CRC.
func sameContent(path string, f *zip.File) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if uint64(info.Size()) != f.UncompressedSize64 {
		return false, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, file); err != nil {
		return false, err
	}
	return h.Sum32() == f.CRC32, nil
}
