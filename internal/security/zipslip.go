package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateEntry checks that an archive entry name resolves inside destDir.
//
// Rejected:
//   - empty names and names containing a null byte
//   - absolute names, including Windows drive and UNC forms
//   - names that climb out of destDir after cleaning
func ValidateEntry(destDir, name string) error {
	if name == "" {
		return fmt.Errorf("entry name cannot be empty")
	}

	if strings.Contains(name, "\x00") {
		return fmt.Errorf("entry name contains null byte: %q", name)
	}

	// Zip names use forward slashes; a backslash-rooted or drive-lettered
	// name is absolute on Windows even if filepath.IsAbs disagrees here.
	slashed := strings.ReplaceAll(name, `\`, "/")
	if filepath.IsAbs(name) || strings.HasPrefix(slashed, "/") || hasDriveLetter(slashed) {
		return fmt.Errorf("entry name must be relative, got %q", name)
	}

	cleanDest := filepath.Clean(destDir)
	target := filepath.Join(cleanDest, filepath.FromSlash(slashed))

	rel, err := filepath.Rel(cleanDest, target)
	if err != nil {
		return fmt.Errorf("cannot resolve entry %q: %w", name, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: %q resolves outside %q", name, destDir)
	}

	return nil
}

// ValidateEntries validates every entry name, failing on the first bad one.
// Nothing should be written unless all names pass.
func ValidateEntries(destDir string, names []string) error {
	for _, name := range names {
		if err := ValidateEntry(destDir, name); err != nil {
			return err
		}
	}
	return nil
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
