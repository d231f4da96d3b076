package security

import (
	"fmt"
	"regexp"
)

const maxFolderNameLength = 64

var (
	codeRegex       = regexp.MustCompile(`^[0-9]{2}$`)
	folderNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateCode checks that code is exactly two ASCII digits.
func ValidateCode(code string) error {
	if !codeRegex.MatchString(code) {
		return fmt.Errorf("sheet code must be two digits, got %q", code)
	}
	return nil
}

// ValidateFolderName checks that a destination folder is a single, plain
// path element: alphanumerics, hyphens and underscores, at most 64 bytes.
func ValidateFolderName(name string) error {
	if name == "" {
		return fmt.Errorf("folder name cannot be empty")
	}

	if len(name) > maxFolderNameLength {
		return fmt.Errorf("folder name exceeds maximum length of %d characters", maxFolderNameLength)
	}

	if !folderNameRegex.MatchString(name) {
		return fmt.Errorf("folder name must contain only alphanumeric characters, hyphens, and underscores: %q", name)
	}

	return nil
}
