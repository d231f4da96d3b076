package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/mitchellh/go-homedir"
)

// DataDir returns the base data directory for unsheet.
// It follows the XDG Base Directory Specification:
// - $UNSHEET_DATA_DIR (full override)
// - $XDG_DATA_HOME/unsheet
// - ~/.local/share/unsheet (fallback)
func DataDir() (string, error) {
	if dir := os.Getenv("UNSHEET_DATA_DIR"); dir != "" {
		return dir, nil
	}

	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "unsheet"), nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "unsheet"), nil
}

// ConfigPath returns the default config.json location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.json")
}

// LocksDir returns the directory holding per-workdir lock files.
func LocksDir(dataDir string) string {
	return filepath.Join(dataDir, "locks")
}

// LockPath returns the lock file guarding workDir. The name is the xxhash of
// the absolute workdir so the same directory always maps to the same lock.
func LockPath(dataDir, workDir string) (string, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workdir: %w", err)
	}
	name := fmt.Sprintf("%016x.lock", xxhash.Sum64String(abs))
	return filepath.Join(LocksDir(dataDir), name), nil
}
