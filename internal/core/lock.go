package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrLockTimeout is returned when a lock could not be taken in time.
var ErrLockTimeout = stderrors.New("timed out waiting for lock")

const lockPollInterval = 100 * time.Millisecond

// flock is swapped out in tests.
var flock = syscall.Flock

// Lock is an exclusive flock held on a file.
type Lock struct {
	file *os.File
	path string
}

// AcquireExclusive takes an exclusive flock on path, creating the file and
// its parent directory if needed. It polls until the lock is free, timeout
// elapses or ctx is done.
func AcquireExclusive(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err = flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &Lock{file: file, path: path}, nil
		}
		if !stderrors.Is(err, syscall.EWOULDBLOCK) {
			file.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}

		if time.Now().After(deadline) {
			file.Close()
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
		}

		select {
		case <-ctx.Done():
			file.Close()
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks and closes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return fmt.Errorf("lock already released")
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		l.file = nil
		return fmt.Errorf("failed to unlock file: %w", err)
	}

	if err := l.file.Close(); err != nil {
		l.file = nil
		return fmt.Errorf("failed to close lock file: %w", err)
	}

	l.file = nil
	return nil
}
