// Package locker provides per-task locks for read-modify-write cycles.
package locker

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Flock opens (creating if needed) the lock file at path and takes an flock
// on it. exclusive selects LOCK_EX over LOCK_SH. The returned release
// function unlocks and closes the file.
func Flock(path string, exclusive bool) (release func(), err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	how := syscall.LOCK_SH
	if exclusive {
		how = syscall.LOCK_EX
	}
	if err := syscall.Flock(int(lock.Fd()), how); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return func() {
		_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
		_ = lock.Close()
	}, nil
}
