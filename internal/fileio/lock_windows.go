//go:build windows

// internal/fileio/lock_windows.go
package fileio

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// Lock takes a lock on the first byte of f without blocking. An exclusive
// lock is used for writers and a shared lock for readers. Returns ErrLocked
// if a conflicting lock is held elsewhere.
func Lock(f *os.File, exclusive bool) error {
	flags := uint32(windows.LOCKFILE_FAIL_IMMEDIATELY)
	if exclusive {
		flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	var ol windows.Overlapped
	err := windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, 1, 0, &ol)
	if err != nil {
		if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return ErrLocked
		}
		return err
	}
	return nil
}

// Unlock releases the lock on f.
func Unlock(f *os.File) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, &ol)
}
