//go:build linux

package fileio

import (
	"os"

	"golang.org/x/sys/unix"
)

// SyncData flushes file data to stable storage. On linux an *os.File is
// synced with fdatasync(2), which skips metadata that does not affect reads.
func SyncData(f Syncer) error {
	if of, ok := f.(*os.File); ok {
		return unix.Fdatasync(int(of.Fd()))
	}
	return f.Sync()
}
