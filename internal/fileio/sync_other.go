//go:build !linux

package fileio

// SyncData flushes file data to stable storage.
func SyncData(f Syncer) error {
	return f.Sync()
}
