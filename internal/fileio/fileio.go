// internal/fileio/fileio.go
// Package fileio provides positional file I/O helpers for page storage.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrZeroPageSize    = errors.New("page size must be > 0")
	ErrNotPageMultiple = errors.New("file size is not a multiple of page size")
	ErrLocked          = errors.New("file is locked by another process")
)

// Stater reports file metadata.
type Stater interface {
	Stat() (os.FileInfo, error)
}

// Truncater changes the length of a file.
type Truncater interface {
	Truncate(size int64) error
}

// Syncer commits file contents to stable storage.
type Syncer interface {
	Sync() error
}

// ReadExactAt fills buf from r starting at off. Reaching EOF or getting a
// zero-length read before buf is full is io.ErrUnexpectedEOF.
func ReadExactAt(r io.ReaderAt, buf []byte, off int64) error {
	for len(buf) > 0 {
		n, err := r.ReadAt(buf, off)
		buf = buf[n:]
		off += int64(n)
		if len(buf) == 0 {
			return nil
		}
		if err == io.EOF || (err == nil && n == 0) {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteAllAt writes all of buf to w starting at off. A write that makes no
// progress is io.ErrShortWrite.
func WriteAllAt(w io.WriterAt, buf []byte, off int64) error {
	for len(buf) > 0 {
		n, err := w.WriteAt(buf, off)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		buf = buf[n:]
		off += int64(n)
	}
	return nil
}

// FileLen returns the length of f in bytes.
func FileLen(f Stater) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// SetLen extends or truncates f to n bytes.
func SetLen(f Truncater, n int64) error {
	return f.Truncate(n)
}

// ValidateLen checks that a file of n bytes holds a whole number of pages.
func ValidateLen(n int64, pageSize int) error {
	if pageSize <= 0 {
		return ErrZeroPageSize
	}
	if n%int64(pageSize) != 0 {
		return fmt.Errorf("%w: file_size=%d page_size=%d", ErrNotPageMultiple, n, pageSize)
	}
	return nil
}
