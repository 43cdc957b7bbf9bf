//go:build !windows

package fileio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTwice(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lock.db")
	a, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	b, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return a, b
}

func TestLock_ExclusiveConflicts(t *testing.T) {
	a, b := openTwice(t)

	if err := Lock(a, true); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if err := Lock(b, false); !errors.Is(err, ErrLocked) {
		t.Errorf("second Lock() error = %v, want ErrLocked", err)
	}

	if err := Unlock(a); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := Lock(b, false); err != nil {
		t.Errorf("Lock() after Unlock error = %v", err)
	}
}

func TestLock_SharedReaders(t *testing.T) {
	a, b := openTwice(t)

	if err := Lock(a, false); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if err := Lock(b, false); err != nil {
		t.Errorf("second shared Lock() error = %v", err)
	}
}
