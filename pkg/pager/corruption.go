// pkg/pager/corruption.go
package pager

import (
	"errors"
	"fmt"

	"rdb/pkg/page"
)

// CorruptionError describes one damaged page found by a Checker.
type CorruptionError struct {
	ID      page.ID
	Kind    byte // raw tag byte as found on disk
	Message string
	Err     error
}

// Error implements the error interface
func (e *CorruptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("page %d corruption: %s: %v", uint32(e.ID), e.Message, e.Err)
	}
	return fmt.Sprintf("page %d corruption: %s", uint32(e.ID), e.Message)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

func (e *CorruptionError) Is(target error) bool {
	return target == ErrCorrupt
}

// Checker scans the pages of a file for corruption. It reads the bytes on
// disk directly, so pages that are dirty in the cache are checked as they
// were last flushed.
type Checker struct {
	pager *Pager
	buf   []byte
}

// NewChecker creates a checker for the given pager
func NewChecker(p *Pager) *Checker {
	return &Checker{
		pager: p,
		buf:   make([]byte, p.PageSize()),
	}
}

// CheckPage verifies a single page. An all-zero page is one that was
// allocated but never written and is not reported.
func (c *Checker) CheckPage(id page.ID) *CorruptionError {
	p := c.pager
	if err := p.checkOpen(); err != nil {
		return &CorruptionError{ID: id, Message: "pager unavailable", Err: err}
	}
	if !p.inRange(id) {
		return &CorruptionError{ID: id, Message: "page out of range", Err: &PageNotFoundError{ID: id}}
	}

	if err := p.readRaw(id, c.buf); err != nil {
		return &CorruptionError{ID: id, Message: "failed to read page", Err: err}
	}
	data := c.buf

	if isZero(data) {
		return nil
	}

	h, err := page.DecodeHeader(data)
	if err != nil {
		return &CorruptionError{ID: id, Kind: data[0], Message: "bad header", Err: err}
	}
	if h.CellContentArea > page.Size {
		return &CorruptionError{ID: id, Kind: data[0],
			Message: fmt.Sprintf("cell content area %d past end of page", h.CellContentArea)}
	}
	if h.CellContentArea < page.HeaderSize {
		return &CorruptionError{ID: id, Kind: data[0],
			Message: fmt.Sprintf("cell content area %d overlaps header", h.CellContentArea)}
	}

	if p.opts.Checksums {
		if err := page.VerifyChecksum(id, data); err != nil {
			var ce *page.ChecksumError
			if errors.As(err, &ce) {
				return &CorruptionError{ID: id, Kind: data[0], Message: "checksum mismatch", Err: err}
			}
			return &CorruptionError{ID: id, Kind: data[0], Message: "checksum unreadable", Err: err}
		}
	}

	return nil
}

// CheckAllPages scans every page in the file
// Returns a slice of all corruption errors found
func (c *Checker) CheckAllPages() []*CorruptionError {
	return c.CheckPageRange(1, page.ID(c.pager.PageCount())+1)
}

// CheckPageRange checks pages in [start, end). The range is clipped to the
// pages that exist.
func (c *Checker) CheckPageRange(start, end page.ID) []*CorruptionError {
	var errs []*CorruptionError

	if start < 1 {
		start = 1
	}
	if limit := page.ID(c.pager.PageCount()) + 1; end > limit {
		end = limit
	}

	for id := start; id < end; id++ {
		if err := c.CheckPage(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
