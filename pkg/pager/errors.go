package pager

import (
	"errors"
	"fmt"

	"rdb/pkg/page"
)

var (
	// ErrCorrupt matches every corruption error, including page-level ones
	// such as *page.InvalidKindError.
	ErrCorrupt = page.ErrCorrupt

	ErrPageNotFound        = errors.New("page not found")
	ErrUnsupportedPageSize = errors.New("unsupported page size")
	ErrReadOnly            = errors.New("pager is read-only")
	ErrClosed              = errors.New("pager is closed")
	ErrDoubleFree          = errors.New("page already freed")
)

// PageNotFoundError reports a valid request for a page that is not there:
// id 0, an id past the end of the file, or a flush of an uncached page.
type PageNotFoundError struct {
	ID page.ID
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page not found: %d", uint32(e.ID))
}

func (e *PageNotFoundError) Is(target error) bool {
	return target == ErrPageNotFound
}

// CorruptFileError reports a file whose length is not a whole number of pages.
type CorruptFileError struct {
	Len      int64
	PageSize int
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("corrupt db file: len=%d is not a multiple of page_size=%d", e.Len, e.PageSize)
}

func (e *CorruptFileError) Is(target error) bool {
	return target == ErrCorrupt
}

// UnsupportedPageSizeError reports a page size the pager cannot use.
type UnsupportedPageSizeError struct {
	Size int
}

func (e *UnsupportedPageSizeError) Error() string {
	return fmt.Sprintf("unsupported page_size=%d (only %d is supported)", e.Size, DefaultPageSize)
}

func (e *UnsupportedPageSizeError) Is(target error) bool {
	return target == ErrUnsupportedPageSize
}
