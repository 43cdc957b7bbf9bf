package page

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrCorrupt is matched by every error that signals damaged page bytes.
	ErrCorrupt = errors.New("page corrupt")

	ErrInvalidKind        = errors.New("invalid page kind")
	ErrInvalidID          = errors.New("page id 0 is reserved")
	ErrHeaderTooShort     = errors.New("page header data too short")
	ErrBadPageLength      = errors.New("page data must be exactly one page long")
	ErrHeaderRegion       = errors.New("write overlaps the page header")
	ErrOutOfRange         = errors.New("offset out of page bounds")
	ErrCellAreaOutOfRange = errors.New("cell content area outside page body")
)

// InvalidKindError reports a tag byte that does not name a known page kind.
type InvalidKindError struct {
	Byte byte
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid page kind byte: 0x%02X", e.Byte)
}

// Is lets callers match both the specific and the corruption sentinel.
func (e *InvalidKindError) Is(target error) bool {
	return target == ErrInvalidKind || target == ErrCorrupt
}
