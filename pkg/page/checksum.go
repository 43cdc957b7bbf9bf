// pkg/page/checksum.go
package page

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// ChecksumError reports a page whose stored checksum does not match its
// contents.
type ChecksumError struct {
	ID       ID
	Expected uint32
	Actual   uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%v corruption: expected CRC %08x, got %08x", e.ID, e.Expected, e.Actual)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrCorrupt
}

// Checksum computes the CRC32 of a full page with the checksum field
// treated as zero.
func Checksum(data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(data[:offsetChecksum])
	h.Write(make([]byte, 4))
	h.Write(data[offsetChecksum+4:])
	return h.Sum32()
}

// VerifyChecksum checks the stored checksum of a raw page. A stored value of
// zero means no checksum was ever written and is accepted.
func VerifyChecksum(id ID, data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: got %d bytes", ErrBadPageLength, len(data))
	}
	stored := binary.LittleEndian.Uint32(data[offsetChecksum:])
	if stored == 0 {
		return nil
	}
	if actual := Checksum(data); actual != stored {
		return &ChecksumError{ID: id, Expected: stored, Actual: actual}
	}
	return nil
}

// StampChecksum stores the checksum of the current contents in the header
// and marks the page dirty.
func (p *Page) StampChecksum() {
	binary.LittleEndian.PutUint32(p.data[offsetChecksum:], Checksum(p.data[:]))
	p.dirty = true
}
