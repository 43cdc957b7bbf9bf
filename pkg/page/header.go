// pkg/page/header.go
// Package page implements the on-disk page format: the 32-byte page header
// codec and the in-memory Page that carries one 4096-byte page buffer.
package page

import (
	"encoding/binary"
	"fmt"
)

const (
	// Size is the only supported page size in bytes.
	Size = 4096

	// HeaderSize is the size of the page header at the start of every page.
	HeaderSize = 32
)

// Header field offsets. All multi-byte fields are little-endian.
const (
	offsetKind            = 0  // 1 byte: page kind tag
	offsetFirstFreeblock  = 1  // 2 bytes: first free block in the cell area
	offsetNumCells        = 3  // 2 bytes: number of cells
	offsetCellContentArea = 5  // 2 bytes: start of the cell content area
	offsetFragmentedBytes = 7  // 1 byte: fragmented free bytes
	offsetRightChild      = 8  // 4 bytes: rightmost child (internal pages only)
	offsetLSN             = 12 // 8 bytes: log sequence number, reserved
	offsetChecksum        = 20 // 4 bytes: page checksum, reserved
	offsetReserved        = 24 // 8 bytes: reserved for cluster metadata
)

// ChecksumOffset is the byte offset of the checksum field in a page.
const ChecksumOffset = offsetChecksum

// ID is a 1-based page number. The zero value is never a valid page.
type ID uint32

// InvalidID is the reserved page id.
const InvalidID ID = 0

// Valid reports whether id can address a page.
func (id ID) Valid() bool {
	return id != InvalidID
}

func (id ID) String() string {
	return fmt.Sprintf("page %d", uint32(id))
}

// Offset returns the byte offset of page id in a file of pageSize pages.
func Offset(id ID, pageSize int) (int64, error) {
	if !id.Valid() {
		return 0, ErrInvalidID
	}
	return int64(id-1) * int64(pageSize), nil
}

// Header is the logical view of the first HeaderSize bytes of a page.
// Do not rely on its memory layout; use Encode and DecodeHeader.
type Header struct {
	Kind            Kind
	FirstFreeblock  uint16
	NumCells        uint16
	CellContentArea uint16
	FragmentedBytes uint8
	RightChild      uint32 // meaningful for internal pages only
	LSN             uint64
	Checksum        uint32
	Reserved        uint64
}

// NewHeader returns the header of an empty page of the given kind.
func NewHeader(kind Kind) Header {
	return Header{
		Kind:            kind,
		CellContentArea: Size,
	}
}

// DecodeHeader parses a header from the first HeaderSize bytes of buf.
// The kind byte is checked before any other field is read.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrHeaderTooShort
	}

	kind, err := ParseKind(buf[offsetKind])
	if err != nil {
		return Header{}, err
	}

	return Header{
		Kind:            kind,
		FirstFreeblock:  binary.LittleEndian.Uint16(buf[offsetFirstFreeblock:]),
		NumCells:        binary.LittleEndian.Uint16(buf[offsetNumCells:]),
		CellContentArea: binary.LittleEndian.Uint16(buf[offsetCellContentArea:]),
		FragmentedBytes: buf[offsetFragmentedBytes],
		RightChild:      binary.LittleEndian.Uint32(buf[offsetRightChild:]),
		LSN:             binary.LittleEndian.Uint64(buf[offsetLSN:]),
		Checksum:        binary.LittleEndian.Uint32(buf[offsetChecksum:]),
		Reserved:        binary.LittleEndian.Uint64(buf[offsetReserved:]),
	}, nil
}

// Encode serializes the header into a fresh HeaderSize-byte array.
func (h Header) Encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	h.EncodeTo(buf[:])
	return buf
}

// EncodeTo writes the header into buf[0:HeaderSize]. The window is zeroed
// first so no stale bytes survive. It panics if buf is shorter than HeaderSize.
func (h Header) EncodeTo(buf []byte) {
	buf = buf[:HeaderSize]
	clear(buf)

	buf[offsetKind] = byte(h.Kind)
	binary.LittleEndian.PutUint16(buf[offsetFirstFreeblock:], h.FirstFreeblock)
	binary.LittleEndian.PutUint16(buf[offsetNumCells:], h.NumCells)
	binary.LittleEndian.PutUint16(buf[offsetCellContentArea:], h.CellContentArea)
	buf[offsetFragmentedBytes] = h.FragmentedBytes
	binary.LittleEndian.PutUint32(buf[offsetRightChild:], h.RightChild)
	binary.LittleEndian.PutUint64(buf[offsetLSN:], h.LSN)
	binary.LittleEndian.PutUint32(buf[offsetChecksum:], h.Checksum)
	binary.LittleEndian.PutUint64(buf[offsetReserved:], h.Reserved)
}

// validate checks the fields the type itself cannot constrain.
func (h Header) validate() error {
	if !h.Kind.Valid() {
		return fmt.Errorf("%w: 0x%02X", ErrInvalidKind, byte(h.Kind))
	}
	if h.CellContentArea < HeaderSize || h.CellContentArea > Size {
		return fmt.Errorf("%w: %d", ErrCellAreaOutOfRange, h.CellContentArea)
	}
	return nil
}
