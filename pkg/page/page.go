// pkg/page/page.go
package page

import (
	"fmt"
	"io"

	"rdb/internal/fileio"
)

// Page is one in-memory page buffer plus runtime state that is never
// persisted: its id, the dirty flag and the pin count.
//
// Byte 0 of a Page always holds a valid Kind. New and FromBytes establish
// this, and the header bytes can only be rewritten through WriteHeader, which
// validates the kind before encoding it.
//
// A Page is not safe for concurrent use.
type Page struct {
	id     ID
	data   [Size]byte
	dirty  bool
	pinned int
}

// New creates an empty page of the given kind with a fresh header written
// into its first HeaderSize bytes. The page starts clean.
func New(id ID, kind Kind) (*Page, error) {
	if _, err := ParseKind(byte(kind)); err != nil {
		return nil, err
	}

	p := &Page{id: id}
	NewHeader(kind).EncodeTo(p.data[:HeaderSize])
	return p, nil
}

// FromBytes builds a page from bytes read off disk. data must be exactly one
// page long and start with a valid kind tag; the bytes are copied.
func FromBytes(id ID, data []byte) (*Page, error) {
	if len(data) != Size {
		return nil, fmt.Errorf("%w: got %d bytes", ErrBadPageLength, len(data))
	}
	if _, err := ParseKind(data[offsetKind]); err != nil {
		return nil, err
	}

	p := &Page{id: id}
	copy(p.data[:], data)
	return p, nil
}

// ID returns the page number this page was loaded or allocated as.
func (p *Page) ID() ID {
	return p.id
}

// Kind returns the page kind stored in byte 0.
func (p *Page) Kind() Kind {
	k, err := ParseKind(p.data[offsetKind])
	if err != nil {
		panic(fmt.Sprintf("page: %v holds %v", p.id, err))
	}
	return k
}

// TryParseHeader decodes the page header.
func (p *Page) TryParseHeader() (Header, error) {
	return DecodeHeader(p.data[:HeaderSize])
}

// Header decodes the page header. A decode failure here means the kind
// invariant was broken, which is a bug, so it panics instead of guessing.
func (p *Page) Header() Header {
	h, err := p.TryParseHeader()
	if err != nil {
		panic(fmt.Sprintf("page: %v holds %v", p.id, err))
	}
	return h
}

// Bytes returns a copy of the whole page buffer.
func (p *Page) Bytes() [Size]byte {
	return p.data
}

// Read returns a copy of length bytes starting at offset.
func (p *Page) Read(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset > Size || length > Size-offset {
		return nil, fmt.Errorf("%w: offset %d length %d", ErrOutOfRange, offset, length)
	}
	out := make([]byte, length)
	copy(out, p.data[offset:offset+length])
	return out, nil
}

// IsDirty reports whether the page changed since it was loaded or flushed.
func (p *Page) IsDirty() bool {
	return p.dirty
}

// WriteHeader encodes h into the first HeaderSize bytes and marks the page
// dirty. No I/O happens here.
func (p *Page) WriteHeader(h Header) error {
	if err := h.validate(); err != nil {
		return err
	}
	h.EncodeTo(p.data[:HeaderSize])
	p.dirty = true
	return nil
}

// Write copies b into the page body at offset and marks the page dirty.
// The header is off limits; use WriteHeader for it.
func (p *Page) Write(offset int, b []byte) error {
	if offset < HeaderSize {
		return fmt.Errorf("%w: offset %d", ErrHeaderRegion, offset)
	}
	if offset > Size || len(b) > Size-offset {
		return fmt.Errorf("%w: offset %d length %d", ErrOutOfRange, offset, len(b))
	}
	copy(p.data[offset:], b)
	p.dirty = true
	return nil
}

// Mutate marks the page dirty and hands fn the page body, bytes
// [HeaderSize, Size). fn must not retain the slice.
func (p *Page) Mutate(fn func(body []byte)) {
	p.dirty = true
	fn(p.data[HeaderSize:])
}

// FlushTo writes a dirty page to its offset in w and clears the dirty flag.
// A clean page is left alone.
func (p *Page) FlushTo(w io.WriterAt) error {
	if !p.dirty {
		return nil
	}
	off, err := Offset(p.id, Size)
	if err != nil {
		return err
	}
	if err := fileio.WriteAllAt(w, p.data[:], off); err != nil {
		return err
	}
	p.dirty = false
	return nil
}

// Pin increments the pin count.
func (p *Page) Pin() {
	p.pinned++
}

// Unpin decrements the pin count. It never goes below zero.
func (p *Page) Unpin() {
	if p.pinned > 0 {
		p.pinned--
	}
}

// PinCount returns the number of outstanding pins.
func (p *Page) PinCount() int {
	return p.pinned
}

// IsPinned reports whether the page is in use.
func (p *Page) IsPinned() bool {
	return p.pinned > 0
}

// View returns a read-only handle to p.
func (p *Page) View() View {
	return View{page: p}
}
