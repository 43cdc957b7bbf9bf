// pkg/page/header_test.go
package page

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestHeader_Size(t *testing.T) {
	h := NewHeader(KindLeaf)
	buf := h.Encode()
	if len(buf) != HeaderSize {
		t.Errorf("Encode() length = %d, want %d", len(buf), HeaderSize)
	}
	if HeaderSize != 32 {
		t.Errorf("HeaderSize = %d, want 32", HeaderSize)
	}
}

func TestHeader_FieldOffsets(t *testing.T) {
	h := Header{
		Kind:            KindInternal,
		FirstFreeblock:  0x0102,
		NumCells:        0x0304,
		CellContentArea: 0x0506,
		FragmentedBytes: 0x07,
		RightChild:      0x08090A0B,
		LSN:             0x0C0D0E0F10111213,
		Checksum:        0x14151617,
		Reserved:        0x18191A1B1C1D1E1F,
	}

	want := []byte{
		// kind
		0x05,
		// first_freeblock, num_cells, cell_content_area
		0x02, 0x01, 0x04, 0x03, 0x06, 0x05,
		// fragmented_bytes
		0x07,
		// right_child
		0x0B, 0x0A, 0x09, 0x08,
		// lsn
		0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C,
		// checksum
		0x17, 0x16, 0x15, 0x14,
		// reserved
		0x1F, 0x1E, 0x1D, 0x1C, 0x1B, 0x1A, 0x19, 0x18,
	}

	got := h.Encode()
	if !bytes.Equal(got[:], want) {
		t.Errorf("Encode() = % x\nwant        % x", got, want)
	}
}

func TestHeader_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{"fresh leaf", NewHeader(KindLeaf)},
		{"fresh internal", NewHeader(KindInternal)},
		{"zero fields", Header{Kind: KindFreelist}},
		{"max fields", Header{
			Kind:            KindOverflow,
			FirstFreeblock:  math.MaxUint16,
			NumCells:        math.MaxUint16,
			CellContentArea: Size,
			FragmentedBytes: math.MaxUint8,
			RightChild:      math.MaxUint32,
			LSN:             math.MaxUint64,
			Checksum:        math.MaxUint32,
			Reserved:        math.MaxUint64,
		}},
		{"internal with child", Header{Kind: KindInternal, NumCells: 7, CellContentArea: 3900, RightChild: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.h.Encode()
			got, err := DecodeHeader(buf[:])
			if err != nil {
				t.Fatalf("DecodeHeader() error = %v", err)
			}
			if got != tt.h {
				t.Errorf("DecodeHeader() = %+v, want %+v", got, tt.h)
			}
		})
	}
}

func randomHeader(rng *rand.Rand) Header {
	return Header{
		Kind:            kinds[rng.Intn(len(kinds))],
		FirstFreeblock:  uint16(rng.Uint32()),
		NumCells:        uint16(rng.Uint32()),
		CellContentArea: uint16(rng.Intn(Size + 1)),
		FragmentedBytes: uint8(rng.Uint32()),
		RightChild:      rng.Uint32(),
		LSN:             rng.Uint64(),
		Checksum:        rng.Uint32(),
		Reserved:        rng.Uint64(),
	}
}

func TestHeader_RoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		h := randomHeader(rng)
		buf := h.Encode()
		got, err := DecodeHeader(buf[:])
		if err != nil {
			t.Fatalf("iteration %d: DecodeHeader() error = %v", i, err)
		}
		if got != h {
			t.Fatalf("iteration %d: round trip = %+v, want %+v", i, got, h)
		}
	}
}

func TestHeader_EncodeToClearsStaleBytes(t *testing.T) {
	buf := bytes.Repeat([]byte{0xEE}, HeaderSize+8)

	NewHeader(KindLeaf).EncodeTo(buf)

	want := NewHeader(KindLeaf).Encode()
	if !bytes.Equal(buf[:HeaderSize], want[:]) {
		t.Errorf("header window = % x, want % x", buf[:HeaderSize], want)
	}
	// Bytes past the header are not touched
	for i := HeaderSize; i < len(buf); i++ {
		if buf[i] != 0xEE {
			t.Fatalf("byte %d = 0x%02X, want 0xEE", i, buf[i])
		}
	}
}

func TestDecodeHeader_TooShort(t *testing.T) {
	_, err := DecodeHeader(make([]byte, HeaderSize-1))
	if !errors.Is(err, ErrHeaderTooShort) {
		t.Errorf("DecodeHeader() error = %v, want ErrHeaderTooShort", err)
	}
}

func TestDecodeHeader_RejectsEveryUnknownKind(t *testing.T) {
	valid := map[byte]bool{0x01: true, 0x02: true, 0x05: true, 0x0D: true}
	rejected := 0

	for b := 0; b <= 0xFF; b++ {
		buf := NewHeader(KindLeaf).Encode()
		buf[0] = byte(b)

		_, err := DecodeHeader(buf[:])
		if valid[byte(b)] {
			if err != nil {
				t.Errorf("byte 0x%02X: unexpected error %v", b, err)
			}
			continue
		}

		var kindErr *InvalidKindError
		if !errors.As(err, &kindErr) {
			t.Errorf("byte 0x%02X: error = %v, want *InvalidKindError", b, err)
			continue
		}
		if kindErr.Byte != byte(b) {
			t.Errorf("byte 0x%02X: error carries 0x%02X", b, kindErr.Byte)
		}
		if !errors.Is(err, ErrCorrupt) {
			t.Errorf("byte 0x%02X: error should match ErrCorrupt", b)
		}
		rejected++
	}

	if rejected != 252 {
		t.Errorf("rejected %d byte values, want 252", rejected)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		b    byte
		want Kind
		name string
	}{
		{0x05, KindInternal, "internal"},
		{0x0D, KindLeaf, "leaf"},
		{0x02, KindOverflow, "overflow"},
		{0x01, KindFreelist, "freelist"},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.b)
		if err != nil {
			t.Fatalf("ParseKind(0x%02X) error = %v", tt.b, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(0x%02X) = %v, want %v", tt.b, got, tt.want)
		}
		if got.String() != tt.name {
			t.Errorf("String() = %q, want %q", got.String(), tt.name)
		}
	}

	if Kind(0x00).Valid() {
		t.Error("Kind(0) should not be valid")
	}
	if Kind(0xFF).String() != "kind(0xFF)" {
		t.Errorf("String() = %q", Kind(0xFF).String())
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		id   ID
		want int64
	}{
		{1, 0},
		{2, 4096},
		{10, 9 * 4096},
		{math.MaxUint32, int64(math.MaxUint32-1) * 4096},
	}

	for _, tt := range tests {
		got, err := Offset(tt.id, Size)
		if err != nil {
			t.Fatalf("Offset(%d) error = %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("Offset(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}

	if _, err := Offset(InvalidID, Size); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Offset(0) error = %v, want ErrInvalidID", err)
	}
}

func FuzzDecodeHeader(f *testing.F) {
	fresh := NewHeader(KindLeaf).Encode()
	f.Add(fresh[:])
	f.Add(make([]byte, HeaderSize))
	f.Add(bytes.Repeat([]byte{0xFF}, HeaderSize))
	f.Add([]byte{0x05})

	f.Fuzz(func(t *testing.T, data []byte) {
		h, err := DecodeHeader(data)
		if err != nil {
			return
		}
		buf := h.Encode()
		again, err := DecodeHeader(buf[:])
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}
		if again != h {
			t.Fatalf("round trip = %+v, want %+v", again, h)
		}
		if !bytes.Equal(buf[:], data[:HeaderSize]) {
			t.Fatalf("encode(decode(b)) = % x, want % x", buf, data[:HeaderSize])
		}
	})
}
