// pkg/page/kind.go
package page

import (
	"fmt"
	"slices"
)

// Kind identifies the role of a page. It is stored in byte 0 of every page.
type Kind byte

const (
	KindFreelist Kind = 0x01
	KindOverflow Kind = 0x02
	KindInternal Kind = 0x05
	KindLeaf     Kind = 0x0D
)

// kinds lists every kind that may appear on disk.
var kinds = []Kind{KindInternal, KindLeaf, KindOverflow, KindFreelist}

// ParseKind converts a tag byte into a Kind. Any byte that is not one of the
// four known tags is reported as an *InvalidKindError.
func ParseKind(b byte) (Kind, error) {
	k := Kind(b)
	if !slices.Contains(kinds, k) {
		return 0, &InvalidKindError{Byte: b}
	}
	return k, nil
}

// Valid reports whether k is one of the known page kinds.
func (k Kind) Valid() bool {
	return slices.Contains(kinds, k)
}

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindLeaf:
		return "leaf"
	case KindOverflow:
		return "overflow"
	case KindFreelist:
		return "freelist"
	default:
		return fmt.Sprintf("kind(0x%02X)", byte(k))
	}
}
