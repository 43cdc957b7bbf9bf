// pkg/pager/freelist.go
package pager

import (
	"fmt"
	"slices"

	"rdb/pkg/page"
)

// Freelist records pages that have been freed. It lives in memory only;
// allocation does not draw from it.
type Freelist struct {
	set map[page.ID]struct{}
}

// NewFreelist creates an empty freelist.
func NewFreelist() *Freelist {
	return &Freelist{set: make(map[page.ID]struct{})}
}

// Len returns the number of free pages.
func (f *Freelist) Len() int {
	return len(f.set)
}

// Contains reports whether id is recorded as free.
func (f *Freelist) Contains(id page.ID) bool {
	_, ok := f.set[id]
	return ok
}

// Free adds a page to the freelist. Freeing a page twice is an error.
func (f *Freelist) Free(id page.ID) error {
	if f.Contains(id) {
		return fmt.Errorf("%w: %d", ErrDoubleFree, uint32(id))
	}
	f.set[id] = struct{}{}
	return nil
}

// Pages returns all free page ids sorted ascending.
func (f *Freelist) Pages() []page.ID {
	pages := make([]page.ID, 0, len(f.set))
	for id := range f.set {
		pages = append(pages, id)
	}
	slices.Sort(pages)
	return pages
}
