package pager

import (
	"log/slog"

	"rdb/pkg/cache"
	"rdb/pkg/page"
)

// DefaultPageSize is the page size used when Options.PageSize is zero.
// It is also the only page size currently supported.
const DefaultPageSize = page.Size

// Options configures the pager
type Options struct {
	// PageSize is the page size in bytes. Zero selects DefaultPageSize;
	// every other value except 4096 is rejected with
	// *UnsupportedPageSizeError.
	PageSize int

	ReadOnly  bool // Open in read-only mode
	Checksums bool // Stamp checksums on flush and verify them on load

	// Budget, if set, is charged for every page held in the cache. The pager
	// has no eviction policy, so the budget only reports usage.
	Budget *cache.Budget

	// Logger receives debug events. Nil discards them.
	Logger *slog.Logger
}

func (o Options) pageSize() int {
	if o.PageSize == 0 {
		return DefaultPageSize
	}
	return o.PageSize
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
