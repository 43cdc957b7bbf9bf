// pkg/pager/pager.go
// Package pager owns a page file and an in-memory cache of its pages. Pages
// are loaded on demand, mutated in place, appended at the end of the file
// and written back on explicit flush.
package pager

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"

	"rdb/internal/fileio"
	"rdb/pkg/cache"
	"rdb/pkg/page"
)

// File is the backing store a Pager drives. *os.File satisfies it.
type File interface {
	io.ReaderAt
	io.WriterAt
	fileio.Stater
	fileio.Truncater
	fileio.Syncer
	io.Closer
}

// ErrFileFull is returned when the file already holds the largest
// addressable page id.
var ErrFileFull = errors.New("page id space exhausted")

// Pager manages the pages of one file.
//
// A Pager has a single owner and no internal locking: it must not be used
// from more than one goroutine at a time. Callers that need shared access
// wrap it in their own mutex and must not keep *page.Page or page.View
// values past the critical section.
type Pager struct {
	file      File
	locked    *os.File // set when Open took a file lock
	pageSize  int
	pageCount uint32
	cache     map[page.ID]*page.Page
	free      *Freelist
	opts      Options
	log       *slog.Logger

	overBudget bool
	closed     bool
}

// Open opens or creates the page file at path and locks it for this
// process: exclusively for writers, shared for read-only pagers.
func Open(path string, opts Options) (*Pager, error) {
	if err := checkPageSize(opts.pageSize()); err != nil {
		return nil, err
	}

	flag := os.O_RDWR | os.O_CREATE
	if opts.ReadOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, err
	}

	if err := fileio.Lock(f, !opts.ReadOnly); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	p, err := New(f, opts)
	if err != nil {
		fileio.Unlock(f)
		f.Close()
		return nil, err
	}
	p.locked = f
	return p, nil
}

// New creates a pager over an already open file. The file length must be a
// whole number of pages.
func New(f File, opts Options) (*Pager, error) {
	pageSize := opts.pageSize()
	if err := checkPageSize(pageSize); err != nil {
		return nil, err
	}

	n, err := fileio.FileLen(f)
	if err != nil {
		return nil, fmt.Errorf("pager: stat: %w", err)
	}
	if err := fileio.ValidateLen(n, pageSize); err != nil {
		return nil, &CorruptFileError{Len: n, PageSize: pageSize}
	}
	count := n / int64(pageSize)
	if count > math.MaxUint32 {
		return nil, &CorruptFileError{Len: n, PageSize: pageSize}
	}

	p := &Pager{
		file:      f,
		pageSize:  pageSize,
		pageCount: uint32(count),
		cache:     make(map[page.ID]*page.Page),
		free:      NewFreelist(),
		opts:      opts,
		log:       opts.logger(),
	}
	p.log.Debug("pager opened", "pages", p.pageCount, "read_only", opts.ReadOnly)
	return p, nil
}

func checkPageSize(size int) error {
	if size != DefaultPageSize {
		return &UnsupportedPageSizeError{Size: size}
	}
	return nil
}

// PageSize returns the page size
func (p *Pager) PageSize() int {
	return p.pageSize
}

// PageCount returns the number of pages in the file
func (p *Pager) PageCount() uint32 {
	return p.pageCount
}

// Cached returns the number of pages held in the cache
func (p *Pager) Cached() int {
	return len(p.cache)
}

// IsReadOnly reports whether the pager was opened read-only
func (p *Pager) IsReadOnly() bool {
	return p.opts.ReadOnly
}

// GetPage returns a read-only view of page id, loading it on a cache miss.
// Every lookup of the same id returns a view of the same cached page.
func (p *Pager) GetPage(id page.ID) (page.View, error) {
	pg, err := p.load(id)
	if err != nil {
		return page.View{}, err
	}
	return pg.View(), nil
}

// GetPageForWrite returns the cached page id for mutation, loading it on a
// cache miss. Every mutation through the returned page marks it dirty.
func (p *Pager) GetPageForWrite(id page.ID) (*page.Page, error) {
	if err := p.checkWritable(); err != nil {
		return nil, err
	}
	return p.load(id)
}

func (p *Pager) load(id page.ID) (*page.Page, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	if !p.inRange(id) {
		return nil, &PageNotFoundError{ID: id}
	}
	if pg, ok := p.cache[id]; ok {
		return pg, nil
	}

	buf := make([]byte, p.pageSize)
	if err := p.readRaw(id, buf); err != nil {
		return nil, err
	}

	pg, err := page.FromBytes(id, buf)
	if err != nil {
		return nil, fmt.Errorf("pager: load page %d: %w", id, err)
	}
	if p.opts.Checksums {
		if err := page.VerifyChecksum(id, buf); err != nil {
			return nil, err
		}
	}

	p.insert(pg)
	p.log.Debug("page loaded", "page", uint32(id), "kind", pg.Kind())
	return pg, nil
}

// ReadRaw copies page id as it is stored in the file into buf, ignoring the
// cache. buf must be PageSize bytes. The bytes are not validated.
func (p *Pager) ReadRaw(id page.ID, buf []byte) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	if !p.inRange(id) {
		return &PageNotFoundError{ID: id}
	}
	if len(buf) != p.pageSize {
		return fmt.Errorf("pager: raw read buffer is %d bytes, want %d", len(buf), p.pageSize)
	}
	return p.readRaw(id, buf)
}

func (p *Pager) readRaw(id page.ID, buf []byte) error {
	off, err := page.Offset(id, p.pageSize)
	if err != nil {
		return err
	}
	if err := fileio.ReadExactAt(p.file, buf, off); err != nil {
		return fmt.Errorf("pager: read page %d: %w", id, err)
	}
	return nil
}

func (p *Pager) inRange(id page.ID) bool {
	return id.Valid() && uint32(id) <= p.pageCount
}

func (p *Pager) insert(pg *page.Page) {
	p.cache[pg.ID()] = pg

	if b := p.opts.Budget; b != nil {
		b.Track(cache.PageCacheComponent, int64(p.pageSize))
		exceeded := b.IsExceeded()
		if exceeded && !p.overBudget {
			p.log.Warn("page cache over memory budget",
				"cached", len(p.cache), "usage", b.TotalUsage(), "limit", b.Limit())
		}
		p.overBudget = exceeded
	}
}

// AllocatePage appends one zero-filled page to the end of the file and
// returns its id. Freed pages are never reused.
//
// The new page is not cached and its kind byte is zero, so it cannot be
// loaded until something writes a header to it; NewPage does both steps.
func (p *Pager) AllocatePage() (page.ID, error) {
	if err := p.checkWritable(); err != nil {
		return page.InvalidID, err
	}
	if p.pageCount == math.MaxUint32 {
		return page.InvalidID, ErrFileFull
	}

	next := page.ID(p.pageCount + 1)
	if err := fileio.SetLen(p.file, int64(next)*int64(p.pageSize)); err != nil {
		return page.InvalidID, fmt.Errorf("pager: grow file to page %d: %w", next, err)
	}

	// Truncate is not guaranteed to zero-fill on every platform.
	off, err := page.Offset(next, p.pageSize)
	if err != nil {
		return page.InvalidID, err
	}
	if err := fileio.WriteAllAt(p.file, make([]byte, p.pageSize), off); err != nil {
		// Shrink back so the file length still matches pageCount.
		if terr := fileio.SetLen(p.file, int64(p.pageCount)*int64(p.pageSize)); terr != nil {
			return page.InvalidID, fmt.Errorf("pager: zero page %d: %w (shrink: %v)", next, err, terr)
		}
		return page.InvalidID, fmt.Errorf("pager: zero page %d: %w", next, err)
	}

	p.pageCount = uint32(next)
	p.log.Debug("page allocated", "page", uint32(next))
	return next, nil
}

// NewPage allocates a page and installs a fresh page of the given kind for
// it in the cache. The page is dirty until flushed.
func (p *Pager) NewPage(kind page.Kind) (*page.Page, error) {
	if _, err := page.ParseKind(byte(kind)); err != nil {
		return nil, err
	}

	id, err := p.AllocatePage()
	if err != nil {
		return nil, err
	}
	pg, err := page.New(id, kind)
	if err != nil {
		return nil, err
	}
	if err := pg.WriteHeader(page.NewHeader(kind)); err != nil {
		return nil, err
	}
	p.insert(pg)
	return pg, nil
}

// FlushPage writes page id back to the file if it is dirty. The page must
// already be cached; FlushPage never loads it.
func (p *Pager) FlushPage(id page.ID) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	pg, ok := p.cache[id]
	if !ok {
		return &PageNotFoundError{ID: id}
	}
	return p.flush(pg)
}

func (p *Pager) flush(pg *page.Page) error {
	if !pg.IsDirty() {
		return nil
	}
	if p.opts.Checksums {
		pg.StampChecksum()
	}
	if err := pg.FlushTo(p.file); err != nil {
		return fmt.Errorf("pager: flush page %d: %w", pg.ID(), err)
	}
	p.log.Debug("page flushed", "page", uint32(pg.ID()))
	return nil
}

// FlushAll writes every dirty cached page back, in page order. It stops at
// the first failure; pages before it are flushed, the rest stay dirty.
func (p *Pager) FlushAll() error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	ids := make([]page.ID, 0, len(p.cache))
	for id := range p.cache {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if err := p.flush(p.cache[id]); err != nil {
			return err
		}
	}
	return nil
}

// FreePage records page id as free. The page stays in the file and in the
// cache; AllocatePage does not reuse freed pages yet.
func (p *Pager) FreePage(id page.ID) error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	if !p.inRange(id) {
		return &PageNotFoundError{ID: id}
	}
	if err := p.free.Free(id); err != nil {
		return err
	}
	p.log.Debug("page freed", "page", uint32(id), "free", p.free.Len())
	return nil
}

// FreeCount returns the number of pages recorded as free
func (p *Pager) FreeCount() int {
	return p.free.Len()
}

// FreePages returns the free page ids in ascending order
func (p *Pager) FreePages() []page.ID {
	return p.free.Pages()
}

// Sync flushes all dirty pages and commits the file to stable storage.
func (p *Pager) Sync() error {
	if err := p.FlushAll(); err != nil {
		return err
	}
	if p.opts.ReadOnly {
		return nil
	}
	if err := fileio.SyncData(p.file); err != nil {
		return fmt.Errorf("pager: sync: %w", err)
	}
	return nil
}

// Close flushes dirty pages, releases the file lock and closes the file.
// The file is closed even if the flush fails; the first error is returned.
func (p *Pager) Close() error {
	if p.closed {
		return ErrClosed
	}

	var firstErr error
	if !p.opts.ReadOnly {
		firstErr = p.FlushAll()
	}

	if b := p.opts.Budget; b != nil {
		b.Release(cache.PageCacheComponent, int64(len(p.cache))*int64(p.pageSize))
	}
	p.cache = nil
	p.closed = true

	if p.locked != nil {
		if err := fileio.Unlock(p.locked); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := p.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	p.log.Debug("pager closed", "pages", p.pageCount)
	return firstErr
}

func (p *Pager) checkOpen() error {
	if p.closed {
		return ErrClosed
	}
	return nil
}

func (p *Pager) checkWritable() error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	if p.opts.ReadOnly {
		return ErrReadOnly
	}
	return nil
}
