// cmd/pagedump/main.go
//
// pagedump inspects page files without modifying them.
//
// Usage:
//
//	pagedump header <file> [--page N]
//	pagedump check <file> [--checksums]
//	pagedump digest <file>
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/zeebo/blake3"

	"rdb/pkg/page"
	"rdb/pkg/pager"
)

const version = "0.1.0"

// CLI defines the command-line interface for pagedump.
var CLI struct {
	Verbose bool `short:"v" help:"Log pager activity to stderr"`

	Header  HeaderCmd  `cmd:"" help:"Print page headers"`
	Check   CheckCmd   `cmd:"" help:"Scan every page for corruption"`
	Digest  DigestCmd  `cmd:"" help:"Print a BLAKE3 digest of every page and of the file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// env carries what every command needs from main.
type env struct {
	log *slog.Logger
	out io.Writer
}

func openReadOnly(path string, e *env, checksums bool) (*pager.Pager, error) {
	p, err := pager.Open(path, pager.Options{
		ReadOnly:  true,
		Checksums: checksums,
		Logger:    e.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return p, nil
}

// HeaderCmd prints the header of one page or of all pages.
type HeaderCmd struct {
	File string `arg:"" help:"Page file" type:"existingfile"`
	Page uint32 `help:"Only print this page (1-based)"`
}

func (c *HeaderCmd) Run(e *env) error {
	p, err := openReadOnly(c.File, e, false)
	if err != nil {
		return err
	}
	defer p.Close()

	if c.Page != 0 {
		v, err := p.GetPage(page.ID(c.Page))
		if err != nil {
			return err
		}
		printHeader(e.out, page.ID(c.Page), v.Header())
		return nil
	}

	fmt.Fprintf(e.out, "%d pages of %d bytes\n", p.PageCount(), p.PageSize())
	for id := page.ID(1); uint32(id) <= p.PageCount(); id++ {
		v, err := p.GetPage(id)
		switch {
		case err == nil:
			printHeader(e.out, id, v.Header())
		case errors.Is(err, pager.ErrCorrupt):
			fmt.Fprintf(e.out, "%6d  unreadable: %v\n", uint32(id), err)
		default:
			return err
		}
	}
	return nil
}

func printHeader(w io.Writer, id page.ID, h page.Header) {
	fmt.Fprintf(w, "%6d  %-8s cells=%d content=%d freeblock=%d frag=%d right=%d lsn=%d crc=%08x\n",
		uint32(id), h.Kind, h.NumCells, h.CellContentArea, h.FirstFreeblock,
		h.FragmentedBytes, h.RightChild, h.LSN, h.Checksum)
}

// CheckCmd runs the corruption checker over the whole file.
type CheckCmd struct {
	File      string `arg:"" help:"Page file" type:"existingfile"`
	Checksums bool   `help:"Verify stored page checksums"`
}

func (c *CheckCmd) Run(e *env) error {
	p, err := openReadOnly(c.File, e, c.Checksums)
	if err != nil {
		return err
	}
	defer p.Close()

	errs := pager.NewChecker(p).CheckAllPages()
	for _, ce := range errs {
		fmt.Fprintln(e.out, ce)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d pages corrupt", len(errs), p.PageCount())
	}
	fmt.Fprintf(e.out, "ok: %d pages\n", p.PageCount())
	return nil
}

// DigestCmd fingerprints the file page by page so two copies can be
// compared without shipping them around.
type DigestCmd struct {
	File string `arg:"" help:"Page file" type:"existingfile"`
}

func (c *DigestCmd) Run(e *env) error {
	p, err := openReadOnly(c.File, e, false)
	if err != nil {
		return err
	}
	defer p.Close()

	file := blake3.New()
	buf := make([]byte, p.PageSize())
	for id := page.ID(1); uint32(id) <= p.PageCount(); id++ {
		if err := p.ReadRaw(id, buf); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%6d  %x\n", uint32(id), blake3.Sum256(buf))
		file.Write(buf)
	}
	fmt.Fprintf(e.out, "file    %x\n", file.Sum(nil))
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintf(e.out, "pagedump version %s\n", version)
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pagedump"),
		kong.Description("Inspect page files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&env{log: newLogger(CLI.Verbose), out: os.Stdout})
	ctx.FatalIfErrorf(err)
}
