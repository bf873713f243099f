// Package lines holds a document as a list of lines whose bytes live in
// backing stores, and keeps the lines' rows and syntax state current as
// the document is loaded, edited and saved.
//
// A document is not safe for concurrent use.
package lines

import (
	"errors"
	"fmt"
	"log"

	"github.com/rjkroege/madlines/charset"
	"github.com/rjkroege/madlines/internal/ui"
	"github.com/rjkroege/madlines/store"
	"github.com/rjkroege/madlines/syntax"
	"github.com/rjkroege/madlines/util"
)

// expensiveCheckedExecution turns on validation of the line list after
// every reformat.
const expensiveCheckedExecution = false

var (
	// ErrReadOnly is returned when saving over a file opened read-only.
	ErrReadOnly = errors.New("file is read-only")

	// ErrWrongOffset is returned for edits outside the document.
	ErrWrongOffset = errors.New("offset outside the document")

	// ErrHexMode is returned for text edits of a document shown as hex.
	ErrHexMode = errors.New("document is in hex mode")
)

// Newline is a line terminator convention.
type Newline int

const (
	NewlineDefault Newline = iota // not yet seen, or no terminator
	NewlineDOS                    // CR LF
	NewlineUnix                   // LF
	NewlineMac                    // CR
)

func (n Newline) String() string {
	switch n {
	case NewlineDOS:
		return "DOS"
	case NewlineUnix:
		return "Unix"
	case NewlineMac:
		return "Mac"
	}
	return "Default"
}

// Config holds the settings a document is created with.
type Config struct {
	MaxTextFileSize  int64  // files this large are shown as hex
	MaxSizeToLoad    int64  // files up to this size are read into memory
	DefaultEncoding  string // used when detection finds nothing; "" is the system encoding
	MaxLineLength    int    // row byte cap
	WrapWidth        int    // row width cap, 0 for none
	TabColumns       int
	TempDir          string // where in-place saves spill; "" spills to memory when it fits
	UseDefaultSyntax bool   // do not detect the syntax of loaded files
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		MaxTextFileSize: 10 * 1000 * 1000,
		MaxSizeToLoad:   20 * 1000 * 1000,
		MaxLineLength:   4096,
		TabColumns:      8,
	}
}

// Lines is a document.
type Lines struct {
	cfg       Config
	encodings *charset.Registry
	syntaxes  *syntax.Registry
	metrics   ui.Metrics

	list         lineList
	size         int64
	rowCount     int
	maxLineWidth int
	endState     LineState

	name         string
	readOnly     bool
	hexMode      bool
	hasTab       bool
	newline      Newline
	enc          *charset.Encoding
	syn          *syntax.Syntax
	manualSyntax bool

	file *store.FileStore // the file the document was loaded from, if kept open
	mem  *store.MemStore  // loaded text and everything inserted
	disk *store.DiskDetails

	f  formatter
	rb rowBuilder

	// freeMemory reports free memory in bytes, or -1 when unknown.
	freeMemory func() int64
}

// New returns an empty document.
func New(cfg Config, encodings *charset.Registry, syntaxes *syntax.Registry, m ui.Metrics) *Lines {
	d := &Lines{
		cfg:        cfg,
		encodings:  encodings,
		syntaxes:   syntaxes,
		metrics:    m,
		mem:        store.NewMemStore(),
		freeMemory: store.FreeMemory,
	}
	d.enc = encodings.Get(d.defaultEncoding())
	d.syn = syntaxes.Default()
	d.list.init()
	d.empty()
	return d
}

func (d *Lines) defaultEncoding() string {
	if d.cfg.DefaultEncoding != "" {
		return d.cfg.DefaultEncoding
	}
	return d.encodings.System().Name()
}

// empty leaves the document with a single empty line.
func (d *Lines) empty() {
	for l := d.list.front(); l != nil; l = d.list.front() {
		d.list.remove(l)
	}
	d.list.init()
	d.list.pushBack(newEmptyLine())
	d.size = 0
	d.rowCount = 1
	d.maxLineWidth = 0
	d.endState = LineState{}
}

// Close releases the file the document refers to and empties it.
func (d *Lines) Close() error {
	var err error
	if d.file != nil {
		err = d.file.Close()
		d.file = nil
	}
	d.mem.Reset()
	d.empty()
	d.name = ""
	d.disk = nil
	d.readOnly = false
	d.hexMode = false
	return err
}

// Name returns the file name of the document.
func (d *Lines) Name() string { return d.name }

// Size returns the size of the document in bytes.
func (d *Lines) Size() int64 { return d.size }

// LineCount returns the number of lines.
func (d *Lines) LineCount() int { return d.list.len }

// RowCount returns the number of rows of all lines.
func (d *Lines) RowCount() int { return d.rowCount }

// MaxLineWidth returns the width of the widest row, or -1 in hex mode.
func (d *Lines) MaxLineWidth() int { return d.maxLineWidth }

// ReadOnly reports whether the file was opened read-only.
func (d *Lines) ReadOnly() bool { return d.readOnly }

// HexMode reports whether the document is shown as hex.
func (d *Lines) HexMode() bool { return d.hexMode }

// HasTab reports whether a tab was laid out.
func (d *Lines) HasTab() bool { return d.hasTab }

// Newline returns the terminator convention of the document.
func (d *Lines) Newline() Newline { return d.newline }

// Encoding returns the active encoding.
func (d *Lines) Encoding() *charset.Encoding { return d.enc }

// Syntax returns the active syntax.
func (d *Lines) Syntax() *syntax.Syntax { return d.syn }

// EndState returns the lexer state after the last line.
func (d *Lines) EndState() LineState { return d.endState }

// Front returns the first line.
func (d *Lines) Front() *Line { return d.list.front() }

// Back returns the last line.
func (d *Lines) Back() *Line { return d.list.back() }

// SetEncoding changes the encoding and lays out the document again.
func (d *Lines) SetEncoding(name string) error {
	e, err := d.encodings.Lookup(name)
	if err != nil {
		return err
	}
	d.enc = e
	d.reformatAll()
	return nil
}

// SetSyntax selects a syntax by title. A syntax chosen this way is
// kept when the document is saved under another name.
func (d *Lines) SetSyntax(title string) error {
	s := d.syntaxes.ByTitle(title)
	if s == nil {
		return fmt.Errorf("no syntax %q", title)
	}
	d.manualSyntax = true
	d.setSyntax(s)
	return nil
}

func (d *Lines) setSyntax(s *syntax.Syntax) {
	if s == d.syn {
		return
	}
	d.syn = s
	d.reformatAll()
}

// SetMetrics changes the display metrics and recounts the row widths.
func (d *Lines) SetMetrics(m ui.Metrics) {
	d.metrics = m
	d.RecountLineWidth()
}

// SetWrap changes the row caps and recounts the row widths.
func (d *Lines) SetWrap(wrapWidth, tabColumns int) {
	d.cfg.WrapWidth = wrapWidth
	d.cfg.TabColumns = tabColumns
	d.RecountLineWidth()
}

func (d *Lines) reformatAll() {
	if d.hexMode {
		return
	}
	d.maxLineWidth = 0
	d.hasTab = false
	d.Reformat(d.list.front(), d.list.back())
}

// validate checks the structure of the line list.
func (d *Lines) validate() {
	if !expensiveCheckedExecution {
		return
	}
	var size int64
	rows, n := 0, 0
	for l := d.list.front(); l != nil; l = l.Next() {
		if got := blocksSize(l.Blocks); got != l.Size {
			log.Printf("line %d: blocks hold %d bytes, size is %d", n, got, l.Size)
			util.InternalError("validate", fmt.Errorf("line %d size mismatch", n))
		}
		size += l.Size
		rows += l.RowCount()
		n++
	}
	util.Assert(n == d.list.len, "line count %d, list holds %d", d.list.len, n)
	util.Assert(size == d.size, "document size %d, lines hold %d", d.size, size)
	if !d.hexMode {
		util.Assert(rows == d.rowCount, "row count %d, lines hold %d", d.rowCount, rows)
	}
}
