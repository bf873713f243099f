// Command madlines loads a file into a line buffer, optionally edits and
// saves it, and reports how it was laid out.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/rjkroege/madlines/charset"
	"github.com/rjkroege/madlines/internal/textboundary"
	"github.com/rjkroege/madlines/internal/ui"
	"github.com/rjkroege/madlines/lines"
	"github.com/rjkroege/madlines/session"
	"github.com/rjkroege/madlines/syntax"
	"github.com/sanity-io/litter"
)

var (
	debug       = flag.Bool("d", false, "set for verbose logging")
	encflag     = flag.String("enc", "", "Encoding of the file; detected when empty")
	defencflag  = flag.String("defenc", "", "Encoding used when detection finds nothing")
	syntaxflag  = flag.String("syntax", "", "Syntax title; detected when empty")
	wrapflag    = flag.Int("wrap", 0, "Wrap width, 0 for none")
	maxlenflag  = flag.Int("maxlen", 4096, "Maximum bytes per row")
	tabflag     = flag.Int("tab", 8, "Tab width in columns")
	maxtextflag = flag.Int64("maxtext", 10*1000*1000, "Files this large are shown as hex")
	maxloadflag = flag.Int64("maxload", 20*1000*1000, "Files up to this size are read into memory")
	pixelsflag  = flag.Bool("px", false, "Measure widths in pixels of a 7x13 font instead of cells")
	tmpflag     = flag.String("tmp", "", "Directory for data spilled while saving in place")
	outflag     = flag.String("o", "", "Save to this file")
	writeflag   = flag.Bool("w", false, "Save over the file")
	insertflag  = flag.String("insert", "", "Insert text before editing, as offset:text")
	deleteflag  = flag.String("delete", "", "Delete bytes, as offset:count")
	wordsflag   = flag.Bool("words", false, "Count words")
	dumpflag    = flag.Bool("dump", false, "Dump the layout of every line")
	sessionflag = flag.String("session", "", "Session file to restore from and record to")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("madlines: ")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: madlines [flags] file\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if !*debug {
		log.SetOutput(io.Discard)
	}
	if err := run(flag.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "madlines: %v\n", err)
		os.Exit(1)
	}
}

func run(filename string, w io.Writer) error {
	cfg := lines.DefaultConfig()
	cfg.DefaultEncoding = *defencflag
	cfg.WrapWidth = *wrapflag
	cfg.MaxLineLength = *maxlenflag
	cfg.TabColumns = *tabflag
	cfg.MaxTextFileSize = *maxtextflag
	cfg.MaxSizeToLoad = *maxloadflag
	cfg.TempDir = *tmpflag

	var m ui.Metrics = ui.NewCellMetrics(1, false)
	if *pixelsflag {
		m = ui.NewFaceMetrics(nil)
		cfg.WrapWidth *= m.SpaceWidth()
	}

	d := lines.New(cfg, charset.NewRegistry(charset.SystemEncodingName()), syntax.NewRegistry(), m)
	defer d.Close()

	sess, err := loadSession(*sessionflag)
	if err != nil {
		return err
	}
	saved, remembered := sess.Lookup(filename)

	enc := *encflag
	if enc == "" && remembered {
		enc = saved.Encoding
	}
	if err := d.LoadFromFile(filename, enc); err != nil {
		return err
	}
	if remembered {
		if err := d.ApplySession(saved); err != nil {
			log.Printf("cannot restore the session of %s: %v", filename, err)
		}
	}
	if *syntaxflag != "" {
		if err := d.SetSyntax(*syntaxflag); err != nil {
			return err
		}
	}

	if err := edit(d, *insertflag, *deleteflag); err != nil {
		return err
	}

	summarize(w, d)
	if *wordsflag {
		words, chars, nonSpace := d.WordCount(textboundary.NewSegmenter())
		fmt.Fprintf(w, "words %d chars %d non-blank %d\n", words, chars, nonSpace)
	}
	if *dumpflag {
		dump(w, d)
	}

	switch {
	case *outflag != "":
		err = d.SaveToFile(*outflag, *tmpflag)
	case *writeflag:
		if n := d.MaxTempSize(filename); n > 0 {
			log.Printf("saving %s spills %d bytes", filename, n)
		}
		err = d.SaveToFile(filename, *tmpflag)
	}
	if err != nil {
		return err
	}

	if *sessionflag != "" {
		sess.Put(d.SessionFile())
		return sess.Save(*sessionflag)
	}
	return nil
}

func loadSession(file string) (*session.Content, error) {
	if file == "" {
		return &session.Content{}, nil
	}
	c, err := session.Load(file)
	if errors.Is(err, fs.ErrNotExist) {
		return &session.Content{}, nil
	}
	return c, err
}

// edit applies the -insert and -delete flags.
func edit(d *lines.Lines, insert, del string) error {
	if insert != "" {
		off, text, err := parseEdit(insert)
		if err != nil {
			return fmt.Errorf("-insert: %v", err)
		}
		if err := d.InsertText(off, text); err != nil {
			return fmt.Errorf("-insert: %w", err)
		}
	}
	if del != "" {
		off, count, err := parseEdit(del)
		if err != nil {
			return fmt.Errorf("-delete: %v", err)
		}
		n, err := strconv.ParseInt(count, 10, 64)
		if err != nil {
			return fmt.Errorf("-delete: bad count %q", count)
		}
		if err := d.Delete(off, n); err != nil {
			return fmt.Errorf("-delete: %w", err)
		}
	}
	return nil
}

// parseEdit splits an offset:argument flag value. The argument may
// use Go escapes such as \n.
func parseEdit(s string) (int64, string, error) {
	before, after, ok := strings.Cut(s, ":")
	if !ok {
		return 0, "", fmt.Errorf("%q is not offset:argument", s)
	}
	off, err := strconv.ParseInt(before, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad offset %q", before)
	}
	arg, err := strconv.Unquote(`"` + strings.ReplaceAll(after, `"`, `\"`) + `"`)
	if err != nil {
		return 0, "", fmt.Errorf("bad argument %q: %v", after, err)
	}
	return off, arg, nil
}

func summarize(w io.Writer, d *lines.Lines) {
	fmt.Fprintf(w, "%s: %d bytes, %d lines, %d rows\n", d.Name(), d.Size(), d.LineCount(), d.RowCount())
	fmt.Fprintf(w, "encoding %s, syntax %s, newline %v\n", d.Encoding().Name(), d.Syntax().Title(), d.Newline())
	switch {
	case d.HexMode():
		fmt.Fprintf(w, "hex mode\n")
	default:
		fmt.Fprintf(w, "widest row %d, tabs %v\n", d.MaxLineWidth(), d.HasTab())
	}
	if d.ReadOnly() {
		fmt.Fprintf(w, "read-only\n")
	}
	if bm := d.BookmarkLines(); len(bm) > 0 {
		fmt.Fprintf(w, "bookmarks %v\n", bm)
	}
}

// lineDump is what -dump prints for a line.
type lineDump struct {
	Number int
	Text   string
	Size   int64
	State  lines.LineState
	Rows   []lines.RowIndex
	Braces []lines.BracePair
}

func dump(w io.Writer, d *lines.Lines) {
	opts := litter.Options{HidePrivateFields: true, Compact: true}
	n := 1
	for l := d.Front(); l != nil; l = l.Next() {
		fmt.Fprintln(w, opts.Sdump(lineDump{
			Number: n,
			Text:   d.LineText(l),
			Size:   l.Size,
			State:  l.State,
			Rows:   l.Rows,
			Braces: l.Braces,
		}))
		n++
	}
}
