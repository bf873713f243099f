package lines

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rjkroege/madlines/charset"
	"github.com/rjkroege/madlines/internal/ui"
	"github.com/rjkroege/madlines/store"
	"github.com/rjkroege/madlines/syntax"
	"github.com/sanity-io/litter"
)

// newTestLines returns a document laid out in terminal cells that
// loads files into memory.
func newTestLines(t *testing.T, cfg Config) *Lines {
	t.Helper()
	d := New(cfg, charset.NewRegistry("UTF-8"), syntax.NewRegistry(), ui.NewCellMetrics(1, false))
	d.freeMemory = func() int64 { return 1 << 40 }
	t.Cleanup(func() { d.Close() })
	return d
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func loadString(t *testing.T, d *Lines, name, content, encoding string) string {
	t.Helper()
	path := writeFile(t, name, content)
	if err := d.LoadFromFile(path, encoding); err != nil {
		t.Fatalf("LoadFromFile(%s): %v", path, err)
	}
	return path
}

func lineTexts(d *Lines) []string {
	var out []string
	for l := d.Front(); l != nil; l = l.Next() {
		out = append(out, d.LineText(l))
	}
	return out
}

// snapshot is the layout of a line.
type snapshot struct {
	Size        int64
	NewLineSize int
	State       LineState
	Rows        []RowIndex
	Braces      []BracePair
}

func snapshots(d *Lines) []snapshot {
	var out []snapshot
	for l := d.Front(); l != nil; l = l.Next() {
		out = append(out, snapshot{
			Size:        l.Size,
			NewLineSize: l.NewLineSize,
			State:       l.State,
			Rows:        append([]RowIndex(nil), l.Rows...),
			Braces:      append([]BracePair(nil), l.Braces...),
		})
	}
	return out
}

// checkStructure verifies the bookkeeping of d.
func checkStructure(t *testing.T, d *Lines) {
	t.Helper()
	var size int64
	rows, n := 0, 0
	for l := d.Front(); l != nil; l = l.Next() {
		if got := blocksSize(l.Blocks); got != l.Size {
			t.Errorf("line %d: blocks hold %d bytes, size %d", n, got, l.Size)
		}
		size += l.Size
		rows += l.RowCount()
		n++
	}
	if n != d.LineCount() {
		t.Errorf("LineCount %d, list holds %d", d.LineCount(), n)
	}
	if size != d.Size() {
		t.Errorf("Size %d, lines hold %d", d.Size(), size)
	}
	if !d.HexMode() && rows != d.RowCount() {
		t.Errorf("RowCount %d, lines hold %d", d.RowCount(), rows)
	}
}

func TestLoadDOS(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "dos.txt", "ab\r\ncd\r\n", "UTF-8")

	if diff := cmp.Diff([]string{"ab", "cd", ""}, lineTexts(d)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	want := []snapshot{
		{Size: 4, NewLineSize: 2, Rows: []RowIndex{{0, 2}, {2, 0}}},
		{Size: 4, NewLineSize: 2, Rows: []RowIndex{{0, 2}, {2, 0}}},
		{Size: 0, Rows: []RowIndex{{0, 0}, {0, 0}}},
	}
	if diff := cmp.Diff(want, snapshots(d), cmp.Comparer(func(a, b []BracePair) bool { return len(a) == len(b) })); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	if got, want := d.Newline(), NewlineDOS; got != want {
		t.Errorf("Newline got %v want %v", got, want)
	}
	if got, want := d.Size(), int64(8); got != want {
		t.Errorf("Size got %d want %d", got, want)
	}
	if got, want := d.Syntax().Title(), syntax.PlainText; got != want {
		t.Errorf("Syntax got %s want %s", got, want)
	}
	checkStructure(t, d)
}

func TestLoadBOM(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "bom.txt", "\xEF\xBB\xBFhi\nyo", "")

	if got, want := d.Encoding().Name(), "UTF-8"; got != want {
		t.Errorf("Encoding got %s want %s", got, want)
	}
	l := d.Front()
	if diff := cmp.Diff([]RowIndex{{3, 2}, {5, 0}}, l.Rows); diff != "" {
		t.Errorf("first line rows mismatch (-want +got):\n%s", diff)
	}
	if got, want := l.Size, int64(6); got != want {
		t.Errorf("first line size got %d want %d", got, want)
	}
	if diff := cmp.Diff([]string{"hi", "yo"}, lineTexts(d)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if got, want := d.Newline(), NewlineUnix; got != want {
		t.Errorf("Newline got %v want %v", got, want)
	}
	// a BOM is only skipped on the first line
	if diff := cmp.Diff([]RowIndex{{0, 2}, {2, 0}}, l.Next().Rows); diff != "" {
		t.Errorf("second line rows mismatch (-want +got):\n%s", diff)
	}
	checkStructure(t, d)
}

func TestLoadBOMOnly(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "bom.txt", "\xEF\xBB\xBF", "")
	if got, want := d.LineCount(), 1; got != want {
		t.Fatalf("LineCount got %d want %d", got, want)
	}
	if diff := cmp.Diff([]RowIndex{{3, 0}, {3, 0}}, d.Front().Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	checkStructure(t, d)
}

func TestLoadUTF16(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "wide.txt", "\xFF\xFEa\x00\r\x00\n\x00\x2D\x4E", "")

	if got, want := d.Encoding().Name(), "UTF-16LE"; got != want {
		t.Errorf("Encoding got %s want %s", got, want)
	}
	if diff := cmp.Diff([]string{"a", "中"}, lineTexts(d)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if got, want := d.Front().NewLineSize, 4; got != want {
		t.Errorf("NewLineSize got %d want %d", got, want)
	}
	if diff := cmp.Diff([]RowIndex{{0, 2}, {2, 0}}, d.Back().Rows); diff != "" {
		t.Errorf("last line rows mismatch (-want +got):\n%s", diff)
	}
	checkStructure(t, d)
}

func TestLoadEmpty(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "main.go", "", "")
	if got, want := d.Syntax().Title(), "Go"; got != want {
		t.Errorf("Syntax got %s want %s", got, want)
	}
	if got, want := d.Encoding().Name(), "UTF-8"; got != want {
		t.Errorf("Encoding got %s want %s", got, want)
	}
	if got, want := d.LineCount(), 1; got != want {
		t.Errorf("LineCount got %d want %d", got, want)
	}
	if d.file != nil {
		t.Errorf("an empty file is kept open")
	}
	checkStructure(t, d)
}

func TestLoadEncodingFromSyntax(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	if err := d.syntaxes.Register(syntax.Definition{
		Title:      "Legacy",
		Extensions: []string{"old"},
		Encoding:   "CP437",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	loadString(t, d, "a.old", "\x82t\x82\n", "")
	if got, want := d.Encoding().Name(), "CP437"; got != want {
		t.Errorf("Encoding got %s want %s", got, want)
	}
	if diff := cmp.Diff([]string{"été", ""}, lineTexts(d)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadHex(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int64
	}{
		{"binary", "ab\x00cd\nef\n", 1000},
		{"too large", "0123456789\n0123456789\n", 16},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxTextFileSize = tc.max
			d := newTestLines(t, cfg)
			loadString(t, d, "blob.txt", tc.content, "")

			if !d.HexMode() {
				t.Fatal("not in hex mode")
			}
			if got, want := d.MaxLineWidth(), -1; got != want {
				t.Errorf("MaxLineWidth got %d want %d", got, want)
			}
			if got, want := d.LineCount(), 1; got != want {
				t.Errorf("LineCount got %d want %d", got, want)
			}
			if got := d.Bytes(); !bytes.Equal(got, []byte(tc.content)) {
				t.Errorf("Bytes got %q want %q", got, tc.content)
			}
			if err := d.Insert(0, []byte("x")); !errors.Is(err, ErrHexMode) {
				t.Errorf("Insert got %v want %v", err, ErrHexMode)
			}
			if err := d.Delete(0, 1); !errors.Is(err, ErrHexMode) {
				t.Errorf("Delete got %v want %v", err, ErrHexMode)
			}
		})
	}
}

func TestLoadFileBacked(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	d.freeMemory = func() int64 { return -1 }
	path := loadString(t, d, "big.txt", "one\ntwo\n", "")

	if d.file == nil {
		t.Fatal("document does not refer to its file")
	}
	for l := d.Front(); l != nil; l = l.Next() {
		for _, b := range l.Blocks {
			if b.Store != store.Reader(d.file) {
				t.Errorf("block %v is not in the file", b)
			}
		}
	}
	if diff := cmp.Diff([]span{{4, 4}}, spans(d.Front().Next().Blocks)); diff != "" {
		t.Errorf("second line blocks mismatch (-want +got):\n%s", diff)
	}
	if got, want := d.Name(), path; got != want {
		t.Errorf("Name got %s want %s", got, want)
	}
}

func TestLoadFailureKeepsDocument(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	path := loadString(t, d, "keep.txt", "keep me\n", "")
	before := snapshots(d)

	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "missing"), fs.ErrNotExist},
		{"directory", dir, store.ErrIsDir},
	}
	for _, tc := range tests {
		err := d.LoadFromFile(tc.path, "")
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}

	if got, want := d.Name(), path; got != want {
		t.Errorf("Name got %s want %s", got, want)
	}
	if got, want := string(d.Bytes()), "keep me\n"; got != want {
		t.Errorf("content got %q want %q", got, want)
	}
	if diff := cmp.Diff(before, snapshots(d)); diff != "" {
		t.Errorf("layout changed (-before +after):\n%s", diff)
	}
}

func TestReload(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "a.txt", "first\r\nfile\r\n", "")
	d.ToggleBookmark(d.Front())
	loadString(t, d, "b.txt", "second\n", "")

	if diff := cmp.Diff([]string{"second", ""}, lineTexts(d)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if got, want := d.Newline(), NewlineUnix; got != want {
		t.Errorf("Newline got %v want %v", got, want)
	}
	if got := d.BookmarkLines(); len(got) != 0 {
		t.Errorf("bookmarks survived a reload: %v", got)
	}
	checkStructure(t, d)
}

func TestChangedOnDisk(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	path := loadString(t, d, "a.txt", "abc\n", "")

	changed, err := d.ChangedOnDisk()
	if err != nil || changed {
		t.Fatalf("ChangedOnDisk after load got %v, %v", changed, err)
	}
	if err := os.WriteFile(path, []byte("abcdef\n"), 0666); err != nil {
		t.Fatal(err)
	}
	changed, err = d.ChangedOnDisk()
	if err != nil || !changed {
		t.Errorf("ChangedOnDisk after a rewrite got %v, %v", changed, err)
	}
}

func TestSetSyntaxAndEncoding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseDefaultSyntax = true
	d := newTestLines(t, cfg)
	loadString(t, d, "notes", "/* a\nb */\n", "")
	if got := d.Front().Next().State; got != (LineState{}) {
		t.Fatalf("plain text lexed a comment: %s", litter.Sdump(got))
	}

	if err := d.SetSyntax("C/C++"); err != nil {
		t.Fatalf("SetSyntax: %v", err)
	}
	if got, want := d.Front().Next().State.CommentID, 1; got != want {
		t.Errorf("CommentID got %d want %d", got, want)
	}
	if err := d.SetSyntax("Cobol"); err == nil {
		t.Errorf("SetSyntax accepted an unknown syntax")
	}

	if err := d.SetEncoding("no such encoding"); !errors.Is(err, charset.ErrUnknownEncoding) {
		t.Errorf("SetEncoding got %v want %v", err, charset.ErrUnknownEncoding)
	}
	if err := d.SetEncoding("UTF-16LE"); err != nil {
		t.Fatalf("SetEncoding: %v", err)
	}
	if got, want := d.Encoding().Name(), "UTF-16LE"; got != want {
		t.Errorf("Encoding got %s want %s", got, want)
	}
	checkStructure(t, d)
}
