package lines

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rjkroege/madlines/session"
)

func TestBookmarks(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "a.txt", "1\n2\n3\n4\n5\n", "")

	if got := d.NextBookmark(d.Front()); got != -1 {
		t.Errorf("NextBookmark without bookmarks got %d want -1", got)
	}
	if got := d.PrevBookmark(d.Front()); got != -1 {
		t.Errorf("PrevBookmark without bookmarks got %d want -1", got)
	}

	// toggled out of order; kept in document order
	d.ToggleBookmark(d.LineAt(3))
	d.ToggleBookmark(d.LineAt(1))
	if diff := cmp.Diff([]int{2, 4}, d.BookmarkLines()); diff != "" {
		t.Fatalf("BookmarkLines mismatch (-want +got):\n%s", diff)
	}
	if !d.Bookmarked(d.LineAt(1)) || d.Bookmarked(d.LineAt(2)) {
		t.Error("Bookmarked reports the wrong lines")
	}

	tests := []struct {
		from       int
		next, prev int
	}{
		{0, 2, 4},
		{1, 4, 4},
		{2, 4, 2},
		{3, 2, 2},
		{4, 2, 4},
	}
	for _, tc := range tests {
		l := d.LineAt(tc.from)
		if got := d.NextBookmark(l); got != tc.next {
			t.Errorf("NextBookmark(%d) got %d want %d", tc.from, got, tc.next)
		}
		if got := d.PrevBookmark(l); got != tc.prev {
			t.Errorf("PrevBookmark(%d) got %d want %d", tc.from, got, tc.prev)
		}
	}

	// bookmarks follow their lines
	if err := d.Delete(4, 2); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2, 3}, d.BookmarkLines()); diff != "" {
		t.Errorf("BookmarkLines after delete mismatch (-want +got):\n%s", diff)
	}

	d.ToggleBookmark(d.LineAt(1))
	if diff := cmp.Diff([]int{3}, d.BookmarkLines()); diff != "" {
		t.Errorf("BookmarkLines after toggle mismatch (-want +got):\n%s", diff)
	}

	d.ClearBookmarks()
	if got := d.BookmarkLines(); len(got) != 0 {
		t.Errorf("BookmarkLines after clear got %v", got)
	}
}

func TestBookmarkMergedLine(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "a.txt", "ab\ncd\nef\n", "")
	d.ToggleBookmark(d.LineAt(1))

	// joining "cd" onto "ab" drops its bookmark
	if err := d.Delete(2, 1); err != nil {
		t.Fatal(err)
	}
	if got := d.BookmarkLines(); len(got) != 0 {
		t.Errorf("BookmarkLines got %v want none", got)
	}
	if got := d.NextBookmark(d.Front()); got != -1 {
		t.Errorf("NextBookmark got %d want -1", got)
	}
}

func TestRestoreBookmarks(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	loadString(t, d, "a.txt", "1\n2\n3\n4\n5\n", "")
	d.ToggleBookmark(d.LineAt(2))

	d.RestoreBookmarks([]int{5, 1, 99, 1, 0})
	if diff := cmp.Diff([]int{1, 5}, d.BookmarkLines()); diff != "" {
		t.Errorf("BookmarkLines mismatch (-want +got):\n%s", diff)
	}
	if got, want := d.NextBookmark(d.Front()), 5; got != want {
		t.Errorf("NextBookmark got %d want %d", got, want)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	d := newTestLines(t, DefaultConfig())
	path := loadString(t, d, "notes.txt", "a\r\nb\r\nc\r\n", "")
	if err := d.SetSyntax("Shell"); err != nil {
		t.Fatal(err)
	}
	d.ToggleBookmark(d.LineAt(2))

	var c session.Content
	c.Put(d.SessionFile())
	file := filepath.Join(t.TempDir(), "session.json")
	if err := c.Save(file); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := session.Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, ok := loaded.Lookup(path)
	if !ok {
		t.Fatalf("no session entry for %s", path)
	}
	want := session.File{
		Name:      session.Key(path),
		Encoding:  "UTF-8",
		Syntax:    "Shell",
		Newline:   "DOS",
		Bookmarks: []int{3},
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("session entry mismatch (-want +got):\n%s", diff)
	}

	e := newTestLines(t, DefaultConfig())
	if err := e.LoadFromFile(path, f.Encoding); err != nil {
		t.Fatal(err)
	}
	if err := e.ApplySession(f); err != nil {
		t.Fatalf("ApplySession: %v", err)
	}
	if got, want := e.Syntax().Title(), "Shell"; got != want {
		t.Errorf("Syntax got %s want %s", got, want)
	}
	if diff := cmp.Diff([]int{3}, e.BookmarkLines()); diff != "" {
		t.Errorf("BookmarkLines mismatch (-want +got):\n%s", diff)
	}

	if err := e.ApplySession(session.File{Syntax: "Fortran"}); err == nil {
		t.Error("ApplySession accepted an unknown syntax")
	}
}
