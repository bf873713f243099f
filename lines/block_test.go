package lines

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rjkroege/madlines/store"
)

// span is a Block without its store, for comparisons.
type span struct{ Pos, Size int64 }

func spans(bs []Block) []span {
	var out []span
	for _, b := range bs {
		out = append(out, span{b.Pos, b.Size})
	}
	return out
}

func memWith(s string) *store.MemStore {
	m := store.NewMemStore()
	m.Put([]byte(s))
	return m
}

func TestSplitBlocks(t *testing.T) {
	m := memWith("0123456789")
	bs := []Block{{m, 0, 4}, {m, 6, 4}}
	tests := []struct {
		off         int64
		left, right []span
	}{
		{0, nil, []span{{0, 4}, {6, 4}}},
		{2, []span{{0, 2}}, []span{{2, 2}, {6, 4}}},
		{4, []span{{0, 4}}, []span{{6, 4}}},
		{5, []span{{0, 4}, {6, 1}}, []span{{7, 3}}},
		{8, []span{{0, 4}, {6, 4}}, nil},
	}
	for _, tc := range tests {
		left, right := splitBlocks(bs, tc.off)
		if diff := cmp.Diff(tc.left, spans(left)); diff != "" {
			t.Errorf("split at %d: left mismatch (-want +got):\n%s", tc.off, diff)
		}
		if diff := cmp.Diff(tc.right, spans(right)); diff != "" {
			t.Errorf("split at %d: right mismatch (-want +got):\n%s", tc.off, diff)
		}
		if got, want := blocksSize(left)+blocksSize(right), blocksSize(bs); got != want {
			t.Errorf("split at %d: sizes add up to %d, want %d", tc.off, got, want)
		}
	}
	if diff := cmp.Diff([]span{{0, 4}, {6, 4}}, spans(bs)); diff != "" {
		t.Errorf("splitBlocks modified its input (-want +got):\n%s", diff)
	}
}

func TestAppendLine(t *testing.T) {
	m := memWith("abcdefghij")
	other := memWith("xyz")
	tests := []struct {
		name       string
		a, b       []Block
		wantBlocks int
	}{
		{"contiguous", []Block{{m, 0, 3}}, []Block{{m, 3, 2}, {m, 8, 1}}, 2},
		{"gap", []Block{{m, 0, 3}}, []Block{{m, 4, 2}, {m, 8, 1}}, 3},
		{"other store", []Block{{m, 0, 3}}, []Block{{other, 3, 0}, {other, 0, 3}}, 2},
		{"empty first", nil, []Block{{m, 0, 2}}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &Line{Blocks: tc.a, Size: blocksSize(tc.a)}
			b := &Line{Blocks: tc.b, Size: blocksSize(tc.b)}
			sa, sb, nb := a.Size, b.Size, len(dropEmpty(append([]Block(nil), tc.b...)))
			na := len(tc.a)

			appendLine(a, b)

			if got, want := a.Size, sa+sb; got != want {
				t.Errorf("size got %d want %d", got, want)
			}
			if got := blocksSize(a.Blocks); got != a.Size {
				t.Errorf("blocks hold %d bytes, line size %d", got, a.Size)
			}
			if got := len(a.Blocks); got != tc.wantBlocks || got > na+nb {
				t.Errorf("block count got %d want %d", got, tc.wantBlocks)
			}
			if b.Size != 0 || len(b.Blocks) != 0 {
				t.Errorf("appended line not emptied: %d bytes", b.Size)
			}
		})
	}
}

func TestAppendEmptyLine(t *testing.T) {
	m := memWith("abc")
	a := &Line{Blocks: []Block{{m, 0, 3}}, Size: 3}
	appendLine(a, &Line{})
	if diff := cmp.Diff([]span{{0, 3}}, spans(a.Blocks)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestCompactBlocks(t *testing.T) {
	m := memWith("abcdefghij")
	bs := compactBlocks([]Block{{m, 0, 2}, {m, 2, 0}, {m, 2, 3}, {m, 7, 1}, {m, 8, 2}})
	if diff := cmp.Diff([]span{{0, 5}, {7, 3}}, spans(bs)); diff != "" {
		t.Errorf("compactBlocks mismatch (-want +got):\n%s", diff)
	}
}

func TestLineGetRange(t *testing.T) {
	m := memWith("0123456789")
	l := &Line{Blocks: []Block{{m, 7, 3}, {m, 0, 2}, {m, 4, 1}}, Size: 6}
	if got, want := string(l.Bytes()), "789014"; got != want {
		t.Errorf("Bytes got %q want %q", got, want)
	}
	buf := make([]byte, 3)
	l.GetRange(2, buf)
	if got, want := string(buf), "901"; got != want {
		t.Errorf("GetRange got %q want %q", got, want)
	}
	if got, want := l.Get(5), byte('4'); got != want {
		t.Errorf("Get got %q want %q", got, want)
	}
}
