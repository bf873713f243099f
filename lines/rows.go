package lines

import (
	"math"

	"github.com/rjkroege/madlines/charset"
	"github.com/rjkroege/madlines/internal/ui"
	"github.com/rjkroege/madlines/syntax"
)

// Kinds of the word being laid out, for moving it to the next row on a
// wrap.
const (
	wordOther = iota
	wordDelimiters
	wordLetters
)

// rowBuilder wraps the characters of a line into rows. Reformat and
// RecountLineWidth share it so that both produce the same rows.
type rowBuilder struct {
	syn      *syntax.Syntax
	metrics  ui.Metrics
	maxLen   int64 // row byte cap
	maxWidth int   // row width cap
	tab      int   // width of a full tab stop

	line      *Line
	rows      []RowIndex
	row       RowIndex
	rowLen    int64
	wordLen   int64
	wordWidth int
	wordKind  int
	rowBraces []int // braces placed on the current row

	maxRowWidth int
	hasTab      bool
}

func (d *Lines) newRowBuilder() *rowBuilder {
	b := &d.rb
	b.syn = d.syn
	b.metrics = d.metrics
	b.maxLen = int64(d.cfg.MaxLineLength)
	if b.maxLen <= 0 {
		b.maxLen = math.MaxInt64
	}
	b.maxWidth = d.cfg.WrapWidth
	if b.maxWidth <= 0 {
		b.maxWidth = math.MaxInt32
	}
	cols := d.cfg.TabColumns
	if cols <= 0 {
		cols = 1
	}
	b.tab = cols * d.metrics.SpaceWidth()
	if b.tab <= 0 {
		b.tab = 1
	}
	b.maxRowWidth = 0
	b.hasTab = false
	return b
}

// start begins the rows of l at byte offset start.
func (b *rowBuilder) start(l *Line, start int64) {
	b.line = l
	b.rows = nil
	b.row = RowIndex{Start: start}
	b.rowLen = 0
	b.wordLen = 0
	b.wordWidth = 0
	b.wordKind = wordOther
	b.rowBraces = b.rowBraces[:0]
}

func (b *rowBuilder) kindOf(r rune) int {
	switch {
	case b.syn.IsDelimiter(r):
		return wordDelimiters
	case b.syn.IsNotDelimiter(r):
		return wordLetters
	}
	return wordOther
}

// wrap ends the current row. When moveWord is set, the trailing word
// is carried over to the new row.
func (b *rowBuilder) wrap(moveWord bool) {
	if moveWord {
		b.row.Width -= b.wordWidth
		for _, i := range b.rowBraces {
			if br := &b.line.Braces[i]; br.XPos >= b.row.Width {
				br.XPos -= b.row.Width
			}
		}
	}
	b.rowBraces = b.rowBraces[:0]
	b.rows = append(b.rows, b.row)
	if b.row.Width > b.maxRowWidth {
		b.maxRowWidth = b.row.Width
	}
	if moveWord {
		b.row.Start += b.rowLen - b.wordLen
		b.row.Width = b.wordWidth
		b.rowLen = b.wordLen
		return
	}
	b.row.Start += b.rowLen
	b.row.Width = 0
	b.rowLen = 0
	b.wordLen = 0
	b.wordWidth = 0
}

// advance wraps as needed before u is placed and returns the width u
// takes. The caller then records anything that depends on the row
// position, such as a brace, and calls place.
func (b *rowBuilder) advance(u charset.UChar) int {
	kind := b.kindOf(u.R)

	if b.rowLen+int64(u.Len) > b.maxLen {
		// a word filling the whole row is cut, not moved
		b.wrap(b.wordLen < b.rowLen && b.wordKind != wordOther && kind == b.wordKind)
	}

	w := b.metrics.RuneWidth(u.R)
	if u.R == '\t' {
		b.hasTab = true
		w = b.maxWidth - b.row.Width
		if w == 0 {
			w = b.tab
		} else if stop := b.tab - b.row.Width%b.tab; stop < w {
			w = stop
		}
	}

	if b.row.Width+w > b.maxWidth {
		b.wrap(b.wordWidth != b.row.Width && b.wordKind != wordOther && kind == b.wordKind)
	}

	switch {
	case b.wordLen != 0 && b.wordKind != wordOther && kind == b.wordKind:
		b.wordLen += int64(u.Len)
		b.wordWidth += w
	case kind != wordOther:
		b.wordKind = kind
		b.wordLen = int64(u.Len)
		b.wordWidth = w
	default:
		b.wordKind = wordOther
		b.wordLen = 0
		b.wordWidth = 0
	}
	return w
}

// markBrace places brace i of the line at the current row position.
func (b *rowBuilder) markBrace(i int) {
	b.line.Braces[i].XPos = b.row.Width
	b.rowBraces = append(b.rowBraces, i)
}

// place adds u, of width w, to the current row.
func (b *rowBuilder) place(u charset.UChar, w int) {
	b.row.Width += w
	b.rowLen += int64(u.Len)
}

// finish closes the last row and stores the rows in the line.
func (b *rowBuilder) finish() {
	if b.row.Width > b.maxRowWidth {
		b.maxRowWidth = b.row.Width
	}
	b.rows = append(b.rows, b.row, RowIndex{Start: b.row.Start + b.rowLen})
	b.line.Rows = b.rows
	b.rows = nil
}
