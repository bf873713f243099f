package lines

import (
	"io"
	"strings"

	"github.com/rjkroege/madlines/charset"
	"github.com/rjkroege/madlines/internal/textboundary"
	"github.com/rjkroege/madlines/syntax"
	"github.com/rjkroege/madlines/util"
)

var _ io.ReaderAt = (*Lines)(nil)

// ReadAt implements io.ReaderAt over the bytes of the document.
func (d *Lines) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > d.size {
		return 0, ErrWrongOffset
	}
	n := 0
	l, pos := d.locate(off)
	for ; l != nil && n < len(p); l = l.Next() {
		m := min(l.Size-pos, int64(len(p)-n))
		if m > 0 {
			l.GetRange(pos, p[n:n+int(m)])
			n += int(m)
		}
		pos = 0
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns a copy of the bytes of the document.
func (d *Lines) Bytes() []byte {
	buf := make([]byte, d.size)
	n, _ := d.ReadAt(buf, 0)
	return buf[:n]
}

// LineAt returns the line with zero-based index n, or nil.
func (d *Lines) LineAt(n int) *Line {
	if n < 0 || n >= d.list.len {
		return nil
	}
	l := d.list.front()
	for ; n > 0; n-- {
		l = l.Next()
	}
	return l
}

// LineText returns the decoded text of l without its terminator and
// without a byte order mark.
func (d *Lines) LineText(l *Line) string {
	var sb strings.Builder
	d.eachChar(l, func(u charset.UChar) { sb.WriteRune(u.R) })
	return sb.String()
}

// eachChar calls fn for every character of l that is not part of its
// terminator or a leading byte order mark.
func (d *Lines) eachChar(l *Line, fn func(charset.UChar)) {
	var start int64
	if len(l.Rows) > 0 {
		start = l.Rows[0].Start
	}
	end := l.Size - int64(l.NewLineSize)
	if d.hexMode {
		start, end = 0, l.Size
	}
	var c cursor
	c.buf = make([]byte, min(max(end-start, 1), cursorBufferSize))
	c.init(l, start)
	c.size = end
	for {
		u, ok := d.enc.Next(&c)
		if !ok {
			return
		}
		fn(u)
	}
}

// NewLine returns the terminator of l: NewlineDOS for CR LF,
// NewlineUnix for LF, NewlineMac for CR and NewlineDefault for none.
func (d *Lines) NewLine(l *Line) Newline {
	switch l.lastNewline(d.enc) {
	case '\n':
		if l.NewLineSize > d.enc.UnitLen() {
			return NewlineDOS
		}
		return NewlineUnix
	case '\r':
		return NewlineMac
	}
	return NewlineDefault
}

// PreviousUChar returns the character before byte offset pos of l and
// where it starts. At the start of a line it steps into the terminator
// of the previous line. It returns false at the start of the document.
func (d *Lines) PreviousUChar(l *Line, pos int64) (charset.UChar, *Line, int64, bool) {
	if pos <= 0 {
		p := l.Prev()
		if p == nil || p.NewLineSize == 0 {
			return charset.UChar{}, l, 0, false
		}
		start := p.Size - int64(p.NewLineSize)
		c := cursor{buf: make([]byte, 2*charset.MaxCharLen)}
		c.init(p, start)
		u, _ := d.enc.Next(&c)
		if v, ok := d.enc.Next(&c); ok {
			start += int64(u.Len)
			u = v
		}
		return u, p, start, true
	}

	c := cursor{buf: make([]byte, 2*charset.MaxCharLen)}
	for lpos := util.Clamp(pos-charset.MaxCharLen, 0, pos); lpos < pos; lpos++ {
		c.init(l, lpos)
		if u, ok := d.enc.Next(&c); ok && lpos+int64(u.Len) == pos {
			return u, l, lpos, true
		}
	}
	return charset.UChar{}, l, pos, false
}

// WordCount counts the words, the characters and the characters other
// than blanks of the document. Terminators are not counted.
func (d *Lines) WordCount(wc textboundary.WordCounter) (words, chars, nonSpace int) {
	var text []rune
	for l := d.list.front(); l != nil; l = l.Next() {
		text = text[:0]
		d.eachChar(l, func(u charset.UChar) {
			text = append(text, u.R)
			chars++
			if !syntax.IsSpace(u.R) {
				nonSpace++
			}
		})
		words += wc.CountWords(text)
	}
	return words, chars, nonSpace
}

// ChangedOnDisk reports whether the file was changed by someone else
// since it was loaded or saved.
func (d *Lines) ChangedOnDisk() (bool, error) {
	if d.disk == nil {
		return false, nil
	}
	return d.disk.Changed()
}
