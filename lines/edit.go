package lines

import (
	"github.com/rjkroege/madlines/charset"
)

// locate returns the line holding the byte at off and the offset in
// that line. An offset at the end of the document maps to the end of
// the last line.
func (d *Lines) locate(off int64) (*Line, int64) {
	for l := d.list.front(); l != nil; l = l.Next() {
		if off < l.Size {
			return l, off
		}
		off -= l.Size
	}
	l := d.list.back()
	return l, l.Size + off
}

// reformatFrom lays out l and, when the line before it ends in CR, that
// line as well so that a CR LF pair split across them is joined.
func (d *Lines) reformatFrom(l *Line) {
	first := l
	if p := l.Prev(); p != nil && p.lastNewline(d.enc) == '\r' {
		first = p
	}
	d.Reformat(first, l)
}

// Insert inserts data at byte offset off. The bytes are kept in the
// document's memory store.
func (d *Lines) Insert(off int64, data []byte) error {
	if d.hexMode {
		return ErrHexMode
	}
	if off < 0 || off > d.size {
		return ErrWrongOffset
	}
	if len(data) == 0 {
		return nil
	}
	l, pos := d.locate(off)
	nb := Block{Store: d.mem, Pos: d.mem.Put(data), Size: int64(len(data))}
	left, right := splitBlocks(l.Blocks, pos)
	l.Blocks = joinBlocks(joinBlocks(left, []Block{nb}), right)
	l.Size += nb.Size
	d.size += nb.Size
	d.reformatFrom(l)
	return nil
}

// InsertText encodes s in the active encoding and inserts it at off.
// Characters the encoding cannot represent are written as '?'.
func (d *Lines) InsertText(off int64, s string) error {
	var out []byte
	var buf [charset.MaxCharLen]byte
	for _, r := range s {
		n := d.enc.Encode(r, buf[:])
		if n == 0 {
			n = d.enc.Encode('?', buf[:])
		}
		out = append(out, buf[:n]...)
	}
	return d.Insert(off, out)
}

// Delete removes n bytes at byte offset off.
func (d *Lines) Delete(off, n int64) error {
	if d.hexMode {
		return ErrHexMode
	}
	if off < 0 || n < 0 || off+n > d.size {
		return ErrWrongOffset
	}
	if n == 0 {
		return nil
	}
	l, pos := d.locate(off)
	// Whole lines go with their bookmarks; the next line starts in the
	// state the removed one did.
	for pos == 0 && n >= l.Size && l.Next() != nil {
		next := l.Next()
		next.State = l.State
		n -= l.Size
		d.size -= l.Size
		d.rowCount -= l.RowCount()
		d.list.remove(l)
		l = next
		if n == 0 {
			d.reformatFrom(l)
			return nil
		}
	}
	for pos+n > l.Size {
		next := l.Next()
		appendLine(l, next)
		d.rowCount -= next.RowCount()
		d.list.remove(next)
	}
	left, rest := splitBlocks(l.Blocks, pos)
	_, right := splitBlocks(rest, n)
	l.Blocks = joinBlocks(left, right)
	l.Size -= n
	d.size -= n
	d.reformatFrom(l)
	return nil
}
