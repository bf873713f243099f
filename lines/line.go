package lines

import (
	"github.com/rjkroege/madlines/charset"
)

// LineState is the lexer state at the start of a line. Each id is a
// 1-based index into the matching pattern list of the syntax, or a
// range id; 0 means none is active.
type LineState struct {
	RangeID     int  // custom range the line starts in
	CommentID   int  // open block comment
	CommentOff  bool // a block comment closed on this line
	StringID    int  // open string
	LineComment int  // active line comment
	Directive   int  // active directive
}

// RowIndex is the start of one row of a line. Start is a byte offset in
// the line and Width the display width of the row.
type RowIndex struct {
	Start int64
	Width int
}

// BracePair is a brace found by the lexer.
type BracePair struct {
	XPos    int   // offset from the start of its row
	Width   int   // display width of the brace
	LinePos int64 // byte offset in the line
	Len     int   // encoded length in bytes
	Left    bool
	Index   int // index in the syntax's brace lists
}

// A Line is one logical line of a document: the blocks holding its
// bytes, its wrapped rows and the lexer state it starts in.
//
// Line values are handles; they stay valid while other lines are
// inserted or removed and are what bookmarks refer to.
type Line struct {
	next, prev *Line
	list       *lineList
	marked     bool

	Blocks      []Block
	Size        int64 // sum of the block sizes
	NewLineSize int   // bytes of the terminator, 0 when the line has none
	State       LineState

	// Rows holds one entry per row plus a final entry whose Start is
	// the end of the last row.
	Rows   []RowIndex
	Braces []BracePair
}

func newEmptyLine() *Line {
	l := &Line{}
	l.reset()
	return l
}

// reset makes l an empty line with a single empty row.
func (l *Line) reset() {
	l.Blocks = nil
	l.Size = 0
	l.NewLineSize = 0
	l.State = LineState{}
	l.Rows = append(l.Rows[:0], RowIndex{}, RowIndex{})
	l.Braces = l.Braces[:0]
}

// Next returns the following line or nil.
func (l *Line) Next() *Line {
	if l.list == nil || l.next == &l.list.root {
		return nil
	}
	return l.next
}

// Prev returns the preceding line or nil.
func (l *Line) Prev() *Line {
	if l.list == nil || l.prev == &l.list.root {
		return nil
	}
	return l.prev
}

// RowCount returns the number of rows of l.
func (l *Line) RowCount() int {
	if len(l.Rows) == 0 {
		return 0
	}
	return len(l.Rows) - 1
}

// Get returns the byte at pos.
func (l *Line) Get(pos int64) byte {
	var b [1]byte
	readBlocks(l.Blocks, pos, b[:])
	return b[0]
}

// GetRange fills buf with the bytes at pos.
func (l *Line) GetRange(pos int64, buf []byte) {
	readBlocks(l.Blocks, pos, buf)
}

// Bytes returns a copy of the bytes of l.
func (l *Line) Bytes() []byte {
	buf := make([]byte, l.Size)
	l.GetRange(0, buf)
	return buf
}

// lastNewline returns 0x0A or 0x0D when l ends in a terminator, else 0.
func (l *Line) lastNewline(e *charset.Encoding) rune {
	n := int64(e.UnitLen())
	if l.Size < n {
		return 0
	}
	var tail [charset.MaxCharLen]byte
	l.GetRange(l.Size-n, tail[:n])
	return e.LastNewline(tail[:n])
}

// firstIsLineFeed reports whether l starts with LF.
func (l *Line) firstIsLineFeed(e *charset.Encoding) bool {
	n := int64(e.UnitLen())
	if l.Size < n {
		return false
	}
	var head [charset.MaxCharLen]byte
	l.GetRange(0, head[:n])
	return e.IsLineFeed(head[:n])
}

// appendLine moves the bytes of m to the end of l. The boundary blocks
// are merged when they are contiguous in one store.
func appendLine(l, m *Line) {
	if m.Size == 0 {
		return
	}
	l.Blocks = joinBlocks(l.Blocks, m.Blocks)
	l.Size += m.Size
	m.Blocks = nil
	m.Size = 0
}

// lineList is a doubly linked list of lines with a sentinel root, in
// the manner of container/list.
type lineList struct {
	root Line
	len  int

	marks []*Line // bookmarked lines in document order
}

func (ll *lineList) init() {
	ll.root.next = &ll.root
	ll.root.prev = &ll.root
	ll.len = 0
	ll.marks = nil
}

func (ll *lineList) front() *Line {
	if ll.len == 0 {
		return nil
	}
	return ll.root.next
}

func (ll *lineList) back() *Line {
	if ll.len == 0 {
		return nil
	}
	return ll.root.prev
}

// insertAfter links l after at.
func (ll *lineList) insertAfter(l, at *Line) {
	l.prev = at
	l.next = at.next
	at.next.prev = l
	at.next = l
	l.list = ll
	l.marked = false
	ll.len++
}

func (ll *lineList) pushBack(l *Line) {
	ll.insertAfter(l, ll.root.prev)
}

// remove unlinks l and drops its bookmark.
func (ll *lineList) remove(l *Line) {
	if l.marked {
		ll.unmark(l)
	}
	l.prev.next = l.next
	l.next.prev = l.prev
	l.next = nil
	l.prev = nil
	l.list = nil
	ll.len--
}
