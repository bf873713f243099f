package lines

import (
	"github.com/rjkroege/madlines/charset"
)

const cursorBufferSize = 16 * 1024

// cursor is a charset.Source over the bytes of one line. It reads ahead
// through a small buffer so that decoding does not go to the store for
// every character.
type cursor struct {
	line *Line
	pos  int64 // line offset of the next undecoded byte
	size int64 // bytes of the line the cursor may read

	buf   []byte
	start int // buf[start:start+n] holds the bytes at pos
	n     int
}

var _ charset.Source = (*cursor)(nil)

func (c *cursor) init(l *Line, pos int64) {
	c.line = l
	c.pos = pos
	c.size = l.Size
	c.start, c.n = 0, 0
	if c.buf == nil {
		c.buf = make([]byte, cursorBufferSize)
	}
}

// rebase moves the cursor onto l, a line split off the current one at
// the cursor position. The bytes already buffered stay valid.
func (c *cursor) rebase(l *Line) {
	c.line = l
	c.size -= c.pos
	c.pos = 0
}

// Peek implements charset.Source.
func (c *cursor) Peek(k int) []byte {
	if c.n < k && c.pos+int64(c.n) < c.size {
		copy(c.buf, c.buf[c.start:c.start+c.n])
		c.start = 0
		m := int64(len(c.buf) - c.n)
		if rest := c.size - c.pos - int64(c.n); m > rest {
			m = rest
		}
		c.line.GetRange(c.pos+int64(c.n), c.buf[c.n:c.n+int(m)])
		c.n += int(m)
	}
	if c.n == 0 {
		return nil
	}
	if k > c.n {
		k = c.n
	}
	return c.buf[c.start : c.start+k]
}

// Advance implements charset.Source.
func (c *cursor) Advance(k int) {
	c.pos += int64(k)
	c.start += k
	c.n -= k
}

// ucQueue is a FIFO of decoded characters waiting to be lexed and laid
// out.
type ucQueue struct {
	items []charset.UChar
	head  int
}

func (q *ucQueue) size() int { return len(q.items) - q.head }

func (q *ucQueue) empty() bool { return q.size() == 0 }

func (q *ucQueue) at(i int) charset.UChar { return q.items[q.head+i] }

func (q *ucQueue) front() charset.UChar { return q.items[q.head] }

func (q *ucQueue) back() charset.UChar { return q.items[len(q.items)-1] }

func (q *ucQueue) push(u charset.UChar) { q.items = append(q.items, u) }

func (q *ucQueue) popFront() {
	q.head++
	if q.head == len(q.items) {
		q.clear()
	}
}

func (q *ucQueue) clear() {
	q.items = q.items[:0]
	q.head = 0
}
