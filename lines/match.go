package lines

import (
	"github.com/rjkroege/madlines/charset"
	"github.com/rjkroege/madlines/internal/ui"
	"github.com/rjkroege/madlines/syntax"
)

// formatter decodes the bytes of a line into a queue of characters and
// matches the syntax patterns against the head of the queue.
type formatter struct {
	enc     *charset.Encoding
	syn     *syntax.Syntax
	metrics ui.Metrics

	cur cursor
	q   ucQueue
}

// next decodes one more character onto the queue.
func (f *formatter) next() bool {
	u, ok := f.enc.Next(&f.cur)
	if ok {
		f.q.push(u)
	}
	return ok
}

// nextIsLineFeed reports whether the next undecoded character is LF.
func (f *formatter) nextIsLineFeed() bool {
	return f.enc.IsLineFeed(f.cur.Peek(f.enc.UnitLen()))
}

func isNewline(r rune) bool { return r == '\r' || r == '\n' }

// find matches pats against the queue and returns the 1-based index of
// the first pattern that matches and its length in characters, or 0.
// The queue is extended as needed but never past a line terminator.
// With braces set every match must stand as a whole word; otherwise
// only multi-character patterns must.
func (f *formatter) find(pats [][]rune, prev rune, braces bool) (int, int) {
	fold := f.syn.Matcher().Fold
	first := fold(f.q.front().R)

	size := f.q.size()
	noNewline := true
	if size > 1 && isNewline(f.q.back().R) {
		noNewline = false
		size--
	}

	for i, p := range pats {
		if len(p) == 0 || p[0] != first {
			continue
		}
		if len(p) > 1 {
			if size < len(p) && noNewline {
				for f.next() {
					if isNewline(f.q.back().R) {
						noNewline = false
						break
					}
					size++
					if size >= len(p) {
						break
					}
				}
			}
			if size < len(p) || !f.equal(p, fold) {
				continue
			}
		}
		if (braces || len(p) > 1) && !f.wholeWord(len(p), prev) {
			continue
		}
		return i + 1, len(p)
	}
	return 0, 0
}

func (f *formatter) equal(p []rune, fold func(rune) rune) bool {
	for j := 1; j < len(p); j++ {
		if fold(f.q.at(j).R) != p[j] {
			return false
		}
	}
	return true
}

func (f *formatter) isWordChar(r rune) bool {
	return r > 0x20 && !f.syn.IsDelimiter(r)
}

// wholeWord reports whether the n characters at the head of the queue
// are not glued to a word character on either side.
func (f *formatter) wholeWord(n int, prev rune) bool {
	if f.isWordChar(f.q.at(n - 1).R) {
		if f.q.size() > n || f.next() {
			if f.isWordChar(f.q.at(n).R) {
				return false
			}
		}
	}
	return !(f.isWordChar(f.q.front().R) && f.isWordChar(prev))
}

// width returns the display width and byte length of the first n
// queued characters.
func (f *formatter) width(n int) (w, length int) {
	for i := 0; i < n; i++ {
		u := f.q.at(i)
		w += f.metrics.RuneWidth(u.R)
		length += u.Len
	}
	return w, length
}
