package lines

import (
	"math"

	"github.com/rjkroege/madlines/util"
)

func (d *Lines) setupFormatter() *formatter {
	f := &d.f
	f.enc = d.enc
	f.syn = d.syn
	f.metrics = d.metrics
	f.q.clear()
	return f
}

// Reformat lays out the lines from first to last and returns the
// number of lines it produced. Lines that lack a terminator are first
// joined with their successors. When the lexer state after a line
// differs from the state the next line starts in, the following lines
// are laid out as well until the states agree again.
func (d *Lines) Reformat(first, last *Line) int {
	if d.hexMode || first == nil {
		return 0
	}
	enc := d.enc
	count := 0
	cont := true
	for {
		if cont && first == last {
			cont = false
		}
		next := first.Next()
		if next != nil {
			for {
				nl := first.lastNewline(enc)
				if nl != 0 && !(nl == '\r' && next.firstIsLineFeed(enc)) {
					break
				}
				if cont && next == last {
					cont = false
				}
				appendLine(first, next)
				d.rowCount -= next.RowCount()
				after := next.Next()
				d.list.remove(next)
				next = after
				if next == nil {
					break
				}
			}
		}

		state, n := d.reformatLine(first)
		count += n

		if next == nil {
			if back := d.list.back(); back.lastNewline(enc) != 0 {
				l := newEmptyLine()
				l.State = state
				d.list.pushBack(l)
				d.rowCount++
				count++
			}
			d.endState = state
			break
		}

		first = next
		// CommentOff only describes the line it was set on and never
		// changes how the next line lexes, so it is left out here.
		want := state
		want.CommentOff = first.State.CommentOff
		changed := first.State != want
		if changed {
			first.State = state
		}
		if !cont && !changed {
			break
		}
	}
	d.validate()
	return count
}

// reformatLine lexes and lays out l. When l holds more than one line,
// as after loading a file, the rest is split off into new lines. It
// returns the lexer state after the last of them and their number.
func (d *Lines) reformatLine(l *Line) (LineState, int) {
	l.Braces = l.Braces[:0]
	if l.Size == 0 {
		d.rowCount -= l.RowCount()
		l.Rows = append(l.Rows[:0], RowIndex{}, RowIndex{})
		d.rowCount++
		return l.State, 1
	}

	f := d.setupFormatter()
	b := d.newRowBuilder()
	syn := d.syn
	defer func() {
		if b.maxRowWidth > d.maxLineWidth {
			d.maxLineWidth = b.maxRowWidth
		}
		if b.hasTab {
			d.hasTab = true
		}
	}()

	l.State.CommentOff = false
	state := l.State
	l.NewLineSize = 0
	d.rowCount -= l.RowCount()

	f.cur.init(l, 0)
	f.next()

	var start int64
	if d.enc.IsUnicode() && l == d.list.front() && f.q.front().R == 0xFEFF {
		start = int64(f.q.front().Len)
		f.q.popFront()
		f.next()
	}
	if f.q.empty() {
		l.Rows = append(l.Rows[:0], RowIndex{Start: start}, RowIndex{Start: start})
		d.rowCount++
		return state, 1
	}

	count := 1
	for {
		b.start(l, start)
		bracePos := start
		start = 0
		eat := 0
		notSpace := 0
		bol := true
		var cur, prev rune

		for {
			prev = cur
			u := f.q.front()
			cur = u.R

			if cur == '\r' || cur == '\n' {
				util.Assert(f.q.size() == 1, "terminator followed by %d queued characters", f.q.size()-1)
				if prev != syn.Escape() {
					state.LineComment = 0
					state.Directive = 0
				}
				l.NewLineSize = u.Len
				if cur == '\r' {
					if f.nextIsLineFeed() {
						f.next()
						l.NewLineSize += f.q.back().Len
						d.newline = NewlineDOS
					} else if d.newline == NewlineDefault {
						d.newline = NewlineMac
					}
				} else if d.newline == NewlineDefault {
					d.newline = NewlineUnix
				}
				f.q.clear()
				break
			}

			brace := -1
			if eat == 0 {
				eat = 1
				if syn.CheckState() && cur < 0x100 && cur != ' ' && cur != '\t' {
					notSpace++
					brace = d.findBrace(l, bracePos, prev)
					if n := d.lex(&state, l, prev, bol, notSpace); n > 0 {
						eat = n
					}
				}
			}
			eat--
			f.q.popFront()
			bracePos += int64(u.Len)

			w := b.advance(u)
			if brace >= 0 {
				b.markBrace(brace)
			}
			b.place(u, w)
			bol = false

			if f.q.empty() && !f.next() {
				break
			}
		}

		b.finish()
		d.rowCount += l.RowCount()

		if f.cur.pos >= f.cur.size {
			break
		}

		// l holds more bytes after its terminator
		nl := &Line{State: state}
		d.list.insertAfter(nl, l)
		nl.Size = f.cur.size - f.cur.pos
		l.Blocks, nl.Blocks = splitBlocks(l.Blocks, f.cur.pos)
		l.Size = f.cur.pos
		l = nl
		count++

		f.cur.rebase(nl)
		f.next()
	}
	return state, count
}

// findBrace records a brace starting at the head of the queue and
// returns its index in l.Braces, or -1.
func (d *Lines) findBrace(l *Line, pos int64, prev rune) int {
	syn := d.syn
	if len(syn.LeftBrace) == 0 {
		return -1
	}
	left := true
	idx, n := d.f.find(syn.LeftBrace, prev, true)
	if idx == 0 {
		left = false
		idx, n = d.f.find(syn.RightBrace, prev, true)
	}
	if idx == 0 {
		return -1
	}
	w, length := d.f.width(n)
	l.Braces = append(l.Braces, BracePair{
		Width:   w,
		LinePos: pos,
		Len:     length,
		Left:    left,
		Index:   idx - 1,
	})
	return len(l.Braces) - 1
}

// lex advances state over the character at the head of the queue and
// returns how many characters a match consumes, or 0.
func (d *Lines) lex(state *LineState, l *Line, prev rune, bol bool, notSpace int) int {
	f := &d.f
	syn := d.syn
	cur := f.q.front().R

	if state.LineComment == 0 {
		if cur == syn.Escape() {
			if f.q.size() == 1 {
				f.next()
			}
			if f.q.size() > 1 && !isNewline(f.q.at(1).R) {
				return 2
			}
			return 0
		}

		if state.CommentID != 0 {
			off := syn.BlockCommentOff[state.CommentID-1 : state.CommentID]
			if idx, n := f.find(off, prev, false); idx != 0 {
				state.CommentID = 0
				l.State.CommentOff = true
				return n
			}
			return 0
		}

		if state.StringID != 0 {
			if syn.StringIndex(cur) == state.StringID {
				state.StringID = 0
			}
			return 0
		}

		if len(syn.StringChars) > 0 && syn.StringActive(state.RangeID) {
			if idx := syn.StringIndex(cur); idx != 0 {
				state.StringID = idx
				return 0
			}
		}

		if (!syn.DirectiveAtBOL() || bol) && notSpace == 1 && len(syn.Directives) > 0 {
			if idx := syn.DirectiveIndex(cur); idx != 0 {
				state.Directive = idx
				return 0
			}
		}

		if len(syn.BlockCommentOn) > 0 {
			idx, n := f.find(syn.BlockCommentOn, prev, false)
			if idx != 0 && syn.BlockCommentActive(idx, state.RangeID) {
				state.CommentID = idx
				return n
			}
		}

		if (!syn.LineCommentAtBOL() || bol) && len(syn.LineComment) > 0 {
			idx, n := f.find(syn.LineComment, prev, false)
			if idx != 0 && syn.LineCommentActive(state.RangeID) {
				state.LineComment = idx
				state.Directive = 0
				if state.RangeID == 0 {
					return math.MaxInt
				}
				return n
			}
		}
	}

	if state.RangeID != 0 {
		if end := syn.RangeEnd(state.RangeID); end != nil {
			if idx, n := f.find([][]rune{end}, prev, false); idx != 0 {
				state.RangeID = 0
				return n
			}
		}
		return 0
	}

	if state.LineComment == 0 && len(syn.RangeBegin) > 0 {
		if idx, n := f.find(syn.RangeBegin, prev, false); idx != 0 {
			state.RangeID = syn.RangeByIndex(idx).ID
			return n
		}
	}
	return 0
}

// RecountLineWidth lays out the rows of every line again without
// lexing. It is used when only the metrics or the wrap settings change.
func (d *Lines) RecountLineWidth() {
	if d.hexMode {
		return
	}
	f := d.setupFormatter()
	b := d.newRowBuilder()
	d.rowCount = 0
	for l := d.list.front(); l != nil; l = l.Next() {
		start := int64(0)
		if len(l.Rows) > 0 {
			start = l.Rows[0].Start
		}
		b.start(l, start)
		if l.Size == 0 || start >= l.Size {
			l.Rows = append(l.Rows[:0], RowIndex{Start: start}, RowIndex{Start: start})
			d.rowCount++
			continue
		}
		d.recountLine(f, b, l, start)
		d.rowCount += l.RowCount()
	}
	d.maxLineWidth = b.maxRowWidth
	d.hasTab = b.hasTab
	d.validate()
}

func (d *Lines) recountLine(f *formatter, b *rowBuilder, l *Line, start int64) {
	f.q.clear()
	f.cur.init(l, start)
	pos := start
	bi := 0
	target, braceLen, braceMax := -1, 0, 0
	for {
		u, ok := d.enc.Next(&f.cur)
		if !ok || isNewline(u.R) {
			if ok && u.R == '\r' && f.nextIsLineFeed() {
				d.enc.Next(&f.cur)
			}
			break
		}

		w := b.advance(u)
		if bi < len(l.Braces) {
			util.Assert(pos <= l.Braces[bi].LinePos, "brace at %d passed at %d", l.Braces[bi].LinePos, pos)
			if l.Braces[bi].LinePos == pos {
				b.markBrace(bi)
				l.Braces[bi].Width = 0
				target, braceLen, braceMax = bi, 0, l.Braces[bi].Len
				bi++
			}
		}
		pos += int64(u.Len)
		if target >= 0 {
			l.Braces[target].Width += w
			braceLen += u.Len
			if braceLen >= braceMax {
				target = -1
			}
		}
		b.place(u, w)
	}
	util.Assert(bi == len(l.Braces), "%d braces not laid out", len(l.Braces)-bi)
	b.finish()
}
