package charset

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// sbTable maps every byte of a single-byte code page. It is built in
// full when the encoding is created.
type sbTable struct {
	dec [256]rune
	enc map[rune]byte
}

func newSBTable(cm *charmap.Charmap, patch func(*[256]rune)) *sbTable {
	t := &sbTable{enc: make(map[rune]byte, 256)}
	for i := 0; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r == utf8.RuneError {
			r = rune(i)
		}
		t.dec[i] = r
	}
	if patch != nil {
		patch(&t.dec)
	}
	// Walk backwards so that the lowest byte wins for duplicate code
	// points.
	for i := 255; i >= 0; i-- {
		t.enc[t.dec[i]] = byte(i)
	}
	return t
}

// dbTable caches a multi-byte code page one lead byte at a time.
type dbTable struct {
	filled [256]bool
	lead   [256]bool
	single [256]rune
	pairs  [256]*[256]rune // trail byte -> code point, 0 when invalid
}

// decodeOne runs the system converter over b and reports whether b is
// exactly one character.
func decodeOne(conv encoding.Encoding, b []byte) (rune, bool) {
	out, err := conv.NewDecoder().Bytes(b)
	if err != nil || len(out) == 0 {
		return 0, false
	}
	r, n := utf8.DecodeRune(out)
	if r == utf8.RuneError || n != len(out) {
		return 0, false
	}
	return r, true
}

func (e *Encoding) fillLead(c byte) {
	t := e.db
	t.filled[c] = true
	if c < utf8.RuneSelf {
		t.single[c] = rune(c)
		return
	}
	if r, ok := decodeOne(e.conv, []byte{c}); ok {
		t.single[c] = r
		return
	}
	var pairs [256]rune
	valid := false
	dec := e.conv.NewDecoder()
	buf := []byte{c, 0}
	for trail := 1; trail < 256; trail++ {
		buf[1] = byte(trail)
		out, err := dec.Bytes(buf)
		if err != nil {
			continue
		}
		if r, n := utf8.DecodeRune(out); r != utf8.RuneError && n == len(out) {
			pairs[trail] = r
			valid = true
		}
	}
	if !valid {
		t.single[c] = rune(c)
		return
	}
	t.lead[c] = true
	t.pairs[c] = &pairs
}

func (e *Encoding) decodeDouble(b []byte) UChar {
	c := b[0]
	t := e.db
	if !t.filled[c] {
		e.fillLead(c)
	}
	if t.lead[c] {
		if len(b) >= 2 {
			if r := t.pairs[c][b[1]]; r != 0 {
				return UChar{r, 2}
			}
		}
		return UChar{rune(c), 1}
	}
	return UChar{t.single[c], 1}
}

func (e *Encoding) decodeGB18030(b []byte) UChar {
	c := b[0]
	if c < utf8.RuneSelf {
		return UChar{rune(c), 1}
	}
	if c == 0x80 || c == 0xFF || len(b) < 2 {
		return UChar{rune(c), 1}
	}
	if t := b[1]; t >= 0x30 && t <= 0x39 {
		if len(b) >= 4 {
			if r, ok := decodeOne(e.conv, b[:4]); ok {
				return UChar{r, 4}
			}
		}
		return UChar{rune(c), 1}
	}
	return e.decodeDouble(b)
}

// encodeConv encodes through the system converter, caching the result.
func (e *Encoding) encodeConv(r rune, out []byte) int {
	if r < 0 || r > maxRune {
		return 0
	}
	if r < utf8.RuneSelf {
		out[0] = byte(r)
		return 1
	}
	b, ok := e.enc[r]
	if !ok {
		var tmp [utf8.UTFMax]byte
		n := utf8.EncodeRune(tmp[:], r)
		enc, err := e.conv.NewEncoder().Bytes(tmp[:n])
		switch {
		case err != nil, len(enc) == 0, len(enc) > MaxCharLen:
		case e.kind == CP20932 && len(enc) > 2:
		case e.kind == DoubleByte && len(enc) > 2:
		default:
			b = enc
		}
		e.enc[r] = b
	}
	return copy(out, b)
}
