// Package charset converts between the raw bytes of a document and a
// stream of code points tagged with their encoded length.
//
// Every supported encoding is one *Encoding value whose Kind selects the
// decode and encode rules. Code pages are backed by the converters in
// golang.org/x/text; their results are cached in per-encoding tables so
// that decoding a large file does not go through a converter for every
// character.
//
// Decoding never fails. Bytes that do not form a character in the active
// encoding decode to a fallback code point, usually the byte value
// itself, so that any file can be displayed.
//
// An Encoding fills its tables lazily and is not safe for concurrent
// use.
package charset

import (
	"golang.org/x/text/encoding"
)

// Kind is the family an encoding belongs to.
type Kind int

const (
	UTF8 Kind = iota
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
	SingleByte
	DoubleByte
	CP437Art // CP437 with graphic glyphs in the control range
	CP20932  // EUC-JP limited to one and two byte sequences
	GB18030
)

// MaxCharLen is the longest byte sequence of any character.
const MaxCharLen = 4

// UChar is a decoded code point and the number of bytes it occupied.
type UChar struct {
	R   rune
	Len int
}

// Source is the streaming byte cursor a decoder reads from.
type Source interface {
	// Peek returns the next n undecoded bytes. It returns fewer only at
	// the end of the data and nil when nothing is left.
	Peek(n int) []byte
	// Advance consumes n bytes.
	Advance(n int)
}

// Encoding is one entry of a Registry.
type Encoding struct {
	name string
	desc string
	kind Kind
	conv encoding.Encoding // system converter, nil for UTF-8/16/32

	sb  *sbTable // SingleByte, CP437Art
	db  *dbTable // DoubleByte, CP20932, GB18030 two-byte part
	enc map[rune][]byte
}

// Name returns the canonical name, for example "UTF-16LE".
func (e *Encoding) Name() string { return e.name }

// Description returns a short English description.
func (e *Encoding) Description() string { return e.desc }

// Kind returns the encoding family.
func (e *Encoding) Kind() Kind { return e.kind }

// IsUnicode reports whether the encoding covers all of Unicode and has a
// byte order mark.
func (e *Encoding) IsUnicode() bool {
	return e.IsSimpleUnicode() || e.kind == GB18030
}

// IsSimpleUnicode reports whether the encoding is one of the UTF forms.
func (e *Encoding) IsSimpleUnicode() bool {
	switch e.kind {
	case UTF8, UTF16LE, UTF16BE, UTF32LE, UTF32BE:
		return true
	}
	return false
}

// UnitLen returns the width of the smallest code unit, which is also the
// width of a CR or LF.
func (e *Encoding) UnitLen() int {
	switch e.kind {
	case UTF16LE, UTF16BE:
		return 2
	case UTF32LE, UTF32BE:
		return 4
	}
	return 1
}

// BOM returns the byte order mark of a Unicode encoding, nil otherwise.
func (e *Encoding) BOM() []byte {
	switch e.kind {
	case UTF8:
		return []byte{0xEF, 0xBB, 0xBF}
	case UTF16LE:
		return []byte{0xFF, 0xFE}
	case UTF16BE:
		return []byte{0xFE, 0xFF}
	case UTF32LE:
		return []byte{0xFF, 0xFE, 0x00, 0x00}
	case UTF32BE:
		return []byte{0x00, 0x00, 0xFE, 0xFF}
	case GB18030:
		return []byte{0x84, 0x31, 0x95, 0x33}
	}
	return nil
}

// Next decodes one character from src and consumes its bytes. It
// returns false when src is exhausted.
func (e *Encoding) Next(src Source) (UChar, bool) {
	b := src.Peek(MaxCharLen)
	if len(b) == 0 {
		return UChar{}, false
	}
	u := e.Decode(b)
	src.Advance(u.Len)
	return u, true
}

// Decode decodes the character at the start of b, which must not be
// empty. Callers pass MaxCharLen bytes when that many remain.
func (e *Encoding) Decode(b []byte) UChar {
	switch e.kind {
	case UTF8:
		return decodeUTF8(b)
	case UTF16LE:
		return decodeUTF16(b, le16)
	case UTF16BE:
		return decodeUTF16(b, be16)
	case UTF32LE:
		return decodeUTF32(b, le32)
	case UTF32BE:
		return decodeUTF32(b, be32)
	case SingleByte, CP437Art:
		return UChar{e.sb.dec[b[0]], 1}
	case DoubleByte, CP20932:
		return e.decodeDouble(b)
	case GB18030:
		return e.decodeGB18030(b)
	}
	return UChar{rune(b[0]), 1}
}

// Encode writes the encoding of r to out, which must hold MaxCharLen
// bytes, and returns the number of bytes written. It returns 0 when r
// cannot be represented; the caller substitutes a placeholder.
func (e *Encoding) Encode(r rune, out []byte) int {
	switch e.kind {
	case UTF8:
		return encodeUTF8(r, out)
	case UTF16LE:
		return encodeUTF16(r, out, putLE16)
	case UTF16BE:
		return encodeUTF16(r, out, putBE16)
	case UTF32LE:
		return encodeUTF32(r, out, putLE32)
	case UTF32BE:
		return encodeUTF32(r, out, putBE32)
	case SingleByte, CP437Art:
		b, ok := e.sb.enc[r]
		if !ok {
			return 0
		}
		out[0] = b
		return 1
	}
	return e.encodeConv(r, out)
}

// IsLineFeed reports whether b starts with an LF code unit.
func (e *Encoding) IsLineFeed(b []byte) bool {
	return e.unitIs(b, 0x0A)
}

// LastNewline looks at the last code unit of tail, the final bytes of a
// line, and returns 0x0A or 0x0D when it is a line terminator, else 0.
func (e *Encoding) LastNewline(tail []byte) rune {
	w := e.UnitLen()
	if len(tail) < w {
		return 0
	}
	u := tail[len(tail)-w:]
	switch {
	case e.unitIs(u, 0x0A):
		return 0x0A
	case e.unitIs(u, 0x0D):
		return 0x0D
	}
	return 0
}

func (e *Encoding) unitIs(b []byte, c byte) bool {
	switch e.kind {
	case UTF16LE:
		return len(b) >= 2 && b[0] == c && b[1] == 0
	case UTF16BE:
		return len(b) >= 2 && b[0] == 0 && b[1] == c
	case UTF32LE:
		return len(b) >= 4 && b[0] == c && b[1] == 0 && b[2] == 0 && b[3] == 0
	case UTF32BE:
		return len(b) >= 4 && b[0] == 0 && b[1] == 0 && b[2] == 0 && b[3] == c
	}
	return len(b) >= 1 && b[0] == c
}
