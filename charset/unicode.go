package charset

import (
	"unicode/utf16"
	"unicode/utf8"
)

const maxRune = 0x10FFFF

func decodeUTF8(b []byte) UChar {
	c := b[0]
	if c < utf8.RuneSelf {
		return UChar{rune(c), 1}
	}
	r, n := utf8.DecodeRune(b)
	if r == utf8.RuneError && n <= 1 {
		return UChar{rune(c), 1}
	}
	return UChar{r, n}
}

// encodeUTF8 uses the plain UTF-8 layout so that the identity fallback
// of lone surrogates still round-trips through UTF-16.
func encodeUTF8(r rune, out []byte) int {
	switch {
	case r < 0:
		return 0
	case r < 0x80:
		out[0] = byte(r)
		return 1
	case r < 0x800:
		out[0] = 0xC0 | byte(r>>6)
		out[1] = 0x80 | byte(r)&0x3F
		return 2
	case r < 0x10000:
		out[0] = 0xE0 | byte(r>>12)
		out[1] = 0x80 | byte(r>>6)&0x3F
		out[2] = 0x80 | byte(r)&0x3F
		return 3
	case r <= maxRune:
		out[0] = 0xF0 | byte(r>>18)
		out[1] = 0x80 | byte(r>>12)&0x3F
		out[2] = 0x80 | byte(r>>6)&0x3F
		out[3] = 0x80 | byte(r)&0x3F
		return 4
	}
	return 0
}

func le16(b []byte) rune { return rune(b[0]) | rune(b[1])<<8 }
func be16(b []byte) rune { return rune(b[1]) | rune(b[0])<<8 }

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func be32(b []byte) uint32 {
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
}

func decodeUTF16(b []byte, unit func([]byte) rune) UChar {
	if len(b) < 2 {
		return UChar{rune(b[0]), 1}
	}
	u := unit(b)
	if utf16.IsSurrogate(u) && u < 0xDC00 && len(b) >= 4 {
		if u2 := unit(b[2:]); u2 >= 0xDC00 && u2 < 0xE000 {
			return UChar{utf16.DecodeRune(u, u2), 4}
		}
	}
	return UChar{u, 2}
}

func decodeUTF32(b []byte, unit func([]byte) uint32) UChar {
	if len(b) < 4 {
		return UChar{rune(b[0]), 1}
	}
	v := unit(b)
	if v > maxRune || (v >= 0xD800 && v < 0xE000) {
		return UChar{utf8.RuneError, 4}
	}
	return UChar{rune(v), 4}
}

func putLE16(out []byte, u rune) { out[0], out[1] = byte(u), byte(u>>8) }
func putBE16(out []byte, u rune) { out[0], out[1] = byte(u>>8), byte(u) }

func putLE32(out []byte, v rune) {
	out[0], out[1], out[2], out[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

func putBE32(out []byte, v rune) {
	out[0], out[1], out[2], out[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
}

func encodeUTF16(r rune, out []byte, put func([]byte, rune)) int {
	switch {
	case r < 0 || r > maxRune:
		return 0
	case r < 0x10000:
		put(out, r)
		return 2
	}
	r1, r2 := utf16.EncodeRune(r)
	put(out, r1)
	put(out[2:], r2)
	return 4
}

func encodeUTF32(r rune, out []byte, put func([]byte, rune)) int {
	if r < 0 || r > maxRune {
		return 0
	}
	put(out, r)
	return 4
}
