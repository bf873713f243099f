package charset

import (
	"bytes"
	"unicode/utf8"
)

// boms is ordered so that a UTF-32LE mark is not taken for UTF-16LE.
var boms = []struct {
	name string
	mark []byte
}{
	{"UTF-32LE", []byte{0xFF, 0xFE, 0x00, 0x00}},
	{"UTF-32BE", []byte{0x00, 0x00, 0xFE, 0xFF}},
	{"UTF-8", []byte{0xEF, 0xBB, 0xBF}},
	{"UTF-16LE", []byte{0xFF, 0xFE}},
	{"UTF-16BE", []byte{0xFE, 0xFF}},
	{"GB18030", []byte{0x84, 0x31, 0x95, 0x33}},
}

// MatchBOM returns the encoding whose byte order mark starts buf and the
// length of the mark, or "" and 0.
func MatchBOM(buf []byte) (string, int) {
	for _, b := range boms {
		if bytes.HasPrefix(buf, b.mark) {
			return b.name, len(b.mark)
		}
	}
	return "", 0
}

// Match reports an encoding that buf identifies with certainty: a byte
// order mark, or well-formed UTF-8 containing at least one multi-byte
// sequence. It returns "" otherwise.
func Match(buf []byte) string {
	if name, _ := MatchBOM(buf); name != "" {
		return name
	}
	if isASCII(buf) {
		return ""
	}
	if validUTF8(buf) {
		return "UTF-8"
	}
	return ""
}

func isASCII(buf []byte) bool {
	for _, c := range buf {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// validUTF8 is utf8.Valid tolerating a sequence cut off by the end of a
// sniff window.
func validUTF8(buf []byte) bool {
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if utf8.RuneStart(buf[i]) {
			if !utf8.FullRune(buf[i:]) {
				buf = buf[:i]
			}
			break
		}
	}
	return utf8.Valid(buf)
}

// Detect guesses the encoding of buf, the first bytes of a file. A byte
// order mark wins; otherwise zero-byte patterns select UTF-16 or UTF-32
// and valid UTF-8 selects UTF-8. skipUTF8 disables the UTF-8 guess for
// callers that already ran Match without result. def is returned when
// nothing fits.
func Detect(buf []byte, def string, skipUTF8 bool) string {
	if name, _ := MatchBOM(buf); name != "" {
		return name
	}
	if name := detectWide(buf); name != "" {
		return name
	}
	if !skipUTF8 && !isASCII(buf) && validUTF8(buf) {
		return "UTF-8"
	}
	return def
}

// detectWide looks for the NUL bytes that ASCII text leaves in UTF-16 and
// UTF-32.
func detectWide(buf []byte) string {
	n := len(buf) &^ 3
	if n < 4 {
		return ""
	}
	var zero [4]int
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			zero[i&3]++
		}
	}
	units := n / 4
	switch {
	case zero[1] == units && zero[2] == units && zero[3] == units && zero[0] < units:
		return "UTF-32LE"
	case zero[0] == units && zero[1] == units && zero[2] == units && zero[3] < units:
		return "UTF-32BE"
	}
	even, odd := zero[0]+zero[2], zero[1]+zero[3]
	half := n / 2
	switch {
	case odd*10 >= half*7 && even*10 < half:
		return "UTF-16LE"
	case even*10 >= half*7 && odd*10 < half:
		return "UTF-16BE"
	}
	return ""
}

// IsBinary reports whether buf, decoded as e, looks like binary data: a
// NUL byte in a byte-oriented encoding, or more than one byte in ten being
// a C0 control other than TAB, LF, FF, CR and ESC.
func IsBinary(buf []byte, e *Encoding) bool {
	if len(buf) == 0 {
		return false
	}
	switch e.Kind() {
	case UTF16LE, UTF16BE, UTF32LE, UTF32BE:
		return false
	}
	if bytes.IndexByte(buf, 0) >= 0 {
		return true
	}
	if e.Kind() == CP437Art {
		return false
	}
	ctl := 0
	for _, c := range buf {
		if c < 0x20 {
			switch c {
			case '\t', '\n', '\f', '\r', 0x1B:
			default:
				ctl++
			}
		}
	}
	return ctl*10 > len(buf)
}
