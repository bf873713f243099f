package charset

import "testing"

func TestMatchBOM(t *testing.T) {
	tests := []struct {
		in   []byte
		name string
		n    int
	}{
		{[]byte{0xEF, 0xBB, 0xBF, 'a'}, "UTF-8", 3},
		{[]byte{0xFF, 0xFE, 'a', 0}, "UTF-16LE", 2},
		{[]byte{0xFE, 0xFF, 0, 'a'}, "UTF-16BE", 2},
		{[]byte{0xFF, 0xFE, 0, 0, 'a', 0, 0, 0}, "UTF-32LE", 4},
		{[]byte{0, 0, 0xFE, 0xFF}, "UTF-32BE", 4},
		{[]byte{0x84, 0x31, 0x95, 0x33}, "GB18030", 4},
		{[]byte("plain"), "", 0},
		{nil, "", 0},
	}
	for _, tc := range tests {
		name, n := MatchBOM(tc.in)
		if name != tc.name || n != tc.n {
			t.Errorf("MatchBOM(% x) got %q, %d want %q, %d", tc.in, name, n, tc.name, tc.n)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain ascii", ""},
		{"héllo", "UTF-8"},
		{"h\xe9llo", ""},
		{"\xef\xbb\xbfascii", "UTF-8"},
		{"\xff\xfeh\x00", "UTF-16LE"},
	}
	for _, tc := range tests {
		if got, want := Match([]byte(tc.in)), tc.want; got != want {
			t.Errorf("Match(%q) got %q want %q", tc.in, got, want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		in       string
		def      string
		skipUTF8 bool
		want     string
	}{
		{"h\x00i\x00", "ISO-8859-1", false, "UTF-16LE"},
		{"\x00h\x00i", "ISO-8859-1", false, "UTF-16BE"},
		{"h\x00\x00\x00i\x00\x00\x00", "ISO-8859-1", false, "UTF-32LE"},
		{"\x00\x00\x00h\x00\x00\x00i", "ISO-8859-1", false, "UTF-32BE"},
		{"héllo", "ISO-8859-1", false, "UTF-8"},
		{"héllo", "ISO-8859-1", true, "ISO-8859-1"},
		{"h\xc3\xa9\xe4\xb8", "ISO-8859-1", false, "UTF-8"},
		{"h\xe9llo", "Windows-1252", false, "Windows-1252"},
		{"abc", "Windows-1252", false, "Windows-1252"},
		{"\xfe\xff\x00a", "UTF-8", false, "UTF-16BE"},
	}
	for _, tc := range tests {
		if got, want := Detect([]byte(tc.in), tc.def, tc.skipUTF8), tc.want; got != want {
			t.Errorf("Detect(%q, %s, %v) got %q want %q", tc.in, tc.def, tc.skipUTF8, got, want)
		}
	}
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		in   string
		enc  string
		want bool
	}{
		{"", "UTF-8", false},
		{"hello\r\nworld\tx\f\x1b[0m", "UTF-8", false},
		{"abc\x00def", "UTF-8", true},
		{"a\x00b\x00", "UTF-16LE", false},
		{"ab\x01\x02\x03cdefgh", "ISO-8859-1", true},
		{"abcdefghijklmnopqrstu\x01", "ISO-8859-1", false},
		{"\x01\x02\x03\x04", "CP437-Art", false},
		{"\x01\x00", "CP437-Art", true},
	}
	for _, tc := range tests {
		e := mustLookup(t, tc.enc)
		if got, want := IsBinary([]byte(tc.in), e), tc.want; got != want {
			t.Errorf("IsBinary(%q, %s) got %v want %v", tc.in, tc.enc, got, want)
		}
	}
}
