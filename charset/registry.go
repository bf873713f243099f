package charset

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// ErrUnknownEncoding is returned by Lookup for a name no entry matches.
var ErrUnknownEncoding = errors.New("unknown encoding")

type entry struct {
	name    string
	kind    Kind
	desc    string
	aliases []string
	conv    encoding.Encoding
	patch   func(*[256]rune)
}

// entries lists the supported encodings in menu order.
var entries = []entry{
	{"ISO-8859-1", SingleByte, "Western European", []string{"latin1"}, charmap.ISO8859_1, nil},
	{"ISO-8859-2", SingleByte, "Central European", []string{"latin2"}, charmap.ISO8859_2, nil},
	{"ISO-8859-3", SingleByte, "South European", []string{"latin3"}, charmap.ISO8859_3, nil},
	{"ISO-8859-4", SingleByte, "North European", []string{"latin4"}, charmap.ISO8859_4, nil},
	{"ISO-8859-5", SingleByte, "Cyrillic", []string{"cyrillic"}, charmap.ISO8859_5, nil},
	{"ISO-8859-6", SingleByte, "Arabic", []string{"arabic"}, charmap.ISO8859_6, nil},
	{"ISO-8859-7", SingleByte, "Greek", []string{"greek"}, charmap.ISO8859_7, nil},
	{"ISO-8859-8", SingleByte, "Hebrew", []string{"hebrew"}, charmap.ISO8859_8, nil},
	{"ISO-8859-9", SingleByte, "Turkish", []string{"latin5"}, charmap.ISO8859_9, nil},
	{"ISO-8859-10", SingleByte, "Nordic", []string{"latin6"}, charmap.ISO8859_10, nil},
	{"ISO-8859-11", SingleByte, "Thai", []string{"TIS-620"}, charmap.Windows874, c1Controls},
	{"ISO-8859-13", SingleByte, "Baltic", []string{"latin7"}, charmap.ISO8859_13, nil},
	{"ISO-8859-14", SingleByte, "Celtic", []string{"latin8"}, charmap.ISO8859_14, nil},
	{"ISO-8859-15", SingleByte, "Western European with Euro", []string{"latin9"}, charmap.ISO8859_15, nil},
	{"ISO-8859-16", SingleByte, "South-Eastern European", []string{"latin10"}, charmap.ISO8859_16, nil},
	{"Windows-874", SingleByte, "Windows Thai", []string{"CP874"}, charmap.Windows874, nil},
	{"Windows-1250", SingleByte, "Windows Central European", []string{"CP1250"}, charmap.Windows1250, nil},
	{"Windows-1251", SingleByte, "Windows Cyrillic", []string{"CP1251"}, charmap.Windows1251, nil},
	{"Windows-1252", SingleByte, "Windows Western European", []string{"CP1252"}, charmap.Windows1252, nil},
	{"Windows-1253", SingleByte, "Windows Greek", []string{"CP1253"}, charmap.Windows1253, nil},
	{"Windows-1254", SingleByte, "Windows Turkish", []string{"CP1254"}, charmap.Windows1254, nil},
	{"Windows-1255", SingleByte, "Windows Hebrew", []string{"CP1255"}, charmap.Windows1255, nil},
	{"Windows-1256", SingleByte, "Windows Arabic", []string{"CP1256"}, charmap.Windows1256, nil},
	{"Windows-1257", SingleByte, "Windows Baltic", []string{"CP1257"}, charmap.Windows1257, nil},
	{"Windows-1258", SingleByte, "Windows Vietnamese", []string{"CP1258"}, charmap.Windows1258, nil},
	{"CP437-Art", CP437Art, "CP437 Variant for ASCII Art", nil, charmap.CodePage437, cp437Art},
	{"CP437", SingleByte, "Windows/DOS OEM", []string{"IBM437"}, charmap.CodePage437, nil},
	{"CP850", SingleByte, "Windows/DOS OEM - Latin 1", []string{"IBM850"}, charmap.CodePage850, nil},
	{"CP852", SingleByte, "Windows/DOS OEM - Latin 2", []string{"IBM852"}, charmap.CodePage852, nil},
	{"CP855", SingleByte, "Windows/DOS OEM - Cyrillic", []string{"IBM855"}, charmap.CodePage855, nil},
	{"CP866", SingleByte, "Windows/DOS OEM - Cyrillic", []string{"IBM866"}, charmap.CodePage866, nil},
	{"KOI8-R", SingleByte, "Cyrillic", nil, charmap.KOI8R, nil},
	{"KOI8-U", SingleByte, "Cyrillic", nil, charmap.KOI8U, nil},
	{"Windows-31J", DoubleByte, "Windows Japanese", []string{"Shift-JIS", "SJIS", "MS932", "CP932"}, japanese.ShiftJIS, nil},
	{"MS936", DoubleByte, "Windows Chinese Simplified", []string{"GBK", "CP936", "GB2312"}, simplifiedchinese.GBK, nil},
	{"UHC", DoubleByte, "Windows Korean", []string{"EUC-KR", "MS949", "CP949"}, korean.EUCKR, nil},
	{"MS950", DoubleByte, "Windows Chinese Traditional", []string{"Big5", "CP950"}, traditionalchinese.Big5, nil},
	{"CP20932", CP20932, "EUC-JP Double-Byte Edition of Windows", []string{"EUC-JP"}, japanese.EUCJP, nil},
	{"GB18030", GB18030, "Unicode/Chinese Simplified", nil, simplifiedchinese.GB18030, nil},
	{"UTF-8", UTF8, "Unicode 8 bit", []string{"UTF8"}, nil, nil},
	{"UTF-16LE", UTF16LE, "Unicode 16 bit Little Endian", nil, nil, nil},
	{"UTF-16BE", UTF16BE, "Unicode 16 bit Big Endian", nil, nil, nil},
	{"UTF-32LE", UTF32LE, "Unicode 32 bit Little Endian", nil, nil, nil},
	{"UTF-32BE", UTF32BE, "Unicode 32 bit Big Endian", nil, nil, nil},
}

// c1Controls restores the C1 control range that Windows-874 fills with
// punctuation.
func c1Controls(t *[256]rune) {
	for i := 0x80; i < 0xA0; i++ {
		t[i] = rune(i)
	}
}

// cp437Glyphs are the IBM PC glyphs for bytes 0x00-0x1F.
var cp437Glyphs = []rune("\u0000☺☻♥♦♣♠•◘○◙♂♀♪♫☼►◄↕‼¶§▬↨↑↓→←∟↔▲▼")

func cp437Art(t *[256]rune) {
	for i, r := range cp437Glyphs {
		switch i {
		case 0x00, 0x09, 0x0A, 0x0D:
			continue
		}
		t[i] = r
	}
	t[0x7F] = '⌂'
}

// normalize folds an encoding name for lookup: "utf_8", "UTF8" and
// "utf-8" are the same name.
func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '.':
			return -1
		}
		if r >= 'A' && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	}, name)
}

// A Registry hands out the Encoding values of one program. Encodings are
// created on first use and shared afterwards.
type Registry struct {
	system string

	mu        sync.Mutex
	index     map[string]int // normalized name or alias -> entries index
	encodings map[int]*Encoding
}

// NewRegistry returns a registry whose system encoding is system. An
// empty or unknown name selects the encoding named by the locale.
func NewRegistry(system string) *Registry {
	r := &Registry{
		index:     make(map[string]int),
		encodings: make(map[int]*Encoding),
	}
	for i, en := range entries {
		r.index[normalize(en.name)] = i
		for _, a := range en.aliases {
			if _, ok := r.index[normalize(a)]; !ok {
				r.index[normalize(a)] = i
			}
		}
	}
	if _, ok := r.index[normalize(system)]; !ok {
		system = SystemEncodingName()
	}
	r.system = entries[r.index[normalize(system)]].name
	return r
}

// Names returns the canonical names of all encodings.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(entries))
	for _, en := range entries {
		names = append(names, en.name)
	}
	return names
}

// Lookup returns the encoding called name, matching names and aliases
// case-insensitively.
func (r *Registry) Lookup(name string) (*Encoding, error) {
	i, ok := r.index[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.encodings[i]; ok {
		return e, nil
	}
	e := newEncoding(&entries[i])
	r.encodings[i] = e
	return e, nil
}

// Get returns the encoding called name, or the system encoding when no
// encoding has that name.
func (r *Registry) Get(name string) *Encoding {
	e, err := r.Lookup(name)
	if err != nil {
		if name != "" {
			log.Printf("%v; using %s", err, r.system)
		}
		return r.System()
	}
	return e
}

// System returns the system encoding.
func (r *Registry) System() *Encoding {
	e, err := r.Lookup(r.system)
	if err != nil {
		panic("charset: system encoding vanished: " + err.Error())
	}
	return e
}

func newEncoding(en *entry) *Encoding {
	e := &Encoding{name: en.name, desc: en.desc, kind: en.kind, conv: en.conv}
	switch en.kind {
	case SingleByte, CP437Art:
		e.sb = newSBTable(en.conv.(*charmap.Charmap), en.patch)
	case DoubleByte, CP20932, GB18030:
		e.db = &dbTable{}
		e.enc = make(map[rune][]byte)
	}
	return e
}

// SystemEncodingName derives an encoding name from the locale
// environment. Without a locale it answers UTF-8; a locale naming a
// charset this package lacks answers ISO-8859-1.
func SystemEncodingName() string {
	locale := ""
	for _, v := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if locale = os.Getenv(v); locale != "" {
			break
		}
	}
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}
	i := strings.IndexByte(locale, '.')
	if i < 0 {
		return "UTF-8"
	}
	cs := normalize(locale[i+1:])
	for _, en := range entries {
		if normalize(en.name) == cs {
			return en.name
		}
		for _, a := range en.aliases {
			if normalize(a) == cs {
				return en.name
			}
		}
	}
	if cs == "eucjp" || cs == "ujis" {
		return "CP20932"
	}
	return "ISO-8859-1"
}
