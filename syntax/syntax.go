// Package syntax holds the lexing rules the line reformatter consults:
// comment, string, directive and custom range patterns, brace pairs and
// the delimiter classification that drives word wrap.
//
// A Definition is the plain description of a language. Compile turns it
// into a Syntax whose patterns are rune slices, folded to lower case when
// the language is case-insensitive.
package syntax

import (
	"fmt"
	"regexp"
	"strings"
)

// PlainText is the title of the fallback syntax.
const PlainText = "Plain Text"

// DefaultDelimiters are the characters that separate words when a
// definition does not list its own.
const DefaultDelimiters = "~`!@#$%^&*()-+=|\\{}[]:;\"',.<>/?"

// Range is a custom region such as an embedded script block. Its ID is
// what LineState records while the lexer is inside it.
type Range struct {
	ID    int    `json:"id"`
	Begin string `json:"begin"`
	End   string `json:"end"`
}

// Definition describes one language.
type Definition struct {
	Title         string   `json:"title"`
	Extensions    []string `json:"extensions,omitempty"` // without the dot, lower case
	FileNames     []string `json:"filenames,omitempty"`  // exact base names
	FirstLine     string   `json:"firstline,omitempty"`  // regexp matched against the first line
	Chroma        []string `json:"chroma,omitempty"`     // chroma lexer names that select this syntax
	Encoding      string   `json:"encoding,omitempty"`
	CaseSensitive bool     `json:"casesensitive"`
	Delimiters    string   `json:"delimiters,omitempty"`

	LineComment         []string `json:"linecomment,omitempty"`
	LineCommentAtBOL    bool     `json:"linecommentatbol,omitempty"`
	LineCommentInRange  []int    `json:"linecommentinrange,omitempty"`
	BlockCommentOn      []string `json:"blockcommenton,omitempty"`
	BlockCommentOff     []string `json:"blockcommentoff,omitempty"`
	BlockCommentInRange [][]int  `json:"blockcommentinrange,omitempty"`

	StringChars   string `json:"stringchars,omitempty"`
	StringInRange []int  `json:"stringinrange,omitempty"`
	EscapeChar    string `json:"escapechar,omitempty"`

	DirectiveLeading      string `json:"directiveleading,omitempty"`
	DirectiveLeadingAtBOL bool   `json:"directiveleadingatbol,omitempty"`

	Ranges     []Range  `json:"ranges,omitempty"`
	LeftBrace  []string `json:"leftbrace,omitempty"`
	RightBrace []string `json:"rightbrace,omitempty"`
}

// Matcher compares pattern characters against text characters.
type Matcher int

const (
	CaseSensitive Matcher = iota
	CaseInsensitive
)

// Fold maps a text character to the form patterns are stored in. Only
// ASCII letters fold.
func (m Matcher) Fold(r rune) rune {
	if m == CaseInsensitive && r >= 'A' && r <= 'Z' {
		return r | 0x20
	}
	return r
}

// Syntax is a compiled Definition. It is immutable and may be shared by
// any number of documents.
type Syntax struct {
	def        Definition
	matcher    Matcher
	firstLine  *regexp.Regexp
	delimiters map[rune]bool
	escape     rune

	LineComment     [][]rune
	BlockCommentOn  [][]rune
	BlockCommentOff [][]rune
	StringChars     []rune
	Directives      []rune
	RangeBegin      [][]rune // Begin of Ranges, in order
	LeftBrace       [][]rune
	RightBrace      [][]rune

	rangeEnd   map[int][]rune
	checkState bool
}

// Compile validates def and builds its Syntax.
func Compile(def Definition) (*Syntax, error) {
	if def.Title == "" {
		return nil, fmt.Errorf("syntax definition without title")
	}
	if len(def.BlockCommentOn) != len(def.BlockCommentOff) {
		return nil, fmt.Errorf("syntax %q: %d block comment openers but %d closers",
			def.Title, len(def.BlockCommentOn), len(def.BlockCommentOff))
	}
	if len(def.LeftBrace) != len(def.RightBrace) {
		return nil, fmt.Errorf("syntax %q: unbalanced brace lists", def.Title)
	}
	if len([]rune(def.EscapeChar)) > 1 {
		return nil, fmt.Errorf("syntax %q: escape %q is not one character", def.Title, def.EscapeChar)
	}
	for _, list := range [][]string{def.LineComment, def.BlockCommentOn, def.BlockCommentOff, def.LeftBrace, def.RightBrace} {
		for _, p := range list {
			if p == "" {
				return nil, fmt.Errorf("syntax %q: empty pattern", def.Title)
			}
		}
	}
	ids := make(map[int]bool)
	for _, r := range def.Ranges {
		if r.ID <= 0 || r.ID > 255 || ids[r.ID] {
			return nil, fmt.Errorf("syntax %q: bad or duplicate range id %d", def.Title, r.ID)
		}
		if r.Begin == "" || r.End == "" {
			return nil, fmt.Errorf("syntax %q: range %d needs begin and end", def.Title, r.ID)
		}
		ids[r.ID] = true
	}

	s := &Syntax{def: def, escape: -1, delimiters: make(map[rune]bool)}
	if !def.CaseSensitive {
		s.matcher = CaseInsensitive
	}
	if def.FirstLine != "" {
		re, err := regexp.Compile(def.FirstLine)
		if err != nil {
			return nil, fmt.Errorf("syntax %q: first line pattern: %w", def.Title, err)
		}
		s.firstLine = re
	}
	delims := def.Delimiters
	if delims == "" {
		delims = DefaultDelimiters
	}
	for _, r := range delims {
		s.delimiters[r] = true
	}
	if def.EscapeChar != "" {
		s.escape = []rune(def.EscapeChar)[0]
	}

	s.LineComment = s.patterns(def.LineComment)
	s.BlockCommentOn = s.patterns(def.BlockCommentOn)
	s.BlockCommentOff = s.patterns(def.BlockCommentOff)
	s.StringChars = []rune(def.StringChars)
	s.Directives = []rune(def.DirectiveLeading)
	s.rangeEnd = make(map[int][]rune)
	for _, r := range def.Ranges {
		s.RangeBegin = append(s.RangeBegin, s.pattern(r.Begin))
		s.rangeEnd[r.ID] = s.pattern(r.End)
	}
	s.LeftBrace = s.patterns(def.LeftBrace)
	s.RightBrace = s.patterns(def.RightBrace)

	s.checkState = len(s.LineComment) > 0 || len(s.BlockCommentOn) > 0 ||
		len(s.StringChars) > 0 || len(s.Directives) > 0 ||
		len(s.RangeBegin) > 0 || len(s.LeftBrace) > 0 || s.escape >= 0
	return s, nil
}

// MustCompile is Compile for the built-in tables.
func MustCompile(def Definition) *Syntax {
	s, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Syntax) pattern(p string) []rune {
	if s.matcher == CaseInsensitive {
		p = strings.Map(s.matcher.Fold, p)
	}
	return []rune(p)
}

func (s *Syntax) patterns(ps []string) [][]rune {
	var out [][]rune
	for _, p := range ps {
		out = append(out, s.pattern(p))
	}
	return out
}

// Title returns the language name.
func (s *Syntax) Title() string { return s.def.Title }

// Definition returns a copy of the source definition.
func (s *Syntax) Definition() Definition { return s.def }

// Encoding returns the encoding the language mandates, or "".
func (s *Syntax) Encoding() string { return s.def.Encoding }

// Matcher returns the case strategy for pattern matching.
func (s *Syntax) Matcher() Matcher { return s.matcher }

// CheckState reports whether the lexer has anything to look for. Plain
// text skips lexing entirely.
func (s *Syntax) CheckState() bool { return s.checkState }

// Escape returns the escape character, or -1.
func (s *Syntax) Escape() rune { return s.escape }

// LineCommentAtBOL reports whether line comments must start a line.
func (s *Syntax) LineCommentAtBOL() bool { return s.def.LineCommentAtBOL }

// DirectiveAtBOL reports whether directives must start a line.
func (s *Syntax) DirectiveAtBOL() bool { return s.def.DirectiveLeadingAtBOL }

// IsSpace reports whether r is blank for word wrap: C0 controls, space
// and the ideographic space.
func IsSpace(r rune) bool {
	return r <= 0x20 || r == 0x3000
}

// IsDelimiter reports whether r ends a word.
func (s *Syntax) IsDelimiter(r rune) bool {
	return !IsSpace(r) && s.delimiters[r]
}

// IsNotDelimiter reports whether r is part of a word. Blanks are
// neither delimiters nor word characters.
func (s *Syntax) IsNotDelimiter(r rune) bool {
	return !IsSpace(r) && !s.delimiters[r]
}

// IsInRange reports whether a pattern limited to ranges is active while
// the lexer is in range id. An empty list means the global range only;
// 0 in a list names the global range.
func IsInRange(id int, ranges []int) bool {
	if len(ranges) == 0 {
		return id == 0
	}
	for _, r := range ranges {
		if r == id {
			return true
		}
	}
	return false
}

// LineCommentActive reports whether line comments apply in range id.
func (s *Syntax) LineCommentActive(id int) bool {
	return IsInRange(id, s.def.LineCommentInRange)
}

// BlockCommentActive reports whether block comment idx (1-based) may
// open in range id.
func (s *Syntax) BlockCommentActive(idx, id int) bool {
	if idx-1 < len(s.def.BlockCommentInRange) {
		return IsInRange(id, s.def.BlockCommentInRange[idx-1])
	}
	return id == 0
}

// StringActive reports whether strings may open in range id.
func (s *Syntax) StringActive(id int) bool {
	return IsInRange(id, s.def.StringInRange)
}

// StringIndex returns the 1-based position of r among the string
// delimiters, or 0.
func (s *Syntax) StringIndex(r rune) int {
	for i, c := range s.StringChars {
		if c == r {
			return i + 1
		}
	}
	return 0
}

// DirectiveIndex returns the 1-based position of r among the directive
// leaders, or 0.
func (s *Syntax) DirectiveIndex(r rune) int {
	for i, c := range s.Directives {
		if c == r {
			return i + 1
		}
	}
	return 0
}

// RangeByIndex returns the custom range whose Begin is RangeBegin[idx-1].
func (s *Syntax) RangeByIndex(idx int) Range {
	return s.def.Ranges[idx-1]
}

// Range returns the custom range with the given id.
func (s *Syntax) Range(id int) (Range, bool) {
	for _, r := range s.def.Ranges {
		if r.ID == id {
			return r, true
		}
	}
	return Range{}, false
}

// RangeEnd returns the compiled end pattern of range id, or nil.
func (s *Syntax) RangeEnd(id int) []rune {
	return s.rangeEnd[id]
}

// MatchFirstLine reports whether line selects this syntax.
func (s *Syntax) MatchFirstLine(line []byte) bool {
	return s.firstLine != nil && s.firstLine.Match(line)
}
