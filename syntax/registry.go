package syntax

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/lexers"
)

// MaxFirstLine is the number of leading bytes examined by first-line
// patterns.
const MaxFirstLine = 1024

var braces = struct{ left, right []string }{
	[]string{"(", "[", "{"},
	[]string{")", "]", "}"},
}

// Builtin lists the definitions every Registry starts with.
var Builtin = []Definition{
	{
		Title:         PlainText,
		Extensions:    []string{"txt", "text"},
		CaseSensitive: true,
	},
	{
		Title:            "C/C++",
		Extensions:       []string{"c", "h", "cc", "cpp", "cxx", "hh", "hpp", "hxx", "inl"},
		Chroma:           []string{"C", "C++", "Objective-C"},
		CaseSensitive:    true,
		LineComment:      []string{"//"},
		BlockCommentOn:   []string{"/*"},
		BlockCommentOff:  []string{"*/"},
		StringChars:      "\"'",
		EscapeChar:       "\\",
		DirectiveLeading: "#",
		LeftBrace:        braces.left,
		RightBrace:       braces.right,
	},
	{
		Title:           "Go",
		Extensions:      []string{"go"},
		Chroma:          []string{"Go"},
		CaseSensitive:   true,
		LineComment:     []string{"//"},
		BlockCommentOn:  []string{"/*"},
		BlockCommentOff: []string{"*/"},
		StringChars:     "\"'`",
		EscapeChar:      "\\",
		LeftBrace:       braces.left,
		RightBrace:      braces.right,
	},
	{
		Title:         "Python",
		Extensions:    []string{"py", "pyw"},
		FirstLine:     `^#!.*python`,
		Chroma:        []string{"Python", "Python 2"},
		CaseSensitive: true,
		LineComment:   []string{"#"},
		StringChars:   "\"'",
		EscapeChar:    "\\",
		LeftBrace:     braces.left,
		RightBrace:    braces.right,
	},
	{
		Title:         "Shell",
		Extensions:    []string{"sh", "bash", "ksh", "zsh"},
		FileNames:     []string{".bashrc", ".bash_profile", ".profile", ".zshrc"},
		FirstLine:     `^#!.*/(env +)?(ba|k|z)?sh\b`,
		Chroma:        []string{"Bash"},
		CaseSensitive: true,
		LineComment:   []string{"#"},
		StringChars:   "\"'`",
		EscapeChar:    "\\",
		LeftBrace:     braces.left,
		RightBrace:    braces.right,
	},
	{
		Title:               "HTML",
		Extensions:          []string{"html", "htm", "xhtml"},
		FirstLine:           `(?i)^\s*<(!doctype html|html)`,
		Chroma:              []string{"HTML"},
		LineComment:         []string{"//"},
		LineCommentInRange:  []int{1},
		BlockCommentOn:      []string{"<!--", "/*"},
		BlockCommentOff:     []string{"-->", "*/"},
		BlockCommentInRange: [][]int{{0}, {1, 2}},
		StringChars:         "\"'",
		StringInRange:       []int{1, 2},
		EscapeChar:          "\\",
		Ranges: []Range{
			{ID: 1, Begin: "<script", End: "</script>"},
			{ID: 2, Begin: "<style", End: "</style>"},
		},
		LeftBrace:  []string{"<", "{", "("},
		RightBrace: []string{">", "}", ")"},
	},
}

// Registry resolves file names and content to syntaxes. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	byTitle map[string]*Syntax
}

// NewRegistry returns a registry holding the built-in definitions.
func NewRegistry() *Registry {
	r := &Registry{byTitle: make(map[string]*Syntax)}
	for _, def := range Builtin {
		r.add(MustCompile(def))
	}
	return r
}

func (r *Registry) add(s *Syntax) {
	if _, ok := r.byTitle[s.Title()]; !ok {
		r.order = append(r.order, s.Title())
	}
	r.byTitle[s.Title()] = s
}

// Register compiles def and adds it, replacing a syntax of the same
// title.
func (r *Registry) Register(def Definition) error {
	s, err := Compile(def)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(s)
	return nil
}

// Titles lists the registered syntaxes in registration order.
func (r *Registry) Titles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// ByTitle returns the syntax with the given title, or nil.
func (r *Registry) ByTitle(title string) *Syntax {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byTitle[title]
}

// Default returns the plain text syntax.
func (r *Registry) Default() *Syntax {
	if s := r.ByTitle(PlainText); s != nil {
		return s
	}
	return MustCompile(Definition{Title: PlainText, CaseSensitive: true})
}

func (r *Registry) find(match func(*Syntax) bool) *Syntax {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.order {
		if s := r.byTitle[t]; match(s) {
			return s
		}
	}
	return nil
}

// ByExt returns the syntax claiming the extension ext, given with or
// without its dot.
func (r *Registry) ByExt(ext string) *Syntax {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return nil
	}
	return r.find(func(s *Syntax) bool {
		for _, e := range s.def.Extensions {
			if e == ext {
				return true
			}
		}
		return false
	})
}

// ByFirstLine returns the syntax whose first-line pattern matches the
// start of buf.
func (r *Registry) ByFirstLine(buf []byte) *Syntax {
	if len(buf) > MaxFirstLine {
		buf = buf[:MaxFirstLine]
	}
	if i := bytes.IndexAny(buf, "\r\n"); i >= 0 {
		buf = buf[:i]
	}
	if len(buf) == 0 {
		return nil
	}
	return r.find(func(s *Syntax) bool { return s.MatchFirstLine(buf) })
}

// ByFileName returns the syntax claiming the exact base name of name.
func (r *Registry) ByFileName(name string) *Syntax {
	base := filepath.Base(name)
	return r.find(func(s *Syntax) bool {
		for _, n := range s.def.FileNames {
			if n == base {
				return true
			}
		}
		return false
	})
}

// byChromaName maps a chroma lexer name onto a registered syntax.
func (r *Registry) byChromaName(name string) *Syntax {
	return r.find(func(s *Syntax) bool {
		for _, n := range s.def.Chroma {
			if n == name {
				return true
			}
		}
		return false
	})
}

// ByChroma asks chroma's lexer registry about the file name and then the
// content, and maps the lexer it picks onto a registered syntax.
func (r *Registry) ByChroma(filename string, buf []byte) *Syntax {
	if filename != "" {
		if l := lexers.Match(filepath.Base(filename)); l != nil {
			if s := r.byChromaName(l.Config().Name); s != nil {
				return s
			}
		}
	}
	if len(buf) > 0 {
		if l := lexers.Analyse(string(buf)); l != nil {
			if s := r.byChromaName(l.Config().Name); s != nil {
				return s
			}
		}
	}
	return nil
}

// ForFile picks the syntax of a file from its name and first bytes: by
// extension, by first line, by file name, by chroma's detection, and
// finally plain text.
func (r *Registry) ForFile(filename string, buf []byte) *Syntax {
	if s := r.ByExt(filepath.Ext(filename)); s != nil {
		return s
	}
	if s := r.ByFirstLine(buf); s != nil {
		return s
	}
	if s := r.ByFileName(filename); s != nil {
		return s
	}
	if s := r.ByChroma(filename, buf); s != nil {
		return s
	}
	return r.Default()
}
