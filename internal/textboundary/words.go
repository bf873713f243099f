// Package textboundary finds word boundaries for the word count.
package textboundary

import (
	"unicode"

	"github.com/go-text/typesetting/segmenter"
)

// WordCounter counts the words of a run of text.
type WordCounter interface {
	CountWords(text []rune) int
}

// Segmenter counts Unicode word segments (UAX #29). A segment is a word
// when it holds a letter or a digit, so punctuation and blanks between
// words are not counted and every ideograph counts on its own.
//
// A Segmenter reuses its buffers and is not safe for concurrent use.
type Segmenter struct {
	seg segmenter.Segmenter
}

// NewSegmenter returns a word counter.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// CountWords implements WordCounter.
func (s *Segmenter) CountWords(text []rune) int {
	if len(text) == 0 {
		return 0
	}
	s.seg.Init(text)
	it := s.seg.WordIterator()
	n := 0
	for it.Next() {
		if isWord(it.Word().Text) {
			n++
		}
	}
	return n
}

func isWord(seg []rune) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// CountFunc adapts a function to WordCounter.
type CountFunc func(text []rune) int

// CountWords implements WordCounter.
func (f CountFunc) CountWords(text []rune) int { return f(text) }
