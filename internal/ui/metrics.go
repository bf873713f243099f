// Package ui provides the display measurements the row builder needs.
package ui

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Metrics reports the display width of characters. Widths are in the
// same unit as the wrap width: pixels for a font, cells for a terminal.
type Metrics interface {
	// RuneWidth returns the width of r. Tabs are expanded by the caller.
	RuneWidth(r rune) int
	// SpaceWidth returns the width of a space, the unit of tab stops.
	SpaceWidth() int
}

// CellMetrics measures characters in fixed cells: one cell for narrow
// characters, two for wide East Asian ones.
type CellMetrics struct {
	cell int
	cond *runewidth.Condition
}

// NewCellMetrics returns cell metrics where a cell is cell units wide.
// With eastAsian set, ambiguous-width characters take two cells.
func NewCellMetrics(cell int, eastAsian bool) *CellMetrics {
	if cell <= 0 {
		cell = 1
	}
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = eastAsian
	return &CellMetrics{cell: cell, cond: cond}
}

// RuneWidth implements Metrics. Control characters are drawn as one
// cell.
func (m *CellMetrics) RuneWidth(r rune) int {
	if r < 0x20 || r == 0x7F {
		return m.cell
	}
	return m.cond.RuneWidth(r) * m.cell
}

// SpaceWidth implements Metrics.
func (m *CellMetrics) SpaceWidth() int { return m.cell }

// FaceMetrics measures characters with the advances of a font face.
type FaceMetrics struct {
	face  font.Face
	space int
	cache map[rune]int
}

// NewFaceMetrics returns metrics for face. A nil face selects
// basicfont.Face7x13.
func NewFaceMetrics(face font.Face) *FaceMetrics {
	if face == nil {
		face = basicfont.Face7x13
	}
	m := &FaceMetrics{face: face, cache: make(map[rune]int)}
	m.space = m.advance(' ')
	if m.space <= 0 {
		m.space = 1
	}
	return m
}

func (m *FaceMetrics) advance(r rune) int {
	adv, ok := m.face.GlyphAdvance(r)
	if !ok {
		return -1
	}
	return adv.Round()
}

// RuneWidth implements Metrics. Characters the face lacks, and wide
// East Asian characters drawn by a narrow fallback glyph, are given one
// space per terminal cell.
func (m *FaceMetrics) RuneWidth(r rune) int {
	if w, ok := m.cache[r]; ok {
		return w
	}
	cells := runewidth.RuneWidth(r)
	if r < 0x20 || r == 0x7F {
		cells = 1
	}
	w := m.advance(r)
	if w < cells*m.space {
		w = cells * m.space
	}
	m.cache[r] = w
	return w
}

// SpaceWidth implements Metrics.
func (m *FaceMetrics) SpaceWidth() int { return m.space }
