// Package document lays out a financial report as a sequence of fixed-size
// pages. It decides what to draw and where; realizing the pages on a
// concrete surface is left to a renderer such as document/pdf.
package document

import "time"

// Align is the horizontal alignment of a cell.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Tone selects the palette entry a renderer uses for text.
type Tone int

const (
	ToneBody Tone = iota
	ToneAccent
	ToneMuted
	ToneInverse
)

// ElementKind distinguishes cell rows from horizontal rules.
type ElementKind int

const (
	KindRow ElementKind = iota
	KindRule
)

// GridColumns is the width of the layout grid; cell spans add up to it.
const GridColumns = 12

type (
	Style struct {
		Size float64
		Bold bool
		Tone Tone
		Fill bool // accent background, used by table heads
	}

	Cell struct {
		Text  string
		Span  int
		Align Align
	}

	// Element is one drawn band of a page. Y and Height are in millimetres
	// from the top edge of the sheet.
	Element struct {
		Kind   ElementKind
		Y      float64
		Height float64
		Cells  []Cell
		Style  Style
	}

	Page struct {
		Number   int
		Elements []Element
	}

	// Document is the finished, addressable artifact of one export.
	Document struct {
		FileName    string
		Title       string
		GeneratedAt time.Time
		Geometry    Geometry
		Sections    []string
		Pages       []Page
	}
)

// Bottom returns the lowest edge occupied by the element.
func (e Element) Bottom() float64 {
	return e.Y + e.Height
}

// Text concatenates the cell texts of an element, for inspection.
func (e Element) Text() string {
	var s string
	for i, c := range e.Cells {
		if i > 0 {
			s += " | "
		}
		s += c.Text
	}
	return s
}

// PageCount returns the number of physical pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}
