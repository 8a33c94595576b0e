package document

import (
	"errors"
	"strings"
	"testing"
)

// block draws a single row of height h and estimates est.
func block(name string, h, est float64) Chunk {
	return Chunk{
		Extent: est,
		Render: func(y float64) ([]Element, float64) {
			return []Element{textRow(y, h, cellStyle, full(name, AlignLeft))}, y + h
		},
	}
}

var testGeo = Geometry{Width: 100, Height: 100, Top: 10, Bottom: 80, FooterY: 85, FooterHeight: 5}

func footerCount(p Page) int {
	n := 0
	for _, e := range p.Elements {
		if strings.Contains(e.Text(), "Página") {
			n++
		}
	}
	return n
}

func TestLayoutBreaksBeforeOverflow(t *testing.T) {
	l := NewLayout(testGeo, FooterHook(testGeo, "01/01/2024 00:00:00"))
	if err := l.Begin(block("header", 20, 20)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	head := block("head", 5, 5)
	s := Section{Name: "rows", Repeat: &head}
	for i := 0; i < 20; i++ {
		s.Chunks = append(s.Chunks, block("row", 10, 10))
	}
	if err := l.Place(s); err != nil {
		t.Fatalf("place: %v", err)
	}
	pages, err := l.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	// page 1: 30..80 fits 5 rows; later pages 5 head + 6 rows (15..75)
	if len(pages) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Fatalf("page %d numbered %d", i, p.Number)
		}
		if footerCount(p) != 1 {
			t.Fatalf("page %d expected one footer", p.Number)
		}
		for _, e := range p.Elements {
			if e.Y >= testGeo.FooterY {
				continue
			}
			if e.Bottom() > testGeo.Bottom+epsilon {
				t.Fatalf("page %d element %q crosses bottom at %.1f", p.Number, e.Text(), e.Bottom())
			}
		}
		if i > 0 && p.Elements[0].Text() != "head" {
			t.Fatalf("page %d expected repeated head first, got %q", p.Number, p.Elements[0].Text())
		}
	}
}

func TestLayoutExtentExceeded(t *testing.T) {
	l := NewLayout(testGeo, nil)
	if err := l.Begin(block("header", 10, 10)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	err := l.Place(Section{Name: "liar", Chunks: []Chunk{block("row", 12, 8)}})
	if !errors.Is(err, ErrExtentExceeded) {
		t.Fatalf("expected ErrExtentExceeded, got %v", err)
	}
	if _, err := l.Finish(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected failed layout to refuse finishing, got %v", err)
	}
}

func TestLayoutChunkTooTall(t *testing.T) {
	l := NewLayout(testGeo, nil)
	_ = l.Begin(block("header", 10, 10))
	err := l.Place(Section{Name: "tall", Chunks: []Chunk{block("row", 71, 71)}})
	if !errors.Is(err, ErrChunkTooTall) {
		t.Fatalf("expected ErrChunkTooTall, got %v", err)
	}
}

func TestLayoutMalformedChunk(t *testing.T) {
	cases := map[string]Section{
		"no chunks":   {Name: "empty"},
		"no extent":   {Name: "zero", Chunks: []Chunk{{Render: block("x", 1, 1).Render}}},
		"no renderer": {Name: "nil", Chunks: []Chunk{{Extent: 5}}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			l := NewLayout(testGeo, nil)
			_ = l.Begin(block("header", 10, 10))
			if err := l.Place(s); !errors.Is(err, ErrMalformedSection) {
				t.Fatalf("expected ErrMalformedSection, got %v", err)
			}
		})
	}
}

func TestLayoutFailedHeaderIsTerminal(t *testing.T) {
	l := NewLayout(testGeo, nil)
	if err := l.Begin(block("header", 90, 90)); !errors.Is(err, ErrChunkTooTall) {
		t.Fatalf("expected ErrChunkTooTall, got %v", err)
	}
	if err := l.Place(Section{Name: "after", Chunks: []Chunk{block("x", 1, 1)}}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected place after failed begin to fail, got %v", err)
	}
	if _, err := l.Finish(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected finish after failed begin to fail, got %v", err)
	}
}

func TestLayoutStateMachine(t *testing.T) {
	l := NewLayout(testGeo, nil)
	if err := l.Place(Section{Name: "early", Chunks: []Chunk{block("x", 1, 1)}}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected place before begin to fail, got %v", err)
	}

	l = NewLayout(testGeo, nil)
	if err := l.Begin(block("header", 10, 10)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := l.Begin(block("header", 10, 10)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected second begin to fail, got %v", err)
	}

	l = NewLayout(testGeo, nil)
	_ = l.Begin(block("header", 10, 10))
	if _, err := l.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := l.Finish(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected finish after done to fail, got %v", err)
	}
}

func TestLayoutGapNeverBreaks(t *testing.T) {
	l := NewLayout(testGeo, nil)
	_ = l.Begin(block("header", 60, 60))
	if err := l.Place(Section{Name: "a", Chunks: []Chunk{block("a", 5, 5)}, Gap: 50}); err != nil {
		t.Fatalf("place: %v", err)
	}
	page, y := l.Cursor()
	if page != 0 || y != testGeo.Bottom {
		t.Fatalf("expected cursor clamped on page 0, got page %d y %.1f", page, y)
	}
}
