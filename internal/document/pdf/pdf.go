// Package pdf realizes a laid-out document as PDF bytes using maroto.
package pdf

import (
	"fmt"

	"financas/internal/document"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Page frame handed to maroto. Element positions are absolute from the
// sheet edge, so rows are offset by the top margin.
const (
	topMargin  = 10
	sideMargin = 20
)

const ContentType = "application/pdf"

var (
	accent = &props.Color{Red: 66, Green: 139, Blue: 202}
	muted  = &props.Color{Red: 128, Green: 128, Blue: 128}
	white  = &props.Color{Red: 255, Green: 255, Blue: 255}
	black  = &props.Color{Red: 0, Green: 0, Blue: 0}
)

// Render draws every page of doc and returns the PDF bytes.
func Render(doc *document.Document) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, fmt.Errorf("render: %w", document.ErrInvalidState)
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Vertical).
		WithLeftMargin(sideMargin).
		WithRightMargin(sideMargin).
		WithTopMargin(topMargin).
		WithTitle(doc.Title, true).
		WithCreationDate(doc.GeneratedAt).
		Build()

	m := maroto.New(cfg)
	for _, p := range doc.Pages {
		m.AddPages(page.New().Add(rows(p)...))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return out.GetBytes(), nil
}

// rows turns positioned elements into maroto's flowing rows, inserting
// blank rows for the vertical gaps between them.
func rows(p document.Page) []core.Row {
	var out []core.Row
	cursor := float64(topMargin)
	for _, e := range p.Elements {
		if gap := e.Y - cursor; gap > 0.01 {
			out = append(out, row.New(gap))
		}
		out = append(out, elementRow(e))
		cursor = e.Bottom()
	}
	return out
}

func elementRow(e document.Element) core.Row {
	if e.Kind == document.KindRule {
		return row.New(e.Height).Add(line.NewCol(document.GridColumns, props.Line{Color: toneColor(e.Style.Tone)}))
	}
	cols := make([]core.Col, 0, len(e.Cells))
	for _, c := range e.Cells {
		if c.Text == "" {
			cols = append(cols, col.New(c.Span))
			continue
		}
		cols = append(cols, text.NewCol(c.Span, c.Text, textProps(e.Style, c.Align)))
	}
	r := row.New(e.Height).Add(cols...)
	if e.Style.Fill {
		r = r.WithStyle(&props.Cell{BackgroundColor: accent})
	}
	return r
}

func textProps(s document.Style, a document.Align) props.Text {
	p := props.Text{
		Top:   1,
		Left:  1,
		Right: 1,
		Size:  s.Size,
		Align: toAlign(a),
		Color: toneColor(s.Tone),
	}
	if s.Bold {
		p.Style = fontstyle.Bold
	}
	return p
}

func toAlign(a document.Align) align.Type {
	switch a {
	case document.AlignCenter:
		return align.Center
	case document.AlignRight:
		return align.Right
	default:
		return align.Left
	}
}

func toneColor(t document.Tone) *props.Color {
	switch t {
	case document.ToneAccent:
		return accent
	case document.ToneMuted:
		return muted
	case document.ToneInverse:
		return white
	default:
		return black
	}
}
