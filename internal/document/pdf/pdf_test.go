package pdf

import (
	"bytes"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/document"
	"financas/internal/report"
)

func TestRenderProducesPDF(t *testing.T) {
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	c, _ := report.NewCriteria(report.Month, now)
	d := core.NewDate(2024, 3, 2)
	txs := []core.Transaction{
		{ID: 1, Kind: core.Income, Amount: core.MoneyFromCents(150000), Date: &d, CategoryName: "Salário"},
		{ID: 2, Kind: core.Expense, Amount: core.MoneyFromCents(3990), Date: &d, Establishment: "Padaria"},
	}
	doc, err := document.Build(document.Input{
		Transactions: txs,
		Summary:      report.Aggregate(txs),
		Criteria:     c,
		Options:      document.DefaultOptions(),
		UserLabel:    "ana@example.com",
		GeneratedAt:  now,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", out[:min(8, len(out))])
	}
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	if _, err := Render(&document.Document{}); err == nil {
		t.Fatalf("expected error for document without pages")
	}
}

func TestRowsFillGaps(t *testing.T) {
	p := document.Page{Elements: []document.Element{
		{Y: 20, Height: 10, Cells: []document.Cell{{Text: "a", Span: 12}}},
		{Y: 40, Height: 5, Cells: []document.Cell{{Text: "b", Span: 12}}},
	}}
	got := rows(p)
	// spacer, a, spacer, b
	if len(got) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(got))
	}
}
