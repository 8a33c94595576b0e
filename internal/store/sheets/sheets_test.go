package sheets

import (
	"context"
	"errors"
	"testing"

	"financas/internal/core"
	"financas/internal/store"
)

type fakeValues map[string][][]interface{}

func (f fakeValues) Values(_ context.Context, rng string) ([][]interface{}, error) {
	v, ok := f[rng]
	if !ok {
		return nil, errors.New("range not found: " + rng)
	}
	return v, nil
}

func TestParseTransactions(t *testing.T) {
	values := [][]interface{}{
		{"1", "2024-03-01T10:00:00Z", "2024-03-01", "Empresa", "1.500,00", "", "receita", "c1", "u1"},
		{"2", "", "", "Padaria", "12,50", "pão", "despesa", "c2", "u1"},
		{},
		{"x", "", "", "", "1", "", "despesa", "c2", "u1"},
		{"3", "", "2024-03-02", "Feira", "30", "", "despesa", "c2"},
	}
	got, skipped := parseTransactions(values)
	// "1.500,00" has a thousands separator and is rejected
	if len(got) != 2 || skipped != 2 {
		t.Fatalf("expected 2 parsed and 2 skipped, got %d/%d", len(got), skipped)
	}
	if got[0].ID != 2 || got[0].HasDate() || got[0].Amount.Cents() != 1250 {
		t.Fatalf("unexpected first row %+v", got[0])
	}
	if got[1].UserID != "" {
		t.Fatalf("expected trimmed trailing cell to read as empty user")
	}
}

func TestClientListsByUserAndQuery(t *testing.T) {
	c := newClient(fakeValues{
		DefaultTransactionsRange: {
			{"1", "", "2024-03-01", "A", "10", "", "receita", "c1", "u1"},
			{"2", "", "2024-03-08", "B", "20", "", "despesa", "c1", "u1"},
			{"3", "", "2024-03-09", "C", "30", "", "despesa", "c1", "u2"},
		},
		DefaultCategoriesRange: {
			{"c1", "Lazer", "cinema", "u1"},
			{"c2", "Outra", "", "u2"},
			{"", "Sem id"},
		},
	}, Config{})
	ctx := context.Background()

	txs, err := c.ListTransactions(ctx, "u1", store.Query{Kind: core.Expense})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != 2 {
		t.Fatalf("unexpected transactions %+v", txs)
	}
	cats, err := c.ListCategories(ctx, "u1")
	if err != nil || len(cats) != 1 || cats[0].Tags[0] != "cinema" {
		t.Fatalf("unexpected categories %+v err=%v", cats, err)
	}
}

func TestClientPropagatesReadErrors(t *testing.T) {
	c := newClient(fakeValues{}, Config{TransactionsRange: "Outra!A:I"})
	if _, err := c.ListTransactions(context.Background(), "u1", store.Query{}); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing spreadsheet id")
	}
}
