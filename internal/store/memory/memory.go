package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"financas/internal/core"
	"financas/internal/store"
)

var (
	_ store.TransactionReader = (*Store)(nil)
	_ store.CategoryReader    = (*Store)(nil)
)

type Store struct {
	mu    sync.Mutex
	cats  []core.Category
	items []core.Transaction
}

func New(cats []core.Category, txs []core.Transaction) *Store {
	s := &Store{cats: dedupeCategories(cats)}
	s.items = append(s.items, txs...)
	return s
}

// NewFromFiles seeds the store from seed_categories.csv and
// seed_transactions.csv under base. Missing files leave the store empty;
// unparsable rows are skipped with a warning.
func NewFromFiles(base string) *Store {
	var cats []core.Category
	for _, row := range readRows(filepath.Join(base, "seed_categories.csv")) {
		c, err := store.CategoryFromRow(row)
		if err != nil {
			slog.Warn("Skipping seed category", "error", err)
			continue
		}
		cats = append(cats, c)
	}
	var txs []core.Transaction
	for _, row := range readRows(filepath.Join(base, "seed_transactions.csv")) {
		t, err := store.TransactionFromRow(row)
		if err != nil {
			slog.Warn("Skipping seed transaction", "error", err)
			continue
		}
		txs = append(txs, t)
	}
	return New(cats, txs)
}

// Add stores a transaction after validating it.
func (s *Store) Add(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = int64(len(s.items) + 1)
	}
	s.items = append(s.items, t)
	return nil
}

// ListTransactions returns a private copy of the user's matching records.
func (s *Store) ListTransactions(_ context.Context, userID string, q store.Query) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, t := range s.items {
		if t.UserID != userID || !q.Matches(t) {
			continue
		}
		out = append(out, t)
	}
	store.SortNewestFirst(out)
	return out, nil
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.cats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func readRows(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("Stopping seed read", "path", path, "error", err)
			break
		}
		out = append(out, rec)
	}
	return out
}

// dedupeCategories keeps the first category seen for each ID.
func dedupeCategories(in []core.Category) []core.Category {
	seen := map[string]struct{}{}
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
