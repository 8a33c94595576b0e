// Package store declares the read ports the reporting pipeline pulls its
// snapshots from, plus helpers shared by the adapters.
package store

import (
	"context"
	"sort"

	"financas/internal/core"
	"financas/internal/report"
)

// Ports for outbound adapters.
type (
	// TransactionReader returns a user's transactions narrowed server-side
	// by q, newest first.
	TransactionReader interface {
		ListTransactions(ctx context.Context, userID string, q Query) ([]core.Transaction, error)
	}

	// CategoryReader returns the categories a user may reference.
	CategoryReader interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	}

	// Reader is what a data backend must provide to feed a report.
	Reader interface {
		TransactionReader
		CategoryReader
	}
)

// Query carries the predicates a store can apply before returning rows.
// A nil bound and an empty field mean no restriction.
type Query struct {
	Start      *core.Date
	End        *core.Date
	Kind       core.Kind
	CategoryID string
}

// QueryFor extracts the store-side predicates of a criteria value. The
// establishment search is always applied in memory.
func QueryFor(c report.Criteria) Query {
	return Query{
		Start:      c.Start(),
		End:        c.End(),
		Kind:       c.Kind(),
		CategoryID: c.CategoryID(),
	}
}

// Bounded reports whether a date bound is set.
func (q Query) Bounded() bool {
	return q.Start != nil || q.End != nil
}

// Matches applies q to a single transaction, with the same undated rule
// as the in-memory filter.
func (q Query) Matches(t core.Transaction) bool {
	if q.Bounded() {
		if !t.HasDate() {
			return false
		}
		if q.Start != nil && t.Date.Before(*q.Start) {
			return false
		}
		if q.End != nil && t.Date.After(*q.End) {
			return false
		}
	}
	if q.Kind != "" && t.Kind != q.Kind {
		return false
	}
	if q.CategoryID != "" && t.CategoryID != q.CategoryID {
		return false
	}
	return true
}

// SortNewestFirst orders by nominal date descending, undated records last,
// ties broken by descending ID.
func SortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		switch {
		case a.HasDate() && !b.HasDate():
			return true
		case !a.HasDate() && b.HasDate():
			return false
		case a.HasDate() && b.HasDate() && !a.Date.Equal(*b.Date):
			return a.Date.After(*b.Date)
		}
		return a.ID > b.ID
	})
}
