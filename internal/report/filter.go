package report

import (
	"strings"

	"financas/internal/core"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Filter returns a new slice holding the transactions that satisfy every
// predicate of c. The input is never modified and order is preserved.
func Filter(txs []core.Transaction, c Criteria) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	needle := fold(c.search)
	for _, t := range txs {
		if Matches(t, c, needle) {
			out = append(out, t)
		}
	}
	return out
}

// Matches applies the conjunctive predicates to a single transaction.
// needle is the folded search term (see FoldSearch).
func Matches(t core.Transaction, c Criteria, needle string) bool {
	return matchesDate(t, c) &&
		matchesKind(t, c.kind) &&
		matchesCategory(t, c.categoryID) &&
		matchesSearch(t, needle)
}

// An undated record only fails when some bound is actually set.
func matchesDate(t core.Transaction, c Criteria) bool {
	if !c.Bounded() {
		return true
	}
	if !t.HasDate() {
		return false
	}
	if c.bounds.Start != nil && t.Date.Before(*c.bounds.Start) {
		return false
	}
	if c.bounds.End != nil && t.Date.After(*c.bounds.End) {
		return false
	}
	return true
}

func matchesKind(t core.Transaction, kind core.Kind) bool {
	return kind == "" || t.Kind == kind
}

func matchesCategory(t core.Transaction, id string) bool {
	return id == "" || t.CategoryID == id
}

func matchesSearch(t core.Transaction, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(fold(t.Establishment), needle)
}

// FoldSearch prepares a search term for Matches.
func FoldSearch(term string) string {
	return fold(term)
}

func fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// ByKind returns the transactions of one kind; the empty kind keeps all.
func ByKind(txs []core.Transaction, kind core.Kind) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if matchesKind(t, kind) {
			out = append(out, t)
		}
	}
	return out
}
