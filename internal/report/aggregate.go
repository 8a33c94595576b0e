package report

import (
	"sort"

	"financas/internal/core"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Aggregate reduces a filtered set into a Summary in a single pass.
// Records without a resolvable category land in the uncategorized bucket.
func Aggregate(txs []core.Transaction) core.Summary {
	s := core.Summary{
		TotalIncome:  core.Zero,
		TotalExpense: core.Zero,
		ByCategory:   make(map[string]core.CategoryTotals),
		Count:        len(txs),
	}
	for _, t := range txs {
		name := t.DisplayCategory()
		bucket, ok := s.ByCategory[name]
		if !ok {
			bucket = core.CategoryTotals{Income: core.Zero, Expense: core.Zero, Net: core.Zero}
		}
		switch t.Kind {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			bucket.Income = bucket.Income.Add(t.Amount)
		case core.Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			bucket.Expense = bucket.Expense.Add(t.Amount)
		}
		bucket.Net = bucket.Income.Sub(bucket.Expense)
		s.ByCategory[name] = bucket
	}
	return s
}

// CategoryRow is one named bucket of a summary.
type CategoryRow struct {
	Name string
	core.CategoryTotals
}

// CategoryRows returns the buckets with activity for kind ("" for both),
// ordered by pt-BR collation so accented names sort where readers expect.
func CategoryRows(s core.Summary, kind core.Kind) []CategoryRow {
	names := make([]string, 0, len(s.ByCategory))
	for name, totals := range s.ByCategory {
		if totals.HasActivity(kind) {
			names = append(names, name)
		}
	}
	SortNames(names)

	rows := make([]CategoryRow, len(names))
	for i, name := range names {
		rows[i] = CategoryRow{Name: name, CategoryTotals: s.ByCategory[name]}
	}
	return rows
}

// SortNames sorts display names in pt-BR collation order, falling back to
// byte order for names the collator ranks equal.
func SortNames(names []string) {
	c := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(names, func(i, j int) bool {
		if r := c.CompareString(names[i], names[j]); r != 0 {
			return r < 0
		}
		return names[i] < names[j]
	})
}

// SortCategories orders categories by name the same way as CategoryRows.
func SortCategories(cats []core.Category) {
	c := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(cats, func(i, j int) bool {
		if r := c.CompareString(cats[i].Name, cats[j].Name); r != 0 {
			return r < 0
		}
		return cats[i].Name < cats[j].Name
	})
}
