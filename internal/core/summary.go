package core

// Chart series names used by the type distribution dataset.
const (
	ChartIncome  = "Receitas"
	ChartExpense = "Despesas"
)

// CategoryTotals is the per-category breakdown of a summary.
type CategoryTotals struct {
	Income  Money
	Expense Money
	Net     Money
}

// HasActivity reports whether any amount was accumulated for the kinds
// allowed by the given filter ("" allows both).
func (c CategoryTotals) HasActivity(kind Kind) bool {
	switch kind {
	case Income:
		return !c.Income.IsZero()
	case Expense:
		return !c.Expense.IsZero()
	default:
		return !c.Income.IsZero() || !c.Expense.IsZero()
	}
}

// ChartPoint is one entry of the type distribution dataset.
type ChartPoint struct {
	Name  string
	Kind  Kind
	Value Money
}

// Summary is the full aggregate of a filtered transaction set. It is
// rebuilt from scratch on every filter change.
type Summary struct {
	TotalIncome  Money
	TotalExpense Money
	ByCategory   map[string]CategoryTotals
	Count        int
}

// NetBalance is derived on every call, never stored.
func (s Summary) NetBalance() Money {
	return s.TotalIncome.Sub(s.TotalExpense)
}

// Chart returns the two-entry type distribution dataset. Expense is
// reported as a magnitude.
func (s Summary) Chart() []ChartPoint {
	return []ChartPoint{
		{Name: ChartIncome, Kind: Income, Value: s.TotalIncome},
		{Name: ChartExpense, Kind: Expense, Value: s.TotalExpense.Abs()},
	}
}
