package report

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"financas/internal/core"
)

func date(y, m, d int) *core.Date {
	v := core.NewDate(y, m, d)
	return &v
}

func tx(id int64, kind core.Kind, cents int64, d *core.Date, catID, catName string) core.Transaction {
	return core.Transaction{
		ID:           id,
		Kind:         kind,
		Amount:       core.MoneyFromCents(cents),
		Date:         d,
		CategoryID:   catID,
		CategoryName: catName,
	}
}

func TestResolvePeriods(t *testing.T) {
	now := time.Date(2024, 2, 15, 18, 30, 0, 0, time.UTC)
	cases := []struct {
		period     Period
		start, end string
	}{
		{Day, "2024-02-15", "2024-02-15"},
		{Month, "2024-02-01", "2024-02-29"},
		{Year, "2024-01-01", "2024-12-31"},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			r, err := Resolve(tc.period, now, Range{})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if r.Start.ISO() != tc.start || r.End.ISO() != tc.end {
				t.Fatalf("expected %s..%s, got %s..%s", tc.start, tc.end, r.Start.ISO(), r.End.ISO())
			}
		})
	}
}

func TestResolveMonthLengths(t *testing.T) {
	cases := map[string]time.Time{
		"2023-02-28": time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
		"2024-04-30": time.Date(2024, 4, 30, 23, 59, 0, 0, time.UTC),
		"2024-12-31": time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		"2024-01-31": time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	for want, now := range cases {
		r := MonthResolver{}.Resolve(now)
		if r.End.ISO() != want {
			t.Errorf("now=%s expected end %s, got %s", now.Format(time.RFC3339), want, r.End.ISO())
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	a, _ := Resolve(Month, now, Range{})
	b, _ := Resolve(Month, now, Range{})
	if !a.Start.Equal(*b.Start) || !a.End.Equal(*b.End) {
		t.Fatalf("expected identical bounds, got %v and %v", a, b)
	}
}

func TestResolveCustomKeepsBounds(t *testing.T) {
	current := Range{Start: date(2024, 1, 5)}
	r, err := Resolve(Custom, time.Now(), current)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Start == nil || r.Start.ISO() != "2024-01-05" || r.End != nil {
		t.Fatalf("expected bounds unchanged, got %+v", r)
	}
	if _, err := Resolve("week", time.Now(), Range{}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod(""); err != nil || p != Month {
		t.Fatalf("expected month default, got %q %v", p, err)
	}
	if p, err := ParsePeriod(" YEAR "); err != nil || p != Year {
		t.Fatalf("expected year, got %q %v", p, err)
	}
	if _, err := ParsePeriod("quarter"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCriteriaBoundsAreDerived(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	c, err := NewCriteria(Month, now)
	if err != nil {
		t.Fatalf("criteria: %v", err)
	}
	if _, err := c.WithRange(date(2024, 1, 1), nil); !errors.Is(err, ErrBoundsDerived) {
		t.Fatalf("expected ErrBoundsDerived, got %v", err)
	}

	custom, err := c.WithPeriod(Custom, now)
	if err != nil {
		t.Fatalf("custom: %v", err)
	}
	if custom.Start().ISO() != "2024-03-01" {
		t.Fatalf("switching to custom should keep the derived bounds, got %v", custom.Start())
	}
	custom, err = custom.WithRange(nil, nil)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if custom.Bounded() {
		t.Fatalf("expected unbounded criteria")
	}
	if _, err := custom.WithRange(date(2024, 5, 1), date(2024, 4, 1)); !errors.Is(err, ErrInvertedRange) {
		t.Fatalf("expected ErrInvertedRange, got %v", err)
	}
	// original value untouched
	if c.Period() != Month || c.Start().ISO() != "2024-03-01" {
		t.Fatalf("criteria must be immutable")
	}
}

func TestCriteriaStartReturnsCopy(t *testing.T) {
	c, _ := NewCriteria(Day, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	s := c.Start()
	*s = core.NewDate(1999, 1, 1)
	if c.Start().ISO() != "2024-03-10" {
		t.Fatalf("accessor leaked internal state")
	}
}

func TestCriteriaWithKindRejectsUnknown(t *testing.T) {
	c, _ := NewCriteria(Custom, time.Now())
	if _, err := c.WithKind("transfer"); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestScenarioMonthSummary(t *testing.T) {
	txs := []core.Transaction{
		tx(1, core.Income, 10000, date(2024, 3, 1), "c1", "Salary"),
		tx(2, core.Expense, 4000, date(2024, 3, 5), "c2", "Food"),
		tx(3, core.Expense, 999, date(2024, 4, 1), "c2", "Food"),
	}
	c, _ := NewCriteria(Month, time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	s := Aggregate(Filter(txs, c))

	if !s.TotalIncome.Equal(core.MoneyFromCents(10000)) ||
		!s.TotalExpense.Equal(core.MoneyFromCents(4000)) ||
		!s.NetBalance().Equal(core.MoneyFromCents(6000)) ||
		s.Count != 2 {
		t.Fatalf("unexpected summary: income=%s expense=%s net=%s count=%d",
			s.TotalIncome, s.TotalExpense, s.NetBalance(), s.Count)
	}
}

func TestScenarioUndatedRecords(t *testing.T) {
	txs := []core.Transaction{
		tx(1, core.Income, 100, nil, "c1", ""),
		tx(2, core.Income, 100, date(2024, 3, 2), "c1", ""),
	}
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	month, _ := NewCriteria(Month, now)
	if got := Filter(txs, month); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected undated record excluded under month, got %+v", got)
	}

	custom, _ := NewCriteria(Custom, now)
	if got := Filter(txs, custom); len(got) != 2 {
		t.Fatalf("expected undated record kept with empty bounds, got %d", len(got))
	}

	half, _ := custom.WithRange(date(2024, 1, 1), nil)
	if got := Filter(txs, half); len(got) != 1 {
		t.Fatalf("expected undated record excluded with one bound, got %d", len(got))
	}
}

func TestFilterPredicatesAreConjunctive(t *testing.T) {
	txs := []core.Transaction{
		{ID: 1, Kind: core.Expense, CategoryID: "food", Establishment: "Padaria São João", Date: date(2024, 3, 1)},
		{ID: 2, Kind: core.Expense, CategoryID: "food", Establishment: "Mercado Central", Date: date(2024, 3, 2)},
		{ID: 3, Kind: core.Income, CategoryID: "food", Establishment: "PADARIA são joão", Date: date(2024, 3, 3)},
		{ID: 4, Kind: core.Expense, CategoryID: "home", Establishment: "Padaria", Date: date(2024, 3, 4)},
	}
	c, _ := NewCriteria(Custom, time.Now())
	c, _ = c.WithKind(core.Expense)
	c = c.WithCategory("food").WithSearch("padaria SÃO")

	got := Filter(txs, c)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only record 1, got %+v", got)
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	txs := []core.Transaction{
		tx(1, core.Income, 100, date(2024, 3, 1), "c1", ""),
		tx(2, core.Expense, 100, date(2024, 3, 1), "c1", ""),
	}
	c, _ := NewCriteria(Custom, time.Now())
	c, _ = c.WithKind(core.Income)
	out := Filter(txs, c)
	out[0].ID = 99
	if txs[0].ID != 1 || len(txs) != 2 {
		t.Fatalf("input was modified")
	}
}

func randomSet(r *rand.Rand, n int) []core.Transaction {
	cats := []string{"Moradia", "Lazer", "", "Saúde", "Alimentação"}
	out := make([]core.Transaction, n)
	for i := range out {
		kind := core.Income
		if r.Intn(2) == 0 {
			kind = core.Expense
		}
		var d *core.Date
		if r.Intn(10) > 0 {
			d = date(2024, 1+r.Intn(12), 1+r.Intn(28))
		}
		out[i] = tx(int64(i+1), kind, r.Int63n(500000), d, "c", cats[r.Intn(len(cats))])
	}
	return out
}

func TestAggregateProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	for _, p := range []Period{Day, Month, Year, Custom} {
		t.Run(string(p), func(t *testing.T) {
			txs := randomSet(r, 300)
			c, _ := NewCriteria(p, now)
			s := Aggregate(Filter(txs, c))

			if !s.TotalIncome.Sub(s.TotalExpense).Equal(s.NetBalance()) {
				t.Fatalf("net balance mismatch")
			}
			inc, exp := core.Zero, core.Zero
			for name, b := range s.ByCategory {
				inc = inc.Add(b.Income)
				exp = exp.Add(b.Expense)
				if !b.Net.Equal(b.Income.Sub(b.Expense)) {
					t.Fatalf("bucket %q net mismatch", name)
				}
			}
			if !inc.Equal(s.TotalIncome) || !exp.Equal(s.TotalExpense) {
				t.Fatalf("partition incomplete: %s/%s vs %s/%s", inc, exp, s.TotalIncome, s.TotalExpense)
			}
		})
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	txs := randomSet(r, 200)
	c, _ := NewCriteria(Year, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	want := Aggregate(Filter(txs, c))

	shuffled := append([]core.Transaction(nil), txs...)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	filtered := Filter(shuffled, c)
	got := Aggregate(filtered)

	if got.Count != want.Count || !got.TotalIncome.Equal(want.TotalIncome) || !got.TotalExpense.Equal(want.TotalExpense) {
		t.Fatalf("aggregate depends on order")
	}
	ids := map[int64]bool{}
	for _, tr := range Filter(txs, c) {
		ids[tr.ID] = true
	}
	for _, f := range filtered {
		if !ids[f.ID] {
			t.Fatalf("filtered set differs after shuffle")
		}
	}
	for name, b := range want.ByCategory {
		if !got.ByCategory[name].Net.Equal(b.Net) {
			t.Fatalf("bucket %q differs after shuffle", name)
		}
	}
}

func TestAggregateUncategorizedBucket(t *testing.T) {
	s := Aggregate([]core.Transaction{
		tx(1, core.Expense, 500, nil, "missing", ""),
		tx(2, core.Income, 700, nil, "missing", "  "),
	})
	b, ok := s.ByCategory[core.UncategorizedName]
	if !ok || !b.Income.Equal(core.MoneyFromCents(700)) || !b.Expense.Equal(core.MoneyFromCents(500)) {
		t.Fatalf("expected uncategorized bucket, got %+v", s.ByCategory)
	}
}

func TestAggregateChartUsesMagnitudes(t *testing.T) {
	s := Aggregate([]core.Transaction{
		tx(1, core.Income, 1000, nil, "c", "A"),
		tx(2, core.Expense, 250, nil, "c", "A"),
	})
	chart := s.Chart()
	if len(chart) != 2 || chart[0].Name != core.ChartIncome || chart[1].Name != core.ChartExpense {
		t.Fatalf("unexpected chart %+v", chart)
	}
	if chart[1].Value.String() != "2.50" {
		t.Fatalf("expected expense magnitude 2.50, got %s", chart[1].Value)
	}
}

func TestCategoryRowsOrderingAndActivity(t *testing.T) {
	s := Aggregate([]core.Transaction{
		tx(1, core.Expense, 100, nil, "c", "Saúde"),
		tx(2, core.Expense, 100, nil, "c", "alimentação"),
		tx(3, core.Income, 100, nil, "c", "Salário"),
		tx(4, core.Expense, 100, nil, "c", "Água"),
	})
	rows := CategoryRows(s, "")
	want := []string{"Água", "alimentação", "Salário", "Saúde"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("row %d expected %q, got %q", i, name, rows[i].Name)
		}
	}
	if got := CategoryRows(s, core.Income); len(got) != 1 || got[0].Name != "Salário" {
		t.Fatalf("expected only income buckets, got %+v", got)
	}
}
