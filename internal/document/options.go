package document

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"financas/internal/core"
)

// KindFilter restricts an export to one kind of transaction.
type KindFilter string

const (
	KindAll     KindFilter = "all"
	KindIncome  KindFilter = KindFilter(core.Income)
	KindExpense KindFilter = KindFilter(core.Expense)
)

var ErrInvalidOptions = errors.New("invalid export options")

// ParseKindFilter accepts "all" (or empty) and any kind core.ParseKind accepts.
func ParseKindFilter(s string) (KindFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(KindAll)) {
		return KindAll, nil
	}
	k, err := core.ParseKind(s)
	if err != nil {
		return "", fmt.Errorf("%w: kind filter %q", ErrInvalidOptions, s)
	}
	return KindFilter(k), nil
}

// Kind returns the single kind selected, or "" for all.
func (k KindFilter) Kind() core.Kind {
	if k == KindAll {
		return ""
	}
	return core.Kind(k)
}

func (k KindFilter) Allows(kind core.Kind) bool {
	return k == KindAll || core.Kind(k) == kind
}

func (k KindFilter) Label() string {
	switch k {
	case KindIncome:
		return "Somente Receitas"
	case KindExpense:
		return "Somente Despesas"
	default:
		return "Todas as Transações"
	}
}

// Options selects which sections an export carries.
type Options struct {
	IncludeCharts  bool       `json:"includeCharts"`
	IncludeSummary bool       `json:"includeSummary"`
	IncludeDetails bool       `json:"includeDetails"`
	KindFilter     KindFilter `json:"kindFilter"`
}

// DefaultOptions includes every section for both kinds.
func DefaultOptions() Options {
	return Options{
		IncludeCharts:  true,
		IncludeSummary: true,
		IncludeDetails: true,
		KindFilter:     KindAll,
	}
}

func (o Options) Validate() error {
	switch o.KindFilter {
	case KindAll, KindIncome, KindExpense:
		return nil
	default:
		return fmt.Errorf("%w: kind filter %q", ErrInvalidOptions, o.KindFilter)
	}
}

// FileName is derived from the kind filter and the generation date only, so
// re-exporting the same day yields the same name.
func FileName(k KindFilter, generatedAt time.Time) string {
	label := string(k)
	if k == KindAll || k == "" {
		label = "completo"
	}
	return fmt.Sprintf("relatorio-financeiro-%s-%s.pdf", label, generatedAt.UTC().Format("2006-01-02"))
}
