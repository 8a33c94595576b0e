package document

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/report"

	"github.com/dustin/go-humanize"
)

const (
	TimestampLayout = "02/01/2006 15:04:05"
	DateLayout      = "02/01/2006"
)

// Currency renders m as "R$ 1.234,56", with a leading minus for negatives.
// Grouping works on the exact decimal digits.
func Currency(m core.Money) string {
	fixed := m.Abs().Decimal().StringFixed(2)
	units, cents := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	grouped := units
	if n, ok := new(big.Int).SetString(units, 10); ok {
		grouped = strings.ReplaceAll(humanize.BigComma(n), ",", ".")
	}
	s := "R$ " + grouped + "," + cents
	if m.IsNegative() {
		return "-" + s
	}
	return s
}

// SignedCurrency renders a transaction amount with its kind as prefix.
// The magnitude is always used so the sign never doubles up.
func SignedCurrency(t core.Transaction) string {
	prefix := "-"
	if t.Kind == core.Income {
		prefix = "+"
	}
	return prefix + Currency(t.Amount.Abs())
}

// Percent returns part/total as a percentage with one fraction digit.
func Percent(part, total core.Money) string {
	if !total.IsPositive() {
		return "0.0"
	}
	return part.Decimal().Div(total.Decimal()).Shift(2).Round(1).StringFixed(1)
}

func DateText(d *core.Date) string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.Format(DateLayout)
}

func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// PeriodLabel describes the criteria period as shown in the report header.
func PeriodLabel(c report.Criteria) string {
	switch c.Period() {
	case report.Day:
		return "Hoje"
	case report.Month:
		return "Este Mês"
	case report.Year:
		return "Este Ano"
	case report.Custom:
		start, end := c.Start(), c.End()
		if start != nil && end != nil {
			return fmt.Sprintf("%s - %s", DateText(start), DateText(end))
		}
		return "Período Personalizado"
	default:
		return "Todos os Períodos"
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
