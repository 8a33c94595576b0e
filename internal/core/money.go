// Package core provides money parsing and handling utilities.
//
// Money wraps a decimal so that totals over many records do not pick up
// binary floating-point drift. Amounts are parsed from the store's textual
// or floating representations and rounded to cents on the way in.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

type Money struct {
	amount decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{amount: decimal.Zero}

// MoneyFromCents builds an exact amount from minor units.
func MoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -2)}
}

// MoneyFromFloat converts a store-provided double, rounding to cents.
func MoneyFromFloat(f float64) Money {
	return Money{amount: decimal.NewFromFloat(f).Round(2)}
}

// ParseMoney converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding to cents. Thousands separators are not accepted.
// Negative values are rejected; the sign of a transaction is carried by its Kind.
//
// Examples:
//
//	ParseMoney("12.34") -> 12.34
//	ParseMoney("12,345") -> 12.35
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{amount: d.Round(2)}, nil
}

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

func (m Money) Sub(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount)}
}

func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs()}
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

// Decimal exposes the underlying value for formatting and ratios.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Cents returns the amount in minor units, rounding half away from zero.
func (m Money) Cents() int64 {
	return m.amount.Shift(2).Round(0).IntPart()
}

// String renders the amount with exactly two fraction digits and a dot separator.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// MarshalJSON renders the amount as a fixed two-digit JSON string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}
