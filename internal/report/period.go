// Package report implements the reporting pipeline over in-memory
// transaction snapshots: period resolution, filtering and aggregation.
//
// This file implements the Strategy Pattern for period resolution. Each
// coarse period (day, month, year) has its own resolver that maps a
// reference instant to an inclusive calendar-date range.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"financas/internal/core"
)

const (
	Day    Period = "day"
	Month  Period = "month"
	Year   Period = "year"
	Custom Period = "custom"
)

// Period is a coarse time-window selector.
type Period string

var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod defaults to Month for an empty selector.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Month, nil
	case Day, Month, Year, Custom:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Range is an inclusive calendar-date range. A nil bound is unbounded.
type Range struct {
	Start *core.Date
	End   *core.Date
}

// PeriodResolver is the strategy interface for deriving date bounds.
type PeriodResolver interface {
	// Resolve returns the inclusive range containing now's calendar date.
	Resolve(now time.Time) Range
}

// DayResolver resolves to now's calendar date only.
type DayResolver struct{}

func (DayResolver) Resolve(now time.Time) Range {
	d := core.DateOf(now)
	return bounded(d, d)
}

// MonthResolver spans the first to the last calendar day of now's month.
type MonthResolver struct{}

func (MonthResolver) Resolve(now time.Time) Range {
	y, m, _ := now.Date()
	start := core.NewDate(y, int(m), 1)
	// day 0 of the following month normalizes to the last day of this one
	end := core.NewDate(y, int(m)+1, 0)
	return bounded(start, end)
}

// YearResolver spans Jan 1 to Dec 31 of now's year.
type YearResolver struct{}

func (YearResolver) Resolve(now time.Time) Range {
	y := now.Year()
	return bounded(core.NewDate(y, 1, 1), core.NewDate(y, 12, 31))
}

func bounded(start, end core.Date) Range {
	return Range{Start: &start, End: &end}
}

// periodResolvers maps periods to their resolvers. Custom has no entry:
// its bounds are whatever the caller already set.
var periodResolvers = map[Period]PeriodResolver{
	Day:   DayResolver{},
	Month: MonthResolver{},
	Year:  YearResolver{},
}

// Resolve derives the bounds for period at now. For Custom it returns
// current unchanged.
func Resolve(period Period, now time.Time, current Range) (Range, error) {
	if period == Custom {
		return current, nil
	}
	r, ok := periodResolvers[period]
	if !ok {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	return r.Resolve(now), nil
}
