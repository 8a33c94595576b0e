package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"financas/internal/core"
)

var (
	// ErrBoundsDerived is returned when date bounds are set explicitly on a
	// non-custom period.
	ErrBoundsDerived = errors.New("date bounds are derived from the period")
	ErrInvertedRange = errors.New("start date is after end date")
)

// Criteria is the immutable filter passed into the pipeline
// on every invocation. Use the With* methods to derive modified copies.
type Criteria struct {
	period     Period
	bounds     Range
	kind       core.Kind
	categoryID string
	search     string
}

// NewCriteria builds criteria for period, deriving the bounds from now.
// A Custom period starts unbounded on both sides.
func NewCriteria(period Period, now time.Time) (Criteria, error) {
	return Criteria{}.WithPeriod(period, now)
}

// WithPeriod switches the period. Non-custom periods re-derive the bounds;
// switching to Custom keeps the bounds already set.
func (c Criteria) WithPeriod(period Period, now time.Time) (Criteria, error) {
	bounds, err := Resolve(period, now, c.bounds)
	if err != nil {
		return c, err
	}
	c.period = period
	c.bounds = bounds
	return c, nil
}

// WithRange sets free-form bounds. Only valid for the Custom period.
func (c Criteria) WithRange(start, end *core.Date) (Criteria, error) {
	if c.period != Custom {
		return c, fmt.Errorf("%w: period %q", ErrBoundsDerived, c.period)
	}
	if start != nil && end != nil && start.After(*end) {
		return c, ErrInvertedRange
	}
	c.bounds = Range{Start: copyDate(start), End: copyDate(end)}
	return c, nil
}

// WithKind restricts to one kind; the empty kind matches both.
func (c Criteria) WithKind(kind core.Kind) (Criteria, error) {
	if kind != "" && !kind.IsValid() {
		return c, core.ErrInvalidKind
	}
	c.kind = kind
	return c, nil
}

// WithCategory restricts to one category reference; empty matches all.
func (c Criteria) WithCategory(id string) Criteria {
	c.categoryID = strings.TrimSpace(id)
	return c
}

// WithSearch sets the establishment search term used by list views.
func (c Criteria) WithSearch(term string) Criteria {
	c.search = strings.TrimSpace(term)
	return c
}

func (c Criteria) Period() Period     { return c.period }
func (c Criteria) Kind() core.Kind    { return c.kind }
func (c Criteria) CategoryID() string { return c.categoryID }
func (c Criteria) Search() string     { return c.search }

// Start returns the lower bound, or nil when unbounded.
func (c Criteria) Start() *core.Date { return copyDate(c.bounds.Start) }

// End returns the upper bound, or nil when unbounded.
func (c Criteria) End() *core.Date { return copyDate(c.bounds.End) }

// Bounded reports whether at least one date bound is set.
func (c Criteria) Bounded() bool {
	return c.bounds.Start != nil || c.bounds.End != nil
}

func copyDate(d *core.Date) *core.Date {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
