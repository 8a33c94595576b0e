package core

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Income and Expense carry the wire values used by the transaction store.
	Income  Kind = "receita"
	Expense Kind = "despesa"
)

// UncategorizedName is the display bucket for records whose category
// cannot be resolved.
const UncategorizedName = "Sem categoria"

const dateLayout = "2006-01-02"

// MaxUserIDLen bounds identities accepted from the proxy and the queue.
const MaxUserIDLen = 128

type (
	// Kind is the polarity of a transaction.
	Kind string

	// Date is a calendar date without time-of-day, always stored at UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is a read-only financial fact supplied by a store.
	Transaction struct {
		ID            int64
		CreatedAt     time.Time
		Date          *Date // nil when the record carries no nominal date
		Establishment string
		Amount        Money // magnitude; the sign is carried by Kind
		Details       string
		Kind          Kind
		CategoryID    string
		CategoryName  string // resolved display name, empty when unknown
		UserID        string
	}

	Category struct {
		ID     string
		Name   string
		Tags   []string
		UserID string
	}
)

var (
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyCategoryID = errors.New("empty category reference")
	ErrNegativeAmount  = errors.New("negative amount")
)

// ParseKind accepts the wire values and their English aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receita", "income":
		return Income, nil
	case "despesa", "expense":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

// ValidUserID reports whether id is usable as a user identity. Export
// files are stored under a directory named after the user, so the ID must
// be a single local path element.
func ValidUserID(id string) bool {
	if id == "" || len(id) > MaxUserIDLen || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, "/\\\x00") {
		return false
	}
	return filepath.IsLocal(id)
}

func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		// tolerate timestamps such as "2024-03-01T00:00:00Z"
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(s string) (*Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ISO returns the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(dateLayout)
}

func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

func (t Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategoryID
	}
	return nil
}

// HasDate reports whether the record carries a nominal date.
func (t Transaction) HasDate() bool {
	return t.Date != nil && !t.Date.IsZero()
}

// DisplayCategory returns the resolved category name or the
// uncategorized bucket.
func (t Transaction) DisplayCategory() string {
	if name := strings.TrimSpace(t.CategoryName); name != "" {
		return name
	}
	return UncategorizedName
}

// ParseTags splits the comma-separated tag column, dropping blanks and duplicates.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// CategoryIndex maps category IDs to display names.
type CategoryIndex map[string]string

func NewCategoryIndex(cats []Category) CategoryIndex {
	idx := make(CategoryIndex, len(cats))
	for _, c := range cats {
		idx[c.ID] = c.Name
	}
	return idx
}

// Resolve fills in missing category names from the index. The input slice
// is not modified.
func (idx CategoryIndex) Resolve(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		if t.CategoryName == "" {
			t.CategoryName = idx[t.CategoryID]
		}
		out[i] = t
	}
	return out
}
