package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

// Column order of tabular transaction sources (spreadsheets, seed files).
const (
	ColID = iota
	ColCreatedAt
	ColDate
	ColEstablishment
	ColAmount
	ColDetails
	ColKind
	ColCategoryID
	ColUserID
	transactionColumns
)

// Column order of tabular category sources.
const (
	CatColID = iota
	CatColName
	CatColTags
	CatColUserID
	categoryColumns
)

// TransactionFromRow parses one tabular record. Blank optional columns are
// tolerated; a malformed amount, kind or date is an error.
func TransactionFromRow(row []string) (core.Transaction, error) {
	if len(row) < transactionColumns {
		return core.Transaction{}, fmt.Errorf("transaction row: want %d columns, got %d", transactionColumns, len(row))
	}
	get := func(i int) string { return strings.TrimSpace(row[i]) }

	id, err := strconv.ParseInt(get(ColID), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction row: id %q: %w", get(ColID), err)
	}
	var created time.Time
	if s := get(ColCreatedAt); s != "" {
		created, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("transaction %d: created_at: %w", id, err)
		}
	}
	date, err := core.ParseOptionalDate(get(ColDate))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: date: %w", id, err)
	}
	amount, err := core.ParseMoney(get(ColAmount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: amount: %w", id, err)
	}
	kind, err := core.ParseKind(get(ColKind))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}
	return core.Transaction{
		ID:            id,
		CreatedAt:     created,
		Date:          date,
		Establishment: get(ColEstablishment),
		Amount:        amount,
		Details:       get(ColDetails),
		Kind:          kind,
		CategoryID:    get(ColCategoryID),
		UserID:        get(ColUserID),
	}, nil
}

func CategoryFromRow(row []string) (core.Category, error) {
	if len(row) < categoryColumns {
		return core.Category{}, fmt.Errorf("category row: want %d columns, got %d", categoryColumns, len(row))
	}
	id := strings.TrimSpace(row[CatColID])
	if id == "" {
		return core.Category{}, fmt.Errorf("category row: %w", core.ErrEmptyCategoryID)
	}
	return core.Category{
		ID:     id,
		Name:   strings.TrimSpace(row[CatColName]),
		Tags:   core.ParseTags(row[CatColTags]),
		UserID: strings.TrimSpace(row[CatColUserID]),
	}, nil
}
