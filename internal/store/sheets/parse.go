package sheets

import (
	"fmt"
	"strings"

	"financas/internal/core"
	"financas/internal/store"
)

// parseTransactions converts a values matrix into transactions. Blank rows
// are ignored; rows that fail to parse are counted and dropped.
func parseTransactions(values [][]interface{}) ([]core.Transaction, int) {
	var (
		out     []core.Transaction
		skipped int
	)
	for _, raw := range values {
		row := toStrings(raw)
		if blank(row) {
			continue
		}
		t, err := store.TransactionFromRow(padded(row, store.ColUserID+1))
		if err != nil {
			skipped++
			continue
		}
		out = append(out, t)
	}
	return out, skipped
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// padded extends a row to n cells; the API trims trailing empty cells.
func padded(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
