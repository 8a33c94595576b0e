package http

import (
	"strings"

	"financas/internal/core"
)

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func isoDate(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.ISO()
}
