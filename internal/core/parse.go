package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order when coercing a cell to a date. Journal
// exports mix slash, hyphen, and kanji styles, with and without a time part.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006.01.02",
	"2006年1月2日",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02T15:04:05",
}

// ParseDate coerces a cell to a date. Returns nil for anything unparsable;
// callers drop or skip such rows rather than failing.
func ParseDate(cell string) *time.Time {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseAmount coerces a cell to a monetary amount. An empty cell is null;
// a malformed cell (non-numeric after stripping separators) degrades to
// zero rather than failing the row.
func ParseAmount(cell string) decimal.NullDecimal {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(cleanNumeric(s))
	if err != nil {
		return decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// cleanNumeric strips thousands separators, currency marks, and any other
// non-numeric characters, keeping digits, '.' and '-'.
func cleanNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
