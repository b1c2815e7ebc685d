package ingest

import (
	"strconv"
	"strings"
	"time"
)

// ParseNumber coerces a raw cell to a number. Blank cells and the usual null
// spellings come back nil; currency symbols and thousands separators are
// stripped first. Unparseable values are nil, never an error — the caller
// decides whether nil means "skip" (sums) or "undefined" (ratios).
func ParseNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "n/a":
		return nil
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// NumberOrZero is ParseNumber with the null-as-zero policy used for the
// transaction quantity/amount columns, where sums must ignore missing cells.
func NumberOrZero(raw string) float64 {
	if v := ParseNumber(raw); v != nil {
		return *v
	}
	return 0
}

// dateLayouts lists the formats seen in Famus extracts, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"2006/01/02",
}

// ParseDate coerces a raw cell to a date. Unparseable values yield the zero
// time, which the rest of the pipeline treats as "no date".
func ParseDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "n/a":
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseIntCode parses integer code columns (transaction type, source index).
// Codes sometimes arrive as "1.0" from spreadsheet round-trips, so the float
// path is the fallback.
func ParseIntCode(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f := ParseNumber(s); f != nil {
		return int(*f)
	}
	return 0
}

// ParseBool parses the pre-computed boolean flag columns.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "1", "yes", "y":
		return true
	}
	return false
}
