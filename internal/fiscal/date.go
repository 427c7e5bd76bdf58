// Package fiscal normalizes free-text purchase dates and derives the fiscal
// quarter used in renamed filenames and metadata side-files.
package fiscal

import (
	"strings"
	"time"
)

// dateLayouts is the accepted format set, tried in order. First match wins.
// "1/2/2006" is tried before "2/1/2006", so an ambiguous numeric date like
// 05/06/2025 resolves as MM/DD. That positional tie-break is intentional.
var dateLayouts = []string{
	"January 2, 2006", // May 29, 2025
	"Jan 2, 2006",     // May 29, 2025
	"1/2/2006",        // 05/29/2025
	"2006-01-02",      // 2025-05-29
	"2/1/2006",        // 29/05/2025
}

const QuarterUnknown = "Unknown"

// Fallback is the month/year pair substituted into filenames when a date
// fails every accepted layout. The zero value is not useful; callers supply
// it from configuration.
type Fallback struct {
	Month string
	Year  string
}

// Parse tries the accepted layouts in order against the trimmed input.
func Parse(dateStr string) (time.Time, bool) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Quarter maps the parsed month onto Q1..Q4, or Unknown when no layout
// matched. Derived only; never authored directly.
func Quarter(dateStr string) string {
	t, ok := Parse(dateStr)
	if !ok {
		return QuarterUnknown
	}
	switch m := t.Month(); {
	case m <= 3:
		return "Q1"
	case m <= 6:
		return "Q2"
	case m <= 9:
		return "Q3"
	default:
		return "Q4"
	}
}

// Normalize returns the date rendered as MM/DD/YYYY, or the original string
// unchanged when no layout matched. Pass-through is not an error.
func Normalize(dateStr string) string {
	t, ok := Parse(dateStr)
	if !ok {
		return dateStr
	}
	return t.Format("01/02/2006")
}

// MonthYear returns the zero-padded month and four-digit year for filename
// use, degrading to the supplied fallback pair when nothing parsed.
func MonthYear(dateStr string, fb Fallback) (month, year string) {
	t, ok := Parse(dateStr)
	if !ok {
		return fb.Month, fb.Year
	}
	return t.Format("01"), t.Format("2006")
}
