// Package parse turns the extraction oracle's labeled text block into a
// typed partial expense record.
package parse

import (
	"strconv"
	"strings"

	"github.com/bff-tools/receipts-pipeline/constants"
)

// Record is the partial expense record carried out of one extraction text.
// Absent fields stay at the documented defaults; Has* flags record which
// labels actually appeared so callers can reconstruct the block faithfully.
type Record struct {
	Vendor      string
	DateRaw     string
	TotalRaw    string
	Total       *float64
	Notes       string
	Category    string
	Description string

	HasVendor      bool
	HasDate        bool
	HasTotal       bool
	HasNotes       bool
	HasCategory    bool
	HasDescription bool
}

// Recognized reports whether any label line was found at all. Callers fall
// back to the verbatim extraction text when it is false.
func (r Record) Recognized() bool {
	return r.HasVendor || r.HasDate || r.HasTotal || r.HasNotes || r.HasCategory || r.HasDescription
}

// ExtractionText scans the oracle output line by line. Labels are matched by
// exact, case-sensitive prefix; the first occurrence of each label wins and
// later duplicates are ignored. Unlabeled prose is skipped.
func ExtractionText(text string) Record {
	rec := Record{
		Vendor:      "Unknown",
		Notes:       "None",
		Category:    constants.DefaultCategory,
		Description: constants.DefaultDescription,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Vendor:"):
			if !rec.HasVendor {
				rec.Vendor = strings.TrimSpace(strings.TrimPrefix(line, "Vendor:"))
				rec.HasVendor = true
			}
		case strings.HasPrefix(line, "Date:"):
			if !rec.HasDate {
				rec.DateRaw = strings.TrimSpace(strings.TrimPrefix(line, "Date:"))
				rec.HasDate = true
			}
		case strings.HasPrefix(line, "Total:"):
			if !rec.HasTotal {
				rec.TotalRaw = strings.TrimSpace(strings.TrimPrefix(line, "Total:"))
				rec.Total = Amount(rec.TotalRaw)
				rec.HasTotal = true
			}
		case strings.HasPrefix(line, "Notes:"):
			if !rec.HasNotes {
				rec.Notes = strings.TrimSpace(strings.TrimPrefix(line, "Notes:"))
				rec.HasNotes = true
			}
		case strings.HasPrefix(line, "Category:"):
			if !rec.HasCategory {
				rec.Category = strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
				rec.HasCategory = true
			}
		case strings.HasPrefix(line, "Description:"):
			if !rec.HasDescription {
				rec.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
				rec.HasDescription = true
			}
		}
	}
	return rec
}

// Amount strips the currency symbol and thousands separators, then parses a
// decimal. Non-numeric residue yields nil, never an error.
func Amount(s string) *float64 {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}
