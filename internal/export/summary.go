// Package export renders the two ledger shapes: the per-batch processing
// summary and the grant expense report (CSV and XLSX).
package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Failure markers written into summary columns when a stage did not produce
// a file.
const (
	MarkerError  = "Error"   // extraction or metadata write failed
	MarkerFailed = "Failed"  // renamed copy could not be created
	MarkerNoDate = "No Date" // no date line, rename skipped
)

// SummaryRow is one attempted document in the processing summary. Every
// scanned document produces exactly one row, failures included.
type SummaryRow struct {
	Original string
	Renamed  string
	Metadata string
}

var summaryHeaders = []string{"Original Filename", "Renamed Filename", "Metadata Filename"}

// WriteSummary renders rows in the order given (directory-scan order).
func WriteSummary(path string, rows []SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeaders); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Original, row.Renamed, row.Metadata}); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	return nil
}

// ReadSummary loads a previously written summary back into rows.
func ReadSummary(path string) ([]SummaryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]SummaryRow, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		if len(rec) < 3 {
			continue
		}
		rows = append(rows, SummaryRow{Original: rec[0], Renamed: rec[1], Metadata: rec[2]})
	}
	return rows, nil
}
