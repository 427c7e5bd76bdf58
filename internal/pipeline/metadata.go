package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/bff-tools/receipts-pipeline/internal/fiscal"
	"github.com/bff-tools/receipts-pipeline/internal/parse"
)

// metadataBlock renders the extraction result as a labeled text block. When
// the text carried at least one recognized label, only the labeled lines are
// kept and a Fiscal Quarter line is inserted after the Date line. Otherwise
// the raw text is preserved verbatim with the quarter appended at the end.
func metadataBlock(raw string, rec parse.Record, quarter string) string {
	if !rec.Recognized() {
		return strings.TrimRight(raw, "\n") + "\nFiscal Quarter: " + quarter + "\n"
	}

	var b strings.Builder
	if rec.HasVendor {
		fmt.Fprintf(&b, "Vendor: %s\n", rec.Vendor)
	}
	if rec.HasDate {
		fmt.Fprintf(&b, "Date: %s\n", fiscal.Normalize(rec.DateRaw))
	}
	fmt.Fprintf(&b, "Fiscal Quarter: %s\n", quarter)
	if rec.HasTotal {
		fmt.Fprintf(&b, "Total: %s\n", rec.TotalRaw)
	}
	if rec.HasCategory {
		fmt.Fprintf(&b, "Category: %s\n", rec.Category)
	}
	if rec.HasDescription {
		fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	}
	if rec.HasNotes {
		fmt.Fprintf(&b, "Notes: %s\n", rec.Notes)
	}
	return b.String()
}

func writeMetadata(path, block string) error {
	if err := os.WriteFile(path, []byte(block), 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}
