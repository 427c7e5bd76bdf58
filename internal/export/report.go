package export

import (
	"context"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bff-tools/receipts-pipeline/internal/classify"
	"github.com/bff-tools/receipts-pipeline/internal/fiscal"
	"github.com/bff-tools/receipts-pipeline/internal/parse"
)

// ReportRow is one line item in the grant expense report.
type ReportRow struct {
	Category      string
	Description   string
	Vendor        string
	Documentation string
	Date          string
	Amount        string
	SourceFile    string
}

var reportHeaders = []string{
	"LINE ITEM CATEGORY",
	"EXPENSE DESCRIPTION",
	"NAME OF VENDOR\n(if applicable)",
	"DOCUMENTATION TYPE",
	"DATE OF EXPENSE\n(e.g. invoice date)",
	"AMOUNT PAID WITH GRANT FUNDS",
	"SOURCE IMAGE FILE",
}

// FormatAmount renders a parsed total as a dollar string, or empty when the
// total never parsed.
func FormatAmount(total *float64) string {
	if total == nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", *total)
}

// ReportFilename returns MM-DD-YYYY-<8 hex chars>.csv for the given time.
func ReportFilename(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%s.csv", now.Format("01-02-2006"), hex.EncodeToString(id[:])[:8])
}

// Builder joins summary rows with their metadata sidefiles to produce
// report rows. With an oracle classifier each receipt is categorized against
// the strict ledger enum; with a nil classifier the keyword ruleset runs
// instead, so reports still build offline.
type Builder struct {
	classifier *classify.OracleClassifier
	logger     *slog.Logger
}

func NewBuilder(classifier *classify.OracleClassifier, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{classifier: classifier, logger: logger}
}

// Build reads each successfully renamed row's metadata file and produces one
// report row per receipt, sorted by renamed filename. Rows whose rename or
// metadata stage failed are skipped with a warning.
func (b *Builder) Build(ctx context.Context, dir string, rows []SummaryRow) ([]ReportRow, error) {
	out := make([]ReportRow, 0, len(rows))
	for _, row := range rows {
		if !usable(row) {
			b.logger.Warn("report.row.skipped", "original", row.Original,
				"renamed", row.Renamed, "metadata", row.Metadata)
			continue
		}

		text, err := os.ReadFile(filepath.Join(dir, row.Metadata))
		if err != nil {
			// Unreadable side-file drops this row, not the report.
			b.logger.Warn("report.row.skipped", "original", row.Original,
				"metadata", row.Metadata, "error", err.Error())
			continue
		}
		rec := parse.ExtractionText(string(text))

		var category, description string
		if rec.HasCategory {
			// Six-field extraction already categorized this receipt.
			category, description = rec.Category, rec.Description
		} else if b.classifier != nil {
			category = string(b.classifier.Classify(ctx, rec.Vendor, rec.Notes, row.Renamed))
			description = describe(rec)
		} else {
			ruled := classify.ByRules(rec.Vendor, rec.Notes)
			category, description = ruled.Category, ruled.Description
		}
		out = append(out, ReportRow{
			Category:      category,
			Description:   description,
			Vendor:        rec.Vendor,
			Documentation: "Receipt",
			Date:          fiscal.Normalize(rec.DateRaw),
			Amount:        FormatAmount(rec.Total),
			SourceFile:    row.Renamed,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SourceFile < out[j].SourceFile })
	return out, nil
}

func usable(row SummaryRow) bool {
	switch row.Renamed {
	case "", MarkerError, MarkerFailed, MarkerNoDate:
		return false
	}
	switch row.Metadata {
	case "", MarkerError:
		return false
	}
	return true
}

func describe(rec parse.Record) string {
	if rec.Notes != "" && rec.Notes != "None" {
		return rec.Notes
	}
	return "Purchase from " + rec.Vendor
}

// WriteReportCSV renders report rows to path.
func WriteReportCSV(path string, rows []ReportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeaders); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		rec := []string{row.Category, row.Description, row.Vendor,
			row.Documentation, row.Date, row.Amount, row.SourceFile}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
