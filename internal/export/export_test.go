package export

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/bff-tools/receipts-pipeline/internal/classify"
	"github.com/bff-tools/receipts-pipeline/internal/llm"
)

func TestFormatAmount(t *testing.T) {
	v := 1234.5
	if got := FormatAmount(&v); got != "$1234.50" {
		t.Errorf("FormatAmount(1234.5) = %q, want %q", got, "$1234.50")
	}
	if got := FormatAmount(nil); got != "" {
		t.Errorf("FormatAmount(nil) = %q, want empty", got)
	}
}

func TestReportFilename(t *testing.T) {
	now := time.Date(2025, 5, 29, 10, 0, 0, 0, time.UTC)
	name := ReportFilename(now)
	if !regexp.MustCompile(`^05-29-2025-[0-9a-f]{8}\.csv$`).MatchString(name) {
		t.Errorf("ReportFilename = %q, want 05-29-2025-<8 hex>.csv", name)
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")
	rows := []SummaryRow{
		{Original: "a.jpg", Renamed: "BFF-Q2-ACME-05-2025.jpg", Metadata: "a.txt"},
		{Original: "b.jpg", Renamed: MarkerNoDate, Metadata: "b.txt"},
		{Original: "c.jpg", Renamed: MarkerError, Metadata: MarkerError},
	}
	if err := WriteSummary(path, rows); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	got, err := ReadSummary(path)
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

type stubOracle struct {
	answer string
}

func (s *stubOracle) Categorize(ctx context.Context, req llm.CategoryRequest) (string, error) {
	return s.answer, nil
}

func writeMetadata(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestBuildSkipsFailedRowsAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "z.txt", "Vendor: Zeta Farms\nDate: 05/29/2025\nFiscal Quarter: Q2\nTotal: $20.00\nNotes: None\n")
	writeMetadata(t, dir, "a.txt", "Vendor: ACME\nDate: 04/01/2025\nFiscal Quarter: Q2\nTotal: $1,200.00\nNotes: Irrigation parts\n")

	rows := []SummaryRow{
		{Original: "z.jpg", Renamed: "BFF-Q2-Zeta-Farms-05-2025.jpg", Metadata: "z.txt"},
		{Original: "bad.jpg", Renamed: MarkerError, Metadata: MarkerError},
		{Original: "nodate.jpg", Renamed: MarkerNoDate, Metadata: "nodate.txt"},
		{Original: "a.jpg", Renamed: "BFF-Q2-ACME-04-2025.jpg", Metadata: "a.txt"},
	}

	b := NewBuilder(classify.NewOracleClassifier(&stubOracle{answer: "Materials"}, nil), nil)
	got, err := b.Build(context.Background(), dir, rows)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].SourceFile != "BFF-Q2-ACME-04-2025.jpg" || got[1].SourceFile != "BFF-Q2-Zeta-Farms-05-2025.jpg" {
		t.Errorf("rows not sorted by renamed filename: %q, %q", got[0].SourceFile, got[1].SourceFile)
	}
	if got[0].Description != "Irrigation parts" {
		t.Errorf("description = %q, want notes text", got[0].Description)
	}
	if got[1].Description != "Purchase from Zeta Farms" {
		t.Errorf("description = %q, want fallback", got[1].Description)
	}
	if got[0].Amount != "$1200.00" {
		t.Errorf("amount = %q, want $1200.00", got[0].Amount)
	}
	if got[0].Category != "Materials" {
		t.Errorf("category = %q, want Materials", got[0].Category)
	}
	if got[0].Documentation != "Receipt" {
		t.Errorf("documentation = %q, want Receipt", got[0].Documentation)
	}
}

func TestBuildSkipsUnreadableMetadata(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "ok.txt", "Vendor: ACME\nDate: 04/01/2025\nFiscal Quarter: Q2\nTotal: $10.00\nNotes: None\n")

	rows := []SummaryRow{
		{Original: "gone.jpg", Renamed: "BFF-Q2-Gone-01-2025.jpg", Metadata: "gone.txt"},
		{Original: "ok.jpg", Renamed: "BFF-Q2-ACME-04-2025.jpg", Metadata: "ok.txt"},
	}

	b := NewBuilder(classify.NewOracleClassifier(&stubOracle{answer: "Materials"}, nil), nil)
	got, err := b.Build(context.Background(), dir, rows)
	if err != nil {
		t.Fatalf("a missing side-file must not abort the report: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].SourceFile != "BFF-Q2-ACME-04-2025.jpg" {
		t.Errorf("surviving row = %q", got[0].SourceFile)
	}
}

func TestBuildOfflineUsesRuleset(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "hd.txt", "Vendor: Home Depot\nDate: 03/02/2025\nFiscal Quarter: Q1\nTotal: $88.00\nNotes: None\n")

	rows := []SummaryRow{{Original: "hd.jpg", Renamed: "BFF-Q1-Home-Depot-03-2025.jpg", Metadata: "hd.txt"}}
	b := NewBuilder(nil, nil)
	got, err := b.Build(context.Background(), dir, rows)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].Category != "Materials" || got[0].Description != "Farm Supplies" {
		t.Errorf("offline row = %q/%q, want Materials/Farm Supplies", got[0].Category, got[0].Description)
	}
}

func TestBuildPrefersExtractionCategory(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, "x.txt", "Vendor: Matrix Sciences\nDate: 06/10/2025\nFiscal Quarter: Q2\nTotal: $150.00\nCategory: Other\nDescription: Quality Assurance\nNotes: None\n")

	rows := []SummaryRow{{Original: "x.jpg", Renamed: "BFF-Q2-Matrix-Sciences-06-2025.jpg", Metadata: "x.txt"}}
	b := NewBuilder(classify.NewOracleClassifier(&stubOracle{answer: "Contracts"}, nil), nil)
	got, err := b.Build(context.Background(), dir, rows)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got[0].Category != "Other" || got[0].Description != "Quality Assurance" {
		t.Errorf("row = %q/%q, want extraction-supplied Other/Quality Assurance", got[0].Category, got[0].Description)
	}
}

func TestWriteReportCSVHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	rows := []ReportRow{{
		Category: "Materials", Description: "Farm Supplies", Vendor: "ACME",
		Documentation: "Receipt", Date: "05/29/2025", Amount: "$10.00",
		SourceFile: "BFF-Q2-ACME-05-2025.jpg",
	}}
	if err := WriteReportCSV(path, rows); err != nil {
		t.Fatalf("WriteReportCSV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	// Embedded-newline headers must survive CSV quoting.
	if !regexp.MustCompile(`"NAME OF VENDOR\n\(if applicable\)"`).Match(data) {
		t.Errorf("vendor header not quoted with embedded newline:\n%s", data)
	}
}
