package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bff-tools/receipts-pipeline/constants"
	"github.com/bff-tools/receipts-pipeline/internal/export"
	"github.com/bff-tools/receipts-pipeline/internal/fiscal"
	"github.com/bff-tools/receipts-pipeline/internal/ingest"
	"github.com/bff-tools/receipts-pipeline/internal/llm"
	"github.com/bff-tools/receipts-pipeline/internal/naming"
	"github.com/bff-tools/receipts-pipeline/internal/repository"
)

// fakeExtractor answers by source filename so tests control each document's
// extraction independently.
type fakeExtractor struct {
	byFile map[string]string
	fail   map[string]bool
}

func (f *fakeExtractor) ExtractText(ctx context.Context, req llm.ExtractRequest) (string, error) {
	if f.fail[req.Filename] {
		return "", errors.New("oracle unavailable")
	}
	return f.byFile[req.Filename], nil
}

func newTestProcessor(t *testing.T, ex llm.Extractor, workers int) *Processor {
	t.Helper()
	db, err := repository.Open(context.Background(), ":memory:", nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &Processor{
		Scanner:   ingest.NewScanner(repository.NewReceiptFileRepository(db, nil), nil),
		Jobs:      repository.NewExtractJobRepository(db, nil),
		Extractor: ex,
		Template:  naming.Template{Prefix: "BFF"},
		Fallback:  fiscal.Fallback{Month: "01", Year: "2025"},
		Workers:   workers,
	}
}

func seed(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
}

func TestRunRenamesAndSummarizes(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "acme.jpg", "jpeg bytes")
	seed(t, dir, "broken.gif", "gif bytes")
	seed(t, dir, "nodate.png", "png bytes")
	seed(t, dir, "leftover.csv", "not a receipt")

	ex := &fakeExtractor{
		byFile: map[string]string{
			"acme.jpg":   "Vendor: ACME Inc\nDate: 05/29/2025\nTotal: $1,200.00\nNotes: None",
			"nodate.png": "Vendor: Riverside Nursery\nTotal: $40.00",
		},
		fail: map[string]bool{"broken.gif": true},
	}

	p := newTestProcessor(t, ex, 2)
	res, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The stray CSV is scanned past, not processed.
	if res.Processed != 3 {
		t.Fatalf("processed = %d, want 3", res.Processed)
	}
	if res.Renamed != 1 || res.NoDate != 1 || res.Failed != 1 {
		t.Fatalf("counts renamed=%d no_date=%d failed=%d, want 1/1/1",
			res.Renamed, res.NoDate, res.Failed)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(res.Rows))
	}

	// Scan order is directory order.
	if res.Rows[0].Original != "acme.jpg" || res.Rows[1].Original != "broken.gif" || res.Rows[2].Original != "nodate.png" {
		t.Fatalf("row order = %v", res.Rows)
	}

	if res.Rows[0].Renamed != "BFF-Q2-ACME-05-2025.jpg" {
		t.Errorf("renamed = %q, want BFF-Q2-ACME-05-2025.jpg", res.Rows[0].Renamed)
	}
	if res.Rows[0].Metadata != "acme.txt" {
		t.Errorf("metadata = %q, want acme.txt", res.Rows[0].Metadata)
	}
	if _, err := os.Stat(filepath.Join(dir, "BFF-Q2-ACME-05-2025.jpg")); err != nil {
		t.Errorf("renamed copy missing: %v", err)
	}

	meta, err := os.ReadFile(filepath.Join(dir, "acme.txt"))
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if !strings.Contains(string(meta), "Fiscal Quarter: Q2") {
		t.Errorf("metadata missing quarter line:\n%s", meta)
	}

	if res.Rows[1].Renamed != export.MarkerError || res.Rows[1].Metadata != export.MarkerError {
		t.Errorf("failed row = %+v, want Error markers", res.Rows[1])
	}
	if res.Rows[2].Renamed != export.MarkerNoDate {
		t.Errorf("no-date row = %+v, want No Date marker", res.Rows[2])
	}
	// No-date documents still get their metadata file, with quarter Unknown.
	meta, err = os.ReadFile(filepath.Join(dir, "nodate.txt"))
	if err != nil {
		t.Fatalf("no-date metadata: %v", err)
	}
	if !strings.Contains(string(meta), "Fiscal Quarter: Unknown") {
		t.Errorf("no-date metadata missing Unknown quarter:\n%s", meta)
	}

	if _, err := os.Stat(res.SummaryPath); err != nil {
		t.Errorf("summary not written: %v", err)
	}

	counts, err := p.Jobs.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[constants.JobStatusExtractOK] != 1 || counts[constants.JobStatusNoDate] != 1 || counts[constants.JobStatusFailed] != 1 {
		t.Errorf("job statuses = %v", counts)
	}
}

func TestRunCollisionSuffixes(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "a.jpg", "one")
	seed(t, dir, "b.jpg", "two")
	seed(t, dir, "c.jpg", "three")

	text := "Vendor: ACME\nDate: 05/29/2025\nTotal: $5.00\nNotes: None"
	ex := &fakeExtractor{byFile: map[string]string{"a.jpg": text, "b.jpg": text, "c.jpg": text}}

	p := newTestProcessor(t, ex, 3)
	res, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"BFF-Q2-ACME-05-2025.jpg",
		"BFF-Q2-ACME-05-2025-1.jpg",
		"BFF-Q2-ACME-05-2025-2.jpg",
	}
	for i, w := range want {
		if res.Rows[i].Renamed != w {
			t.Errorf("row %d renamed = %q, want %q", i, res.Rows[i].Renamed, w)
		}
	}
}

func TestRunSubfolderTemplate(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "a.jpg", "one")

	ex := &fakeExtractor{byFile: map[string]string{
		"a.jpg": "Vendor: ACME\nDate: 05/29/2025\nTotal: $5.00\nNotes: None",
	}}

	p := newTestProcessor(t, ex, 1)
	p.Template = naming.Template{Prefix: "BFF", SubdirPrefix: "PCEF", Subfolder: true}
	res, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := filepath.Join("renamed", "PCEF-Q2-BFF-ACME-05-2025.jpg")
	if res.Rows[0].Renamed != want {
		t.Errorf("renamed = %q, want %q", res.Rows[0].Renamed, want)
	}
	if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
		t.Errorf("renamed copy missing: %v", err)
	}
}

func TestRunDuplicateContentStillGetsRow(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "a.jpg", "same bytes")
	seed(t, dir, "b.jpg", "same bytes")

	text := "Vendor: ACME\nDate: 01/15/2025\nTotal: $5.00\nNotes: None"
	ex := &fakeExtractor{byFile: map[string]string{"a.jpg": text, "b.jpg": text}}

	p := newTestProcessor(t, ex, 1)
	res, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Deduplicated != 1 {
		t.Errorf("deduplicated = %d, want 1", res.Deduplicated)
	}
	if len(res.Rows) != 2 {
		t.Errorf("got %d rows, want one per attempted document", len(res.Rows))
	}
}
