// Package pipeline drives a batch of receipt documents through extraction,
// metadata capture, renaming, and the processing summary.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bff-tools/receipts-pipeline/constants"
	"github.com/bff-tools/receipts-pipeline/internal/export"
	"github.com/bff-tools/receipts-pipeline/internal/fiscal"
	"github.com/bff-tools/receipts-pipeline/internal/ingest"
	"github.com/bff-tools/receipts-pipeline/internal/llm"
	"github.com/bff-tools/receipts-pipeline/internal/naming"
	"github.com/bff-tools/receipts-pipeline/internal/parse"
	"github.com/bff-tools/receipts-pipeline/internal/repository"
)

// SummaryFilename is written into the scanned directory after each run.
const SummaryFilename = "receipts_processing_summary.csv"

// Processor runs the full batch: scan, extract, write metadata, rename,
// summarize. Extraction fans out across Workers goroutines; everything after
// extraction runs sequentially in scan order so filename collision handling
// and the summary stay deterministic.
type Processor struct {
	Scanner   *ingest.Scanner
	Jobs      *repository.ExtractJobRepository
	Extractor llm.Extractor
	Template  naming.Template
	Fallback  fiscal.Fallback
	Workers   int
	// WithCategory asks the oracle for the six-field block (adds Category
	// and Description), letting report building skip the classifier for
	// receipts the extraction already categorized.
	WithCategory bool
	Logger       *slog.Logger
}

// Result reports what a batch run did. Processed counts only the documents
// that matched the extension filter, not every directory entry.
type Result struct {
	SummaryPath  string
	Rows         []export.SummaryRow
	Processed    int
	Renamed      int
	NoDate       int
	Failed       int
	Deduplicated int
}

type extraction struct {
	jobID uuid.UUID
	text  string
	err   error
}

// Run processes every supported document in dir and writes the summary CSV
// next to them. Per-document failures become summary markers, not errors;
// only batch-level problems (scan, summary write) abort the run.
func (p *Processor) Run(ctx context.Context, dir string) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	docs, stats, err := p.Scanner.ScanDirectory(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	extractions := p.extractAll(ctx, docs)

	targetDir, err := p.Template.TargetDir(dir)
	if err != nil {
		return nil, fmt.Errorf("prepare target dir: %w", err)
	}

	res := &Result{Processed: stats.Matched, Deduplicated: stats.Deduplicated}
	for i, doc := range docs {
		row := p.finishDocument(ctx, dir, targetDir, doc, extractions[i], res)
		res.Rows = append(res.Rows, row)
	}

	res.SummaryPath = filepath.Join(dir, SummaryFilename)
	if err := export.WriteSummary(res.SummaryPath, res.Rows); err != nil {
		return nil, err
	}

	statusCounts, err := p.Jobs.CountByStatus(ctx)
	if err != nil {
		logger.Warn("pipeline.status_counts.failed", "error", err.Error())
	}

	logger.Info("pipeline.run.done",
		"dir", dir,
		"processed", res.Processed,
		"renamed", res.Renamed,
		"no_date", res.NoDate,
		"failed", res.Failed,
		"deduplicated", res.Deduplicated,
		"job_statuses", statusCounts,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// extractAll runs the oracle over all documents with at most Workers in
// flight, returning results indexed like docs.
func (p *Processor) extractAll(ctx context.Context, docs []ingest.Document) []extraction {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	out := make([]extraction, len(docs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc ingest.Document) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = p.extractOne(ctx, doc)
		}(i, doc)
	}
	wg.Wait()
	return out
}

func (p *Processor) extractOne(ctx context.Context, doc ingest.Document) extraction {
	jobID, err := p.Jobs.Start(ctx, doc.FileID)
	if err != nil {
		return extraction{err: fmt.Errorf("start job: %w", err)}
	}
	if err := p.Jobs.MarkRunning(ctx, jobID); err != nil {
		return extraction{jobID: jobID, err: err}
	}

	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return extraction{jobID: jobID, err: fmt.Errorf("read %s: %w", doc.Filename, err)}
	}

	text, err := p.Extractor.ExtractText(ctx, llm.ExtractRequest{
		Data:         data,
		MimeType:     constants.MimeForExt(doc.Ext),
		Filename:     doc.Filename,
		WithCategory: p.WithCategory,
	})
	if err != nil {
		return extraction{jobID: jobID, err: fmt.Errorf("extract %s: %w", doc.Filename, err)}
	}
	return extraction{jobID: jobID, text: text}
}

// finishDocument runs the sequential tail for one document and returns its
// summary row.
func (p *Processor) finishDocument(ctx context.Context, dir, targetDir string, doc ingest.Document, ex extraction, res *Result) export.SummaryRow {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	finish := func(outcome repository.JobOutcome) {
		if ex.jobID == uuid.Nil {
			return
		}
		if err := p.Jobs.Finish(ctx, ex.jobID, outcome); err != nil {
			logger.Warn("pipeline.job.finish_failed", "job_id", ex.jobID.String(), "error", err.Error())
		}
	}

	if ex.err != nil {
		logger.Warn("pipeline.extract.failed", "file", doc.Filename, "error", ex.err.Error())
		res.Failed++
		finish(repository.JobOutcome{Status: constants.JobStatusFailed, ErrorMessage: ex.err.Error()})
		return export.SummaryRow{Original: doc.Filename, Renamed: export.MarkerError, Metadata: export.MarkerError}
	}

	rec := parse.ExtractionText(ex.text)
	quarter := fiscal.Quarter(rec.DateRaw)

	metaName := stem(doc.Filename) + ".txt"
	metaPath := filepath.Join(dir, metaName)
	if err := writeMetadata(metaPath, metadataBlock(ex.text, rec, quarter)); err != nil {
		logger.Warn("pipeline.metadata.failed", "file", doc.Filename, "error", err.Error())
		res.Failed++
		finish(repository.JobOutcome{Status: constants.JobStatusFailed, ErrorMessage: err.Error()})
		return export.SummaryRow{Original: doc.Filename, Renamed: export.MarkerError, Metadata: export.MarkerError}
	}

	if !rec.HasDate {
		logger.Warn("pipeline.rename.no_date", "file", doc.Filename)
		res.NoDate++
		finish(repository.JobOutcome{Status: constants.JobStatusNoDate, MetadataPath: metaPath})
		return export.SummaryRow{Original: doc.Filename, Renamed: export.MarkerNoDate, Metadata: metaName}
	}

	vendor := naming.UnknownVendor
	if rec.HasVendor {
		vendor = naming.SanitizeVendor(rec.Vendor)
	}
	month, year := fiscal.MonthYear(rec.DateRaw, p.Fallback)

	want := filepath.Join(targetDir, p.Template.Filename(quarter, vendor, month, year, "."+doc.Ext))
	dst := naming.ResolveCollision(want)
	if dst != want {
		logger.Info("pipeline.rename.collision", "file", doc.Filename, "resolved", filepath.Base(dst))
	}
	if err := naming.CopyFile(doc.Path, dst); err != nil {
		logger.Warn("pipeline.rename.copy_failed", "file", doc.Filename, "error", err.Error())
		res.Failed++
		finish(repository.JobOutcome{Status: constants.JobStatusFailed, ErrorMessage: err.Error(), MetadataPath: metaPath})
		return export.SummaryRow{Original: doc.Filename, Renamed: export.MarkerFailed, Metadata: metaName}
	}

	renamed, err := filepath.Rel(dir, dst)
	if err != nil {
		renamed = filepath.Base(dst)
	}
	res.Renamed++
	finish(repository.JobOutcome{Status: constants.JobStatusExtractOK, RenamedPath: dst, MetadataPath: metaPath})
	logger.Info("pipeline.rename.ok", "file", doc.Filename, "renamed", renamed)
	return export.SummaryRow{Original: doc.Filename, Renamed: renamed, Metadata: metaName}
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
