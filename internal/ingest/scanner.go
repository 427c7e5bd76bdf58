// Package ingest scans a receipts directory and registers each document in
// the run index, deduplicating by content hash.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bff-tools/receipts-pipeline/constants"
	"github.com/bff-tools/receipts-pipeline/internal/repository"
)

// Document is one ingestible file found in the receipts directory.
type Document struct {
	FileID       uuid.UUID
	Path         string
	Filename     string
	Ext          string // normalized, without dot
	HashHex      string
	Deduplicated bool
}

// Stats aggregates one directory scan.
type Stats struct {
	Scanned      int
	Matched      int
	Deduplicated int
	Failed       int
}

type Scanner struct {
	FilesRepo *repository.ReceiptFileRepository
	Logger    *slog.Logger
}

func NewScanner(files *repository.ReceiptFileRepository, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{FilesRepo: files, Logger: logger}
}

// ScanDirectory lists dir (non-recursive; the renamed/ subdirectory is a
// directory and falls out naturally), filters by the allowed extension set,
// hashes each match, and upserts it into the run index. Documents come back
// in directory order, which is the order the batch processes and the order
// the processing summary reports.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string) ([]Document, Stats, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, Stats{}, errors.New("receipts directory is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read dir: %w", err)
	}

	var (
		docs  []Document
		stats Stats
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stats.Scanned++

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(name))
		if !constants.AllowedExt(ext) {
			continue
		}
		stats.Matched++

		doc, err := s.register(ctx, filepath.Join(dir, name), name, ext)
		if err != nil {
			s.Logger.Error("ingest.register.failed", "file", name, "error", err)
			stats.Failed++
			continue
		}
		if doc.Deduplicated {
			stats.Deduplicated++
			s.Logger.Warn("ingest.duplicate_content", "file", name, "hash", doc.HashHex)
		}
		docs = append(docs, doc)
	}
	return docs, stats, nil
}

func (s *Scanner) register(ctx context.Context, path, name, ext string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Document{}, fmt.Errorf("hash: %w", err)
	}
	sum := h.Sum(nil)

	row, dedup, err := s.FilesRepo.UpsertByHash(ctx, path, ext, sum, time.Now().UTC())
	if err != nil {
		return Document{}, err
	}
	return Document{
		FileID:       row.ID,
		Path:         path,
		Filename:     name,
		Ext:          ext,
		HashHex:      hex.EncodeToString(sum),
		Deduplicated: dedup,
	}, nil
}
