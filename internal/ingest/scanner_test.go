package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bff-tools/receipts-pipeline/internal/repository"
)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	db, err := repository.Open(context.Background(), ":memory:", nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewScanner(repository.NewReceiptFileRepository(db, nil), nil)
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestScanDirectoryFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.jpg", "two")
	write(t, dir, "a.pdf", "one")
	write(t, dir, "notes.csv", "not a receipt")
	write(t, dir, ".hidden.jpg", "skip me")
	if err := os.Mkdir(filepath.Join(dir, "renamed"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := newTestScanner(t)
	docs, stats, err := s.ScanDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2: %+v", len(docs), docs)
	}
	// Directory order (lexicographic from os.ReadDir).
	if docs[0].Filename != "a.pdf" || docs[1].Filename != "b.jpg" {
		t.Errorf("order = %s, %s", docs[0].Filename, docs[1].Filename)
	}
	if docs[0].Ext != "pdf" || docs[1].Ext != "jpg" {
		t.Errorf("exts = %s, %s", docs[0].Ext, docs[1].Ext)
	}
	if stats.Matched != 2 {
		t.Errorf("matched = %d, want 2", stats.Matched)
	}
}

func TestScanDirectoryFlagsDuplicateContent(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.jpg", "same bytes")
	write(t, dir, "b.jpg", "same bytes")

	s := newTestScanner(t)
	docs, stats, err := s.ScanDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("duplicates must still be returned, got %d docs", len(docs))
	}
	if docs[0].Deduplicated || !docs[1].Deduplicated {
		t.Errorf("dedup flags = %v, %v", docs[0].Deduplicated, docs[1].Deduplicated)
	}
	if docs[0].FileID != docs[1].FileID {
		t.Errorf("duplicate content must map to one file id")
	}
	if stats.Deduplicated != 1 {
		t.Errorf("deduplicated = %d, want 1", stats.Deduplicated)
	}
}

func TestScanDirectoryEmptyDirArg(t *testing.T) {
	s := newTestScanner(t)
	if _, _, err := s.ScanDirectory(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank directory")
	}
}
