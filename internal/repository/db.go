// Package repository persists the batch run index: which files were seen
// (deduplicated by content hash) and how each extraction attempt ended.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS receipt_files (
	id            TEXT PRIMARY KEY,
	source_path   TEXT NOT NULL,
	file_ext      TEXT NOT NULL,
	content_hash  BLOB NOT NULL UNIQUE,
	uploaded_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS extract_jobs (
	id             TEXT PRIMARY KEY,
	file_id        TEXT NOT NULL REFERENCES receipt_files(id),
	status         TEXT NOT NULL,
	started_at     TIMESTAMP NOT NULL,
	finished_at    TIMESTAMP,
	error_message  TEXT,
	renamed_path   TEXT,
	metadata_path  TEXT
);

CREATE INDEX IF NOT EXISTS idx_extract_jobs_file ON extract_jobs(file_id);
`

// Open connects to the SQLite run index at path (":memory:" for tests),
// creating the parent directory and schema as needed.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("repository.open", "path", path)
	return db, nil
}
