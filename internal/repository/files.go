package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ReceiptFile is one scanned document in the run index.
type ReceiptFile struct {
	ID          uuid.UUID
	SourcePath  string
	FileExt     string
	ContentHash []byte
	UploadedAt  time.Time
}

type ReceiptFileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewReceiptFileRepository(db *sql.DB, logger *slog.Logger) *ReceiptFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptFileRepository{db: db, logger: logger}
}

// UpsertByHash registers a file by its content hash. A hash already present
// returns the existing row with deduplicated=true; the stored source path is
// kept, since it is the same bytes.
func (r *ReceiptFileRepository) UpsertByHash(ctx context.Context, sourcePath, ext string, hash []byte, now time.Time) (*ReceiptFile, bool, error) {
	existing, err := r.getByHash(ctx, hash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("lookup by hash: %w", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	row := &ReceiptFile{
		ID:          uuid.New(),
		SourcePath:  sourcePath,
		FileExt:     ext,
		ContentHash: hash,
		UploadedAt:  now,
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO receipt_files (id, source_path, file_ext, content_hash, uploaded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		row.ID.String(), row.SourcePath, row.FileExt, row.ContentHash, row.UploadedAt)
	if err != nil {
		return nil, false, fmt.Errorf("insert receipt file: %w", err)
	}
	return row, false, nil
}

func (r *ReceiptFileRepository) getByHash(ctx context.Context, hash []byte) (*ReceiptFile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source_path, file_ext, content_hash, uploaded_at
		 FROM receipt_files WHERE content_hash = ?`, hash)

	var (
		out ReceiptFile
		id  string
	)
	if err := row.Scan(&id, &out.SourcePath, &out.FileExt, &out.ContentHash, &out.UploadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan receipt file: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse file id: %w", err)
	}
	out.ID = parsed
	return &out, nil
}
