package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bff-tools/receipts-pipeline/constants"
)

// JobOutcome records how one extraction attempt finished.
type JobOutcome struct {
	Status       constants.JobStatus
	ErrorMessage string
	RenamedPath  string
	MetadataPath string
}

type ExtractJobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExtractJobRepository(db *sql.DB, logger *slog.Logger) *ExtractJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractJobRepository{db: db, logger: logger}
}

// Start inserts a QUEUED job row for the file and returns its id.
func (r *ExtractJobRepository) Start(ctx context.Context, fileID uuid.UUID) (uuid.UUID, error) {
	jobID := uuid.New()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extract_jobs (id, file_id, status, started_at)
		 VALUES (?, ?, ?, ?)`,
		jobID.String(), fileID.String(), string(constants.JobStatusQueued), time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert extract job: %w", err)
	}
	return jobID, nil
}

// MarkRunning flips a queued job to RUNNING once its oracle call is in flight.
func (r *ExtractJobRepository) MarkRunning(ctx context.Context, jobID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extract_jobs SET status = ? WHERE id = ?`,
		string(constants.JobStatusRunning), jobID.String())
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	return nil
}

// Finish stamps the terminal status and output paths onto a job row.
func (r *ExtractJobRepository) Finish(ctx context.Context, jobID uuid.UUID, out JobOutcome) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extract_jobs
		 SET status = ?, finished_at = ?, error_message = ?, renamed_path = ?, metadata_path = ?
		 WHERE id = ?`,
		string(out.Status), time.Now().UTC(), out.ErrorMessage, out.RenamedPath, out.MetadataPath,
		jobID.String())
	if err != nil {
		return fmt.Errorf("finish extract job: %w", err)
	}
	return nil
}

// CountByStatus groups job rows by status, for the batch summary log line.
func (r *ExtractJobRepository) CountByStatus(ctx context.Context) (map[constants.JobStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM extract_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	out := make(map[constants.JobStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan job count: %w", err)
		}
		out[constants.JobStatus(status)] = n
	}
	return out, rows.Err()
}
