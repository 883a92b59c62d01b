// Package batch runs the document pipeline over many inputs, records every
// job in a SQLite store, and summarizes the run as an XLSX report. One bad
// document never aborts the batch.
package batch

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/calibtools/dcc-convert/constants"
	"github.com/calibtools/dcc-convert/internal/common"
)

const jobsDDL = `
CREATE TABLE IF NOT EXISTS jobs (
	id                 TEXT PRIMARY KEY,
	source_path        TEXT NOT NULL,
	content_hash       TEXT NOT NULL DEFAULT '',
	format             TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL,
	certificate_number TEXT NOT NULL DEFAULT '',
	output_path        TEXT NOT NULL DEFAULT '',
	error_message      TEXT NOT NULL DEFAULT '',
	warning_count      INTEGER NOT NULL DEFAULT 0,
	finding_count      INTEGER NOT NULL DEFAULT 0,
	started_at         TIMESTAMP NOT NULL,
	finished_at        TIMESTAMP
);
CREATE INDEX IF NOT EXISTS jobs_status_idx ON jobs (status);
`

// JobRow is one persisted batch job.
type JobRow struct {
	ID                uuid.UUID
	SourcePath        string
	ContentHash       string
	Format            string
	Status            constants.JobStatus
	CertificateNumber string
	OutputPath        string
	ErrorMessage      string
	WarningCount      int
	FindingCount      int
	StartedAt         time.Time
	FinishedAt        *time.Time
}

// Store persists batch jobs in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenStore(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	// modernc sqlite serializes writes itself; a single conn avoids
	// table-lock errors under concurrent workers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(jobsDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init job store schema: %w", err)
	}
	logger.Debug("batch.store.open", "dsn", dsn)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Start records a job entering the pipeline.
func (s *Store) Start(ctx context.Context, id uuid.UUID, sourcePath, contentHash, format string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, source_path, content_hash, format, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), sourcePath, contentHash, format, string(constants.JobStatusRunning), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// SetStatus advances a running job to an intermediate stage.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE id = ?`,
		string(status), id.String(),
	)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// Finish records the terminal state of a job.
func (s *Store) Finish(ctx context.Context, id uuid.UUID, o Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs
		 SET status = ?, certificate_number = ?, output_path = ?, error_message = ?,
		     warning_count = ?, finding_count = ?, finished_at = ?
		 WHERE id = ?`,
		string(o.Status), o.CertificateNumber, o.OutputPath, o.Error,
		len(o.Warnings), len(o.Findings), time.Now().UTC(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// Get returns one job by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*JobRow, error) {
	rows, err := s.queryJobs(ctx, `WHERE id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("job %s", id), common.ErrNotFound)
	}
	return &rows[0], nil
}

// List returns all jobs ordered by start time.
func (s *Store) List(ctx context.Context) ([]JobRow, error) {
	return s.queryJobs(ctx, ``)
}

func (s *Store) queryJobs(ctx context.Context, where string, args ...any) ([]JobRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, content_hash, format, status, certificate_number,
		        output_path, error_message, warning_count, finding_count, started_at, finished_at
		 FROM jobs `+where+` ORDER BY started_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []JobRow
	for rows.Next() {
		var r JobRow
		var id, status string
		var finished sql.NullTime
		if err := rows.Scan(&id, &r.SourcePath, &r.ContentHash, &r.Format, &status,
			&r.CertificateNumber, &r.OutputPath, &r.ErrorMessage,
			&r.WarningCount, &r.FindingCount, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		r.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse job id: %w", err)
		}
		r.Status = constants.JobStatus(status)
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
