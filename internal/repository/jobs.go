package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ReportJob mirrors one row of the report_jobs table.
type ReportJob struct {
	ID          uuid.UUID
	ReportID    uuid.UUID
	Status      string
	Priority    int
	Attempts    int
	MaxAttempts int
	LastError   sql.NullString
	CreatedAt   time.Time
	StartedAt   sql.NullTime
	FinishedAt  sql.NullTime
}

const jobColumns = `
	id, report_id, status, priority, attempts, max_attempts, last_error,
	created_at, started_at, finished_at`

func scanJob(row *sql.Row) (ReportJob, error) {
	var j ReportJob
	err := row.Scan(
		&j.ID, &j.ReportID, &j.Status, &j.Priority, &j.Attempts, &j.MaxAttempts,
		&j.LastError, &j.CreatedAt, &j.StartedAt, &j.FinishedAt,
	)
	return j, err
}

type CreateReportJobParams struct {
	ReportID    uuid.UUID
	Priority    int
	MaxAttempts int
}

func (q *Queries) CreateReportJob(ctx context.Context, arg CreateReportJobParams) (ReportJob, error) {
	row := q.db.QueryRowContext(ctx, `
INSERT INTO report_jobs (report_id, priority, max_attempts)
VALUES ($1, $2, $3)
RETURNING`+jobColumns,
		arg.ReportID, arg.Priority, arg.MaxAttempts,
	)
	return scanJob(row)
}

func (q *Queries) GetReportJobByID(ctx context.Context, id uuid.UUID) (ReportJob, error) {
	row := q.db.QueryRowContext(ctx, `
SELECT`+jobColumns+`
FROM report_jobs
WHERE id = $1`,
		id,
	)
	return scanJob(row)
}

// GetActiveJobByReportID returns the pending or processing job for a
// report, if one exists. Enqueue uses it to dedupe: at most one active job
// per report, enforced best-effort at creation time.
func (q *Queries) GetActiveJobByReportID(ctx context.Context, reportID uuid.UUID) (ReportJob, error) {
	row := q.db.QueryRowContext(ctx, `
SELECT`+jobColumns+`
FROM report_jobs
WHERE report_id = $1 AND status IN ('pending', 'processing')
ORDER BY created_at DESC
LIMIT 1`,
		reportID,
	)
	return scanJob(row)
}

// ClaimPendingJobs atomically claims up to limit pending jobs ordered by
// priority then age, flips them to processing, and increments attempts.
// SKIP LOCKED keeps concurrent workers from claiming the same rows; being
// a single statement, the claim commits before any rendering starts.
func (q *Queries) ClaimPendingJobs(ctx context.Context, limit int32) ([]ReportJob, error) {
	rows, err := q.db.QueryContext(ctx, `
WITH picked AS (
	SELECT id FROM report_jobs
	WHERE status = 'pending'
	ORDER BY priority ASC, created_at ASC
	FOR UPDATE SKIP LOCKED
	LIMIT $1
)
UPDATE report_jobs j SET
	status = 'processing',
	attempts = j.attempts + 1,
	started_at = now()
FROM picked
WHERE j.id = picked.id
RETURNING j.id, j.report_id, j.status, j.priority, j.attempts, j.max_attempts,
	j.last_error, j.created_at, j.started_at, j.finished_at`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []ReportJob
	for rows.Next() {
		var j ReportJob
		if err := rows.Scan(
			&j.ID, &j.ReportID, &j.Status, &j.Priority, &j.Attempts, &j.MaxAttempts,
			&j.LastError, &j.CreatedAt, &j.StartedAt, &j.FinishedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (q *Queries) CompleteReportJob(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE report_jobs SET
	status = 'completed',
	last_error = NULL,
	finished_at = now()
WHERE id = $1`,
		id,
	)
	return err
}

type FailReportJobParams struct {
	ID        uuid.UUID
	LastError string
}

func (q *Queries) FailReportJob(ctx context.Context, arg FailReportJobParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE report_jobs SET
	status = 'failed',
	last_error = $2,
	finished_at = now()
WHERE id = $1`,
		arg.ID, arg.LastError,
	)
	return err
}

// RecoverStaleJobs re-queues processing jobs whose worker disappeared
// before finishing, identified by a started_at older than the cutoff.
func (q *Queries) RecoverStaleJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
UPDATE report_jobs SET
	status = 'pending',
	started_at = NULL
WHERE status = 'processing' AND started_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
