package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"brokerdesk/internal/jobs/models"
	"brokerdesk/internal/platform/postgres"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

type Postgres struct {
	pool *postgres.Pool
}

func NewPostgres(pool *postgres.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO jobs (id, kind, payload, status, error, created_at, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID.String(), job.Kind, []byte(job.Payload), string(job.Status),
		job.Error, job.CreatedAt, job.StartedAt, job.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, jobID id.JobID) (*models.Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, kind, payload, status, error, created_at, started_at, finished_at
		FROM jobs WHERE id = $1`, jobID.String())
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select job: %w", err)
	}
	return job, nil
}

func (s *Postgres) List(ctx context.Context, status models.Status) ([]*models.Job, error) {
	query := `
		SELECT id, kind, payload, status, error, created_at, started_at, finished_at
		FROM jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select jobs: %w", err)
	}
	defer rows.Close()

	var out []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// ClaimNext takes the oldest pending job with SKIP LOCKED so concurrent
// workers never grab the same row.
func (s *Postgres) ClaimNext(ctx context.Context) (*models.Job, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE jobs
		SET status = 'running', started_at = now()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = 'pending'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, kind, payload, status, error, created_at, started_at, finished_at`)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

func (s *Postgres) Finish(ctx context.Context, job *models.Job) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET status = $2, error = $3, finished_at = $4
		WHERE id = $1`,
		job.ID.String(), string(job.Status), job.Error, job.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var (
		job     models.Job
		rawID   string
		payload []byte
	)
	err := row.Scan(&rawID, &job.Kind, &payload, &job.Status, &job.Error,
		&job.CreatedAt, &job.StartedAt, &job.FinishedAt)
	if err != nil {
		return nil, err
	}
	if job.ID, err = id.ParseJobID(rawID); err != nil {
		return nil, err
	}
	job.Payload = payload
	return &job, nil
}
