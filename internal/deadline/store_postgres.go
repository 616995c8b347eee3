package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"brokerdesk/internal/platform/postgres"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, deadline *Deadline) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO deadlines (id, process_id, title, due_at, done, notified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		deadline.ID.String(), deadline.ProcessID.String(), deadline.Title,
		deadline.DueAt, deadline.Done, deadline.NotifiedAt,
		deadline.CreatedAt, deadline.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deadline: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, deadlineID id.DeadlineID) (*Deadline, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, process_id, title, due_at, done, notified_at, created_at, updated_at
		FROM deadlines WHERE id = $1`, deadlineID.String())
	deadline, err := scanDeadline(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select deadline: %w", err)
	}
	return deadline, nil
}

func (s *PostgresStore) ListByProcess(ctx context.Context, processID id.ProcessID) ([]*Deadline, error) {
	return s.list(ctx, `WHERE process_id = $1`, processID.String())
}

func (s *PostgresStore) ListDueBefore(ctx context.Context, cutoff time.Time) ([]*Deadline, error) {
	return s.list(ctx, `WHERE done = FALSE AND notified_at IS NULL AND due_at < $1`, cutoff)
}

func (s *PostgresStore) list(ctx context.Context, where string, arg any) ([]*Deadline, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, process_id, title, due_at, done, notified_at, created_at, updated_at
		FROM deadlines `+where+` ORDER BY due_at`, arg)
	if err != nil {
		return nil, fmt.Errorf("select deadlines: %w", err)
	}
	defer rows.Close()

	var out []*Deadline
	for rows.Next() {
		deadline, err := scanDeadline(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deadline: %w", err)
		}
		out = append(out, deadline)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, deadline *Deadline) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE deadlines
		SET title = $2, due_at = $3, done = $4, notified_at = $5, updated_at = $6
		WHERE id = $1`,
		deadline.ID.String(), deadline.Title, deadline.DueAt, deadline.Done,
		deadline.NotifiedAt, deadline.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update deadline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanDeadline(row pgx.Row) (*Deadline, error) {
	var (
		deadline Deadline
		rawID    string
		process  string
	)
	err := row.Scan(&rawID, &process, &deadline.Title, &deadline.DueAt,
		&deadline.Done, &deadline.NotifiedAt, &deadline.CreatedAt, &deadline.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if deadline.ID, err = id.ParseDeadlineID(rawID); err != nil {
		return nil, err
	}
	if deadline.ProcessID, err = id.ParseProcessID(process); err != nil {
		return nil, err
	}
	return &deadline, nil
}
