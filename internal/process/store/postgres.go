package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"brokerdesk/internal/platform/postgres"
	"brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres keeps processes in the processes table with the history log
// serialized into a JSONB column.
type Postgres struct {
	pool *postgres.Pool
}

func NewPostgres(pool *postgres.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, process *models.Process) error {
	history, err := json.Marshal(process.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO processes (id, client_id, agent_id, process_type, kanban_column, status, history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		process.ID.String(), process.ClientID.String(), process.AgentID.String(),
		string(process.Type), process.Column, string(process.Status),
		history, process.CreatedAt, process.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert process: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, processID id.ProcessID) (*models.Process, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, client_id, agent_id, process_type, kanban_column, status, history, created_at, updated_at
		FROM processes WHERE id = $1`, processID.String())
	process, err := scanProcess(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select process: %w", err)
	}
	return process, nil
}

func (s *Postgres) List(ctx context.Context, filter Filter) ([]*models.Process, error) {
	query := `
		SELECT id, client_id, agent_id, process_type, kanban_column, status, history, created_at, updated_at
		FROM processes`
	var (
		clauses []string
		args    []any
	)
	if filter.Column != "" {
		args = append(args, filter.Column)
		clauses = append(clauses, fmt.Sprintf("kanban_column = $%d", len(args)))
	}
	if !filter.AgentID.IsZero() {
		args = append(args, filter.AgentID.String())
		clauses = append(clauses, fmt.Sprintf("agent_id = $%d", len(args)))
	}
	if !filter.ClientID.IsZero() {
		args = append(args, filter.ClientID.String())
		clauses = append(clauses, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select processes: %w", err)
	}
	defer rows.Close()

	var out []*models.Process
	for rows.Next() {
		process, err := scanProcess(rows)
		if err != nil {
			return nil, fmt.Errorf("scan process: %w", err)
		}
		out = append(out, process)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, process *models.Process) error {
	history, err := json.Marshal(process.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE processes
		SET agent_id = $2, kanban_column = $3, status = $4, history = $5, updated_at = $6
		WHERE id = $1`,
		process.ID.String(), process.AgentID.String(), process.Column,
		string(process.Status), history, process.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update process: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanProcess(row pgx.Row) (*models.Process, error) {
	var (
		process models.Process
		rawID   string
		client  string
		agent   string
		history []byte
	)
	err := row.Scan(&rawID, &client, &agent, &process.Type, &process.Column,
		&process.Status, &history, &process.CreatedAt, &process.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if process.ID, err = id.ParseProcessID(rawID); err != nil {
		return nil, err
	}
	if process.ClientID, err = id.ParseClientID(client); err != nil {
		return nil, err
	}
	if process.AgentID, err = id.ParseUserID(agent); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &process.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return &process, nil
}
