package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"brokerdesk/internal/client/models"
	"brokerdesk/internal/platform/postgres"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres persists clients with the nested sub-objects as JSONB columns.
type Postgres struct {
	pool *postgres.Pool
}

func NewPostgres(pool *postgres.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, client *models.Client) error {
	personal, financial, realestate, err := marshalSubObjects(client)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO clients (id, name, email, phone, nif, personal, financial, realestate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(client.ID), client.Name, client.Email, client.Phone, client.NIF,
		personal, financial, realestate, string(client.Status),
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, nif, personal, financial, realestate, status, created_at, updated_at
		FROM clients WHERE id = $1`, uuid.UUID(clientID))
	client, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	return client, nil
}

func (s *Postgres) List(ctx context.Context, filter Filter) ([]*models.Client, error) {
	query := `
		SELECT id, name, email, phone, nif, personal, financial, realestate, status, created_at, updated_at
		FROM clients`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, client *models.Client) error {
	personal, financial, realestate, err := marshalSubObjects(client)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, nif = $5, personal = $6,
		    financial = $7, realestate = $8, status = $9, updated_at = $10
		WHERE id = $1`,
		uuid.UUID(client.ID), client.Name, client.Email, client.Phone, client.NIF,
		personal, financial, realestate, string(client.Status), client.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func marshalSubObjects(client *models.Client) (personal, financial, realestate []byte, err error) {
	if personal, err = json.Marshal(client.Personal); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal personal data: %w", err)
	}
	if financial, err = json.Marshal(client.Financial); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal financial data: %w", err)
	}
	if realestate, err = json.Marshal(client.RealEstate); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal realestate data: %w", err)
	}
	return personal, financial, realestate, nil
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var (
		client                         models.Client
		cid                            uuid.UUID
		status                         string
		personal, financial, realstate []byte
	)
	if err := row.Scan(&cid, &client.Name, &client.Email, &client.Phone, &client.NIF,
		&personal, &financial, &realstate, &status, &client.CreatedAt, &client.UpdatedAt); err != nil {
		return nil, err
	}
	client.ID = id.ClientID(cid)
	client.Status = models.Status(status)
	if err := json.Unmarshal(personal, &client.Personal); err != nil {
		return nil, fmt.Errorf("unmarshal personal data: %w", err)
	}
	if err := json.Unmarshal(financial, &client.Financial); err != nil {
		return nil, fmt.Errorf("unmarshal financial data: %w", err)
	}
	if err := json.Unmarshal(realstate, &client.RealEstate); err != nil {
		return nil, fmt.Errorf("unmarshal realestate data: %w", err)
	}
	return &client, nil
}
