package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"brokerdesk/internal/lead/models"
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

func (s *Postgres) Create(ctx context.Context, lead *models.Lead) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (id, source, url, title, municipality, typology, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		lead.ID.String(), string(lead.Source), lead.URL, lead.Title,
		lead.Municipality, lead.Typology, lead.Price, string(lead.Status),
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, leadID id.LeadID) (*models.Lead, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, source, url, title, municipality, typology, price, status, created_at, updated_at
		FROM leads WHERE id = $1`, leadID.String())
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select lead: %w", err)
	}
	return lead, nil
}

func (s *Postgres) List(ctx context.Context, filter Filter) ([]*models.Lead, error) {
	query := `
		SELECT id, source, url, title, municipality, typology, price, status, created_at, updated_at
		FROM leads`
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, string(filter.Source))
		clauses = append(clauses, fmt.Sprintf("source = $%d", len(args)))
	}
	if !filter.CreatedAfter.IsZero() {
		args = append(args, filter.CreatedAfter)
		clauses = append(clauses, fmt.Sprintf("created_at > $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	defer rows.Close()

	var out []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, lead *models.Lead) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE leads
		SET url = $2, title = $3, municipality = $4, typology = $5, price = $6, status = $7, updated_at = $8
		WHERE id = $1`,
		lead.ID.String(), lead.URL, lead.Title, lead.Municipality,
		lead.Typology, lead.Price, string(lead.Status), lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var (
		lead  models.Lead
		rawID string
	)
	err := row.Scan(&rawID, &lead.Source, &lead.URL, &lead.Title,
		&lead.Municipality, &lead.Typology, &lead.Price, &lead.Status,
		&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lead.ID, err = id.ParseLeadID(rawID); err != nil {
		return nil, err
	}
	return &lead, nil
}
