package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"brokerdesk/internal/platform/postgres"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, property *Property) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO properties (id, reference, address, municipality, typology, price, area, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		property.ID.String(), property.Reference, property.Address,
		property.Municipality, property.Typology, property.Price, property.Area,
		string(property.Status), property.CreatedAt, property.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, propertyID id.PropertyID) (*Property, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, reference, address, municipality, typology, price, area, status, created_at, updated_at
		FROM properties WHERE id = $1`, propertyID.String())
	property, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select property: %w", err)
	}
	return property, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*Property, error) {
	query := `
		SELECT id, reference, address, municipality, typology, price, area, status, created_at, updated_at
		FROM properties`
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Municipality != "" {
		args = append(args, filter.Municipality)
		clauses = append(clauses, fmt.Sprintf("lower(municipality) = lower($%d)", len(args)))
	}
	if filter.Typology != "" {
		args = append(args, filter.Typology)
		clauses = append(clauses, fmt.Sprintf("lower(typology) = lower($%d)", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select properties: %w", err)
	}
	defer rows.Close()

	var out []*Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, property)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, property *Property) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE properties
		SET address = $2, municipality = $3, typology = $4, price = $5, area = $6, status = $7, updated_at = $8
		WHERE id = $1`,
		property.ID.String(), property.Address, property.Municipality,
		property.Typology, property.Price, property.Area,
		string(property.Status), property.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanProperty(row pgx.Row) (*Property, error) {
	var (
		property Property
		rawID    string
	)
	err := row.Scan(&rawID, &property.Reference, &property.Address,
		&property.Municipality, &property.Typology, &property.Price,
		&property.Area, &property.Status, &property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if property.ID, err = id.ParsePropertyID(rawID); err != nil {
		return nil, err
	}
	return &property, nil
}
