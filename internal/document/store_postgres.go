package document

import (
	"context"
	"errors"
	"fmt"

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

func (s *PostgresStore) Create(ctx context.Context, document *Document) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, process_id, kind, file_name, status, note, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		document.ID.String(), document.ProcessID.String(), document.Kind,
		document.FileName, string(document.Status), document.Note,
		document.UploadedBy.String(), document.CreatedAt, document.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, documentID id.DocumentID) (*Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, process_id, kind, file_name, status, note, uploaded_by, created_at, updated_at
		FROM documents WHERE id = $1`, documentID.String())
	document, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}
	return document, nil
}

func (s *PostgresStore) ListByProcess(ctx context.Context, processID id.ProcessID) ([]*Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, process_id, kind, file_name, status, note, uploaded_by, created_at, updated_at
		FROM documents WHERE process_id = $1 ORDER BY created_at`, processID.String())
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, document)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, document *Document) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET file_name = $2, status = $3, note = $4, updated_at = $5
		WHERE id = $1`,
		document.ID.String(), document.FileName, string(document.Status),
		document.Note, document.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	var (
		document   Document
		rawID      string
		process    string
		uploadedBy string
	)
	err := row.Scan(&rawID, &process, &document.Kind, &document.FileName,
		&document.Status, &document.Note, &uploadedBy,
		&document.CreatedAt, &document.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if document.ID, err = id.ParseDocumentID(rawID); err != nil {
		return nil, err
	}
	if document.ProcessID, err = id.ParseProcessID(process); err != nil {
		return nil, err
	}
	if document.UploadedBy, err = id.ParseUserID(uploadedBy); err != nil {
		return nil, err
	}
	return &document, nil
}
