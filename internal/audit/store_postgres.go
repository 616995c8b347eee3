package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"brokerdesk/internal/platform/postgres"
	id "brokerdesk/pkg/domain"
)

// PostgresStore persists the audit trail in the audit_events table.
type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (category, action, actor_id, subject, process_id, request_id, device, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(event.Category),
		string(event.Action),
		nullUUID(uuid.UUID(event.ActorID)),
		event.Subject,
		nullUUID(uuid.UUID(event.ProcessID)),
		event.RequestID,
		event.Device,
		event.At,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT category, action, actor_id, subject, process_id, request_id, device, at
		FROM audit_events
		ORDER BY at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event              Event
			actorID, processID *uuid.UUID
		)
		if err := rows.Scan(
			&event.Category, &event.Action, &actorID, &event.Subject,
			&processID, &event.RequestID, &event.Device, &event.At,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if actorID != nil {
			event.ActorID = id.UserID(*actorID)
		}
		if processID != nil {
			event.ProcessID = id.ProcessID(*processID)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullUUID(u uuid.UUID) *uuid.UUID {
	if u == uuid.Nil {
		return nil
	}
	return &u
}
