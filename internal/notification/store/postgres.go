package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"brokerdesk/internal/notification/models"
	"brokerdesk/internal/platform/postgres"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

// Postgres persists notifications in the notifications table.
type Postgres struct {
	pool *postgres.Pool
}

func NewPostgres(pool *postgres.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, n *models.Notification) error {
	var processID *uuid.UUID
	if !n.ProcessID.IsZero() {
		pid := uuid.UUID(n.ProcessID)
		processID = &pid
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, kind, message, process_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(n.ID), uuid.UUID(n.UserID), string(n.Kind), n.Message,
		processID, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *Postgres) ListForUser(ctx context.Context, userID id.UserID, unreadOnly bool) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, kind, message, process_id, read, created_at
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := s.pool.Query(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var (
			n         models.Notification
			nid, uid  uuid.UUID
			kind      string
			processID *uuid.UUID
		)
		if err := rows.Scan(&nid, &uid, &kind, &n.Message, &processID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = id.NotificationID(nid)
		n.UserID = id.UserID(uid)
		n.Kind = models.Kind(kind)
		if processID != nil {
			n.ProcessID = id.ProcessID(*processID)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		uuid.UUID(notificationID), uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) MarkAllRead(ctx context.Context, userID id.UserID) error {
	if _, err := s.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		uuid.UUID(userID)); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
