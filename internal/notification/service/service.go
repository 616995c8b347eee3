// Package service persists notifications and hands them to the push path.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"brokerdesk/internal/notification/models"
	"brokerdesk/internal/notification/store"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
)

// Pusher delivers a just-created notification towards connected sessions.
// Implementations: redis publish (cross-process) or a direct hub push.
type Pusher interface {
	Push(ctx context.Context, n *models.Notification) error
}

// Service is the notification orchestrator used by every other module.
type Service struct {
	notifications store.Store
	pusher        Pusher
	logger        *slog.Logger
}

func New(notifications store.Store, pusher Pusher, logger *slog.Logger) *Service {
	return &Service{notifications: notifications, pusher: pusher, logger: logger}
}

// Notify persists a notification and pushes it best-effort. Push failures are
// logged, never propagated: the record is already durable.
func (s *Service) Notify(ctx context.Context, userID id.UserID, kind models.Kind, message string, processID id.ProcessID) error {
	if userID.IsZero() {
		return nil
	}
	n := &models.Notification{
		ID:        id.NotificationID(uuid.New()),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		ProcessID: processID,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store notification")
	}
	if s.pusher != nil {
		if err := s.pusher.Push(ctx, n); err != nil {
			s.logger.WarnContext(ctx, "notification push failed",
				"user_id", userID.String(),
				"error", err,
			)
		}
	}
	return nil
}

func (s *Service) ListForUser(ctx context.Context, userID id.UserID, unreadOnly bool) ([]*models.Notification, error) {
	out, err := s.notifications.ListForUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	if err := s.notifications.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID id.UserID) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	return nil
}

// Envelope is the JSON frame pushed over redis and the WebSocket.
type Envelope struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification"`
}

// Encode wraps a notification in its wire envelope.
func Encode(n *models.Notification) ([]byte, error) {
	return json.Marshal(Envelope{Type: "notification", Notification: n})
}
