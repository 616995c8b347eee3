// Package store persists notifications.
package store

import (
	"context"

	"brokerdesk/internal/notification/models"
	id "brokerdesk/pkg/domain"
)

// Store is the notification persistence interface.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListForUser returns the user's notifications, newest first,
	// optionally restricted to unread ones.
	ListForUser(ctx context.Context, userID id.UserID, unreadOnly bool) ([]*models.Notification, error)
	// MarkRead flips one notification owned by userID to read.
	MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
	// MarkAllRead flips every unread notification of the user.
	MarkAllRead(ctx context.Context, userID id.UserID) error
}
