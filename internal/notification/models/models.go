package models

import (
	"time"

	id "brokerdesk/pkg/domain"
)

// Kind labels what triggered a notification.
type Kind string

const (
	KindProcessMoved    Kind = "process_moved"
	KindProcessAssigned Kind = "process_assigned"
	KindDeadlineDue     Kind = "deadline_due"
	KindLeadMatch       Kind = "lead_match"
)

// Notification is a per-user message, persisted and (best-effort) pushed to
// connected WebSocket sessions.
type Notification struct {
	ID        id.NotificationID `json:"id"`
	UserID    id.UserID         `json:"user_id"`
	Kind      Kind              `json:"kind"`
	Message   string            `json:"message"`
	ProcessID id.ProcessID      `json:"process_id,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
