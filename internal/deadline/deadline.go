// Package deadline tracks dated obligations on a process, such as bank
// response windows and deed dates, and raises notifications as they close in.
package deadline

import (
	"strings"
	"time"

	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
)

// NoticeWindow is how far ahead of the due date the sweep raises a
// notification.
const NoticeWindow = 48 * time.Hour

// Deadline is one dated obligation. NotifiedAt is set once the due warning
// has gone out so the sweep never fires twice.
type Deadline struct {
	ID         id.DeadlineID `json:"id"`
	ProcessID  id.ProcessID  `json:"process_id"`
	Title      string        `json:"title"`
	DueAt      time.Time     `json:"due_at"`
	Done       bool          `json:"done"`
	NotifiedAt *time.Time    `json:"notified_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func NewDeadline(deadlineID id.DeadlineID, processID id.ProcessID, title string, dueAt time.Time, now time.Time) (*Deadline, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if processID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "process_id is required")
	}
	if dueAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "due_at is required")
	}
	return &Deadline{
		ID:        deadlineID,
		ProcessID: processID,
		Title:     title,
		DueAt:     dueAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DueSoon reports whether the sweep should warn about this deadline now.
func (d *Deadline) DueSoon(now time.Time) bool {
	if d.Done || d.NotifiedAt != nil {
		return false
	}
	return d.DueAt.Before(now.Add(NoticeWindow))
}
