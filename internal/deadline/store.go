package deadline

import (
	"context"
	"time"

	id "brokerdesk/pkg/domain"
)

// Store persists deadlines. ListDueBefore feeds the background sweep and
// returns only open, never-notified deadlines due before the cutoff.
type Store interface {
	Create(ctx context.Context, deadline *Deadline) error
	FindByID(ctx context.Context, deadlineID id.DeadlineID) (*Deadline, error)
	ListByProcess(ctx context.Context, processID id.ProcessID) ([]*Deadline, error)
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]*Deadline, error)
	Update(ctx context.Context, deadline *Deadline) error
}
