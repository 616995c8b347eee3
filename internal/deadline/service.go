package deadline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	notifmodels "brokerdesk/internal/notification/models"
	processmodels "brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
)

// ProcessReader loads a process with the caller's visibility rules applied.
type ProcessReader interface {
	GetProcess(ctx context.Context, processID id.ProcessID) (*processmodels.Process, error)
}

// ProcessFinder is the unscoped lookup the sweep uses; the worker has no
// request identity to scope by.
type ProcessFinder interface {
	FindByID(ctx context.Context, processID id.ProcessID) (*processmodels.Process, error)
}

// Notifier delivers in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, userID id.UserID, kind notifmodels.Kind, message string, processID id.ProcessID) error
}

// Service handles deadlines and the due-soon sweep.
type Service struct {
	deadlines Store
	processes ProcessReader
	finder    ProcessFinder
	notifier  Notifier
	logger    *slog.Logger
}

func NewService(deadlines Store, processes ProcessReader, finder ProcessFinder, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		deadlines: deadlines,
		processes: processes,
		finder:    finder,
		notifier:  notifier,
		logger:    logger,
	}
}

type CreateParams struct {
	Title string    `json:"title"`
	DueAt time.Time `json:"due_at"`
}

func (s *Service) CreateDeadline(ctx context.Context, processID id.ProcessID, params CreateParams) (*Deadline, error) {
	process, err := s.processes.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	deadline, err := NewDeadline(id.DeadlineID(uuid.New()), process.ID,
		params.Title, params.DueAt, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.deadlines.Create(ctx, deadline); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create deadline")
	}
	return deadline, nil
}

func (s *Service) ListForProcess(ctx context.Context, processID id.ProcessID) ([]*Deadline, error) {
	if _, err := s.processes.GetProcess(ctx, processID); err != nil {
		return nil, err
	}
	deadlines, err := s.deadlines.ListByProcess(ctx, processID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list deadlines")
	}
	return deadlines, nil
}

// MarkDone completes a deadline; done deadlines drop out of the sweep.
func (s *Service) MarkDone(ctx context.Context, processID id.ProcessID, deadlineID id.DeadlineID) (*Deadline, error) {
	if _, err := s.processes.GetProcess(ctx, processID); err != nil {
		return nil, err
	}
	deadline, err := s.deadlines.FindByID(ctx, deadlineID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "deadline not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load deadline")
	}
	if deadline.ProcessID != processID {
		return nil, dErrors.New(dErrors.CodeNotFound, "deadline not found")
	}
	if deadline.Done {
		return nil, dErrors.New(dErrors.CodeConflict, "deadline is already done")
	}

	deadline.Done = true
	deadline.UpdatedAt = requestcontext.Now(ctx)
	if err := s.deadlines.Update(ctx, deadline); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update deadline")
	}
	return deadline, nil
}

// Sweep warns agents about deadlines closing within the notice window and
// stamps each one so it only fires once. Returns the number of notifications
// sent. Run from the background worker.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	due, err := s.deadlines.ListDueBefore(ctx, now.Add(NoticeWindow))
	if err != nil {
		return 0, fmt.Errorf("list due deadlines: %w", err)
	}

	notified := 0
	for _, deadline := range due {
		process, err := s.finder.FindByID(ctx, deadline.ProcessID)
		if err != nil {
			s.logger.WarnContext(ctx, "process lookup failed during deadline sweep",
				slog.String("deadline_id", deadline.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		message := fmt.Sprintf("deadline %q is due %s", deadline.Title,
			deadline.DueAt.Format("2006-01-02 15:04"))
		if err := s.notifier.Notify(ctx, process.AgentID, notifmodels.KindDeadlineDue, message, process.ID); err != nil {
			s.logger.WarnContext(ctx, "deadline notification failed",
				slog.String("deadline_id", deadline.ID.String()),
				slog.String("error", err.Error()))
			continue
		}

		at := now
		deadline.NotifiedAt = &at
		deadline.UpdatedAt = now
		if err := s.deadlines.Update(ctx, deadline); err != nil {
			s.logger.ErrorContext(ctx, "failed to stamp notified deadline",
				slog.String("deadline_id", deadline.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		notified++
	}
	return notified, nil
}
