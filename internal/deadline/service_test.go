package deadline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	notifmodels "brokerdesk/internal/notification/models"
	"brokerdesk/internal/pipeline"
	processmodels "brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/requestcontext"
)

type stubProcesses struct {
	process *processmodels.Process
}

func (p *stubProcesses) GetProcess(_ context.Context, processID id.ProcessID) (*processmodels.Process, error) {
	if p.process == nil || p.process.ID != processID {
		return nil, dErrors.New(dErrors.CodeNotFound, "process not found")
	}
	return p.process, nil
}

func (p *stubProcesses) FindByID(ctx context.Context, processID id.ProcessID) (*processmodels.Process, error) {
	return p.GetProcess(ctx, processID)
}

type notified struct {
	userID  id.UserID
	kind    notifmodels.Kind
	message string
}

type stubNotifier struct {
	sent []notified
}

func (n *stubNotifier) Notify(_ context.Context, userID id.UserID, kind notifmodels.Kind, message string, _ id.ProcessID) error {
	n.sent = append(n.sent, notified{userID: userID, kind: kind, message: message})
	return nil
}

type DeadlineServiceSuite struct {
	suite.Suite
	store     *MemoryStore
	processes *stubProcesses
	notifier  *stubNotifier
	service   *Service

	agentID id.UserID
	now     time.Time
}

func TestDeadlineServiceSuite(t *testing.T) {
	suite.Run(t, new(DeadlineServiceSuite))
}

func (s *DeadlineServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = NewMemoryStore()
	s.agentID = id.UserID(uuid.New())
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.processes = &stubProcesses{process: &processmodels.Process{
		ID:      id.ProcessID(uuid.New()),
		AgentID: s.agentID,
		Column:  pipeline.ColumnBankSubmission,
		Status:  processmodels.StatusOpen,
	}}
	s.notifier = &stubNotifier{}
	s.service = NewService(s.store, s.processes, s.processes, s.notifier, logger)
}

func (s *DeadlineServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *DeadlineServiceSuite) createDueIn(offset time.Duration) *Deadline {
	deadline, err := s.service.CreateDeadline(s.ctx(), s.processes.process.ID, CreateParams{
		Title: "bank response",
		DueAt: s.now.Add(offset),
	})
	s.Require().NoError(err)
	return deadline
}

func (s *DeadlineServiceSuite) TestCreateDeadline() {
	s.Run("creates against an existing process", func() {
		deadline := s.createDueIn(72 * time.Hour)
		s.Equal(s.processes.process.ID, deadline.ProcessID)
		s.False(deadline.Done)
		s.Nil(deadline.NotifiedAt)
	})

	s.Run("unknown process is rejected", func() {
		_, err := s.service.CreateDeadline(s.ctx(), id.ProcessID(uuid.New()), CreateParams{
			Title: "bank response",
			DueAt: s.now.Add(time.Hour),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty title is rejected", func() {
		_, err := s.service.CreateDeadline(s.ctx(), s.processes.process.ID, CreateParams{
			DueAt: s.now.Add(time.Hour),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *DeadlineServiceSuite) TestMarkDone() {
	deadline := s.createDueIn(time.Hour)

	done, err := s.service.MarkDone(s.ctx(), s.processes.process.ID, deadline.ID)
	s.Require().NoError(err)
	s.True(done.Done)

	s.Run("marking twice conflicts", func() {
		_, err := s.service.MarkDone(s.ctx(), s.processes.process.ID, deadline.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("done deadlines drop out of the sweep", func() {
		count, err := s.service.Sweep(context.Background(), s.now)
		s.Require().NoError(err)
		s.Zero(count)
		s.Empty(s.notifier.sent)
	})
}

func (s *DeadlineServiceSuite) TestSweep() {
	soon := s.createDueIn(12 * time.Hour)
	s.createDueIn(7 * 24 * time.Hour)

	count, err := s.service.Sweep(context.Background(), s.now)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.Require().Len(s.notifier.sent, 1)
	s.Equal(s.agentID, s.notifier.sent[0].userID)
	s.Equal(notifmodels.KindDeadlineDue, s.notifier.sent[0].kind)
	s.Contains(s.notifier.sent[0].message, "bank response")

	stamped, err := s.store.FindByID(context.Background(), soon.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stamped.NotifiedAt)
	s.True(stamped.NotifiedAt.Equal(s.now))

	s.Run("a stamped deadline never fires twice", func() {
		count, err := s.service.Sweep(context.Background(), s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Zero(count)
		s.Len(s.notifier.sent, 1)
	})
}

func (s *DeadlineServiceSuite) TestDueSoon() {
	deadline := &Deadline{DueAt: s.now.Add(12 * time.Hour)}
	s.True(deadline.DueSoon(s.now))

	deadline.DueAt = s.now.Add(NoticeWindow + time.Hour)
	s.False(deadline.DueSoon(s.now))

	deadline.DueAt = s.now.Add(12 * time.Hour)
	deadline.Done = true
	s.False(deadline.DueSoon(s.now))
}
