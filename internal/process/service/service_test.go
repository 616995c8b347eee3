package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"brokerdesk/internal/audit"
	notifmodels "brokerdesk/internal/notification/models"
	"brokerdesk/internal/pipeline"
	"brokerdesk/internal/process/metrics"
	"brokerdesk/internal/process/models"
	"brokerdesk/internal/process/store"
	usermodels "brokerdesk/internal/user/models"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/requestcontext"
)

type stubChecker struct {
	clientExists bool
	agentActive  bool
}

func (c *stubChecker) Exists(context.Context, id.ClientID) (bool, error) {
	return c.clientExists, nil
}

func (c *stubChecker) ActiveUser(context.Context, id.UserID) (bool, error) {
	return c.agentActive, nil
}

type capturedNotification struct {
	userID  id.UserID
	kind    notifmodels.Kind
	message string
}

type stubNotifier struct {
	sent []capturedNotification
}

func (n *stubNotifier) Notify(_ context.Context, userID id.UserID, kind notifmodels.Kind, message string, _ id.ProcessID) error {
	n.sent = append(n.sent, capturedNotification{userID: userID, kind: kind, message: message})
	return nil
}

type ProcessServiceSuite struct {
	suite.Suite
	store    *store.Memory
	checker  *stubChecker
	notifier *stubNotifier
	service  *Service

	manager id.UserID
	agent   id.UserID
	now     time.Time
}

func TestProcessServiceSuite(t *testing.T) {
	suite.Run(t, new(ProcessServiceSuite))
}

func (s *ProcessServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewMemory()
	s.checker = &stubChecker{clientExists: true, agentActive: true}
	s.notifier = &stubNotifier{}
	s.service = New(s.store, s.checker, s.checker, s.notifier,
		audit.NewLogPublisher(logger), metrics.NewNop(), logger)

	s.manager = id.UserID(uuid.New())
	s.agent = id.UserID(uuid.New())
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *ProcessServiceSuite) ctxAs(userID id.UserID, role usermodels.Role) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), userID)
	ctx = requestcontext.WithRole(ctx, string(role))
	return requestcontext.WithTime(ctx, s.now)
}

func (s *ProcessServiceSuite) create(ctx context.Context, agentID id.UserID) *models.Process {
	process, err := s.service.CreateProcess(ctx, CreateParams{
		ClientID: id.ClientID(uuid.New()),
		AgentID:  agentID,
		Type:     models.TypeCredit,
	})
	s.Require().NoError(err)
	return process
}

func (s *ProcessServiceSuite) TestCreateProcess() {
	s.Run("starts in the first column with a history entry", func() {
		process := s.create(s.ctxAs(s.manager, usermodels.RoleManager), s.agent)
		s.Equal(pipeline.First(), process.Column)
		s.Equal(models.StatusOpen, process.Status)
		s.Require().Len(process.History, 1)
		s.Equal(s.manager, process.History[0].UserID)
	})

	s.Run("defaults the agent to the caller", func() {
		process := s.create(s.ctxAs(s.agent, usermodels.RoleAgent), id.UserID{})
		s.Equal(s.agent, process.AgentID)
	})

	s.Run("unknown client is rejected", func() {
		s.checker.clientExists = false
		defer func() { s.checker.clientExists = true }()

		_, err := s.service.CreateProcess(s.ctxAs(s.manager, usermodels.RoleManager), CreateParams{
			ClientID: id.ClientID(uuid.New()),
			AgentID:  s.agent,
			Type:     models.TypeCredit,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("inactive agent is rejected", func() {
		s.checker.agentActive = false
		defer func() { s.checker.agentActive = true }()

		_, err := s.service.CreateProcess(s.ctxAs(s.manager, usermodels.RoleManager), CreateParams{
			ClientID: id.ClientID(uuid.New()),
			AgentID:  s.agent,
			Type:     models.TypeCredit,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown type is rejected", func() {
		_, err := s.service.CreateProcess(s.ctxAs(s.manager, usermodels.RoleManager), CreateParams{
			ClientID: id.ClientID(uuid.New()),
			AgentID:  s.agent,
			Type:     "rental",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ProcessServiceSuite) TestAgentScoping() {
	managerCtx := s.ctxAs(s.manager, usermodels.RoleManager)
	mine := s.create(managerCtx, s.agent)
	other := s.create(managerCtx, id.UserID(uuid.New()))

	s.Run("agents read their own processes", func() {
		found, err := s.service.GetProcess(s.ctxAs(s.agent, usermodels.RoleAgent), mine.ID)
		s.Require().NoError(err)
		s.Equal(mine.ID, found.ID)
	})

	s.Run("agents cannot read another agent's process", func() {
		_, err := s.service.GetProcess(s.ctxAs(s.agent, usermodels.RoleAgent), other.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("managers see everything", func() {
		_, err := s.service.GetProcess(managerCtx, other.ID)
		s.Require().NoError(err)
	})

	s.Run("list pins agents to their own board", func() {
		processes, err := s.service.ListProcesses(s.ctxAs(s.agent, usermodels.RoleAgent), ListParams{})
		s.Require().NoError(err)
		s.Require().Len(processes, 1)
		s.Equal(mine.ID, processes[0].ID)
	})
}

func (s *ProcessServiceSuite) TestMoveProcess() {
	managerCtx := s.ctxAs(s.manager, usermodels.RoleManager)
	process := s.create(managerCtx, s.agent)

	s.Run("records the move in history", func() {
		moved, err := s.service.MoveProcess(managerCtx, process.ID, pipeline.ColumnQualification)
		s.Require().NoError(err)
		s.Equal(pipeline.ColumnQualification, moved.Column)
		s.Require().Len(moved.History, 2)
		s.Contains(moved.History[1].Note, "moved from intake to qualification")
	})

	s.Run("notifies the assigned agent", func() {
		s.Require().NotEmpty(s.notifier.sent)
		last := s.notifier.sent[len(s.notifier.sent)-1]
		s.Equal(s.agent, last.userID)
		s.Equal(notifmodels.KindProcessMoved, last.kind)
	})

	s.Run("moving your own process stays quiet", func() {
		sent := len(s.notifier.sent)
		_, err := s.service.MoveProcess(s.ctxAs(s.agent, usermodels.RoleAgent), process.ID, pipeline.ColumnDocumentCollection)
		s.Require().NoError(err)
		s.Len(s.notifier.sent, sent)
	})

	s.Run("unknown column is a bad request", func() {
		_, err := s.service.MoveProcess(managerCtx, process.ID, "limbo")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("any column can follow any other", func() {
		moved, err := s.service.MoveProcess(managerCtx, process.ID, pipeline.ColumnIntake)
		s.Require().NoError(err)
		s.Equal(pipeline.ColumnIntake, moved.Column)
	})
}

func (s *ProcessServiceSuite) TestAssignProcess() {
	managerCtx := s.ctxAs(s.manager, usermodels.RoleManager)
	process := s.create(managerCtx, s.manager)
	newAgent := id.UserID(uuid.New())

	assigned, err := s.service.AssignProcess(managerCtx, process.ID, newAgent)
	s.Require().NoError(err)
	s.Equal(newAgent, assigned.AgentID)

	s.Require().NotEmpty(s.notifier.sent)
	last := s.notifier.sent[len(s.notifier.sent)-1]
	s.Equal(newAgent, last.userID)
	s.Equal(notifmodels.KindProcessAssigned, last.kind)
}

func (s *ProcessServiceSuite) TestCloseProcess() {
	managerCtx := s.ctxAs(s.manager, usermodels.RoleManager)
	process := s.create(managerCtx, s.agent)

	closed, err := s.service.CloseProcess(managerCtx, process.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusClosed, closed.Status)

	s.Run("closed processes reject moves", func() {
		_, err := s.service.MoveProcess(managerCtx, process.ID, pipeline.ColumnArchived)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("closing twice conflicts", func() {
		_, err := s.service.CloseProcess(managerCtx, process.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ProcessServiceSuite) TestAddNote() {
	managerCtx := s.ctxAs(s.manager, usermodels.RoleManager)
	process := s.create(managerCtx, s.agent)

	noted, err := s.service.AddNote(managerCtx, process.ID, "client sent payslips")
	s.Require().NoError(err)
	s.Require().Len(noted.History, 2)
	s.Equal("client sent payslips", noted.History[1].Note)

	_, err = s.service.AddNote(managerCtx, process.ID, "   ")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ProcessServiceSuite) TestBoard() {
	managerCtx := s.ctxAs(s.manager, usermodels.RoleManager)
	first := s.create(managerCtx, s.agent)
	second := s.create(managerCtx, s.agent)
	_, err := s.service.MoveProcess(managerCtx, second.ID, pipeline.ColumnAppraisal)
	s.Require().NoError(err)

	closed := s.create(managerCtx, s.agent)
	_, err = s.service.CloseProcess(managerCtx, closed.ID)
	s.Require().NoError(err)

	board, err := s.service.Board(managerCtx)
	s.Require().NoError(err)
	s.Len(board[pipeline.First()], 1)
	s.Equal(first.ID, board[pipeline.First()][0].ID)
	s.Len(board[pipeline.ColumnAppraisal], 1)

	total := 0
	for _, column := range board {
		total += len(column)
	}
	s.Equal(2, total, "closed processes stay off the board")
}

func (s *ProcessServiceSuite) TestAgentForClient() {
	managerCtx := s.ctxAs(s.manager, usermodels.RoleManager)
	process := s.create(managerCtx, s.agent)

	agentID, ok, err := s.service.AgentForClient(context.Background(), process.ClientID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(s.agent, agentID)

	_, ok, err = s.service.AgentForClient(context.Background(), id.ClientID(uuid.New()))
	s.Require().NoError(err)
	s.False(ok)
}
