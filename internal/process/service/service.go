// Package service orchestrates the Kanban pipeline.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"brokerdesk/internal/audit"
	notifmodels "brokerdesk/internal/notification/models"
	"brokerdesk/internal/pipeline"
	"brokerdesk/internal/process/metrics"
	"brokerdesk/internal/process/models"
	"brokerdesk/internal/process/store"
	usermodels "brokerdesk/internal/user/models"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
)

// ClientChecker verifies that a client record exists before a process is
// opened against it.
type ClientChecker interface {
	Exists(ctx context.Context, clientID id.ClientID) (bool, error)
}

// AgentChecker verifies that an agent account exists and is active.
type AgentChecker interface {
	ActiveUser(ctx context.Context, userID id.UserID) (bool, error)
}

// Notifier delivers in-app notifications. The notification service satisfies
// this; a zero-value stub does in tests.
type Notifier interface {
	Notify(ctx context.Context, userID id.UserID, kind notifmodels.Kind, message string, processID id.ProcessID) error
}

// Service handles the process aggregate.
type Service struct {
	processes store.Store
	clients   ClientChecker
	agents    AgentChecker
	notifier  Notifier
	auditor   audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(processes store.Store, clients ClientChecker, agents AgentChecker, notifier Notifier, auditor audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		processes: processes,
		clients:   clients,
		agents:    agents,
		notifier:  notifier,
		auditor:   auditor,
		metrics:   m,
		logger:    logger,
	}
}

type CreateParams struct {
	ClientID id.ClientID `json:"client_id"`
	AgentID  id.UserID   `json:"agent_id"`
	Type     models.Type `json:"type"`
}

func (s *Service) CreateProcess(ctx context.Context, params CreateParams) (*models.Process, error) {
	agentID := params.AgentID
	if agentID.IsZero() {
		// Agents open processes for themselves unless told otherwise.
		agentID = requestcontext.UserID(ctx)
	}
	process, err := models.NewProcess(id.ProcessID(uuid.New()),
		params.ClientID, agentID, params.Type, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	ok, err := s.clients.Exists(ctx, params.ClientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check client")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	ok, err = s.agents.ActiveUser(ctx, agentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check agent")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "agent is unknown or inactive")
	}

	if err := s.processes.Create(ctx, process); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create process")
	}
	s.metrics.Created.WithLabelValues(string(process.Type)).Inc()

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryOperations,
		Action:    audit.ActionProcessCreated,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   string(process.Type),
		ProcessID: process.ID,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return process, nil
}

// GetProcess loads one process. Agents may only read processes assigned to
// them; managers and admins see everything.
func (s *Service) GetProcess(ctx context.Context, processID id.ProcessID) (*models.Process, error) {
	process, err := s.processes.FindByID(ctx, processID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "process not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load process")
	}
	if !s.canSee(ctx, process) {
		return nil, dErrors.New(dErrors.CodeForbidden, "process belongs to another agent")
	}
	return process, nil
}

type ListParams struct {
	Column   string
	AgentID  id.UserID
	ClientID id.ClientID
	Status   string
}

func (s *Service) ListProcesses(ctx context.Context, params ListParams) ([]*models.Process, error) {
	filter := store.Filter{
		Column:   params.Column,
		AgentID:  params.AgentID,
		ClientID: params.ClientID,
	}
	if params.Column != "" && !pipeline.IsValid(params.Column) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown pipeline column")
	}
	if params.Status != "" {
		if params.Status != string(models.StatusOpen) && params.Status != string(models.StatusClosed) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "status must be open or closed")
		}
		filter.Status = models.Status(params.Status)
	}
	if requestcontext.Role(ctx) == string(usermodels.RoleAgent) {
		// Agents are pinned to their own board regardless of the filter.
		filter.AgentID = requestcontext.UserID(ctx)
	}

	processes, err := s.processes.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list processes")
	}
	return processes, nil
}

// Board groups open processes by column, in board order, for the Kanban view.
func (s *Service) Board(ctx context.Context) (map[string][]*models.Process, error) {
	processes, err := s.ListProcesses(ctx, ListParams{Status: string(models.StatusOpen)})
	if err != nil {
		return nil, err
	}
	board := make(map[string][]*models.Process, len(processes))
	for _, process := range processes {
		board[process.Column] = append(board[process.Column], process)
	}
	return board, nil
}

func (s *Service) MoveProcess(ctx context.Context, processID id.ProcessID, column string) (*models.Process, error) {
	process, err := s.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := process.MoveTo(column, requestcontext.UserID(ctx), requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.save(ctx, process); err != nil {
		return nil, err
	}
	s.metrics.Moved.WithLabelValues(column).Inc()

	if process.AgentID != requestcontext.UserID(ctx) {
		s.pushNotification(ctx, process.AgentID, notifmodels.KindProcessMoved,
			"process moved to "+column, process.ID)
	}
	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryOperations,
		Action:    audit.ActionProcessMoved,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   column,
		ProcessID: process.ID,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return process, nil
}

func (s *Service) AssignProcess(ctx context.Context, processID id.ProcessID, agentID id.UserID) (*models.Process, error) {
	process, err := s.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	ok, err := s.agents.ActiveUser(ctx, agentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check agent")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "agent is unknown or inactive")
	}
	if err := process.Assign(agentID, requestcontext.UserID(ctx), requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.save(ctx, process); err != nil {
		return nil, err
	}

	if agentID != requestcontext.UserID(ctx) {
		s.pushNotification(ctx, agentID, notifmodels.KindProcessAssigned,
			"a process was assigned to you", process.ID)
	}
	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryOperations,
		Action:    audit.ActionProcessAssigned,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   agentID.String(),
		ProcessID: process.ID,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return process, nil
}

func (s *Service) AddNote(ctx context.Context, processID id.ProcessID, note string) (*models.Process, error) {
	process, err := s.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := process.AppendHistory(requestcontext.Now(ctx), requestcontext.UserID(ctx), note); err != nil {
		return nil, err
	}
	if err := s.save(ctx, process); err != nil {
		return nil, err
	}
	return process, nil
}

func (s *Service) CloseProcess(ctx context.Context, processID id.ProcessID) (*models.Process, error) {
	process, err := s.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := process.Close(requestcontext.UserID(ctx), requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.save(ctx, process); err != nil {
		return nil, err
	}
	s.metrics.Closed.Inc()

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryOperations,
		Action:    audit.ActionProcessClosed,
		ActorID:   requestcontext.UserID(ctx),
		ProcessID: process.ID,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return process, nil
}

// AgentForClient returns the agent on the client's most recent open process.
// Used by the lead matcher to route match notifications.
func (s *Service) AgentForClient(ctx context.Context, clientID id.ClientID) (id.UserID, bool, error) {
	processes, err := s.processes.List(ctx, store.Filter{
		ClientID: clientID,
		Status:   models.StatusOpen,
	})
	if err != nil {
		return id.UserID{}, false, err
	}
	if len(processes) == 0 {
		return id.UserID{}, false, nil
	}
	return processes[len(processes)-1].AgentID, true, nil
}

func (s *Service) save(ctx context.Context, process *models.Process) error {
	if err := s.processes.Update(ctx, process); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "process not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update process")
	}
	return nil
}

func (s *Service) canSee(ctx context.Context, process *models.Process) bool {
	if requestcontext.Role(ctx) != string(usermodels.RoleAgent) {
		return true
	}
	return process.AgentID == requestcontext.UserID(ctx)
}

// pushNotification is best effort; a failed push never fails the operation.
func (s *Service) pushNotification(ctx context.Context, userID id.UserID, kind notifmodels.Kind, message string, processID id.ProcessID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, message, processID); err != nil {
		s.logger.WarnContext(ctx, "notification push failed",
			slog.String("error", err.Error()),
			slog.String("process_id", processID.String()))
	}
}
