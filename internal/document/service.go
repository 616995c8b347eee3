package document

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"brokerdesk/internal/audit"
	processmodels "brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
)

// ProcessReader loads a process with the caller's visibility rules applied.
// The process service satisfies this, so agent scoping carries over to
// document routes for free.
type ProcessReader interface {
	GetProcess(ctx context.Context, processID id.ProcessID) (*processmodels.Process, error)
}

// Service handles checklist slots for a process.
type Service struct {
	documents Store
	processes ProcessReader
	auditor   audit.Publisher
	logger    *slog.Logger
}

func NewService(documents Store, processes ProcessReader, auditor audit.Publisher, logger *slog.Logger) *Service {
	return &Service{documents: documents, processes: processes, auditor: auditor, logger: logger}
}

type RegisterParams struct {
	Kind     string `json:"kind"`
	FileName string `json:"file_name"`
	Note     string `json:"note"`
}

// Register records a checklist slot. With a file name the slot starts as
// received, without one as requested.
func (s *Service) Register(ctx context.Context, processID id.ProcessID, params RegisterParams) (*Document, error) {
	process, err := s.processes.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	document, err := NewDocument(id.DocumentID(uuid.New()), process.ID,
		params.Kind, strings.TrimSpace(params.FileName),
		requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	document.Note = strings.TrimSpace(params.Note)

	if err := s.documents.Create(ctx, document); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register document")
	}
	return document, nil
}

func (s *Service) ListForProcess(ctx context.Context, processID id.ProcessID) ([]*Document, error) {
	if _, err := s.processes.GetProcess(ctx, processID); err != nil {
		return nil, err
	}
	documents, err := s.documents.ListByProcess(ctx, processID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return documents, nil
}

type SetStatusParams struct {
	Status   Status `json:"status"`
	FileName string `json:"file_name"`
	Note     string `json:"note"`
}

// SetStatus moves a slot through requested/received/verified/rejected.
func (s *Service) SetStatus(ctx context.Context, processID id.ProcessID, documentID id.DocumentID, params SetStatusParams) (*Document, error) {
	if !params.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown document status")
	}
	if _, err := s.processes.GetProcess(ctx, processID); err != nil {
		return nil, err
	}

	document, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if document.ProcessID != processID {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}

	document.Status = params.Status
	if params.FileName != "" {
		document.FileName = strings.TrimSpace(params.FileName)
	}
	if params.Note != "" {
		document.Note = strings.TrimSpace(params.Note)
	}
	document.UpdatedAt = requestcontext.Now(ctx)

	if err := s.documents.Update(ctx, document); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
	}

	audit.Emit(ctx, s.auditor, s.logger, audit.Event{
		Category:  audit.CategoryCompliance,
		Action:    audit.ActionDocumentStatus,
		ActorID:   requestcontext.UserID(ctx),
		Subject:   document.Kind + ":" + string(document.Status),
		ProcessID: processID,
		RequestID: requestcontext.RequestID(ctx),
		At:        requestcontext.Now(ctx),
	})
	return document, nil
}

// ChecklistForProcess reports which required kinds are still missing.
func (s *Service) ChecklistForProcess(ctx context.Context, processID id.ProcessID) (Checklist, error) {
	process, err := s.processes.GetProcess(ctx, processID)
	if err != nil {
		return Checklist{}, err
	}
	documents, err := s.documents.ListByProcess(ctx, processID)
	if err != nil {
		return Checklist{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return BuildChecklist(process.ID, process.Type, documents), nil
}
