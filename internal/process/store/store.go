package store

import (
	"context"

	"brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
)

// Filter narrows List results. Zero-valued fields are ignored.
type Filter struct {
	Column   string
	AgentID  id.UserID
	ClientID id.ClientID
	Status   models.Status
}

// Store persists processes.
//
// Implementations return sentinel errors from pkg/platform/sentinel; the
// service layer translates them into domain errors.
type Store interface {
	Create(ctx context.Context, process *models.Process) error
	FindByID(ctx context.Context, processID id.ProcessID) (*models.Process, error)
	List(ctx context.Context, filter Filter) ([]*models.Process, error)
	Update(ctx context.Context, process *models.Process) error
}
