package store

import (
	"context"
	"time"

	"brokerdesk/internal/lead/models"
	id "brokerdesk/pkg/domain"
)

// Filter narrows List results; zero-valued fields are ignored.
type Filter struct {
	Status       models.Status
	Source       models.Source
	CreatedAfter time.Time
}

// Store persists leads.
//
//go:generate mockgen -source=store.go -destination=mock/store.go -package=mock
type Store interface {
	Create(ctx context.Context, lead *models.Lead) error
	FindByID(ctx context.Context, leadID id.LeadID) (*models.Lead, error)
	List(ctx context.Context, filter Filter) ([]*models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) error
}
