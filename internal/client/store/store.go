// Package store persists client records. Nested sub-objects are stored as
// JSONB in Postgres and as plain structs in memory.
package store

import (
	"context"

	"brokerdesk/internal/client/models"
	id "brokerdesk/pkg/domain"
)

// Filter narrows List results.
type Filter struct {
	Status models.Status
}

// Store is the client persistence interface.
type Store interface {
	// Create inserts a client, failing with sentinel.ErrConflict when the
	// NIF is already registered.
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	List(ctx context.Context, filter Filter) ([]*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
}
