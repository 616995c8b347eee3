// Package store persists staff accounts. Both implementations return
// sentinel errors; the service layer translates them into domain errors.
package store

import (
	"context"

	"brokerdesk/internal/user/models"
	id "brokerdesk/pkg/domain"
)

// Store is the staff account persistence interface.
type Store interface {
	// Create inserts a user, failing with sentinel.ErrConflict when the
	// email is already taken (case-insensitive).
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// Count supports the startup seed: an admin is created only when the
	// store is empty.
	Count(ctx context.Context) (int, error)
}
