package store

import (
	"context"

	"brokerdesk/internal/jobs/models"
	id "brokerdesk/pkg/domain"
)

// Store persists the job queue.
//
// ClaimNext atomically takes the oldest pending job, marks it running and
// returns it, or sentinel.ErrNotFound when the queue is empty. Claims are
// safe to race between worker replicas.
type Store interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, jobID id.JobID) (*models.Job, error)
	List(ctx context.Context, status models.Status) ([]*models.Job, error)
	ClaimNext(ctx context.Context) (*models.Job, error)
	Finish(ctx context.Context, job *models.Job) error
}
