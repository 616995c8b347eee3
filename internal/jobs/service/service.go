// Package service exposes the job queue to the HTTP surface. Execution
// happens in the runner, driven by the worker binary.
package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"brokerdesk/internal/jobs/models"
	"brokerdesk/internal/jobs/store"
	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/platform/sentinel"
	"brokerdesk/pkg/requestcontext"
)

type Service struct {
	jobs store.Store
}

func New(jobs store.Store) *Service {
	return &Service{jobs: jobs}
}

// Enqueue queues a job for the worker to pick up on its next poll.
func (s *Service) Enqueue(ctx context.Context, kind string, payload json.RawMessage) (*models.Job, error) {
	job, err := models.NewJob(id.JobID(uuid.New()), kind, payload, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue job")
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, jobID id.JobID) (*models.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "job not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load job")
	}
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context, status string) ([]*models.Job, error) {
	var statusFilter models.Status
	if status != "" {
		statusFilter = models.Status(status)
		if !statusFilter.IsValid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "status must be pending, running, done or failed")
		}
	}
	jobs, err := s.jobs.List(ctx, statusFilter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jobs")
	}
	return jobs, nil
}
