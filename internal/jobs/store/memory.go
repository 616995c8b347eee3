package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"brokerdesk/internal/jobs/models"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

type Memory struct {
	mu   sync.Mutex
	jobs map[id.JobID]*models.Job
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{jobs: make(map[id.JobID]*models.Job), now: time.Now}
}

func (s *Memory) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return sentinel.ErrConflict
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *Memory) FindByID(_ context.Context, jobID id.JobID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneJob(job), nil
}

func (s *Memory) List(_ context.Context, status models.Status) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Job
	for _, job := range s.jobs {
		if status != "" && job.Status != status {
			continue
		}
		out = append(out, cloneJob(job))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Memory) ClaimNext(_ context.Context) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var oldest *models.Job
	for _, job := range s.jobs {
		if job.Status != models.StatusPending {
			continue
		}
		if oldest == nil || job.CreatedAt.Before(oldest.CreatedAt) {
			oldest = job
		}
	}
	if oldest == nil {
		return nil, sentinel.ErrNotFound
	}
	started := s.now()
	oldest.Status = models.StatusRunning
	oldest.StartedAt = &started
	return cloneJob(oldest), nil
}

func (s *Memory) Finish(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func cloneJob(job *models.Job) *models.Job {
	clone := *job
	clone.Payload = append([]byte(nil), job.Payload...)
	if job.StartedAt != nil {
		at := *job.StartedAt
		clone.StartedAt = &at
	}
	if job.FinishedAt != nil {
		at := *job.FinishedAt
		clone.FinishedAt = &at
	}
	return &clone
}
