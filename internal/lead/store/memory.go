package store

import (
	"context"
	"sort"
	"sync"

	"brokerdesk/internal/lead/models"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

type Memory struct {
	mu    sync.RWMutex
	leads map[id.LeadID]*models.Lead
}

func NewMemory() *Memory {
	return &Memory{leads: make(map[id.LeadID]*models.Lead)}
}

func (s *Memory) Create(_ context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[lead.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *lead
	s.leads[lead.ID] = &clone
	return nil
}

func (s *Memory) FindByID(_ context.Context, leadID id.LeadID) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[leadID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *lead
	return &clone, nil
}

func (s *Memory) List(_ context.Context, filter Filter) ([]*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Lead
	for _, lead := range s.leads {
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		if filter.Source != "" && lead.Source != filter.Source {
			continue
		}
		if !filter.CreatedAfter.IsZero() && !lead.CreatedAt.After(filter.CreatedAfter) {
			continue
		}
		clone := *lead
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Memory) Update(_ context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[lead.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *lead
	s.leads[lead.ID] = &clone
	return nil
}
