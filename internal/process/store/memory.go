package store

import (
	"context"
	"sort"
	"sync"

	"brokerdesk/internal/process/models"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

// Memory is an in-memory Store used in tests and when no database is
// configured.
type Memory struct {
	mu        sync.RWMutex
	processes map[id.ProcessID]*models.Process
}

func NewMemory() *Memory {
	return &Memory{processes: make(map[id.ProcessID]*models.Process)}
}

func (s *Memory) Create(_ context.Context, process *models.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processes[process.ID]; ok {
		return sentinel.ErrConflict
	}
	s.processes[process.ID] = cloneProcess(process)
	return nil
}

func (s *Memory) FindByID(_ context.Context, processID id.ProcessID) (*models.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	process, ok := s.processes[processID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneProcess(process), nil
}

func (s *Memory) List(_ context.Context, filter Filter) ([]*models.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Process
	for _, process := range s.processes {
		if !matches(process, filter) {
			continue
		}
		out = append(out, cloneProcess(process))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Memory) Update(_ context.Context, process *models.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processes[process.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.processes[process.ID] = cloneProcess(process)
	return nil
}

func matches(process *models.Process, filter Filter) bool {
	if filter.Column != "" && process.Column != filter.Column {
		return false
	}
	if !filter.AgentID.IsZero() && process.AgentID != filter.AgentID {
		return false
	}
	if !filter.ClientID.IsZero() && process.ClientID != filter.ClientID {
		return false
	}
	if filter.Status != "" && process.Status != filter.Status {
		return false
	}
	return true
}

func cloneProcess(process *models.Process) *models.Process {
	clone := *process
	clone.History = append([]models.HistoryEntry(nil), process.History...)
	return &clone
}
