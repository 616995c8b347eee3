package deadline

import (
	"context"
	"sort"
	"sync"
	"time"

	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu        sync.RWMutex
	deadlines map[id.DeadlineID]*Deadline
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{deadlines: make(map[id.DeadlineID]*Deadline)}
}

func (s *MemoryStore) Create(_ context.Context, deadline *Deadline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deadlines[deadline.ID]; ok {
		return sentinel.ErrConflict
	}
	s.deadlines[deadline.ID] = cloneDeadline(deadline)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, deadlineID id.DeadlineID) (*Deadline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deadline, ok := s.deadlines[deadlineID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDeadline(deadline), nil
}

func (s *MemoryStore) ListByProcess(_ context.Context, processID id.ProcessID) ([]*Deadline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Deadline
	for _, deadline := range s.deadlines {
		if deadline.ProcessID != processID {
			continue
		}
		out = append(out, cloneDeadline(deadline))
	}
	sortByDue(out)
	return out, nil
}

func (s *MemoryStore) ListDueBefore(_ context.Context, cutoff time.Time) ([]*Deadline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Deadline
	for _, deadline := range s.deadlines {
		if deadline.Done || deadline.NotifiedAt != nil {
			continue
		}
		if !deadline.DueAt.Before(cutoff) {
			continue
		}
		out = append(out, cloneDeadline(deadline))
	}
	sortByDue(out)
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, deadline *Deadline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deadlines[deadline.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.deadlines[deadline.ID] = cloneDeadline(deadline)
	return nil
}

func sortByDue(deadlines []*Deadline) {
	sort.Slice(deadlines, func(i, j int) bool {
		return deadlines[i].DueAt.Before(deadlines[j].DueAt)
	})
}

func cloneDeadline(deadline *Deadline) *Deadline {
	clone := *deadline
	if deadline.NotifiedAt != nil {
		at := *deadline.NotifiedAt
		clone.NotifiedAt = &at
	}
	return &clone
}
