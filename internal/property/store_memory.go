package property

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu         sync.RWMutex
	properties map[id.PropertyID]*Property
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{properties: make(map[id.PropertyID]*Property)}
}

func (s *MemoryStore) Create(_ context.Context, property *Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.properties {
		if existing.Reference == property.Reference {
			return sentinel.ErrConflict
		}
	}
	clone := *property
	s.properties[property.ID] = &clone
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, propertyID id.PropertyID) (*Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	property, ok := s.properties[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *property
	return &clone, nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter) ([]*Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Property
	for _, property := range s.properties {
		if filter.Status != "" && property.Status != filter.Status {
			continue
		}
		if filter.Municipality != "" && !strings.EqualFold(property.Municipality, filter.Municipality) {
			continue
		}
		if filter.Typology != "" && !strings.EqualFold(property.Typology, filter.Typology) {
			continue
		}
		clone := *property
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, property *Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[property.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *property
	s.properties[property.ID] = &clone
	return nil
}
