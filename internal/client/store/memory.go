package store

import (
	"context"
	"sort"
	"sync"

	"brokerdesk/internal/client/models"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

// Memory is the in-memory client store.
type Memory struct {
	mu      sync.RWMutex
	clients map[id.ClientID]models.Client
}

func NewMemory() *Memory {
	return &Memory{clients: make(map[id.ClientID]models.Client)}
}

func (s *Memory) Create(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.clients {
		if existing.NIF == client.NIF {
			return sentinel.ErrConflict
		}
	}
	s.clients[client.ID] = *client
	return nil
}

func (s *Memory) FindByID(_ context.Context, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &client, nil
}

func (s *Memory) List(_ context.Context, filter Filter) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Client, 0, len(s.clients))
	for _, client := range s.clients {
		if filter.Status != "" && client.Status != filter.Status {
			continue
		}
		c := client
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) Update(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.clients[client.ID] = *client
	return nil
}
