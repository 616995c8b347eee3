package store

import (
	"context"
	"sort"
	"sync"

	"brokerdesk/internal/notification/models"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

// Memory is the in-memory notification store.
type Memory struct {
	mu            sync.RWMutex
	notifications map[id.NotificationID]models.Notification
}

func NewMemory() *Memory {
	return &Memory{notifications: make(map[id.NotificationID]models.Notification)}
}

func (s *Memory) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = *n
	return nil
}

func (s *Memory) ListForUser(_ context.Context, userID id.UserID, unreadOnly bool) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		c := n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) MarkRead(_ context.Context, userID id.UserID, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return sentinel.ErrNotFound
	}
	n.Read = true
	s.notifications[notificationID] = n
	return nil
}

func (s *Memory) MarkAllRead(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for nid, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			s.notifications[nid] = n
		}
	}
	return nil
}
