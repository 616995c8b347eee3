package document

import (
	"context"
	"sort"
	"sync"

	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]*Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{documents: make(map[id.DocumentID]*Document)}
}

func (s *MemoryStore) Create(_ context.Context, document *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[document.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *document
	s.documents[document.ID] = &clone
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, documentID id.DocumentID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	document, ok := s.documents[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *document
	return &clone, nil
}

func (s *MemoryStore) ListByProcess(_ context.Context, processID id.ProcessID) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Document
	for _, document := range s.documents {
		if document.ProcessID != processID {
			continue
		}
		clone := *document
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, document *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[document.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *document
	s.documents[document.ID] = &clone
	return nil
}
