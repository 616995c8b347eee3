// Package hub fans notification events out to connected WebSocket sessions.
//
// Delivery is best-effort: a slow or dead connection is dropped rather than
// buffered indefinitely. There is no replay; clients reconcile through the
// REST listing on reconnect.
package hub

import (
	"context"
	"log/slog"
	"sync"

	id "brokerdesk/pkg/domain"
)

const sendBuffer = 16

// Session is one connected WebSocket client owned by a user.
type Session struct {
	userID id.UserID
	send   chan []byte
}

// Outbox returns the channel the transport pumps to the wire.
func (s *Session) Outbox() <-chan []byte { return s.send }

// Hub is the in-process connection registry.
type Hub struct {
	mu       sync.RWMutex
	sessions map[id.UserID]map[*Session]struct{}
	logger   *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[id.UserID]map[*Session]struct{}),
		logger:   logger,
	}
}

// Register adds a session for the user and returns it.
func (h *Hub) Register(userID id.UserID) *Session {
	session := &Session{userID: userID, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*Session]struct{})
	}
	h.sessions[userID][session] = struct{}{}
	return session
}

// Unregister removes the session and closes its outbox.
func (h *Hub) Unregister(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[session.userID]
	if !ok {
		return
	}
	if _, ok := set[session]; !ok {
		return
	}
	delete(set, session)
	close(session.send)
	if len(set) == 0 {
		delete(h.sessions, session.userID)
	}
}

// Send pushes a payload to every session of the user. Sessions whose buffer
// is full are dropped; the client will catch up over REST.
func (h *Hub) Send(_ context.Context, userID id.UserID, payload []byte) {
	h.mu.RLock()
	var stale []*Session
	for session := range h.sessions[userID] {
		select {
		case session.send <- payload:
		default:
			stale = append(stale, session)
		}
	}
	h.mu.RUnlock()

	for _, session := range stale {
		h.logger.Warn("dropping slow websocket session", "user_id", userID.String())
		h.Unregister(session)
	}
}

// Connections reports the number of open sessions for a user (test helper).
func (h *Hub) Connections(userID id.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}
