package hub

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "brokerdesk/pkg/domain"
)

func newTestHub() *Hub {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func drain(session *Session) []string {
	var out []string
	for {
		select {
		case payload, ok := <-session.Outbox():
			if !ok {
				return out
			}
			out = append(out, string(payload))
		default:
			return out
		}
	}
}

func TestSendReachesEverySessionOfTheUser(t *testing.T) {
	h := newTestHub()
	userID := id.UserID(uuid.New())
	first := h.Register(userID)
	second := h.Register(userID)

	h.Send(context.Background(), userID, []byte(`{"kind":"process_moved"}`))

	assert.Equal(t, []string{`{"kind":"process_moved"}`}, drain(first))
	assert.Equal(t, []string{`{"kind":"process_moved"}`}, drain(second))
}

func TestSendIsScopedToTheUser(t *testing.T) {
	h := newTestHub()
	mine := h.Register(id.UserID(uuid.New()))
	other := h.Register(id.UserID(uuid.New()))

	h.Send(context.Background(), other.userID, []byte("hello"))

	assert.Empty(t, drain(mine))
	assert.Len(t, drain(other), 1)
}

func TestSendToUserWithoutSessionsIsANoOp(t *testing.T) {
	h := newTestHub()
	h.Send(context.Background(), id.UserID(uuid.New()), []byte("hello"))
}

func TestUnregisterClosesTheOutbox(t *testing.T) {
	h := newTestHub()
	userID := id.UserID(uuid.New())
	session := h.Register(userID)
	require.Equal(t, 1, h.Connections(userID))

	h.Unregister(session)
	assert.Zero(t, h.Connections(userID))

	_, open := <-session.Outbox()
	assert.False(t, open)

	// Unregistering twice must not panic on the closed channel.
	h.Unregister(session)
}

func TestSlowSessionsAreDropped(t *testing.T) {
	h := newTestHub()
	userID := id.UserID(uuid.New())
	slow := h.Register(userID)

	for i := 0; i <= sendBuffer; i++ {
		h.Send(context.Background(), userID, []byte("tick"))
	}

	assert.Zero(t, h.Connections(userID), "a session with a full buffer is unregistered")
	assert.Len(t, drain(slow), sendBuffer)
}
