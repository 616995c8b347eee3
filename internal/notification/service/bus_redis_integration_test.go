//go:build integration

package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"brokerdesk/internal/notification/hub"
	"brokerdesk/internal/notification/models"
	"brokerdesk/internal/notification/service"
	id "brokerdesk/pkg/domain"
	"brokerdesk/pkg/testutil/containers"
)

// The pusher publishes on the redis channel, the subscriber bridges into the
// hub, and the session hears it. This is the cross-process path the worker
// uses to reach sessions connected to the server.
func TestRedisPushReachesSubscribedSessions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := containers.GetManager().GetRedis(t).Client

	h := hub.New(logger)
	userID := id.UserID(uuid.New())
	session := h.Register(userID)
	defer h.Unregister(session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = service.NewSubscriber(client, h, logger).Run(ctx)
	}()

	// Give the subscription a moment to attach before publishing.
	require.Eventually(t, func() bool {
		n := &models.Notification{
			ID:        id.NotificationID(uuid.New()),
			UserID:    userID,
			Kind:      models.KindProcessMoved,
			Message:   "process moved to qualification",
			CreatedAt: time.Now().UTC(),
		}
		if err := service.NewRedisPusher(client).Push(context.Background(), n); err != nil {
			return false
		}
		select {
		case payload := <-session.Outbox():
			require.Contains(t, string(payload), "process moved to qualification")
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 10*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not stop after cancellation")
	}
}
