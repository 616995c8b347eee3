package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"brokerdesk/internal/notification/hub"
	"brokerdesk/internal/notification/models"
	"brokerdesk/internal/platform/redis"
)

// Channel is the redis pub/sub channel bridging processes to the hub.
const Channel = "brokerdesk:notifications"

// RedisPusher publishes notifications to the redis channel so any process
// (server or worker) can reach the sessions connected to the server.
type RedisPusher struct {
	client *redis.Client
}

func NewRedisPusher(client *redis.Client) *RedisPusher {
	return &RedisPusher{client: client}
}

func (p *RedisPusher) Push(ctx context.Context, n *models.Notification) error {
	payload, err := Encode(n)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel, payload).Err()
}

// HubPusher pushes directly to the in-process hub. Used when redis is not
// configured and server-side events only need to reach local sessions.
type HubPusher struct {
	hub *hub.Hub
}

func NewHubPusher(h *hub.Hub) *HubPusher {
	return &HubPusher{hub: h}
}

func (p *HubPusher) Push(ctx context.Context, n *models.Notification) error {
	payload, err := Encode(n)
	if err != nil {
		return err
	}
	p.hub.Send(ctx, n.UserID, payload)
	return nil
}

// Subscriber bridges the redis channel into the hub. Runs in the server
// process until ctx is cancelled.
type Subscriber struct {
	client *redis.Client
	hub    *hub.Hub
	logger *slog.Logger
}

func NewSubscriber(client *redis.Client, h *hub.Hub, logger *slog.Logger) *Subscriber {
	return &Subscriber{client: client, hub: h, logger: logger}
}

func (s *Subscriber) Run(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var envelope Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				s.logger.Warn("dropping malformed notification payload", "error", err)
				continue
			}
			if envelope.Notification == nil {
				continue
			}
			s.hub.Send(ctx, envelope.Notification.UserID, []byte(msg.Payload))
		}
	}
}
