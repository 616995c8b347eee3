// Package consumer persists audit events arriving from Kafka. It runs inside
// the worker process.
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"brokerdesk/internal/audit"
	"brokerdesk/internal/platform/kafka"
)

// Router dispatches messages to topic-specific handlers. With a single audit
// topic today, it mostly exists so new topics slot in without touching the
// consume loop.
type Router struct {
	handlers map[string]kafka.Handler
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		handlers: make(map[string]kafka.Handler),
		logger:   logger,
	}
}

// Register adds a handler for a specific topic.
func (r *Router) Register(topic string, handler kafka.Handler) {
	r.handlers[topic] = handler
}

// Handle routes the message to the topic handler, skipping unknown topics.
func (r *Router) Handle(ctx context.Context, msg *kafka.Message) error {
	handler, ok := r.handlers[msg.Topic]
	if !ok {
		r.logger.Warn("no handler for topic, skipping message",
			"topic", msg.Topic,
			"key", string(msg.Key),
		)
		return nil
	}
	return handler.Handle(ctx, msg)
}

// TrailHandler decodes audit events and appends them to the store.
// Malformed payloads are logged and skipped so one bad record cannot wedge
// the consumer group.
type TrailHandler struct {
	store  audit.Store
	logger *slog.Logger
}

func NewTrailHandler(store audit.Store, logger *slog.Logger) *TrailHandler {
	return &TrailHandler{store: store, logger: logger}
}

func (h *TrailHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	var event audit.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.WarnContext(ctx, "dropping malformed audit event",
			"topic", msg.Topic,
			"error", err,
		)
		return nil
	}
	if err := h.store.Append(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", string(event.Action),
			"error", err,
		)
	}
	return nil
}
