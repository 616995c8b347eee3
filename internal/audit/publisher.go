package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"brokerdesk/internal/platform/kafka"
)

// Publisher delivers audit events towards the trail. Implementations must be
// safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// KafkaPublisher produces events to the audit topic, keyed by action so all
// occurrences of one action land in order.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return p.producer.Produce(ctx, p.topic, []byte(event.Action), value)
}

// LogPublisher writes events to the structured log. Used when Kafka is not
// configured so the trail is never silently dropped.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit",
		"category", string(event.Category),
		"action", string(event.Action),
		"actor_id", event.ActorID.String(),
		"subject", event.Subject,
		"request_id", event.RequestID,
	)
	return nil
}

// Emit publishes best-effort: a nil publisher or a publish failure must never
// fail the business operation, so errors are logged and swallowed.
func Emit(ctx context.Context, publisher Publisher, logger *slog.Logger, event Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "audit publish failed",
			"action", string(event.Action),
			"error", err,
		)
	}
}
