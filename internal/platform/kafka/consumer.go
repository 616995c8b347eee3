package kafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"brokerdesk/internal/platform/config"
)

// Message is the transport-agnostic record handed to consumers.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Handler processes one consumed message. Returning an error stops the
// consume loop; handlers that want log-and-continue semantics swallow errors
// themselves.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Consumer reads from the audit topics within a consumer group.
type Consumer struct {
	client *kgo.Client
}

// NewConsumer creates a group consumer for the given topics.
// Returns nil if no brokers are configured.
func NewConsumer(cfg config.KafkaConfig, topics ...string) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(topics...),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client}, nil
}

// Run polls until ctx is cancelled, dispatching each record to the handler.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			return fmt.Errorf("poll fetches: %w", errs[0].Err)
		}

		var handleErr error
		fetches.EachRecord(func(record *kgo.Record) {
			if handleErr != nil {
				return
			}
			handleErr = handler.Handle(ctx, &Message{
				Topic: record.Topic,
				Key:   record.Key,
				Value: record.Value,
			})
		})
		if handleErr != nil {
			return handleErr
		}
	}
}

// Close leaves the group and closes the underlying client.
func (c *Consumer) Close() {
	c.client.Close()
}
