// Package kafka publishes turn events to a Kafka topic. Events for the same
// conversation topic are keyed identically so they land on one partition and
// keep their append order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/parchmentco/lore/pkg/eventstream"
)

// Config holds the settings for a Publisher.
type Config struct {
	// Brokers is the bootstrap broker list.
	Brokers []string

	// Topic is the Kafka topic events are written to.
	Topic string
}

// writer is the subset of kafka.Writer the publisher uses.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes turn events to Kafka as JSON messages.
type Publisher struct {
	writer writer
}

// NewPublisher creates a Kafka publisher from cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}, nil
}

// PublishTurn writes one event, keyed by conversation topic.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnAppendedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling turn event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.Topic),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("writing turn event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
