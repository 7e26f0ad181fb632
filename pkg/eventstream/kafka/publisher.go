// Package kafka publishes push events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/chatspace-app/chatspace/pkg/eventstream"
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config configures a Kafka publisher.
type Config struct {
	// Brokers are the bootstrap host:port addresses.
	Brokers []string

	// Topic receives every event.
	Topic string

	// Writer overrides the kafka-go writer built from Brokers and Topic.
	Writer MessageWriter
}

// Publisher writes PushEvents as JSON messages keyed by integration key, so
// events for one integration stay ordered within a partition.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher creates a Kafka publisher.
func NewPublisher(c Config) (*Publisher, error) {
	if c.Writer != nil {
		return &Publisher{writer: c.Writer}, nil
	}

	if len(c.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if c.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	return &Publisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(c.Brokers...),
			Topic:                  c.Topic,
			Balancer:               &kafkago.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafkago.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

// Publish encodes event and writes it synchronously.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.PushEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding push event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Integration.Key),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(strconv.Itoa(event.SchemaVersion))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing push event to kafka: %w", err)
	}

	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
