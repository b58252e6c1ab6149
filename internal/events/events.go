// Package events publishes domain events for downstream consumers such as
// the kitchen display and the realtime dashboard.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event mirrors the envelope the realtime consumers decode:
// {entity, action, resourceId, topic, metadata, data}.
type Event struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	Topic      string            `json:"topic,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w      messageWriter
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           2 * time.Second,
		MaxAttempts:            3,
	}
	return newKafkaPublisher(w, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{w: w, topic: topic, logger: logger}
}

// Publish keys messages by resource id so events for one reservation stay
// ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.Topic == "" {
		ev.Topic = p.topic
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(ev.ResourceID), Value: b}); err != nil {
		return fmt.Errorf("kafka publish %s.%s: %w", ev.Entity, ev.Action, err)
	}
	p.logger.Debug("event published",
		slog.String("topic", p.topic),
		slog.String("entity", ev.Entity),
		slog.String("action", ev.Action),
		slog.String("resourceId", ev.ResourceID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
