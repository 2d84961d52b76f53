// Package events publishes order lifecycle events after a workflow commits.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	OrderPlaced    = "order.placed"
	OrderFulfilled = "order.fulfilled"
	OrderCancelled = "order.cancelled"
)

type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewKafkaPublisher(log *slog.Logger, producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{log: log, producer: producer, topic: topic}
}

func NewWriter(addr string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(addr),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
}

// Dial returns a Kafka publisher for addr, or Nop when addr is empty. The
// returned func closes the underlying writer.
func Dial(log *slog.Logger, addr, topic string) (Publisher, func() error) {
	if addr == "" {
		log.Info("no kafka broker configured, order events disabled")
		return Nop{}, func() error { return nil }
	}
	w := NewWriter(addr)
	return NewKafkaPublisher(log, w, topic), w.Close
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(ev.Key),
		Value: body,
		Headers: injectTrace(ctx, []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		}),
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("event publish failed", "type", ev.Type, "key", ev.Key, "err", err)
		return err
	}
	p.log.Info("event published", "type", ev.Type, "key", ev.Key)
	return nil
}

// injectTrace carries the caller's trace context in the message headers.
func injectTrace(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}
