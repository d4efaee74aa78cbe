package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/room-reservation/internal/booking"
)

// MessageWriter is the subset of *kafka.Writer used by Kafka.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events to a topic keyed by reservation ID so every event of
// one reservation lands on the same partition.
type Kafka struct {
	writer MessageWriter
	topic  string
	now    func() time.Time
}

// Writer tuning for one message per reservation event.
const (
	kafkaBatchTimeout = 10 * time.Millisecond
	kafkaMaxAttempts  = 3
)

// NewKafkaWriter creates a hash-balanced writer for the comma separated brokers.
func NewKafkaWriter(brokers string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:      SplitBrokers(brokers),
		Balancer:     &kafka.Hash{},
		BatchTimeout: kafkaBatchTimeout,
		MaxAttempts:  kafkaMaxAttempts,
	})
}

// NewKafka creates a Kafka notifier.
func NewKafka(writer MessageWriter, topic string) *Kafka {
	return &Kafka{writer: writer, topic: topic, now: time.Now}
}

// NotifyCreated implements Notifier.
func (k *Kafka) NotifyCreated(ctx context.Context, reservation booking.Existing) error {
	return k.publish(ctx, EventCreated, reservation, "")
}

// NotifyCancelled implements Notifier.
func (k *Kafka) NotifyCancelled(ctx context.Context, reservation booking.Existing, reason string) error {
	return k.publish(ctx, EventCancelled, reservation, reason)
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}

func (k *Kafka) publish(ctx context.Context, eventType EventType, reservation booking.Existing, reason string) error {
	event, err := NewEvent(eventType, reservation, reason, k.now())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}
	msg := kafka.Message{
		Topic: k.topic,
		Key:   []byte(reservation.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("notify: kafka write: %w", err)
	}
	return nil
}

// SplitBrokers parses a comma separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
