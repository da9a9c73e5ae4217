package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventStatusChanged = "transaction.status_changed"
	EventPriceChanged  = "transaction.price_changed"
)

// TransactionEvent is published after a transaction change commits
type TransactionEvent struct {
	Type          string    `json:"type"`
	TransactionID uint      `json:"transaction_id"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to,omitempty"`
	Price         string    `json:"price,omitempty"`
	Version       int       `json:"version"`
	ActorID       string    `json:"actor_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher delivers transaction events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event TransactionEvent) error
	Close() error
}

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher publishes events keyed by transaction id, so one transaction's events stay ordered
type KafkaEventPublisher struct {
	writer kafkaMessageWriter
}

// NewKafkaEventPublisher creates a publisher writing to topic on brokers
func NewKafkaEventPublisher(brokers []string, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: 5 * time.Second,
	}}
}

// NewKafkaEventPublisherWith is only for tests to inject a fake writer.
func NewKafkaEventPublisherWith(w kafkaMessageWriter) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: w}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event TransactionEvent) error {
	b, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.TransactionID), 10)),
		Value: b,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// NoopEventPublisher drops every event; used when no brokers are configured
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(ctx context.Context, event TransactionEvent) error { return nil }

func (NoopEventPublisher) Close() error { return nil }

// NewEventPublisher picks the kafka publisher when brokers are configured
func NewEventPublisher(brokers []string, topic string) EventPublisher {
	if len(brokers) == 0 {
		return NoopEventPublisher{}
	}
	return NewKafkaEventPublisher(brokers, topic)
}

var eventPublisherInstance EventPublisher = NoopEventPublisher{}

// InitEventPublisher builds the process-wide publisher from the broker list
func InitEventPublisher(brokers []string, topic string) EventPublisher {
	eventPublisherInstance = NewEventPublisher(brokers, topic)
	return eventPublisherInstance
}

// GetEventPublisher returns the process-wide publisher
func GetEventPublisher() EventPublisher {
	return eventPublisherInstance
}

// SetEventPublisher sets the process-wide publisher (primarily for testing)
func SetEventPublisher(p EventPublisher) {
	eventPublisherInstance = p
}
