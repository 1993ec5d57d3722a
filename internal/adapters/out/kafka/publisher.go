// Package kafka publishes order-changed events to a Kafka topic. Messages are keyed
// by order id so that one order's events stay in one partition, in commit order.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"fooddelivery/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderChangedMessage is the wire form of ports.OrderChangedEvent.
type OrderChangedMessage struct {
	Kind       string    `json:"kind"`
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	VendorID   string    `json:"vendorId"`
	PartnerID  *string   `json:"partnerId,omitempty"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurredAt"`
}

func newOrderChangedMessage(e ports.OrderChangedEvent) OrderChangedMessage {
	msg := OrderChangedMessage{
		Kind:       string(e.Kind),
		OrderID:    e.OrderID.String(),
		CustomerID: e.CustomerID.String(),
		VendorID:   e.VendorID.String(),
		Status:     e.Status.String(),
		ActorID:    e.Actor.ID().String(),
		ActorRole:  string(e.Actor.Role()),
		Version:    e.Version,
		OccurredAt: e.OccurredAt,
	}
	if e.PartnerID != nil {
		id := e.PartnerID.String()
		msg.PartnerID = &id
	}
	return msg
}

type Publisher struct {
	writer       messageWriter
	writeTimeout time.Duration
}

// NewPublisher writes to topic on brokers with hash partitioning by key.
func NewPublisher(brokers []string, topic string, writeTimeout time.Duration) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, writeTimeout)
}

func newPublisher(writer messageWriter, writeTimeout time.Duration) *Publisher {
	return &Publisher{writer: writer, writeTimeout: writeTimeout}
}

func (p *Publisher) Publish(ctx context.Context, events ...ports.OrderChangedEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(newOrderChangedMessage(e))
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.OrderID.String()),
			Value: value,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "kind", Value: []byte(e.Kind)},
			},
		})
	}

	if p.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.writeTimeout)
		defer cancel()
	}

	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
