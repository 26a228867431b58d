package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) subscribeBooking(ctx context.Context, subject, durable string, handler func(ctx context.Context, b *domain.Booking) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var b domain.Booking
		if err := json.Unmarshal(msg.Data, &b); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &b); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeBookingCreated(ctx context.Context, handler func(ctx context.Context, b *domain.Booking) error) error {
	return s.subscribeBooking(ctx, "booking.created.>", "booking-created-processor", handler)
}

func (s *Subscriber) SubscribeBookingStatus(ctx context.Context, handler func(ctx context.Context, b *domain.Booking) error) error {
	return s.subscribeBooking(ctx, "booking.status.>", "booking-status-processor", handler)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
