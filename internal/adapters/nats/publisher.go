package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the streams exist.
func NewPublisher(url string) (*Publisher, error) {
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

	streams := []nats.StreamConfig{
		{
			Name:      "BOOKINGS",
			Subjects:  []string{"booking.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "SEARCHES",
			Subjects:  []string{"search.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishBookingCreated(ctx context.Context, b *domain.Booking) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("booking.created."+b.ID, data)
	return err
}

func (p *Publisher) PublishBookingStatus(ctx context.Context, b *domain.Booking) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("booking.status."+b.ID, data)
	return err
}

// PublishSearchCompleted records how a finished intake search split across
// the two pools. Consumed for analytics, never on the request path.
func (p *Publisher) PublishSearchCompleted(ctx context.Context, sessionID string, platform, directory int) error {
	data, err := json.Marshal(map[string]interface{}{
		"session_id": sessionID,
		"platform":   platform,
		"directory":  directory,
		"at":         time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("search.completed", data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
