package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"

	"github.com/interpretingapp/terpmatch/internal/pkg/config"
	"github.com/interpretingapp/terpmatch/internal/pkg/logging"
)

// searchCompleted mirrors the search.completed event payload.
type searchCompleted struct {
	SessionID string    `json:"session_id"`
	Platform  int       `json:"platform"`
	Directory int       `json:"directory"`
	At        time.Time `json:"at"`
}

// The analytics worker drains the SEARCHES work queue and records how each
// finished search split across the platform and directory pools. The table
// feeds the registry stats endpoint and offline reporting.
func main() {
	cfg, err := config.Load("terpmatch-analytics")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("terpmatch-analytics", "info", "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := ensureTable(ctx, pool); err != nil {
		log.Fatalf("search_events table: %v", err)
	}

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Drain()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("jetstream: %v", err)
	}

	sub, err := js.QueueSubscribe("search.completed", "search-analytics",
		func(msg *nats.Msg) {
			var ev searchCompleted
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				slog.Warn("malformed search event", "error", err)
				_ = msg.Term()
				return
			}
			if err := recordSearch(ctx, pool, &ev); err != nil {
				slog.Error("record search", "session_id", ev.SessionID, "error", err)
				_ = msg.Nak()
				return
			}
			_ = msg.Ack()
		},
		nats.Durable("search-analytics"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		log.Fatalf("subscribe search.completed: %v", err)
	}
	defer sub.Unsubscribe()

	slog.Info("analytics worker started", "subject", "search.completed")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("analytics worker stopping")
}

func ensureTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS search_events (
		id bigserial PRIMARY KEY,
		session_id text NOT NULL,
		platform_matches integer NOT NULL,
		directory_matches integer NOT NULL,
		occurred_at timestamptz NOT NULL
	)`)
	return err
}

func recordSearch(ctx context.Context, pool *pgxpool.Pool, ev *searchCompleted) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO search_events (session_id, platform_matches, directory_matches, occurred_at)
		VALUES ($1, $2, $3, $4)`,
		ev.SessionID, ev.Platform, ev.Directory, at)
	return err
}
