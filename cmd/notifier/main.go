package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/interpretingapp/terpmatch/internal/adapters/nats"
	"github.com/interpretingapp/terpmatch/internal/adapters/postgres"
	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
	"github.com/interpretingapp/terpmatch/internal/pkg/config"
	"github.com/interpretingapp/terpmatch/internal/pkg/logging"
	"github.com/interpretingapp/terpmatch/internal/workflows"
)

// The notifier runs the booking notification workflow: it consumes
// booking.created events and drives interpreter/requester notifications
// through Temporal, cancelling the booking when the interpreter cannot
// be reached.
func main() {
	cfg, err := config.Load("terpmatch-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("terpmatch-notifier", "info", "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	bookingRepo := postgres.NewBookingRepo(db)
	interpreterRepo := postgres.NewInterpreterRepo(db)
	bookingSvc := usecases.NewBookingService(bookingRepo, interpreterRepo, pub, nil)

	// Connect to Temporal
	tc, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer tc.Close()

	w := worker.New(tc, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.BookingWorkflow)
	w.RegisterActivity(&workflows.BookingActivities{
		Bookings: bookingSvc,
		// Notifier is nil until an email provider is wired; activities
		// log the message instead.
	})

	// Each booking.created event starts one workflow execution keyed by
	// booking ID, so redeliveries are deduplicated by Temporal.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeBookingCreated(ctx, func(ctx context.Context, b *domain.Booking) error {
		_, err := tc.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        "booking-" + b.ID,
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.BookingWorkflow, workflows.BookingInput{
			BookingID:     b.ID,
			InterpreterID: b.InterpreterID,
			ContactEmail:  b.ContactEmail,
		})
		if err != nil {
			slog.Error("start booking workflow", "booking_id", b.ID, "error", err)
			return err
		}
		slog.Info("booking workflow started", "booking_id", b.ID)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe booking.created: %v", err)
	}

	slog.Info("notifier worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
