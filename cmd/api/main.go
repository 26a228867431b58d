package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/interpretingapp/terpmatch/internal/adapters/http"
	"github.com/interpretingapp/terpmatch/internal/adapters/mapbox"
	natsadapter "github.com/interpretingapp/terpmatch/internal/adapters/nats"
	"github.com/interpretingapp/terpmatch/internal/adapters/postgres"
	"github.com/interpretingapp/terpmatch/internal/adapters/valkey"
	"github.com/interpretingapp/terpmatch/internal/core/ports"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
	"github.com/interpretingapp/terpmatch/internal/pkg/config"
	"github.com/interpretingapp/terpmatch/internal/pkg/logging"
	"github.com/interpretingapp/terpmatch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("terpmatch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("terpmatch-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache + session store. Valkey is required: intake sessions live there.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()
	sessions := valkey.NewSessionStore(cache.Client(), cfg.Valkey.SessionTTL)

	// NATS
	var eventPub ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		eventPub = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Geocoder
	geocoder := mapbox.New(cfg.Mapbox.BaseURL, cfg.Mapbox.AccessToken)

	// Repos
	interpreterRepo := postgres.NewInterpreterRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)

	// Use cases
	matchSvc := usecases.NewMatchService(interpreterRepo, cache, eventPub)
	interpreterSvc := usecases.NewInterpreterService(interpreterRepo, cache)
	intakeSvc := usecases.NewIntakeService(sessions, matchSvc)
	locationSvc := usecases.NewLocationService(geocoder)
	bookingSvc := usecases.NewBookingService(bookingRepo, interpreterRepo, eventPub, nil)

	deps := &http.Dependencies{
		Interpreters: interpreterSvc,
		Matches:      matchSvc,
		Intake:       intakeSvc,
		Locations:    locationSvc,
		Bookings:     bookingSvc,
		NATS:         natsConn,
		DB:           db,
		Cache:        cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Interpreting App API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.interpretingapp.com",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
