package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health and readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Legacy endpoints scheduled for removal
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{
			Path:        "/v1/interpreters/platform",
			SunsetDate:  time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
			Alternative: "/v1/interpreters?platform=true",
		},
	}))

	// REST API v1, 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/interpreters", timeout.NewWithContext(ListInterpretersHandler(deps), 15*time.Second))
	v1.Get("/interpreters/platform", timeout.NewWithContext(ListPlatformInterpretersHandler(deps), 15*time.Second))
	v1.Get("/interpreters/:id", timeout.NewWithContext(GetInterpreterHandler(deps), 15*time.Second))
	v1.Get("/interpreters/:id/bookings", timeout.NewWithContext(InterpreterBookingsHandler(deps), 15*time.Second))
	v1.Get("/registry/stats", timeout.NewWithContext(RegistryStatsHandler(deps), 15*time.Second))

	// Matching
	v1.Post("/matches", timeout.NewWithContext(MatchHandler(deps), 15*time.Second))

	// Geocoding proxy
	v1.Get("/geocode", timeout.NewWithContext(GeocodeHandler(deps), 15*time.Second))
	v1.Get("/geocode/reverse", timeout.NewWithContext(ReverseGeocodeHandler(deps), 15*time.Second))

	// Intake wizard
	v1.Post("/intake/sessions", timeout.NewWithContext(StartIntakeHandler(deps), 15*time.Second))
	v1.Get("/intake/sessions/:id", timeout.NewWithContext(GetIntakeHandler(deps), 15*time.Second))
	v1.Post("/intake/sessions/:id/answer", timeout.NewWithContext(AnswerIntakeHandler(deps), 15*time.Second))
	v1.Post("/intake/sessions/:id/back", timeout.NewWithContext(BackIntakeHandler(deps), 15*time.Second))
	v1.Post("/intake/sessions/:id/complete", timeout.NewWithContext(CompleteIntakeHandler(deps), 15*time.Second))
	v1.Get("/intake/sessions/:id/location-search", timeout.NewWithContext(IntakeLocationSearchHandler(deps), 15*time.Second))

	// Bookings
	v1.Post("/bookings", timeout.NewWithContext(CreateBookingHandler(deps), 15*time.Second))
	v1.Get("/bookings/:id", timeout.NewWithContext(GetBookingHandler(deps), 15*time.Second))
	v1.Post("/bookings/:id/confirm", timeout.NewWithContext(BookingStatusHandler(deps, domain.BookingConfirmed), 15*time.Second))
	v1.Post("/bookings/:id/cancel", timeout.NewWithContext(BookingStatusHandler(deps, domain.BookingCancelled), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
