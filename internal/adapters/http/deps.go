package http

import (
	"github.com/nats-io/nats.go"

	"github.com/interpretingapp/terpmatch/internal/adapters/postgres"
	"github.com/interpretingapp/terpmatch/internal/adapters/valkey"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Interpreters *usecases.InterpreterService
	Matches      *usecases.MatchService
	Intake       *usecases.IntakeService
	Locations    *usecases.LocationService
	Bookings     *usecases.BookingService
	NATS         *nats.Conn
	DB           *postgres.DB
	Cache        *valkey.Cache
}
