package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
	"github.com/interpretingapp/terpmatch/internal/pkg/metrics"
)

// RegistryStats holds row counts from the interpreter directory.
type RegistryStats struct {
	Total      int    `json:"total"`
	BEI        int    `json:"bei"`
	RID        int    `json:"rid"`
	Platform   int    `json:"platform"`
	LastImport string `json:"last_import,omitempty"`
}

// RegistryStatsHandler returns directory-level counts.
func RegistryStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats RegistryStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM interpreters),
				(SELECT count(*) FROM interpreters WHERE source = 'BEI'),
				(SELECT count(*) FROM interpreters WHERE source = 'RID'),
				(SELECT count(*) FROM interpreters WHERE is_platform_member),
				COALESCE((SELECT max(created_at)::text FROM interpreters), '')
		`)
		if err := row.Scan(&stats.Total, &stats.BEI, &stats.RID,
			&stats.Platform, &stats.LastImport); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// ListInterpretersHandler returns the interpreter directory, paginated.
func ListInterpretersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			recs []domain.Interpreter
			err  error
		)
		if c.QueryBool("platform", false) {
			recs, err = deps.Interpreters.ListPlatform(c.Context())
		} else {
			recs, err = deps.Interpreters.List(c.Context())
		}
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset, limit := ParsePagination(c, 100, 200)

		total := len(recs)
		if offset >= total {
			recs = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			recs = recs[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: recs, Pagination: pg})
	}
}

// ListPlatformInterpretersHandler is the legacy alias for
// /v1/interpreters?platform=true.
func ListPlatformInterpretersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := deps.Interpreters.ListPlatform(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		if recs == nil {
			recs = []domain.Interpreter{}
		}
		return c.JSON(recs)
	}
}

// GetInterpreterHandler returns a single interpreter by ID. Expired
// certifications are annotated, never hidden.
func GetInterpreterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "interpreter id is required")
		}
		rec, err := deps.Interpreters.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "interpreter not found")
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(fiber.Map{
			"interpreter": rec,
			"expired":     rec.Expired(time.Now()),
		})
	}
}

// InterpreterBookingsHandler returns a platform interpreter's bookings.
func InterpreterBookingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "interpreter id is required")
		}
		bookings, err := deps.Bookings.ListByInterpreter(c.Context(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if bookings == nil {
			bookings = []domain.Booking{}
		}
		return c.JSON(bookings)
	}
}

// matchRequest is the body for POST /v1/matches.
type matchRequest struct {
	EventType string          `json:"event_type"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Time      string          `json:"time"`
	Duration  string          `json:"duration"`
	Location  domain.GeoPoint `json:"location"`
	RadiusKm  float64         `json:"radius_km"`
}

// MatchHandler runs a radius search around the request location and returns
// both pools. Event fields ride along for context and never narrow the result.
func MatchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req matchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Location.Lat < -90 || req.Location.Lat > 90 ||
			req.Location.Lng < -180 || req.Location.Lng > 180 {
			return errBadRequest(c, "location out of range")
		}
		if req.Location.Lat == 0 && req.Location.Lng == 0 {
			return errBadRequest(c, "location is required")
		}

		query := &domain.MatchQuery{
			EventType: domain.EventType(req.EventType),
			Time:      domain.Daypart(req.Time),
			Duration:  req.Duration,
			Location:  req.Location,
		}
		if req.Date != "" {
			d, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				return errBadRequest(c, "date must be YYYY-MM-DD")
			}
			query.Date = d
		}

		result, err := deps.Matches.Find(c.Context(), query, req.RadiusKm)
		if err != nil {
			return errInternal(c, err.Error())
		}

		metrics.SearchesTotal.Inc()
		metrics.MatchesReturned.WithLabelValues("platform").
			Observe(float64(len(result.PlatformInterpreters)))
		metrics.MatchesReturned.WithLabelValues("directory").
			Observe(float64(len(result.DirectoryInterpreters)))

		return c.JSON(result)
	}
}

// GeocodeHandler resolves a free-text address to candidate places. Provider
// failures degrade to an empty list so the wizard keeps working.
func GeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if strings.TrimSpace(query) == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 5)

		feats, err := deps.Locations.SearchAddress(c.Context(), query, limit)
		if err != nil {
			feats = []domain.GeocodedFeature{}
		}
		if feats == nil {
			feats = []domain.GeocodedFeature{}
		}
		return c.JSON(fiber.Map{"features": feats})
	}
}

// ReverseGeocodeHandler resolves coordinates to a place name.
func ReverseGeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lng := c.QueryFloat("lng", 0)
		if c.Query("lat") == "" || c.Query("lng") == "" {
			return errBadRequest(c, "lat and lng are required")
		}

		feat, err := deps.Locations.Resolve(c.Context(), lat, lng)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if feat == nil {
			return errNotFound(c, "no place found at coordinates")
		}
		return c.JSON(feat)
	}
}

// CreateBookingHandler creates an instant booking against a platform
// interpreter.
func CreateBookingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b domain.Booking
		if err := c.BodyParser(&b); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		created, err := deps.Bookings.Create(c.Context(), &b)
		if err != nil {
			switch {
			case errors.Is(err, usecases.ErrInterpreterNotFound):
				return errNotFound(c, err.Error())
			case errors.Is(err, usecases.ErrNotPlatformMember):
				return errConflict(c, err.Error())
			default:
				return errBadRequest(c, err.Error())
			}
		}

		metrics.BookingsTotal.WithLabelValues(string(created.Status)).Inc()
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// GetBookingHandler returns a booking by ID.
func GetBookingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "booking id is required")
		}
		b, err := deps.Bookings.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "booking not found")
		}
		return c.JSON(b)
	}
}

// BookingStatusHandler confirms or cancels a booking.
func BookingStatusHandler(deps *Dependencies, status domain.BookingStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "booking id is required")
		}

		var err error
		switch status {
		case domain.BookingConfirmed:
			err = deps.Bookings.Confirm(c.Context(), id)
		case domain.BookingCancelled:
			err = deps.Bookings.Cancel(c.Context(), id)
		default:
			return errBadRequest(c, "unsupported status transition")
		}
		if err != nil {
			return errNotFound(c, "booking not found")
		}

		metrics.BookingsTotal.WithLabelValues(string(status)).Inc()
		b, err := deps.Bookings.GetByID(c.Context(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(b)
	}
}
