package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
)

// sessionView is the wire shape of an intake session, with the current step's
// prompt and options inlined so clients never hardcode the flow.
type sessionView struct {
	ID        string            `json:"id"`
	StepIndex int               `json:"step_index"`
	StepCount int               `json:"step_count"`
	Step      domain.Step       `json:"step"`
	Answers   map[string]string `json:"answers"`
	Completed bool              `json:"completed"`
}

func viewSession(s *domain.IntakeSession) sessionView {
	return sessionView{
		ID:        s.ID,
		StepIndex: s.Step,
		StepCount: len(domain.IntakeSteps),
		Step:      s.Current(),
		Answers:   s.Answers,
		Completed: s.Completed,
	}
}

// StartIntakeHandler creates a fresh wizard session.
func StartIntakeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := deps.Intake.Start(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(viewSession(session))
	}
}

// GetIntakeHandler returns the session's current position.
func GetIntakeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := deps.Intake.Get(c.Context(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "session not found or expired")
		}
		return c.JSON(viewSession(session))
	}
}

// AnswerIntakeHandler records an answer for the current step and advances.
func AnswerIntakeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Value string `json:"value"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Value) == "" {
			return errBadRequest(c, "value is required")
		}

		session, err := deps.Intake.Answer(c.Context(), c.Params("id"), req.Value)
		if err != nil {
			if errors.Is(err, usecases.ErrSessionNotFound) {
				return errNotFound(c, "session not found or expired")
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(viewSession(session))
	}
}

// BackIntakeHandler moves the session back one step. Going back from the
// first step is a client error.
func BackIntakeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := deps.Intake.Retreat(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, usecases.ErrSessionNotFound) {
				return errNotFound(c, "session not found or expired")
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(viewSession(session))
	}
}

// CompleteIntakeHandler runs the search once every step is answered.
func CompleteIntakeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := deps.Intake.Complete(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, usecases.ErrSessionNotFound) {
				return errNotFound(c, "session not found or expired")
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(result)
	}
}

// IntakeLocationSearchHandler geocodes free text during the location step and
// tags the response with a per-session sequence number. Clients fire this as
// the user types; any response carrying a lower seq than the latest one they
// issued is stale and gets dropped.
func IntakeLocationSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if strings.TrimSpace(query) == "" {
			return errBadRequest(c, "q query parameter is required")
		}

		seq, err := deps.Intake.NextSearchSeq(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, usecases.ErrSessionNotFound) {
				return errNotFound(c, "session not found or expired")
			}
			return errInternal(c, err.Error())
		}

		feats, err := deps.Locations.SearchAddress(c.Context(), query, 5)
		if err != nil || feats == nil {
			feats = []domain.GeocodedFeature{}
		}
		return c.JSON(fiber.Map{"seq": seq, "features": feats})
	}
}
