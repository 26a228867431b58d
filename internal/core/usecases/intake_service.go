package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/ports"
)

// ErrSessionNotFound means the intake session is missing or its TTL lapsed.
var ErrSessionNotFound = errors.New("intake session not found")

// IntakeService drives the multi-step intake wizard. Sessions live in the
// session store under a TTL; mutation is sequential per session, ordered by
// the user's interaction events.
type IntakeService struct {
	sessions ports.SessionStore
	matcher  *MatchService
	now      func() time.Time
}

// NewIntakeService creates a new IntakeService.
func NewIntakeService(sessions ports.SessionStore, matcher *MatchService) *IntakeService {
	return &IntakeService{sessions: sessions, matcher: matcher, now: time.Now}
}

// Start creates a fresh session positioned at the first step.
func (s *IntakeService) Start(ctx context.Context) (*domain.IntakeSession, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	session := domain.NewIntakeSession(id, s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Get loads a session by ID.
func (s *IntakeService) Get(ctx context.Context, id string) (*domain.IntakeSession, error) {
	return s.load(ctx, id)
}

func (s *IntakeService) load(ctx context.Context, id string) (*domain.IntakeSession, error) {
	session, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Answer records an answer for the session's current step and advances when
// more steps remain.
func (s *IntakeService) Answer(ctx context.Context, id, value string) (*domain.IntakeSession, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := session.Answer(value, now); err != nil {
		return nil, err
	}
	if !session.Terminal() {
		if err := session.Advance(now); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Retreat moves the session back one step.
func (s *IntakeService) Retreat(ctx context.Context, id string) (*domain.IntakeSession, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.Retreat(s.now()); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Complete builds the MatchQuery from the answered steps and runs the search.
// This is the wizard's sole integration point with the matcher.
func (s *IntakeService) Complete(ctx context.Context, id string) (*domain.MatchResult, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	query, err := session.BuildQuery()
	if err != nil {
		return nil, err
	}

	result, err := s.matcher.Find(ctx, query, DefaultRadiusKm)
	if err != nil {
		return nil, err
	}

	session.Completed = true
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if s.matcher.publisher != nil {
		_ = s.matcher.publisher.PublishSearchCompleted(ctx, session.ID,
			len(result.PlatformInterpreters), len(result.DirectoryInterpreters))
	}

	return result, nil
}

// NextSearchSeq bumps and returns the session's address-search generation
// counter. A response tagged with an older sequence number than the session's
// current one is stale and must be discarded by the caller.
func (s *IntakeService) NextSearchSeq(ctx context.Context, id string) (int, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	session.LocationSearchSeq++
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return 0, fmt.Errorf("save session: %w", err)
	}
	return session.LocationSearchSeq, nil
}

func generateSessionID() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "is-" + hex.EncodeToString(b), nil
}
