package usecases_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
)

// --- Mock SessionStore ---

type mockSessionStore struct {
	sessions map[string]*domain.IntakeSession
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.IntakeSession)}
}

func (m *mockSessionStore) Save(ctx context.Context, s *domain.IntakeSession) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockSessionStore) Load(ctx context.Context, id string) (*domain.IntakeSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func newIntakeService(store *mockSessionStore, repo *mockInterpreterRepo) *usecases.IntakeService {
	if repo == nil {
		repo = &mockInterpreterRepo{}
	}
	matcher := usecases.NewMatchService(repo, nil, nil)
	return usecases.NewIntakeService(store, matcher)
}

func locationAnswer(lat, lng float64) string {
	b, _ := json.Marshal(domain.LocationAnswer{
		Address:     "123 Main St, Orange, CA",
		Coordinates: domain.GeoPoint{Lat: lat, Lng: lng},
	})
	return string(b)
}

// answerAll walks a session through every step with valid answers.
func answerAll(t *testing.T, svc *usecases.IntakeService, id string) {
	t.Helper()
	answers := []string{"medical", "2099-06-01", "morning", "2", locationAnswer(33.7879, -117.8531)}
	for _, a := range answers {
		if _, err := svc.Answer(context.Background(), id, a); err != nil {
			t.Fatalf("answer %q: %v", a, err)
		}
	}
}

// --- Tests ---

func TestIntakeService_StartAtFirstStep(t *testing.T) {
	svc := newIntakeService(newMockSessionStore(), nil)

	session, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Step != 0 {
		t.Errorf("expected step 0, got %d", session.Step)
	}
	if session.Current().ID != "event-type" {
		t.Errorf("expected event-type step, got %s", session.Current().ID)
	}
	if session.ID == "" {
		t.Error("session id not assigned")
	}
}

func TestIntakeService_AnswerAdvances(t *testing.T) {
	svc := newIntakeService(newMockSessionStore(), nil)
	session, _ := svc.Start(context.Background())

	session, err := svc.Answer(context.Background(), session.ID, "medical")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Step != 1 {
		t.Errorf("expected step 1 after answering, got %d", session.Step)
	}
	if session.Answers["event-type"] != "medical" {
		t.Errorf("answer not recorded: %v", session.Answers)
	}
}

func TestIntakeService_RejectsUnknownChoice(t *testing.T) {
	svc := newIntakeService(newMockSessionStore(), nil)
	session, _ := svc.Start(context.Background())

	if _, err := svc.Answer(context.Background(), session.ID, "circus"); err == nil {
		t.Error("expected error for unknown option")
	}
}

func TestIntakeService_RejectsPastDate(t *testing.T) {
	svc := newIntakeService(newMockSessionStore(), nil)
	session, _ := svc.Start(context.Background())
	session, _ = svc.Answer(context.Background(), session.ID, "legal")

	if _, err := svc.Answer(context.Background(), session.ID, "2019-01-01"); err == nil {
		t.Error("expected error for past date")
	}
}

func TestIntakeService_RetreatFromFirstStepFails(t *testing.T) {
	svc := newIntakeService(newMockSessionStore(), nil)
	session, _ := svc.Start(context.Background())

	if _, err := svc.Retreat(context.Background(), session.ID); err == nil {
		t.Error("expected error retreating from step 0")
	}
}

func TestIntakeService_RetreatIsUnconditional(t *testing.T) {
	svc := newIntakeService(newMockSessionStore(), nil)
	session, _ := svc.Start(context.Background())
	session, _ = svc.Answer(context.Background(), session.ID, "business")

	session, err := svc.Retreat(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Step != 0 {
		t.Errorf("expected step 0 after retreat, got %d", session.Step)
	}
}

func TestIntakeService_CompleteRunsMatch(t *testing.T) {
	repo := &mockInterpreterRepo{
		listFn: func(ctx context.Context) ([]domain.Interpreter, error) {
			return []domain.Interpreter{
				platformRec("p1", coord(33.7879, -117.8531)),
				directoryRec("d1", coord(34.3279, -117.8531)), // out of range
			}, nil
		},
	}
	svc := newIntakeService(newMockSessionStore(), repo)
	session, _ := svc.Start(context.Background())
	answerAll(t, svc, session.ID)

	result, err := svc.Complete(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.PlatformInterpreters) != 1 {
		t.Errorf("expected 1 platform match, got %d", len(result.PlatformInterpreters))
	}
	if len(result.DirectoryInterpreters) != 0 {
		t.Errorf("expected 0 directory matches, got %d", len(result.DirectoryInterpreters))
	}

	session, _ = svc.Get(context.Background(), session.ID)
	if !session.Completed {
		t.Error("session not marked completed")
	}
}

func TestIntakeService_CompleteWithUnansweredStepFails(t *testing.T) {
	svc := newIntakeService(newMockSessionStore(), nil)
	session, _ := svc.Start(context.Background())
	_, _ = svc.Answer(context.Background(), session.ID, "medical")

	if _, err := svc.Complete(context.Background(), session.ID); err == nil {
		t.Error("expected error completing an unfinished session")
	}
}

func TestIntakeService_SearchSeqIncreases(t *testing.T) {
	svc := newIntakeService(newMockSessionStore(), nil)
	session, _ := svc.Start(context.Background())

	first, err := svc.NextSearchSeq(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := svc.NextSearchSeq(context.Background(), session.ID)

	if second <= first {
		t.Errorf("sequence not increasing: %d then %d", first, second)
	}
}
