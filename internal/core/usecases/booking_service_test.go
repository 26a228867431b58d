package usecases_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
)

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	createFn       func(ctx context.Context, b *domain.Booking) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Booking, error)
	updateStatusFn func(ctx context.Context, id string, status domain.BookingStatus) error
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockBookingRepo) ListByInterpreter(ctx context.Context, interpreterID string) ([]domain.Booking, error) {
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	created []string
	status  []string
}

func (m *mockPublisher) PublishBookingCreated(ctx context.Context, b *domain.Booking) error {
	m.created = append(m.created, b.ID)
	return nil
}

func (m *mockPublisher) PublishBookingStatus(ctx context.Context, b *domain.Booking) error {
	m.status = append(m.status, b.ID)
	return nil
}

func (m *mockPublisher) PublishSearchCompleted(ctx context.Context, sessionID string, platform, directory int) error {
	return nil
}

func newBooking() *domain.Booking {
	return &domain.Booking{
		InterpreterID: "p1",
		EventType:     domain.EventMedical,
		Date:          time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Time:          domain.DaypartMorning,
		Duration:      "2",
		Location:      orangeCA,
		ContactName:   "Dana Reyes",
		ContactEmail:  "dana@example.com",
	}
}

func TestBookingService_Create(t *testing.T) {
	interpreters := &mockInterpreterRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Interpreter, error) {
			rec := platformRec(id, coord(33.7879, -117.8531))
			return &rec, nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewBookingService(&mockBookingRepo{}, interpreters, pub, nil)

	b, err := svc.Create(context.Background(), newBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID == "" {
		t.Error("booking id not assigned")
	}
	if b.Status != domain.BookingPending {
		t.Errorf("expected pending status, got %s", b.Status)
	}
	if len(pub.created) != 1 {
		t.Errorf("expected 1 created event, got %d", len(pub.created))
	}
}

func TestBookingService_CreateRejectsDirectoryInterpreter(t *testing.T) {
	interpreters := &mockInterpreterRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Interpreter, error) {
			rec := directoryRec(id, coord(33.7879, -117.8531))
			return &rec, nil
		},
	}
	svc := usecases.NewBookingService(&mockBookingRepo{}, interpreters, nil, nil)

	if _, err := svc.Create(context.Background(), newBooking()); err == nil {
		t.Error("expected error booking a directory interpreter")
	}
}

func TestBookingService_CreateRequiresContact(t *testing.T) {
	svc := usecases.NewBookingService(&mockBookingRepo{}, &mockInterpreterRepo{}, nil, nil)

	b := newBooking()
	b.ContactEmail = ""
	if _, err := svc.Create(context.Background(), b); err == nil {
		t.Error("expected error for missing contact email")
	}
}

func TestBookingService_CreateUnknownInterpreter(t *testing.T) {
	interpreters := &mockInterpreterRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Interpreter, error) {
			return nil, fmt.Errorf("not found")
		},
	}
	svc := usecases.NewBookingService(&mockBookingRepo{}, interpreters, nil, nil)

	if _, err := svc.Create(context.Background(), newBooking()); err == nil {
		t.Error("expected error for unknown interpreter")
	}
}

func TestBookingService_ConfirmPublishesStatus(t *testing.T) {
	var updated domain.BookingStatus
	repo := &mockBookingRepo{
		updateStatusFn: func(ctx context.Context, id string, status domain.BookingStatus) error {
			updated = status
			return nil
		},
		getByIDFn: func(ctx context.Context, id string) (*domain.Booking, error) {
			return &domain.Booking{ID: id, Status: domain.BookingConfirmed}, nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewBookingService(repo, &mockInterpreterRepo{}, pub, nil)

	if err := svc.Confirm(context.Background(), "bk-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != domain.BookingConfirmed {
		t.Errorf("expected confirmed, got %s", updated)
	}
	if len(pub.status) != 1 {
		t.Errorf("expected 1 status event, got %d", len(pub.status))
	}
}

func TestBookingService_NotifyInterpreter(t *testing.T) {
	repo := &mockBookingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Booking, error) {
			b := newBooking()
			b.ID = id
			return b, nil
		},
	}
	notified := ""
	notifier := notifierFunc(func(ctx context.Context, interpreterID, subject, body string) error {
		notified = interpreterID
		return nil
	})
	svc := usecases.NewBookingService(repo, &mockInterpreterRepo{}, nil, notifier)

	if err := svc.NotifyInterpreter(context.Background(), "bk-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notified != "p1" {
		t.Errorf("expected interpreter p1 notified, got %q", notified)
	}
}

type notifierFunc func(ctx context.Context, interpreterID, subject, body string) error

func (f notifierFunc) NotifyInterpreter(ctx context.Context, interpreterID, subject, body string) error {
	return f(ctx, interpreterID, subject, body)
}
