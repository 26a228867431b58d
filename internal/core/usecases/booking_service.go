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

var (
	// ErrInterpreterNotFound means the booking targets an unknown record.
	ErrInterpreterNotFound = errors.New("interpreter not found")
	// ErrNotPlatformMember means the target is directory-only and cannot be
	// booked through the app.
	ErrNotPlatformMember = errors.New("interpreter is not a platform member")
)

// BookingService handles instant-booking requests against platform
// interpreters.
type BookingService struct {
	bookings     ports.BookingRepository
	interpreters ports.InterpreterRepository
	publisher    ports.EventPublisher
	notifier     ports.NotificationService
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings ports.BookingRepository,
	interpreters ports.InterpreterRepository,
	publisher ports.EventPublisher,
	notifier ports.NotificationService,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		interpreters: interpreters,
		publisher:    publisher,
		notifier:     notifier,
	}
}

// Create validates the target interpreter and records a pending booking.
// Only platform members are instantly bookable; directory interpreters are
// contacted out-of-band.
func (s *BookingService) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	if b.InterpreterID == "" {
		return nil, fmt.Errorf("interpreter id is required")
	}
	if b.ContactName == "" || b.ContactEmail == "" {
		return nil, fmt.Errorf("contact name and email are required")
	}

	rec, err := s.interpreters.GetByID(ctx, b.InterpreterID)
	if err != nil {
		return nil, fmt.Errorf("interpreter %s: %w", b.InterpreterID, ErrInterpreterNotFound)
	}
	if !rec.Platform() {
		return nil, fmt.Errorf("interpreter %s: %w", b.InterpreterID, ErrNotPlatformMember)
	}

	id, err := generateBookingID()
	if err != nil {
		return nil, fmt.Errorf("generate booking id: %w", err)
	}

	b.ID = id
	b.Status = domain.BookingPending
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	// Best-effort broadcast; the workflow worker picks it up from here.
	if s.publisher != nil {
		_ = s.publisher.PublishBookingCreated(ctx, b)
	}

	return b, nil
}

// GetByID returns a booking.
func (s *BookingService) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// ListByInterpreter returns an interpreter's bookings, newest first.
func (s *BookingService) ListByInterpreter(ctx context.Context, interpreterID string) ([]domain.Booking, error) {
	return s.bookings.ListByInterpreter(ctx, interpreterID)
}

// Confirm marks a pending booking confirmed and broadcasts the change.
func (s *BookingService) Confirm(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.BookingConfirmed)
}

// Cancel marks a booking cancelled and broadcasts the change.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.BookingCancelled)
}

// NotifyInterpreter sends the booking request to the interpreter. Used as a
// workflow activity; failures are retried there, not here.
func (s *BookingService) NotifyInterpreter(ctx context.Context, bookingID string) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("booking %s: %w", bookingID, err)
	}
	if s.notifier == nil {
		return nil
	}
	subject := "New booking request"
	body := fmt.Sprintf("%s event on %s (%s, %s hour(s)). Reply to confirm.",
		b.EventType, b.Date.Format("2006-01-02"), b.Time, b.Duration)
	return s.notifier.NotifyInterpreter(ctx, b.InterpreterID, subject, body)
}

func (s *BookingService) transition(ctx context.Context, id string, status domain.BookingStatus) error {
	if err := s.bookings.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	if s.publisher != nil {
		if b, err := s.bookings.GetByID(ctx, id); err == nil {
			_ = s.publisher.PublishBookingStatus(ctx, b)
		}
	}
	return nil
}

func generateBookingID() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "bk-" + hex.EncodeToString(b), nil
}
