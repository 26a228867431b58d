package workflows

import (
	"context"
	"fmt"
	"log"

	"github.com/interpretingapp/terpmatch/internal/core/ports"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
)

// BookingActivities holds the activity implementations for the booking
// workflow.
type BookingActivities struct {
	Bookings *usecases.BookingService
	Notifier ports.NotificationService
}

// NotifyInterpreter delivers a new booking request to the interpreter.
func (a *BookingActivities) NotifyInterpreter(ctx context.Context, bookingID string) error {
	if err := a.Bookings.NotifyInterpreter(ctx, bookingID); err != nil {
		return fmt.Errorf("notify interpreter for %s: %w", bookingID, err)
	}
	return nil
}

// CancelBooking releases a pending booking (saga compensation / rollback).
func (a *BookingActivities) CancelBooking(ctx context.Context, bookingID string) error {
	if err := a.Bookings.Cancel(ctx, bookingID); err != nil {
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}
	log.Printf("Booking %s cancelled (saga compensation)", bookingID)
	return nil
}

// NotifyRequesterPending tells the requester their booking is with the
// interpreter awaiting confirmation.
func (a *BookingActivities) NotifyRequesterPending(ctx context.Context, bookingID, contactEmail string) error {
	if a.Notifier == nil {
		log.Printf("EMAIL (no notifier) → %s: booking %s pending", contactEmail, bookingID)
		return nil
	}
	subject := "Booking request sent"
	body := fmt.Sprintf("Your request %s is with the interpreter. We'll let you know as soon as they confirm.", bookingID)
	return a.Notifier.NotifyInterpreter(ctx, contactEmail, subject, body)
}

// NotifyRequesterFailed tells the requester the interpreter could not be
// reached.
func (a *BookingActivities) NotifyRequesterFailed(ctx context.Context, bookingID, contactEmail string) error {
	if a.Notifier == nil {
		log.Printf("EMAIL (no notifier) → %s: booking %s cancelled", contactEmail, bookingID)
		return nil
	}
	subject := "Booking could not be placed"
	body := fmt.Sprintf("We couldn't reach the interpreter for request %s. The booking was cancelled; please pick another interpreter.", bookingID)
	return a.Notifier.NotifyInterpreter(ctx, contactEmail, subject, body)
}
