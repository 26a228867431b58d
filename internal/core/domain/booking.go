package domain

import "time"

// BookingStatus is the lifecycle state of a booking request.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is an instant-booking request against a platform interpreter.
// Directory interpreters are contacted out-of-band and never appear here.
type Booking struct {
	ID            string        `json:"id"`
	SessionID     string        `json:"session_id,omitempty"`
	InterpreterID string        `json:"interpreter_id"`
	EventType     EventType     `json:"event_type"`
	Date          time.Time     `json:"date"`
	Time          Daypart       `json:"time"`
	Duration      string        `json:"duration"`
	Location      GeoPoint      `json:"location"`
	ContactName   string        `json:"contact_name"`
	ContactEmail  string        `json:"contact_email"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
