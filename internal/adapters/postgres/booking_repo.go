package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
)

// BookingRepo implements ports.BookingRepository with pgx.
type BookingRepo struct {
	db *DB
}

// NewBookingRepo creates a new BookingRepo.
func NewBookingRepo(db *DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `
	id, COALESCE(session_id, ''), interpreter_id, event_type, event_date,
	event_time, duration, lat, lng, contact_name, contact_email, status,
	created_at, updated_at`

// Create persists a new booking.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO bookings (
			id, session_id, interpreter_id, event_type, event_date,
			event_time, duration, lat, lng, contact_name, contact_email,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		b.ID, nilEmpty(b.SessionID), b.InterpreterID, string(b.EventType),
		b.Date, string(b.Time), b.Duration,
		b.Location.Lat, b.Location.Lng,
		b.ContactName, b.ContactEmail, string(b.Status),
		b.CreatedAt, b.UpdatedAt)
	return err
}

// GetByID returns a booking by ID, or pgx.ErrNoRows.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

// UpdateStatus moves a booking to a new status.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByInterpreter returns all bookings for one interpreter, newest first.
func (r *BookingRepo) ListByInterpreter(ctx context.Context, interpreterID string) ([]domain.Booking, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE interpreter_id = $1 ORDER BY created_at DESC`, interpreterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                            domain.Booking
		eventType, eventTime, status string
	)
	err := row.Scan(
		&b.ID, &b.SessionID, &b.InterpreterID, &eventType, &b.Date,
		&eventTime, &b.Duration, &b.Location.Lat, &b.Location.Lng,
		&b.ContactName, &b.ContactEmail, &status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.EventType = domain.EventType(eventType)
	b.Time = domain.Daypart(eventTime)
	b.Status = domain.BookingStatus(status)
	return &b, nil
}
