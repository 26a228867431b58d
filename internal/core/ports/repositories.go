package ports

import (
	"context"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
)

// InterpreterRepository persists interpreter records. List and ListPlatform
// return records in stable insertion order; the matcher depends on that.
type InterpreterRepository interface {
	Upsert(ctx context.Context, rec *domain.Interpreter) error
	UpsertBatch(ctx context.Context, recs []domain.Interpreter) error
	GetByID(ctx context.Context, id string) (*domain.Interpreter, error)
	List(ctx context.Context) ([]domain.Interpreter, error)
	ListPlatform(ctx context.Context) ([]domain.Interpreter, error)
	CountBySource(ctx context.Context) (map[domain.Source]int, error)
}

// BookingRepository persists booking requests.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
	ListByInterpreter(ctx context.Context, interpreterID string) ([]domain.Booking, error)
}

// SessionStore persists intake-session wizard state with a TTL.
type SessionStore interface {
	Save(ctx context.Context, session *domain.IntakeSession) error
	Load(ctx context.Context, id string) (*domain.IntakeSession, error)
	Delete(ctx context.Context, id string) error
}
