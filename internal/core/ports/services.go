package ports

import (
	"context"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
)

// Geocoder resolves free-text addresses and coordinates via an external
// provider. ReverseGeocode returns (nil, nil) when no feature covers the
// point.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, query string, limit int) ([]domain.GeocodedFeature, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodedFeature, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, b *domain.Booking) error
	PublishBookingStatus(ctx context.Context, b *domain.Booking) error
	PublishSearchCompleted(ctx context.Context, sessionID string, platform, directory int) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeBookingCreated(ctx context.Context, handler func(ctx context.Context, b *domain.Booking) error) error
	SubscribeBookingStatus(ctx context.Context, handler func(ctx context.Context, b *domain.Booking) error) error
}

// CacheService provides read-through caching. Implementations may be absent
// at runtime; callers treat every error as a miss.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService notifies interpreters about booking requests.
type NotificationService interface {
	NotifyInterpreter(ctx context.Context, interpreterID, subject, body string) error
}
