package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/ports"
)

// LocationService resolves free-text addresses and coordinates through the
// geocoding provider.
type LocationService struct {
	geocoder ports.Geocoder
}

// NewLocationService creates a new LocationService.
func NewLocationService(geocoder ports.Geocoder) *LocationService {
	return &LocationService{geocoder: geocoder}
}

// SearchAddress returns up to limit suggestions for a partial address.
func (s *LocationService) SearchAddress(ctx context.Context, query string, limit int) ([]domain.GeocodedFeature, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 10 {
		limit = 5
	}
	return s.geocoder.ForwardGeocode(ctx, query, limit)
}

// Resolve turns coordinates into a place description, e.g. after device
// geolocation or a map-pin drop. A nil feature means the point is covered by
// no known place; the caller falls back to raw coordinates.
func (s *LocationService) Resolve(ctx context.Context, lat, lng float64) (*domain.GeocodedFeature, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("coordinates out of range: %f, %f", lat, lng)
	}
	return s.geocoder.ReverseGeocode(ctx, lat, lng)
}
