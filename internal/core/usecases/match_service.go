package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/ports"
	"github.com/interpretingapp/terpmatch/internal/pkg/geospatial"
)

// DefaultRadiusKm is the fixed search radius when the caller does not supply
// one.
const DefaultRadiusKm = 50.0

// Match partitions records into platform and directory pools and keeps only
// those within radiusKm of the query location. Records without coordinates
// never match. Relative order within each pool equals the input order; the
// filter is stable and never sorts by distance. EventType, Date, Time, and
// Duration are deliberately ignored here; they are booking context, not
// filter criteria.
func Match(query *domain.MatchQuery, records []domain.Interpreter, radiusKm float64) domain.MatchResult {
	result := domain.MatchResult{
		PlatformInterpreters:  []domain.Interpreter{},
		DirectoryInterpreters: []domain.Interpreter{},
	}

	for _, rec := range records {
		if !rec.Locatable() {
			continue
		}
		c := rec.Location.Coordinates
		d := geospatial.Haversine(query.Location.Lat, query.Location.Lng, c.Lat, c.Lng)
		if d > radiusKm {
			continue
		}
		rec.Distance = &d
		if rec.Platform() {
			result.PlatformInterpreters = append(result.PlatformInterpreters, rec)
		} else {
			result.DirectoryInterpreters = append(result.DirectoryInterpreters, rec)
		}
	}

	return result
}

// MatchService runs interpreter searches against the repository-backed
// directory.
type MatchService struct {
	interpreters ports.InterpreterRepository
	cache        ports.CacheService
	publisher    ports.EventPublisher
}

// NewMatchService creates a new MatchService.
func NewMatchService(interpreters ports.InterpreterRepository, cache ports.CacheService, publisher ports.EventPublisher) *MatchService {
	return &MatchService{interpreters: interpreters, cache: cache, publisher: publisher}
}

// Find loads the directory and applies the radius filter. Results are cached
// per rounded coordinate and radius; directory data changes rarely.
func (s *MatchService) Find(ctx context.Context, query *domain.MatchQuery, radiusKm float64) (*domain.MatchResult, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	cacheKey := fmt.Sprintf("match:%.4f:%.4f:%.0f", query.Location.Lat, query.Location.Lng, radiusKm)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var result domain.MatchResult
			if err := json.Unmarshal(data, &result); err == nil {
				return &result, nil
			}
		}
	}

	records, err := s.interpreters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory: %w", err)
	}

	result := Match(query, records, radiusKm)

	// Cache for 5 minutes
	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return &result, nil
}
