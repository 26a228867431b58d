package usecases

import (
	"context"
	"encoding/json"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/ports"
)

// InterpreterService exposes read access to the interpreter directory.
type InterpreterService struct {
	interpreters ports.InterpreterRepository
	cache        ports.CacheService
}

// NewInterpreterService creates a new InterpreterService.
func NewInterpreterService(interpreters ports.InterpreterRepository, cache ports.CacheService) *InterpreterService {
	return &InterpreterService{interpreters: interpreters, cache: cache}
}

// List returns the whole directory in insertion order.
func (s *InterpreterService) List(ctx context.Context) ([]domain.Interpreter, error) {
	cacheKey := "interpreters:all"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var recs []domain.Interpreter
			if err := json.Unmarshal(data, &recs); err == nil {
				return recs, nil
			}
		}
	}

	recs, err := s.interpreters.List(ctx)
	if err != nil {
		return nil, err
	}

	// Cache for 5 minutes; the registry import invalidates rarely enough.
	if s.cache != nil {
		if data, err := json.Marshal(recs); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return recs, nil
}

// ListPlatform returns only platform members, in insertion order.
func (s *InterpreterService) ListPlatform(ctx context.Context) ([]domain.Interpreter, error) {
	return s.interpreters.ListPlatform(ctx)
}

// GetByID returns a single interpreter.
func (s *InterpreterService) GetByID(ctx context.Context, id string) (*domain.Interpreter, error) {
	cacheKey := "interpreters:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var rec domain.Interpreter
			if err := json.Unmarshal(data, &rec); err == nil {
				return &rec, nil
			}
		}
	}

	rec, err := s.interpreters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(rec); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return rec, nil
}

// CountBySource returns per-registry record counts for the stats endpoint.
func (s *InterpreterService) CountBySource(ctx context.Context) (map[domain.Source]int, error) {
	return s.interpreters.CountBySource(ctx)
}
