//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	handler "github.com/interpretingapp/terpmatch/internal/adapters/http"
	"github.com/interpretingapp/terpmatch/internal/adapters/postgres"
	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
	"github.com/interpretingapp/terpmatch/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("terpmatch-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	if _, err := pool.Exec(ctx, "TRUNCATE interpreters, bookings"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with real DB and repos, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	interpreterRepo := postgres.NewInterpreterRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)

	matcher := usecases.NewMatchService(interpreterRepo, nil, nil)
	return &handler.Dependencies{
		Interpreters: usecases.NewInterpreterService(interpreterRepo, nil),
		Matches:      matcher,
		Bookings:     usecases.NewBookingService(bookingRepo, interpreterRepo, nil, nil),
		DB:           db,
	}
}

func seedInterpreters(t *testing.T, db *postgres.DB, recs []domain.Interpreter) {
	t.Helper()
	repo := postgres.NewInterpreterRepo(db)
	if err := repo.UpsertBatch(context.Background(), recs); err != nil {
		t.Fatalf("seed interpreters: %v", err)
	}
}

func TestIntegration_MatchAgainstSeededDirectory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	near := &domain.GeoPoint{Lat: 33.7879, Lng: -117.8531}
	far := &domain.GeoPoint{Lat: 40.7128, Lng: -74.0060}
	seedInterpreters(t, db, []domain.Interpreter{
		{ID: "bei-001", Name: "Near Directory", Source: domain.SourceBEI, Active: true,
			Location: domain.Location{City: "Orange", State: "CA", Coordinates: near}},
		{ID: "app-001", Name: "Near Platform", Source: domain.SourceRID, Active: true,
			IsPlatformMember: true,
			Location:         domain.Location{City: "Orange", State: "CA", Coordinates: near}},
		{ID: "rid-900", Name: "Far Away", Source: domain.SourceRID, Active: true,
			Location: domain.Location{City: "New York", State: "NY", Coordinates: far}},
	})

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	body := `{"location": {"lat": 33.7879, "lng": -117.8531}}`
	req := httptest.NewRequest("POST", "/v1/matches", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.MatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.PlatformInterpreters) != 1 || result.PlatformInterpreters[0].ID != "app-001" {
		t.Errorf("platform pool = %+v", result.PlatformInterpreters)
	}
	if len(result.DirectoryInterpreters) != 1 || result.DirectoryInterpreters[0].ID != "bei-001" {
		t.Errorf("directory pool = %+v", result.DirectoryInterpreters)
	}
}

func TestIntegration_BookingLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	near := &domain.GeoPoint{Lat: 33.7879, Lng: -117.8531}
	seedInterpreters(t, db, []domain.Interpreter{
		{ID: "app-002", Name: "Bookable", Source: domain.SourceRID, Active: true,
			IsPlatformMember: true,
			Location:         domain.Location{City: "Orange", State: "CA", Coordinates: near}},
	})

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	body := `{
		"interpreter_id": "app-002",
		"event_type": "medical",
		"date": "2099-06-01T00:00:00Z",
		"time": "morning",
		"duration": "2",
		"location": {"lat": 33.7879, "lng": -117.8531},
		"contact_name": "Dana Ruiz",
		"contact_email": "dana@example.com"
	}`
	req := httptest.NewRequest("POST", "/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}

	var b domain.Booking
	json.NewDecoder(resp.Body).Decode(&b)

	req = httptest.NewRequest("POST", "/v1/bookings/"+b.ID+"/confirm", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("confirm: expected 200, got %d", resp.StatusCode)
	}

	var confirmed domain.Booking
	json.NewDecoder(resp.Body).Decode(&confirmed)
	if confirmed.Status != domain.BookingConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}
}
