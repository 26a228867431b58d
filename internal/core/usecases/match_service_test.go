package usecases_test

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/core/usecases"
)

// --- Mock InterpreterRepository ---

type mockInterpreterRepo struct {
	listFn          func(ctx context.Context) ([]domain.Interpreter, error)
	listPlatformFn  func(ctx context.Context) ([]domain.Interpreter, error)
	getByIDFn       func(ctx context.Context, id string) (*domain.Interpreter, error)
	countBySourceFn func(ctx context.Context) (map[domain.Source]int, error)
}

func (m *mockInterpreterRepo) Upsert(ctx context.Context, rec *domain.Interpreter) error { return nil }
func (m *mockInterpreterRepo) UpsertBatch(ctx context.Context, recs []domain.Interpreter) error {
	return nil
}

func (m *mockInterpreterRepo) List(ctx context.Context) ([]domain.Interpreter, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockInterpreterRepo) ListPlatform(ctx context.Context) ([]domain.Interpreter, error) {
	if m.listPlatformFn != nil {
		return m.listPlatformFn(ctx)
	}
	return nil, nil
}

func (m *mockInterpreterRepo) GetByID(ctx context.Context, id string) (*domain.Interpreter, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockInterpreterRepo) CountBySource(ctx context.Context) (map[domain.Source]int, error) {
	if m.countBySourceFn != nil {
		return m.countBySourceFn(ctx)
	}
	return nil, nil
}

// --- Fixtures ---

func coord(lat, lng float64) *domain.GeoPoint {
	return &domain.GeoPoint{Lat: lat, Lng: lng}
}

// Orange, CA, the query location used throughout.
var orangeCA = domain.GeoPoint{Lat: 33.7879, Lng: -117.8531}

func queryAt(loc domain.GeoPoint) *domain.MatchQuery {
	return &domain.MatchQuery{
		EventType: domain.EventMedical,
		Date:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Time:      domain.DaypartMorning,
		Duration:  "2",
		Location:  loc,
	}
}

func directoryRec(id string, c *domain.GeoPoint) domain.Interpreter {
	return domain.Interpreter{
		ID:             id,
		Name:           "Dir " + id,
		Certifications: []domain.CertificationLevel{domain.CertLevelII},
		Location:       domain.Location{City: "Orange", State: "CA", Coordinates: c},
		Active:         true,
		ExpirationDate: "2027-06-30",
		Source:         domain.SourceBEI,
		Phone:          "(714) 555-0123",
	}
}

func platformRec(id string, c *domain.GeoPoint) domain.Interpreter {
	rating := 4.9
	rec := directoryRec(id, c)
	rec.Name = "Plat " + id
	rec.Source = domain.SourceRID
	rec.IsPlatformMember = true
	rec.Rating = &rating
	rec.TotalRatings = 127
	rec.PlatformVerified = true
	return rec
}

// --- Pure matcher tests ---

func TestMatch_RadiusInclusion(t *testing.T) {
	// A is ~10 km north of the query point, B is ~60 km north.
	near := directoryRec("A", coord(33.8779, -117.8531))
	far := directoryRec("B", coord(34.3279, -117.8531))

	result := usecases.Match(queryAt(orangeCA), []domain.Interpreter{near, far}, 50)

	if len(result.DirectoryInterpreters) != 1 {
		t.Fatalf("expected 1 directory match, got %d", len(result.DirectoryInterpreters))
	}
	if result.DirectoryInterpreters[0].ID != "A" {
		t.Errorf("expected A included, got %s", result.DirectoryInterpreters[0].ID)
	}
}

func TestMatch_ZeroDistanceIncluded(t *testing.T) {
	rec := directoryRec("same", coord(33.7879, -117.8531))

	result := usecases.Match(queryAt(orangeCA), []domain.Interpreter{rec}, 50)

	if len(result.DirectoryInterpreters) != 1 {
		t.Fatalf("interpreter at the query location must match")
	}
	if d := result.DirectoryInterpreters[0].Distance; d == nil || *d != 0 {
		t.Errorf("expected distance 0, got %v", d)
	}
}

func TestMatch_MissingCoordinatesNeverMatch(t *testing.T) {
	rec := directoryRec("nowhere", nil)
	plat := platformRec("nowhere-p", nil)

	result := usecases.Match(queryAt(orangeCA), []domain.Interpreter{rec, plat}, 1e9)

	if len(result.DirectoryInterpreters) != 0 || len(result.PlatformInterpreters) != 0 {
		t.Errorf("unlocatable records matched: %+v", result)
	}
}

func TestMatch_PartitionByDiscriminant(t *testing.T) {
	recs := []domain.Interpreter{
		platformRec("p1", coord(33.7879, -117.8531)),
		directoryRec("d1", coord(33.7879, -117.8531)),
		platformRec("p2", coord(33.7455, -117.8677)),
	}

	result := usecases.Match(queryAt(orangeCA), recs, 50)

	if len(result.PlatformInterpreters) != 2 {
		t.Errorf("expected 2 platform matches, got %d", len(result.PlatformInterpreters))
	}
	if len(result.DirectoryInterpreters) != 1 {
		t.Errorf("expected 1 directory match, got %d", len(result.DirectoryInterpreters))
	}
}

func TestMatch_StableOrder(t *testing.T) {
	// c is nearest but listed last; output must keep store order.
	recs := []domain.Interpreter{
		directoryRec("a", coord(33.9, -117.8531)),
		directoryRec("b", coord(33.85, -117.8531)),
		directoryRec("c", coord(33.7879, -117.8531)),
	}

	result := usecases.Match(queryAt(orangeCA), recs, 50)

	var ids []string
	for _, r := range result.DirectoryInterpreters {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Errorf("order not preserved: %v", ids)
	}
}

func TestMatch_EmptyStore(t *testing.T) {
	result := usecases.Match(queryAt(orangeCA), nil, 50)

	if result.PlatformInterpreters == nil || len(result.PlatformInterpreters) != 0 {
		t.Errorf("expected empty non-nil platform slice, got %v", result.PlatformInterpreters)
	}
	if result.DirectoryInterpreters == nil || len(result.DirectoryInterpreters) != 0 {
		t.Errorf("expected empty non-nil directory slice, got %v", result.DirectoryInterpreters)
	}
}

func TestMatch_Idempotent(t *testing.T) {
	recs := []domain.Interpreter{
		platformRec("p1", coord(33.7879, -117.8531)),
		directoryRec("d1", coord(33.8, -117.9)),
	}

	q := queryAt(orangeCA)
	first := usecases.Match(q, recs, 50)
	second := usecases.Match(q, recs, 50)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("match is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestMatch_EventFieldsDoNotFilter(t *testing.T) {
	rec := directoryRec("d1", coord(33.7879, -117.8531))
	rec.Active = false
	rec.ExpirationDate = "2020-01-01"

	q1 := queryAt(orangeCA)
	q2 := queryAt(orangeCA)
	q2.EventType = domain.EventLegal
	q2.Time = domain.DaypartEvening
	q2.Duration = "4+"

	r1 := usecases.Match(q1, []domain.Interpreter{rec}, 50)
	r2 := usecases.Match(q2, []domain.Interpreter{rec}, 50)

	// Neither the event context nor active/expiration affect inclusion.
	if len(r1.DirectoryInterpreters) != 1 || len(r2.DirectoryInterpreters) != 1 {
		t.Errorf("non-location query fields changed the result: %d vs %d",
			len(r1.DirectoryInterpreters), len(r2.DirectoryInterpreters))
	}
}

// --- MatchService tests ---

func TestMatchService_Find(t *testing.T) {
	repo := &mockInterpreterRepo{
		listFn: func(ctx context.Context) ([]domain.Interpreter, error) {
			return []domain.Interpreter{
				platformRec("p1", coord(33.7879, -117.8531)),
				directoryRec("d1", coord(34.3279, -117.8531)), // ~60 km
			}, nil
		},
	}

	svc := usecases.NewMatchService(repo, nil, nil)
	result, err := svc.Find(context.Background(), queryAt(orangeCA), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.PlatformInterpreters) != 1 {
		t.Errorf("expected 1 platform match, got %d", len(result.PlatformInterpreters))
	}
	if len(result.DirectoryInterpreters) != 0 {
		t.Errorf("expected 0 directory matches, got %d", len(result.DirectoryInterpreters))
	}
}

func TestMatchService_DefaultRadius(t *testing.T) {
	// At radius 0 the service falls back to the 50 km default, so the ~10 km
	// record still matches.
	repo := &mockInterpreterRepo{
		listFn: func(ctx context.Context) ([]domain.Interpreter, error) {
			return []domain.Interpreter{directoryRec("d1", coord(33.8779, -117.8531))}, nil
		},
	}

	svc := usecases.NewMatchService(repo, nil, nil)
	result, err := svc.Find(context.Background(), queryAt(orangeCA), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.DirectoryInterpreters) != 1 {
		t.Errorf("default radius not applied")
	}
}

type mapCache struct {
	data map[string][]byte
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, context.Canceled
}
func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	c.data[key] = value
	return nil
}
func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func TestMatchService_CacheHitSkipsRepo(t *testing.T) {
	calls := 0
	repo := &mockInterpreterRepo{
		listFn: func(ctx context.Context) ([]domain.Interpreter, error) {
			calls++
			return []domain.Interpreter{directoryRec("d1", coord(33.7879, -117.8531))}, nil
		},
	}
	cache := &mapCache{data: make(map[string][]byte)}

	svc := usecases.NewMatchService(repo, cache, nil)
	q := queryAt(orangeCA)

	first, err := svc.Find(context.Background(), q, 50)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Find(context.Background(), q, 50)
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("expected 1 repo call, got %d", calls)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("cached result differs from computed result")
	}
}
