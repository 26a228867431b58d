package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
)

// InterpreterRepo implements ports.InterpreterRepository with pgx.
type InterpreterRepo struct {
	db *DB
}

// NewInterpreterRepo creates a new InterpreterRepo.
func NewInterpreterRepo(db *DB) *InterpreterRepo {
	return &InterpreterRepo{db: db}
}

const interpreterColumns = `
	id, name, COALESCE(phone, ''), COALESCE(email, ''),
	certifications, city, state, lat, lng,
	active, COALESCE(expiration_date, ''), source,
	is_platform_member, rating, total_ratings, platform_verified,
	specialties, hourly_rate, availability,
	COALESCE(profile_image, ''), COALESCE(bio, ''), created_at`

// Upsert inserts or updates a single interpreter record.
func (r *InterpreterRepo) Upsert(ctx context.Context, rec *domain.Interpreter) error {
	_, err := r.db.Pool.Exec(ctx, upsertInterpreterSQL, upsertArgs(rec)...)
	return err
}

// UpsertBatch inserts many records using pgx.Batch.
func (r *InterpreterRepo) UpsertBatch(ctx context.Context, recs []domain.Interpreter) error {
	batch := &pgx.Batch{}
	for i := range recs {
		batch.Queue(upsertInterpreterSQL, upsertArgs(&recs[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range recs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

const upsertInterpreterSQL = `
	INSERT INTO interpreters (
		id, name, phone, email, certifications, city, state, lat, lng,
		active, expiration_date, source, is_platform_member, rating,
		total_ratings, platform_verified, specialties, hourly_rate,
		availability, profile_image, bio
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
	        $15, $16, $17, $18, $19, $20, $21)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, phone = EXCLUDED.phone, email = EXCLUDED.email,
	    certifications = EXCLUDED.certifications,
	    city = EXCLUDED.city, state = EXCLUDED.state,
	    lat = EXCLUDED.lat, lng = EXCLUDED.lng,
	    active = EXCLUDED.active, expiration_date = EXCLUDED.expiration_date,
	    source = EXCLUDED.source,
	    is_platform_member = EXCLUDED.is_platform_member,
	    rating = EXCLUDED.rating, total_ratings = EXCLUDED.total_ratings,
	    platform_verified = EXCLUDED.platform_verified,
	    specialties = EXCLUDED.specialties, hourly_rate = EXCLUDED.hourly_rate,
	    availability = EXCLUDED.availability,
	    profile_image = EXCLUDED.profile_image, bio = EXCLUDED.bio`

func upsertArgs(rec *domain.Interpreter) []interface{} {
	certs := make([]string, len(rec.Certifications))
	for i, c := range rec.Certifications {
		certs[i] = string(c)
	}

	var lat, lng interface{}
	if rec.Location.Coordinates != nil {
		lat = rec.Location.Coordinates.Lat
		lng = rec.Location.Coordinates.Lng
	}

	var availability interface{}
	if rec.Availability != nil {
		if data, err := json.Marshal(rec.Availability); err == nil {
			availability = data
		}
	}

	return []interface{}{
		rec.ID, rec.Name, nilEmpty(rec.Phone), nilEmpty(rec.Email),
		certs, rec.Location.City, rec.Location.State, lat, lng,
		rec.Active, nilEmpty(rec.ExpirationDate), string(rec.Source),
		rec.IsPlatformMember, rec.Rating, rec.TotalRatings,
		rec.PlatformVerified, rec.Specialties, rec.HourlyRate,
		availability, nilEmpty(rec.ProfileImage), nilEmpty(rec.Bio),
	}
}

func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// GetByID returns an interpreter record by ID.
func (r *InterpreterRepo) GetByID(ctx context.Context, id string) (*domain.Interpreter, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+interpreterColumns+` FROM interpreters WHERE id = $1`, id)
	rec, err := scanInterpreter(row)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the whole directory in insertion order. The matcher relies on
// this ordering staying stable across calls.
func (r *InterpreterRepo) List(ctx context.Context) ([]domain.Interpreter, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+interpreterColumns+` FROM interpreters ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInterpreters(rows)
}

// ListPlatform returns only platform members, in insertion order.
func (r *InterpreterRepo) ListPlatform(ctx context.Context) ([]domain.Interpreter, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+interpreterColumns+` FROM interpreters
		 WHERE is_platform_member ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInterpreters(rows)
}

// CountBySource returns per-registry record counts.
func (r *InterpreterRepo) CountBySource(ctx context.Context) (map[domain.Source]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT source, count(*) FROM interpreters GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Source]int)
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return nil, err
		}
		counts[domain.Source(src)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInterpreter(row rowScanner) (*domain.Interpreter, error) {
	var (
		rec          domain.Interpreter
		certs        []string
		lat, lng     *float64
		src          string
		availability []byte
	)
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Phone, &rec.Email,
		&certs, &rec.Location.City, &rec.Location.State, &lat, &lng,
		&rec.Active, &rec.ExpirationDate, &src,
		&rec.IsPlatformMember, &rec.Rating, &rec.TotalRatings, &rec.PlatformVerified,
		&rec.Specialties, &rec.HourlyRate, &availability,
		&rec.ProfileImage, &rec.Bio, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Certifications = make([]domain.CertificationLevel, len(certs))
	for i, c := range certs {
		rec.Certifications[i] = domain.CertificationLevel(c)
	}
	rec.Source = domain.Source(src)
	if lat != nil && lng != nil {
		rec.Location.Coordinates = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	if len(availability) > 0 {
		var av domain.Availability
		if err := json.Unmarshal(availability, &av); err == nil {
			rec.Availability = &av
		}
	}
	return &rec, nil
}

func collectInterpreters(rows pgx.Rows) ([]domain.Interpreter, error) {
	var recs []domain.Interpreter
	for rows.Next() {
		rec, err := scanInterpreter(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}
