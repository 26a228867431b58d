package domain

import (
	"time"
)

// CertificationLevel is a certification tag issued by a registry.
type CertificationLevel string

const (
	CertBasic    CertificationLevel = "Basic"
	CertAdvanced CertificationLevel = "Advanced"
	CertMaster   CertificationLevel = "Master"
	CertLevelI   CertificationLevel = "Level I"
	CertLevelII  CertificationLevel = "Level II"
	CertLevelIII CertificationLevel = "Level III"
	CertLevelIV  CertificationLevel = "Level IV"
	CertCourt    CertificationLevel = "Court"
)

// Source identifies the external registry a record was imported from.
type Source string

const (
	SourceBEI Source = "BEI"
	SourceRID Source = "RID"
)

// Location is a city/state pair with optional coordinates. Records without
// coordinates are unlocatable and can never match a search.
type Location struct {
	City        string    `json:"city"`
	State       string    `json:"state"`
	Coordinates *GeoPoint `json:"coordinates,omitempty"`
}

// Availability describes when a platform interpreter accepts bookings.
type Availability struct {
	Days  []string `json:"days,omitempty"`
	Hours []string `json:"hours,omitempty"`
}

// Interpreter is a directory or platform interpreter record. The two variants
// are a closed tagged union: IsPlatformMember is the sole discriminant, and the
// platform-only fields are meaningful only when it is set.
type Interpreter struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Phone          string               `json:"phone,omitempty"`
	Email          string               `json:"email,omitempty"`
	Certifications []CertificationLevel `json:"certifications"`
	Location       Location             `json:"location"`
	Active         bool                 `json:"active"`
	ExpirationDate string               `json:"expiration_date"` // YYYY-MM-DD
	Source         Source               `json:"source"`

	IsPlatformMember bool          `json:"is_platform_member"`
	Rating           *float64      `json:"rating,omitempty"` // 0–5
	TotalRatings     int           `json:"total_ratings,omitempty"`
	PlatformVerified bool          `json:"platform_verified,omitempty"`
	Specialties      []string      `json:"specialties,omitempty"`
	HourlyRate       *float64      `json:"hourly_rate,omitempty"`
	Availability     *Availability `json:"availability,omitempty"`
	ProfileImage     string        `json:"profile_image,omitempty"`
	Bio              string        `json:"bio,omitempty"`

	Distance  *float64  `json:"distance_km,omitempty"` // computed field
	CreatedAt time.Time `json:"created_at"`
}

// Platform reports whether the record is a platform member (the type guard
// for the tagged union).
func (i *Interpreter) Platform() bool {
	return i.IsPlatformMember
}

// Locatable reports whether the record carries coordinates.
func (i *Interpreter) Locatable() bool {
	return i.Location.Coordinates != nil
}

// Expired reports whether the certification lapsed before now. Unparsable
// dates are treated as not expired; the matcher never filters on this, it is
// display context only.
func (i *Interpreter) Expired(now time.Time) bool {
	d, err := time.Parse("2006-01-02", i.ExpirationDate)
	if err != nil {
		return false
	}
	return d.Before(now.Truncate(24 * time.Hour))
}
