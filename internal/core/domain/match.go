package domain

import "time"

// EventType is the kind of event an interpreter is needed for.
type EventType string

const (
	EventMedical   EventType = "medical"
	EventLegal     EventType = "legal"
	EventEducation EventType = "education"
	EventBusiness  EventType = "business"
	EventPersonal  EventType = "personal"
)

// Daypart is a coarse time-of-day bucket.
type Daypart string

const (
	DaypartMorning   Daypart = "morning"
	DaypartAfternoon Daypart = "afternoon"
	DaypartEvening   Daypart = "evening"
)

// MatchQuery is the input to an interpreter search, built once from a
// completed intake session. EventType, Date, Time, and Duration are carried
// for booking context only; the matcher filters on Location alone.
type MatchQuery struct {
	EventType EventType `json:"event_type"`
	Date      time.Time `json:"date"`
	Time      Daypart   `json:"time"`
	Duration  string    `json:"duration"` // hours, "1".."4+"
	Location  GeoPoint  `json:"location"`
}

// MatchResult partitions the matched records by platform membership. Both
// slices preserve the backing store's original relative order.
type MatchResult struct {
	PlatformInterpreters  []Interpreter `json:"platform_interpreters"`
	DirectoryInterpreters []Interpreter `json:"directory_interpreters"`
}
