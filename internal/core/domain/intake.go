package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// StepKind distinguishes how an intake step is answered.
type StepKind string

const (
	StepChoice   StepKind = "choice"   // pick one of an enumerated option set
	StepDate     StepKind = "date"     // calendar date, today or later
	StepLocation StepKind = "location" // resolves to a coordinate
)

// StepOption is one selectable answer of a choice step.
type StepOption struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Step is a single question in the intake wizard.
type Step struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Kind     StepKind     `json:"kind"`
	Options  []StepOption `json:"options,omitempty"`
}

// IntakeSteps is the fixed question sequence. The final step is terminal:
// answering it allows the session to complete and run the match.
var IntakeSteps = []Step{
	{
		ID:       "event-type",
		Question: "What type of event is this for?",
		Kind:     StepChoice,
		Options: []StepOption{
			{Icon: "🏥", Label: "Medical Appointment", Value: "medical"},
			{Icon: "⚖️", Label: "Legal Meeting", Value: "legal"},
			{Icon: "🎓", Label: "Educational Event", Value: "education"},
			{Icon: "💼", Label: "Business Meeting", Value: "business"},
			{Icon: "👋", Label: "Personal Event", Value: "personal"},
		},
	},
	{
		ID:       "date",
		Question: "When do you need the interpreter?",
		Kind:     StepDate,
	},
	{
		ID:       "time",
		Question: "What time works best?",
		Kind:     StepChoice,
		Options: []StepOption{
			{Icon: "🌅", Label: "Morning (8AM - 12PM)", Value: "morning"},
			{Icon: "☀️", Label: "Afternoon (12PM - 5PM)", Value: "afternoon"},
			{Icon: "🌆", Label: "Evening (5PM - 9PM)", Value: "evening"},
		},
	},
	{
		ID:       "duration",
		Question: "How long do you need the interpreter?",
		Kind:     StepChoice,
		Options: []StepOption{
			{Icon: "⏱️", Label: "1 Hour", Value: "1"},
			{Icon: "⏲️", Label: "2 Hours", Value: "2"},
			{Icon: "🕒", Label: "3 Hours", Value: "3"},
			{Icon: "⏰", Label: "4+ Hours", Value: "4+"},
		},
	},
	{
		ID:       "location",
		Question: "Where will this take place?",
		Kind:     StepLocation,
	},
}

// LocationAnswer is the recorded answer of the location step.
type LocationAnswer struct {
	Address     string   `json:"address"`
	Coordinates GeoPoint `json:"coordinates"`
}

// IntakeSession is the wizard state for one visitor. Answers accumulate per
// step ID; the session is the sole caller of the matcher.
type IntakeSession struct {
	ID                string            `json:"id"`
	Step              int               `json:"step"`
	Answers           map[string]string `json:"answers"`
	LocationSearchSeq int               `json:"location_search_seq"`
	Completed         bool              `json:"completed"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewIntakeSession creates a session positioned at the first step.
func NewIntakeSession(id string, now time.Time) *IntakeSession {
	return &IntakeSession{
		ID:        id,
		Answers:   make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Current returns the step the session is waiting on.
func (s *IntakeSession) Current() Step {
	return IntakeSteps[s.Step]
}

// Terminal reports whether the session sits on the final step.
func (s *IntakeSession) Terminal() bool {
	return s.Step == len(IntakeSteps)-1
}

// Answer validates and records an answer for the current step. Choice answers
// must be one of the step's option values; date answers must be today or
// later; location answers must be a LocationAnswer JSON payload.
func (s *IntakeSession) Answer(value string, now time.Time) error {
	step := s.Current()
	switch step.Kind {
	case StepChoice:
		ok := false
		for _, opt := range step.Options {
			if opt.Value == value {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%q is not an option for step %s", value, step.ID)
		}
	case StepDate:
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if d.Before(today) {
			return fmt.Errorf("date %s is in the past", value)
		}
	case StepLocation:
		var loc LocationAnswer
		if err := json.Unmarshal([]byte(value), &loc); err != nil {
			return fmt.Errorf("location answer must be JSON: %w", err)
		}
	}
	s.Answers[step.ID] = value
	s.UpdatedAt = now
	return nil
}

// Advance moves to the next step. It requires an answer for the current step
// and refuses to move past the terminal step.
func (s *IntakeSession) Advance(now time.Time) error {
	if _, ok := s.Answers[s.Current().ID]; !ok {
		return fmt.Errorf("step %s has no answer", s.Current().ID)
	}
	if s.Terminal() {
		return fmt.Errorf("already at the final step")
	}
	s.Step++
	s.UpdatedAt = now
	return nil
}

// Retreat moves back one step. It is unconditional except at the first step.
func (s *IntakeSession) Retreat(now time.Time) error {
	if s.Step == 0 {
		return fmt.Errorf("already at the first step")
	}
	s.Step--
	s.UpdatedAt = now
	return nil
}

// BuildQuery assembles the MatchQuery from the recorded answers. Every step
// must be answered. A malformed location payload is the one way this fails.
func (s *IntakeSession) BuildQuery() (*MatchQuery, error) {
	for _, step := range IntakeSteps {
		if _, ok := s.Answers[step.ID]; !ok {
			return nil, fmt.Errorf("step %s is unanswered", step.ID)
		}
	}

	date, err := time.Parse("2006-01-02", s.Answers["date"])
	if err != nil {
		return nil, fmt.Errorf("parse date answer: %w", err)
	}

	var loc LocationAnswer
	if err := json.Unmarshal([]byte(s.Answers["location"]), &loc); err != nil {
		return nil, fmt.Errorf("parse location answer: %w", err)
	}

	return &MatchQuery{
		EventType: EventType(s.Answers["event-type"]),
		Date:      date,
		Time:      Daypart(s.Answers["time"]),
		Duration:  s.Answers["duration"],
		Location:  loc.Coordinates,
	}, nil
}
