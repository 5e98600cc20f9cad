package models

// EventType is the 8-way classification of a timeline event.
type EventType string

const (
	EventFeature       EventType = "feature"
	EventBug           EventType = "bug"
	EventRefactor      EventType = "refactor"
	EventDocumentation EventType = "documentation"
	EventTesting       EventType = "testing"
	EventDeployment    EventType = "deployment"
	EventLearning      EventType = "learning"
	EventCollaboration EventType = "collaboration"
)

// EventCategory is the coarse technical area an event touches.
type EventCategory string

const (
	CategoryFrontend       EventCategory = "frontend"
	CategoryBackend        EventCategory = "backend"
	CategoryDatabase       EventCategory = "database"
	CategoryInfrastructure EventCategory = "infrastructure"
	CategoryGeneral        EventCategory = "general"
)

// EventImpact grades how consequential an event is.
type EventImpact string

const (
	ImpactCritical EventImpact = "critical"
	ImpactHigh     EventImpact = "high"
	ImpactMedium   EventImpact = "medium"
	ImpactLow      EventImpact = "low"
)

// EventStatus is the completion state of a timeline event.
type EventStatus string

const (
	EventCompleted  EventStatus = "completed"
	EventInProgress EventStatus = "in-progress"
	EventBlocked    EventStatus = "blocked"
	EventPending    EventStatus = "pending"
)

// TrendMomentum is the aggregate trend over the most recent events.
type TrendMomentum string

const (
	TrendAccelerating TrendMomentum = "accelerating"
	TrendSteady       TrendMomentum = "steady"
	TrendSlowing      TrendMomentum = "slowing"
	TrendBlocked      TrendMomentum = "blocked"
)

// CollaborationLevel buckets how much collaboration-typed activity occurred.
type CollaborationLevel string

const (
	CollabSolo       CollaborationLevel = "solo"
	CollabOccasional CollaborationLevel = "occasional"
	CollabRegular    CollaborationLevel = "regular"
	CollabHigh       CollaborationLevel = "high"
)

// TimelineEvent is the categorized activity derived from one interaction
// record. Recomputed on every analysis pass.
type TimelineEvent struct {
	ID              string        `json:"id"`
	Date            string        `json:"date"` // YYYY-MM-DD
	Time            string        `json:"time"` // HH:MM
	Type            EventType     `json:"type"`
	Category        EventCategory `json:"category"`
	Impact          EventImpact   `json:"impact"`
	Status          EventStatus   `json:"status"`
	DurationMinutes int           `json:"duration_minutes"`
	Technologies    []string      `json:"technologies"`
	FilesTouched    []string      `json:"files_touched"`
}

// DayGroup holds the events of one calendar date, newest first.
type DayGroup struct {
	Date   string          `json:"date"`
	Events []TimelineEvent `json:"events"`
}

// TimelineSummary aggregates a set of timeline events.
type TimelineSummary struct {
	TotalEvents        int                `json:"total_events"`
	ProductiveHours    float64            `json:"productive_hours"`
	FocusAreas         []string           `json:"focus_areas"`
	TopTechnologies    []string           `json:"top_technologies"`
	CollaborationLevel CollaborationLevel `json:"collaboration_level"`
	OverallMomentum    TrendMomentum      `json:"overall_momentum"`
}

// TimelinePatterns describes detected working patterns.
type TimelinePatterns struct {
	PeakTime   string   `json:"peak_time"`
	WorkStyle  string   `json:"work_style"`
	Challenges []string `json:"challenges"`
	Strengths  []string `json:"strengths"`
}

// TimelineAnalysis is the full derived view over a record set. It is
// recomputed per request and never persisted.
type TimelineAnalysis struct {
	Summary         TimelineSummary  `json:"summary"`
	Patterns        TimelinePatterns `json:"patterns"`
	Recommendations []string         `json:"recommendations"`
	Days            []DayGroup       `json:"days"`
}
