package models

import "time"

// ConversationSession is a run of interactions by one developer in one
// project with no gap longer than the configured session gap.
type ConversationSession struct {
	SessionID         string              `json:"session_id"`
	UserID            string              `json:"user_id"`
	ProjectID         string              `json:"project_id"`
	Interactions      []InteractionRecord `json:"-"`
	StartTime         time.Time           `json:"start_time"`
	EndTime           time.Time           `json:"end_time"`
	DurationMinutes   int                 `json:"duration_minutes"`
	FilesMentioned    []string            `json:"files_mentioned"`
	FeaturesDiscussed []string            `json:"features_discussed"`
	SuccessIndicators int                 `json:"success_indicators"`
	StuckIndicators   int                 `json:"stuck_indicators"`
}

// CollisionType distinguishes what two developers are overlapping on.
type CollisionType string

const (
	CollisionFile    CollisionType = "file_collision"
	CollisionFeature CollisionType = "feature_collision"
)

// Collision is a detected overlap between two developers' recent work.
type Collision struct {
	Type       CollisionType `json:"type"`
	Users      []string      `json:"users"`
	Resource   string        `json:"resource"`
	Confidence float64       `json:"confidence"`
	DetectedAt time.Time     `json:"detected_at"`
	Suggestion string        `json:"suggestion"`
}

// TeamMetrics summarizes a project's activity over the daily window.
type TeamMetrics struct {
	TotalInteractions24h int     `json:"total_interactions_24h"`
	ActiveDevelopers     int     `json:"active_developers"`
	FilesInFlight        int     `json:"files_in_flight"`
	AvgSuccessRate       float64 `json:"avg_success_rate"`
}
