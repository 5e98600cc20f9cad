package models

import "time"

// Momentum is the coarse pace classification inside a digest.
type Momentum string

const (
	MomentumHigh   Momentum = "high"
	MomentumMedium Momentum = "medium"
	MomentumLow    Momentum = "low"
)

// TechnicalDepth is the digest's assessment of the work's sophistication.
type TechnicalDepth string

const (
	DepthBeginner     TechnicalDepth = "beginner"
	DepthIntermediate TechnicalDepth = "intermediate"
	DepthAdvanced     TechnicalDepth = "advanced"
)

// DigestSource records which path produced a digest.
type DigestSource string

const (
	DigestFromModel    DigestSource = "model"
	DigestFromFallback DigestSource = "fallback"
)

// DigestResult is the narrative insight for one developer. Whether produced
// by the model path or the fallback builder, all eleven contract fields are
// always populated. Fallback results carry ConfidenceScore <= 0.4 so
// consumers can distinguish provenance.
type DigestResult struct {
	UserID      string       `json:"user_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Source      DigestSource `json:"source"`

	RecentFocus            string         `json:"recent_focus"`
	ActivitySummary        string         `json:"activity_summary"`
	KeyLearnings           []string       `json:"key_learnings"`
	ProgressHighlights     []string       `json:"progress_highlights"`
	CurrentMomentum        Momentum       `json:"current_momentum"`
	LearningTrajectory     string         `json:"learning_trajectory"`
	ProblemSolvingApproach string         `json:"problem_solving_approach"`
	CollaborationPatterns  string         `json:"collaboration_patterns"`
	GrowthAreas            []string       `json:"growth_areas"`
	TechnicalDepth         TechnicalDepth `json:"technical_depth"`
	ConfidenceScore        float64        `json:"confidence_score"`
}

// DigestOptions controls digest generation for one request.
type DigestOptions struct {
	// Enabled gates the model path. nil defers to the configured default; an
	// explicit false forces the fallback builder even when the default is on.
	Enabled *bool
	// CacheMinutes overrides the cache TTL; 0 means the configured default.
	CacheMinutes int
	// MaxRecords bounds the analyzed sample; 0 means the configured default.
	MaxRecords int
}
