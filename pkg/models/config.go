package models

// ClassifierThresholds are the named classifier constants. Values mirror the
// production heuristics; tests may override individual fields.
type ClassifierThresholds struct {
	// BlockedScore: recency-weighted blocked score above which the status is blocked.
	BlockedScore float64 `yaml:"blocked_score"`
	// BlockedCount: recent-interaction count above which a problem-heavy window is blocked.
	BlockedCount int `yaml:"blocked_count"`
	// ProblemCount: recent-interaction count above which the status is problem_solving.
	ProblemCount int `yaml:"problem_count"`
	// ProblemMargin: how far the problem score must exceed the flow score.
	ProblemMargin float64 `yaml:"problem_margin"`
}

// DefaultClassifierThresholds returns the production threshold values.
func DefaultClassifierThresholds() ClassifierThresholds {
	return ClassifierThresholds{
		BlockedScore:  0.5,
		BlockedCount:  5,
		ProblemCount:  3,
		ProblemMargin: 0.5,
	}
}

// LLMConfig configures the external completion service.
type LLMConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GlobalConfig holds all tunable settings read from .pulseconfig.
type GlobalConfig struct {
	DatabasePath           string               `yaml:"database_path"`
	RecentWindowHours      int                  `yaml:"recent_window_hours"`
	DailyWindowHours       int                  `yaml:"daily_window_hours"`
	SessionGapMinutes      int                  `yaml:"session_gap_minutes"`
	MaxTasks               int                  `yaml:"max_tasks"`
	CacheTTLMinutes        int                  `yaml:"cache_ttl_minutes"`
	RefreshIntervalSeconds int                  `yaml:"refresh_interval_seconds"`
	DigestMaxRecords       int                  `yaml:"digest_max_records"`
	Classifier             ClassifierThresholds `yaml:"classifier"`
	LLM                    LLMConfig            `yaml:"llm"`
}
