// Package core contains the business logic for Pulse: interaction
// windowing, activity classification, task extraction, session grouping,
// collision detection, timeline analysis, and digest generation.
package core

import (
	"fmt"
	"strings"

	"github.com/codelens-hq/pulse/pkg/models"
	"github.com/spf13/viper"
)

// ConfigurationManager loads and validates the engine configuration from the
// .pulseconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where .pulseconfig resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		DatabasePath:           "pulse.db",
		RecentWindowHours:      DefaultRecentWindowHours,
		DailyWindowHours:       DefaultDailyWindowHours,
		SessionGapMinutes:      DefaultSessionGapMinutes,
		MaxTasks:               DefaultMaxTasks,
		CacheTTLMinutes:        15,
		RefreshIntervalSeconds: 30,
		DigestMaxRecords:       DefaultDigestMaxRecords,
		Classifier:             models.DefaultClassifierThresholds(),
		LLM: models.LLMConfig{
			Enabled:        false,
			Endpoint:       "",
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "PULSE_LLM_API_KEY",
			TimeoutSeconds: 20,
		},
	}
}

// LoadGlobalConfig reads the .pulseconfig file from the base path using
// Viper. If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".pulseconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("database.path", cfg.DatabasePath)
	v.SetDefault("windows.recent_hours", cfg.RecentWindowHours)
	v.SetDefault("windows.daily_hours", cfg.DailyWindowHours)
	v.SetDefault("sessions.gap_minutes", cfg.SessionGapMinutes)
	v.SetDefault("tasks.max", cfg.MaxTasks)
	v.SetDefault("cache.ttl_minutes", cfg.CacheTTLMinutes)
	v.SetDefault("refresh.interval_seconds", cfg.RefreshIntervalSeconds)
	v.SetDefault("digest.max_records", cfg.DigestMaxRecords)
	v.SetDefault("classifier.blocked_score", cfg.Classifier.BlockedScore)
	v.SetDefault("classifier.blocked_count", cfg.Classifier.BlockedCount)
	v.SetDefault("classifier.problem_count", cfg.Classifier.ProblemCount)
	v.SetDefault("classifier.problem_margin", cfg.Classifier.ProblemMargin)
	v.SetDefault("llm.enabled", cfg.LLM.Enabled)
	v.SetDefault("llm.endpoint", cfg.LLM.Endpoint)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.SetDefault("llm.timeout_seconds", cfg.LLM.TimeoutSeconds)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, return defaults.
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .pulseconfig: %w", err)
	}

	// Map nested YAML keys to flat GlobalConfig fields.
	cfg.DatabasePath = v.GetString("database.path")
	cfg.RecentWindowHours = v.GetInt("windows.recent_hours")
	cfg.DailyWindowHours = v.GetInt("windows.daily_hours")
	cfg.SessionGapMinutes = v.GetInt("sessions.gap_minutes")
	cfg.MaxTasks = v.GetInt("tasks.max")
	cfg.CacheTTLMinutes = v.GetInt("cache.ttl_minutes")
	cfg.RefreshIntervalSeconds = v.GetInt("refresh.interval_seconds")
	cfg.DigestMaxRecords = v.GetInt("digest.max_records")
	cfg.Classifier.BlockedScore = v.GetFloat64("classifier.blocked_score")
	cfg.Classifier.BlockedCount = v.GetInt("classifier.blocked_count")
	cfg.Classifier.ProblemCount = v.GetInt("classifier.problem_count")
	cfg.Classifier.ProblemMargin = v.GetFloat64("classifier.problem_margin")
	cfg.LLM.Enabled = v.GetBool("llm.enabled")
	cfg.LLM.Endpoint = v.GetString("llm.endpoint")
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.LLM.APIKeyEnv = v.GetString("llm.api_key_env")
	cfg.LLM.TimeoutSeconds = v.GetInt("llm.timeout_seconds")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.DatabasePath == "" {
		errs = append(errs, "database.path must not be empty")
	}
	if cfg.RecentWindowHours <= 0 {
		errs = append(errs, fmt.Sprintf("windows.recent_hours must be positive, got %d", cfg.RecentWindowHours))
	}
	if cfg.DailyWindowHours < cfg.RecentWindowHours {
		errs = append(errs, fmt.Sprintf(
			"windows.daily_hours %d must not be smaller than windows.recent_hours %d",
			cfg.DailyWindowHours, cfg.RecentWindowHours,
		))
	}
	if cfg.SessionGapMinutes <= 0 {
		errs = append(errs, fmt.Sprintf("sessions.gap_minutes must be positive, got %d", cfg.SessionGapMinutes))
	}
	if cfg.MaxTasks < 4 || cfg.MaxTasks > 6 {
		errs = append(errs, fmt.Sprintf("tasks.max %d is invalid, must be between 4 and 6", cfg.MaxTasks))
	}
	if cfg.CacheTTLMinutes <= 0 {
		errs = append(errs, fmt.Sprintf("cache.ttl_minutes must be positive, got %d", cfg.CacheTTLMinutes))
	}
	if cfg.RefreshIntervalSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("refresh.interval_seconds must be positive, got %d", cfg.RefreshIntervalSeconds))
	}
	if cfg.DigestMaxRecords <= 0 {
		errs = append(errs, fmt.Sprintf("digest.max_records must be positive, got %d", cfg.DigestMaxRecords))
	}
	if cfg.Classifier.BlockedScore <= 0 || cfg.Classifier.BlockedScore > 1 {
		errs = append(errs, fmt.Sprintf(
			"classifier.blocked_score %g is invalid, must be in (0, 1]",
			cfg.Classifier.BlockedScore,
		))
	}
	if cfg.Classifier.BlockedCount <= 0 {
		errs = append(errs, fmt.Sprintf("classifier.blocked_count must be positive, got %d", cfg.Classifier.BlockedCount))
	}
	if cfg.Classifier.ProblemCount <= 0 {
		errs = append(errs, fmt.Sprintf("classifier.problem_count must be positive, got %d", cfg.Classifier.ProblemCount))
	}
	if cfg.Classifier.ProblemMargin < 0 {
		errs = append(errs, fmt.Sprintf("classifier.problem_margin must be non-negative, got %g", cfg.Classifier.ProblemMargin))
	}
	if cfg.LLM.Enabled {
		if cfg.LLM.Endpoint == "" {
			errs = append(errs, "llm.endpoint must not be empty when llm.enabled is true")
		}
		if cfg.LLM.Model == "" {
			errs = append(errs, "llm.model must not be empty when llm.enabled is true")
		}
		if cfg.LLM.TimeoutSeconds <= 0 {
			errs = append(errs, fmt.Sprintf("llm.timeout_seconds must be positive, got %d", cfg.LLM.TimeoutSeconds))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
