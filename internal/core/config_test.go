package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadGlobalConfig_DefaultsWithoutFile(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig: %v", err)
	}

	if cfg.DatabasePath != "pulse.db" {
		t.Errorf("database path = %s, want pulse.db", cfg.DatabasePath)
	}
	if cfg.RecentWindowHours != DefaultRecentWindowHours || cfg.DailyWindowHours != DefaultDailyWindowHours {
		t.Errorf("windows = %d/%d, want defaults", cfg.RecentWindowHours, cfg.DailyWindowHours)
	}
	if cfg.MaxTasks != DefaultMaxTasks {
		t.Errorf("max tasks = %d, want %d", cfg.MaxTasks, DefaultMaxTasks)
	}
	if cfg.LLM.Enabled {
		t.Error("llm must default to disabled")
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestLoadGlobalConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `database:
  path: custom.db
windows:
  recent_hours: 2
  daily_hours: 48
tasks:
  max: 6
llm:
  enabled: true
  endpoint: https://llm.internal/v1/chat/completions
  model: local-7b
`
	if err := os.WriteFile(filepath.Join(dir, ".pulseconfig"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig: %v", err)
	}

	if cfg.DatabasePath != "custom.db" {
		t.Errorf("database path = %s, want custom.db", cfg.DatabasePath)
	}
	if cfg.RecentWindowHours != 2 || cfg.DailyWindowHours != 48 {
		t.Errorf("windows = %d/%d, want 2/48", cfg.RecentWindowHours, cfg.DailyWindowHours)
	}
	if cfg.MaxTasks != 6 {
		t.Errorf("max tasks = %d, want 6", cfg.MaxTasks)
	}
	if !cfg.LLM.Enabled || cfg.LLM.Model != "local-7b" {
		t.Errorf("llm = %+v, want enabled with local-7b", cfg.LLM)
	}
	// Keys absent from the file keep their defaults.
	if cfg.SessionGapMinutes != DefaultSessionGapMinutes {
		t.Errorf("gap = %d, want default %d", cfg.SessionGapMinutes, DefaultSessionGapMinutes)
	}
	if cfg.LLM.TimeoutSeconds != 20 {
		t.Errorf("llm timeout = %d, want default 20", cfg.LLM.TimeoutSeconds)
	}
}

func TestLoadGlobalConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".pulseconfig"), []byte("windows: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	cm := NewConfigurationManager(dir)
	if _, err := cm.LoadGlobalConfig(); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestValidateConfig_CollectsEveryProblem(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg, _ := cm.LoadGlobalConfig()
	cfg.MaxTasks = 10
	cfg.Classifier.BlockedScore = 0
	cfg.DailyWindowHours = 1 // smaller than recent

	err := cm.ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	for _, want := range []string{
		"tasks.max 10 is invalid, must be between 4 and 6",
		"classifier.blocked_score",
		"windows.daily_hours",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateConfig_LLMRequirementsOnlyWhenEnabled(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg, _ := cm.LoadGlobalConfig()

	// Disabled: an empty endpoint is fine.
	cfg.LLM.Enabled = false
	cfg.LLM.Endpoint = ""
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("disabled llm must not require an endpoint, got %v", err)
	}

	cfg.LLM.Enabled = true
	err := cm.ValidateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "llm.endpoint") {
		t.Errorf("enabled llm without endpoint must fail, got %v", err)
	}
}

func TestValidateConfig_NilConfig(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Error("expected an error for a nil config")
	}
}
