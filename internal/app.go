// Package internal provides the App struct that wires all components of
// Pulse together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codelens-hq/pulse/internal/cache"
	"github.com/codelens-hq/pulse/internal/cli"
	"github.com/codelens-hq/pulse/internal/core"
	"github.com/codelens-hq/pulse/internal/llm"
	"github.com/codelens-hq/pulse/internal/observability"
	"github.com/codelens-hq/pulse/internal/storage"
	"github.com/codelens-hq/pulse/pkg/models"
)

// App holds all service dependencies for Pulse.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	RecordStore *storage.SQLiteRecordStore
	Snapshots   *storage.SnapshotStore

	// Core services
	Engine *core.Engine

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of Pulse. basePath is the root
// directory where all data is stored (typically the directory containing
// .pulseconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	dbPath := cfg.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(basePath, dbPath)
	}
	app.RecordStore, err = storage.NewSQLiteRecordStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	app.Snapshots = storage.NewSnapshotStore(basePath)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".pulse_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Digest model ---
	var model core.DigestModel
	if cfg.LLM.Enabled {
		model = llm.NewDigestClient(llm.NewHTTPCompleter(cfg.LLM))
	}

	// --- Core engine ---
	var events core.EventLogger
	if app.EventLog != nil {
		events = app.EventLog
	}
	app.Engine = core.NewEngine(*cfg, app.RecordStore, app.Snapshots, events, model, cache.SystemClock())

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.Engine = app.Engine
	cli.RecordStore = app.RecordStore
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App: the record store and the event
// log file handle. Safe to call with nil members.
func (a *App) Close() error {
	var firstErr error
	if a.RecordStore != nil {
		if err := a.RecordStore.Close(); err != nil {
			firstErr = err
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath determines the base path for the Pulse data directory.
// It checks the PULSE_HOME env var, then walks up from the current directory
// looking for a .pulseconfig file, and finally falls back to the cwd.
func ResolveBasePath() string {
	if home := os.Getenv("PULSE_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".pulseconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
