package cli

import (
	"github.com/codelens-hq/pulse/internal/core"
	"github.com/codelens-hq/pulse/internal/observability"
	"github.com/codelens-hq/pulse/internal/storage"
	"github.com/codelens-hq/pulse/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath    string
	Config      *models.GlobalConfig
	Engine      *core.Engine
	RecordStore *storage.SQLiteRecordStore
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
