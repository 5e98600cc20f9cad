package core

import (
	"context"

	"github.com/codelens-hq/pulse/pkg/models"
)

// RecordStore provides access to the interaction record source. Defined
// locally in core so the package does not import storage.
type RecordStore interface {
	// FetchRecords returns records matching the filter, newest first.
	FetchRecords(ctx context.Context, filter models.RecordFilter) ([]models.InteractionRecord, error)
	// InsertRecord appends one record to the store.
	InsertRecord(ctx context.Context, rec models.InteractionRecord) error
	// Subscribe returns a channel that yields records inserted after the
	// call. The channel closes when ctx is done.
	Subscribe(ctx context.Context) (<-chan models.InteractionRecord, error)
}

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// StateSnapshotter persists the last computed developer states so a restart
// or store outage can serve stale-but-present data instead of nothing.
type StateSnapshotter interface {
	SaveStates(states []models.DeveloperState) error
	LoadStates() ([]models.DeveloperState, error)
}
