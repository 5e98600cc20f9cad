package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated pipeline metrics derived from the event log.
type Metrics struct {
	RefreshesCompleted int            `json:"refreshes_completed"`
	RecordsIngested    int            `json:"records_ingested"`
	DigestFallbacks    int            `json:"digest_fallbacks"`
	StoreOutages       int            `json:"store_outages"`
	IngestsByUser      map[string]int `json:"ingests_by_user"`
	EventCount         int            `json:"event_count"`
	OldestEvent        *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent        *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		IngestsByUser: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "refresh.completed":
			m.RefreshesCompleted++
		case "record.ingested":
			m.RecordsIngested++
			if userID, ok := event.Data["user_id"].(string); ok {
				m.IngestsByUser[userID]++
			}
		case "digest.fallback":
			m.DigestFallbacks++
		case "store.unavailable":
			m.StoreOutages++
		}
	}

	return m, nil
}
