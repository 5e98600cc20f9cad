package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestCalculate_CountsByEventType(t *testing.T) {
	log := newTestLog(t)
	seed := []struct {
		eventType string
		data      map[string]any
	}{
		{"refresh.completed", nil},
		{"refresh.completed", nil},
		{"record.ingested", map[string]any{"user_id": "alice"}},
		{"record.ingested", map[string]any{"user_id": "alice"}},
		{"record.ingested", map[string]any{"user_id": "bob"}},
		{"digest.fallback", map[string]any{"user_id": "alice"}},
		{"store.unavailable", map[string]any{"error": "locked"}},
		{"snapshot.failed", nil}, // not a counted type
	}
	for _, e := range seed {
		if err := log.LogEvent(e.eventType, e.data); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if m.RefreshesCompleted != 2 {
		t.Errorf("refreshes = %d, want 2", m.RefreshesCompleted)
	}
	if m.RecordsIngested != 3 {
		t.Errorf("ingests = %d, want 3", m.RecordsIngested)
	}
	if m.DigestFallbacks != 1 {
		t.Errorf("fallbacks = %d, want 1", m.DigestFallbacks)
	}
	if m.StoreOutages != 1 {
		t.Errorf("outages = %d, want 1", m.StoreOutages)
	}
	if m.EventCount != len(seed) {
		t.Errorf("event count = %d, want %d", m.EventCount, len(seed))
	}
	if m.IngestsByUser["alice"] != 2 || m.IngestsByUser["bob"] != 1 {
		t.Errorf("ingests by user = %v, want alice 2 / bob 1", m.IngestsByUser)
	}
	if m.OldestEvent == nil || m.NewestEvent == nil {
		t.Fatal("event time bounds missing")
	}
	if m.NewestEvent.Before(*m.OldestEvent) {
		t.Error("newest event precedes oldest event")
	}
}

func TestCalculate_RespectsSince(t *testing.T) {
	log := newTestLog(t)
	early := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := log.Write(Event{Time: early, Level: "INFO", Type: "refresh.completed"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := log.Write(Event{Time: late, Level: "INFO", Type: "refresh.completed"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	m, err := NewMetricsCalculator(log).Calculate(early.Add(time.Hour))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if m.RefreshesCompleted != 1 {
		t.Errorf("refreshes = %d, want 1 within the window", m.RefreshesCompleted)
	}
	if m.EventCount != 1 {
		t.Errorf("event count = %d, want 1", m.EventCount)
	}
}

func TestCalculate_EmptyLog(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLEventLog: %v", err)
	}
	defer log.Close()

	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if m.EventCount != 0 || m.RefreshesCompleted != 0 {
		t.Errorf("metrics = %+v, want all zero", m)
	}
	if m.IngestsByUser == nil {
		t.Error("IngestsByUser must be an initialized map")
	}
	if m.OldestEvent != nil || m.NewestEvent != nil {
		t.Error("time bounds must be nil for an empty log")
	}
}
