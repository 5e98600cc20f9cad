package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())

	want := []models.DeveloperState{
		{
			ID:                "alice",
			DisplayName:       "Alice",
			Status:            models.StatusFlow,
			StatusMessage:     "Building: the dashboard",
			InteractionsToday: 4,
			CompletedToday:    2,
			LastActive:        time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
		},
		{ID: "bob", Status: models.StatusBlocked, StatusMessage: "Stuck on: the migration"},
	}
	if err := store.SaveStates(want); err != nil {
		t.Fatalf("SaveStates: %v", err)
	}

	got, err := store.LoadStates()
	if err != nil {
		t.Fatalf("LoadStates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("states = %d, want 2", len(got))
	}
	if got[0].ID != "alice" || got[0].Status != models.StatusFlow || got[0].InteractionsToday != 4 {
		t.Errorf("states[0] = %+v, want alice's state", got[0])
	}
	if !got[0].LastActive.Equal(want[0].LastActive) {
		t.Errorf("LastActive = %v, want %v", got[0].LastActive, want[0].LastActive)
	}
	if got[1].Status != models.StatusBlocked {
		t.Errorf("states[1].Status = %s, want blocked", got[1].Status)
	}
}

func TestLoadStates_MissingFile(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())
	states, err := store.LoadStates()
	if err != nil {
		t.Errorf("LoadStates on a missing file: %v, want nil error", err)
	}
	if states != nil {
		t.Errorf("states = %v, want nil", states)
	}
}

func TestLoadStates_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "states.yaml"), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewSnapshotStore(dir).LoadStates(); err == nil {
		t.Error("expected an error for a corrupt snapshot")
	}
}

func TestSaveStates_OverwritesPrevious(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())

	if err := store.SaveStates([]models.DeveloperState{{ID: "alice"}, {ID: "bob"}}); err != nil {
		t.Fatalf("SaveStates: %v", err)
	}
	if err := store.SaveStates([]models.DeveloperState{{ID: "carol"}}); err != nil {
		t.Fatalf("SaveStates: %v", err)
	}

	states, err := store.LoadStates()
	if err != nil {
		t.Fatalf("LoadStates: %v", err)
	}
	if len(states) != 1 || states[0].ID != "carol" {
		t.Errorf("states = %+v, want only carol after overwrite", states)
	}
}

func TestSaveStates_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewSnapshotStore(dir)

	if err := store.SaveStates([]models.DeveloperState{{ID: "alice"}}); err != nil {
		t.Fatalf("SaveStates: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "states.yaml.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}
