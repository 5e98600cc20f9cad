package core

import (
	"testing"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

func TestGroup_SplitsOnInactivityGap(t *testing.T) {
	g := NewSessionGrouper(30)
	records := []models.InteractionRecord{
		rec("1", "alice", "start work", 2*time.Hour),
		rec("2", "alice", "continue", 2*time.Hour-10*time.Minute),
		rec("3", "alice", "back after lunch", time.Hour), // 50 minutes after record 2
	}

	sessions := g.Group(records)
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	if len(sessions[0].Interactions) != 2 || len(sessions[1].Interactions) != 1 {
		t.Errorf("session sizes = %d/%d, want 2/1",
			len(sessions[0].Interactions), len(sessions[1].Interactions))
	}
}

func TestGroup_GapAtBoundaryStaysJoined(t *testing.T) {
	g := NewSessionGrouper(30)
	records := []models.InteractionRecord{
		rec("1", "alice", "a", time.Hour),
		rec("2", "alice", "b", 30*time.Minute), // exactly the gap
	}

	if sessions := g.Group(records); len(sessions) != 1 {
		t.Errorf("sessions = %d, want 1 for a gap equal to the threshold", len(sessions))
	}
}

func TestGroup_SeparatesUsersAndProjects(t *testing.T) {
	g := NewSessionGrouper(30)
	r1 := rec("1", "alice", "a", time.Hour)
	r2 := rec("2", "bob", "b", time.Hour)
	r3 := rec("3", "alice", "c", time.Hour)
	r3.ProjectID = "other"

	sessions := g.Group([]models.InteractionRecord{r1, r2, r3})
	if len(sessions) != 3 {
		t.Fatalf("sessions = %d, want 3 (one per user/project scope)", len(sessions))
	}
	// Ordered by user then project.
	if sessions[0].UserID != "alice" || sessions[2].UserID != "bob" {
		t.Errorf("session order = %s/%s/%s, want alice sessions first",
			sessions[0].UserID, sessions[1].UserID, sessions[2].UserID)
	}
}

func TestBuildSession_Annotations(t *testing.T) {
	g := NewSessionGrouper(30)
	r1 := rec("1", "alice", "working on src/auth/login.ts", 40*time.Minute)
	r1.ResponseText = "updated the handler"
	r2 := rec("2", "alice", "works perfect now", 25*time.Minute)

	sessions := g.Group([]models.InteractionRecord{r1, r2})
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}

	s := sessions[0]
	if s.DurationMinutes != 15 {
		t.Errorf("duration = %d, want 15", s.DurationMinutes)
	}
	if len(s.FilesMentioned) == 0 || s.FilesMentioned[0] != "src/auth/login.ts" {
		t.Errorf("files = %v, want src/auth/login.ts first", s.FilesMentioned)
	}
	if s.SuccessIndicators != 2 {
		t.Errorf("success indicators = %d, want 2 (works, perfect)", s.SuccessIndicators)
	}
	if s.StuckIndicators != 0 {
		t.Errorf("stuck indicators = %d, want 0", s.StuckIndicators)
	}
}

func TestBuildSession_StuckIndicatorsCounted(t *testing.T) {
	g := NewSessionGrouper(30)
	r := rec("1", "alice", "still not working, same error as before", time.Hour)

	sessions := g.Group([]models.InteractionRecord{r})
	if sessions[0].StuckIndicators != 2 {
		t.Errorf("stuck indicators = %d, want 2", sessions[0].StuckIndicators)
	}
}

func TestBuildSession_SingleRecordDurationFloor(t *testing.T) {
	g := NewSessionGrouper(30)
	sessions := g.Group([]models.InteractionRecord{rec("1", "alice", "hello", time.Hour)})
	if sessions[0].DurationMinutes != 1 {
		t.Errorf("duration = %d, want floor of 1", sessions[0].DurationMinutes)
	}
}

func TestBuildSession_FeatureAreasExtracted(t *testing.T) {
	g := NewSessionGrouper(30)
	r := rec("1", "alice", "the payment checkout flow drops the card token", time.Hour)

	s := g.Group([]models.InteractionRecord{r})[0]
	want := map[string]bool{"payment": true, "checkout": true}
	for _, f := range s.FeaturesDiscussed {
		delete(want, f)
	}
	if len(want) != 0 {
		t.Errorf("features = %v, missing %v", s.FeaturesDiscussed, want)
	}
}

func TestExtractFiles_DedupedAndCapped(t *testing.T) {
	text := "see src/a/b.go and src/a/b.go and also util.py"
	files := extractFiles(text)
	// Path match first, then bare-filename matches, no duplicates.
	want := []string{"src/a/b.go", "b.go", "util.py"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestSessionIDs_DistinctPerSession(t *testing.T) {
	g := NewSessionGrouper(30)
	records := []models.InteractionRecord{
		rec("1", "alice", "a", 3*time.Hour),
		rec("2", "alice", "b", time.Hour),
	}

	sessions := g.Group(records)
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	if sessions[0].SessionID == sessions[1].SessionID {
		t.Errorf("session ids collide: %s", sessions[0].SessionID)
	}
}
