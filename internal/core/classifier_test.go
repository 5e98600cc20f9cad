package core

import (
	"strings"
	"testing"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

func newTestClassifier() *Classifier {
	return NewClassifier(models.DefaultClassifierThresholds())
}

func TestClassify_EmptyWindowIsIdle(t *testing.T) {
	status, message := newTestClassifier().Classify(nil)
	if status != models.StatusIdle {
		t.Errorf("status = %s, want idle", status)
	}
	if message != "No recent activity" {
		t.Errorf("message = %q, want %q", message, "No recent activity")
	}
}

func TestClassify_BlockedByScore(t *testing.T) {
	// The newest record carries weight 1.0, so one blocked keyword at the
	// head exceeds the 0.5 threshold on its own.
	recent := []models.InteractionRecord{
		rec("1", "alice", "getting an error from the build", time.Minute),
	}

	status, message := newTestClassifier().Classify(recent)
	if status != models.StatusBlocked {
		t.Errorf("status = %s, want blocked", status)
	}
	if !strings.HasPrefix(message, "Stuck on: ") {
		t.Errorf("message = %q, want Stuck on: prefix", message)
	}
}

func TestClassify_BlockedKeywordDeepInWindowDoesNotBlock(t *testing.T) {
	// At index 2 the weight is 1/3, under the blocked threshold.
	recent := []models.InteractionRecord{
		rec("1", "alice", "nothing of note", time.Minute),
		rec("2", "alice", "nothing of note", 2*time.Minute),
		rec("3", "alice", "an error happened", 3*time.Minute),
	}

	status, _ := newTestClassifier().Classify(recent)
	if status == models.StatusBlocked {
		t.Error("weakly weighted blocked keyword should not classify as blocked")
	}
}

func TestClassify_BlockedByVolumeWithoutProgress(t *testing.T) {
	// Seven keyword-light interactions with flow ahead of problem: high
	// volume with no troubleshooting reads as churning.
	var recent []models.InteractionRecord
	for i := 0; i < 7; i++ {
		recent = append(recent, rec(string(rune('a'+i)), "alice", "implement the widget", time.Duration(i)*time.Minute))
	}

	status, _ := newTestClassifier().Classify(recent)
	if status != models.StatusBlocked {
		t.Errorf("status = %s, want blocked for high-volume flow-heavy window", status)
	}
}

func TestClassify_ProblemSolvingByCount(t *testing.T) {
	var recent []models.InteractionRecord
	for i := 0; i < 4; i++ {
		recent = append(recent, rec(string(rune('a'+i)), "alice", "plain question", time.Duration(i)*time.Minute))
	}

	status, message := newTestClassifier().Classify(recent)
	if status != models.StatusProblemSolving {
		t.Errorf("status = %s, want problem_solving", status)
	}
	if !strings.HasPrefix(message, "Working through: ") {
		t.Errorf("message = %q, want Working through: prefix", message)
	}
}

func TestClassify_ProblemSolvingByScoreMargin(t *testing.T) {
	recent := []models.InteractionRecord{
		rec("1", "alice", "optimize the slow query", time.Minute),
	}

	status, _ := newTestClassifier().Classify(recent)
	if status != models.StatusProblemSolving {
		t.Errorf("status = %s, want problem_solving", status)
	}
}

func TestClassify_FlowByDefault(t *testing.T) {
	recent := []models.InteractionRecord{
		rec("1", "alice", "implement the dashboard layout", time.Minute),
	}

	status, message := newTestClassifier().Classify(recent)
	if status != models.StatusFlow {
		t.Errorf("status = %s, want flow", status)
	}
	if message != "Building: implement the dashboard layout" {
		t.Errorf("message = %q", message)
	}
}

func TestClassify_MessageTruncatedAtLimit(t *testing.T) {
	long := strings.Repeat("implement x ", 20) // well past 80 chars
	recent := []models.InteractionRecord{
		rec("1", "alice", long, time.Minute),
	}

	_, message := newTestClassifier().Classify(recent)
	excerpt := strings.TrimPrefix(message, "Building: ")
	if !strings.HasSuffix(excerpt, "...") {
		t.Errorf("long excerpt should end with ellipsis, got %q", excerpt)
	}
	if len([]rune(excerpt)) > 83 {
		t.Errorf("excerpt is %d runes, want <= 83", len([]rune(excerpt)))
	}
}

func TestClassify_NewestRecordDrivesMessage(t *testing.T) {
	recent := []models.InteractionRecord{
		rec("1", "alice", "implement search", time.Minute),
		rec("2", "alice", "create login page", 2*time.Minute),
	}

	_, message := newTestClassifier().Classify(recent)
	if !strings.Contains(message, "implement search") {
		t.Errorf("message = %q, want newest query excerpt", message)
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	c := NewClassifier(models.ClassifierThresholds{
		BlockedScore:  10, // unreachable
		BlockedCount:  100,
		ProblemCount:  1,
		ProblemMargin: 10,
	})

	recent := []models.InteractionRecord{
		rec("1", "alice", "error error error", time.Minute),
		rec("2", "alice", "plain", 2*time.Minute),
	}

	status, _ := c.Classify(recent)
	if status != models.StatusProblemSolving {
		t.Errorf("status = %s, want problem_solving under custom thresholds", status)
	}
}
