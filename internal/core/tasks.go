package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

// DefaultMaxTasks caps the extracted task list when no override is set.
const DefaultMaxTasks = 5

// taskTitleLimit bounds the task title derived from the query text.
const taskTitleLimit = 45

// Category fallback stubs used when no explicit path appears in the text.
const (
	componentPathStub = "src/components/"
	authPathStub      = "src/services/auth.ts"
	apiPathStub       = "src/api/routes.ts"
	defaultPathStub   = "src/"
)

// TaskExtractor converts the most recent interactions of a user into a
// bounded, prioritized task list.
type TaskExtractor struct {
	maxTasks int
}

// NewTaskExtractor creates a TaskExtractor capped at maxTasks entries.
// Non-positive values fall back to DefaultMaxTasks.
func NewTaskExtractor(maxTasks int) *TaskExtractor {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	return &TaskExtractor{maxTasks: maxTasks}
}

// Extract derives TaskRecords from the N most recent records of a recent
// window (sorted newest-first). The result never exceeds the configured cap.
func (e *TaskExtractor) Extract(recent []models.InteractionRecord, now time.Time) []models.TaskRecord {
	limit := e.maxTasks
	if len(recent) < limit {
		limit = len(recent)
	}

	tasks := make([]models.TaskRecord, 0, limit)
	for _, rec := range recent[:limit] {
		tasks = append(tasks, models.TaskRecord{
			ID:       rec.ID,
			Title:    truncate(rec.QueryText, taskTitleLimit),
			Priority: taskPriority(rec.QueryText),
			FilePath: guessFilePath(rec.QueryText + " " + rec.ResponseText),
			Elapsed:  formatElapsed(now.Sub(rec.Timestamp)),
			Created:  rec.Timestamp,
		})
	}
	return tasks
}

// taskPriority grades urgency independently of the activity status:
// urgency/error terms beat feature/debug terms beat everything else.
func taskPriority(query string) models.TaskPriority {
	text := strings.ToLower(query)
	if containsAny(text, urgencyTerms) {
		return models.PriorityHigh
	}
	if containsAny(text, featureTerms) {
		return models.PriorityMedium
	}
	return models.PriorityLow
}

// guessFilePath infers the file the interaction most likely concerns.
// An explicit repo-relative path wins; otherwise category keywords map to
// a path stub, and finally a generic default applies.
func guessFilePath(text string) string {
	if match := filePathPattern.FindString(text); match != "" {
		return match
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "component"):
		return componentPathStub
	case strings.Contains(lower, "auth"):
		return authPathStub
	case strings.Contains(lower, "api"):
		return apiPathStub
	}
	return defaultPathStub
}

// formatElapsed renders a duration as "Nm" under an hour, else "Hh Mm".
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
