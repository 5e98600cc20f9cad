package models

import "time"

// ActivityStatus is the live classification of a developer's recent activity.
// It is fully determined by the recent window contents and the wall clock;
// it is not a persisted state machine.
type ActivityStatus string

const (
	StatusFlow           ActivityStatus = "flow"
	StatusProblemSolving ActivityStatus = "problem_solving"
	StatusBlocked        ActivityStatus = "blocked"
	StatusIdle           ActivityStatus = "idle"
)

// TaskPriority is the urgency bucket assigned to an extracted task.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TaskRecord is a bounded, user-facing unit of recent work, derived 1:1 from
// a recent InteractionRecord. It is recomputed, never updated in place.
type TaskRecord struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Priority TaskPriority `json:"priority"`
	FilePath string       `json:"file_path"`
	Elapsed  string       `json:"elapsed"`
	Created  time.Time    `json:"created"`
}

// DeveloperState is the derived live status for one developer. It is a pure
// function of the developer's current windows and now(); recomputed on every
// refresh or incremental update.
type DeveloperState struct {
	ID                string         `json:"id"`
	DisplayName       string         `json:"display_name"`
	Status            ActivityStatus `json:"status"`
	StatusMessage     string         `json:"status_message"`
	CurrentTasks      []TaskRecord   `json:"current_tasks"`
	InteractionsToday int            `json:"interactions_today"`
	CompletedToday    int            `json:"completed_today"`
	LastActive        time.Time      `json:"last_active"`
}
