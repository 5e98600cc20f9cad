package core

import (
	"strings"

	"github.com/codelens-hq/pulse/pkg/models"
)

// statusMessageLimit bounds the query excerpt in a status message.
const statusMessageLimit = 80

// idleMessage is returned when the recent window is empty.
const idleMessage = "No recent activity"

// statusPrefixes template the status message per classification.
var statusPrefixes = map[models.ActivityStatus]string{
	models.StatusBlocked:        "Stuck on: ",
	models.StatusProblemSolving: "Working through: ",
	models.StatusFlow:           "Building: ",
}

// Classifier scores a developer's recent window against keyword categories
// and produces an activity status plus a human-readable message.
//
// Classification is a pure function: an identical window always produces the
// identical status and message, which is what makes it safe to re-use under
// the cache layer.
type Classifier struct {
	thresholds models.ClassifierThresholds
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(thresholds models.ClassifierThresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// categoryScores holds the recency-weighted keyword scores of one window.
type categoryScores struct {
	blocked float64
	problem float64
	flow    float64
}

// scoreWindow walks the window newest-first; the record at index i carries
// weight 1/(i+1), so the latest interaction dominates.
func scoreWindow(recent []models.InteractionRecord) categoryScores {
	var s categoryScores
	for i, rec := range recent {
		weight := 1.0 / float64(i+1)
		text := strings.ToLower(rec.QueryText)
		for _, kw := range blockedKeywords {
			if strings.Contains(text, kw) {
				s.blocked += weight
			}
		}
		for _, kw := range problemKeywords {
			if strings.Contains(text, kw) {
				s.problem += weight
			}
		}
		for _, kw := range flowKeywords {
			if strings.Contains(text, kw) {
				s.flow += weight
			}
		}
	}
	return s
}

// Classify derives the activity status and status message from a recent
// window sorted newest-first. The decision rule applies in strict priority
// order: idle, blocked, problem_solving, flow.
func (c *Classifier) Classify(recent []models.InteractionRecord) (models.ActivityStatus, string) {
	if len(recent) == 0 {
		return models.StatusIdle, idleMessage
	}

	scores := scoreWindow(recent)
	count := len(recent)

	var status models.ActivityStatus
	switch {
	case scores.blocked > c.thresholds.BlockedScore,
		count > c.thresholds.BlockedCount && scores.problem < scores.flow:
		status = models.StatusBlocked
	case count > c.thresholds.ProblemCount,
		scores.problem > scores.flow+c.thresholds.ProblemMargin:
		status = models.StatusProblemSolving
	default:
		status = models.StatusFlow
	}

	message := statusPrefixes[status] + truncate(recent[0].QueryText, statusMessageLimit)
	return status, message
}
