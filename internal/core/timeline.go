package core

import (
	"sort"
	"strings"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

// momentumSampleSize is how many of the most recent events feed the trend.
const momentumSampleSize = 5

// maxRecommendations caps the recommendation list.
const maxRecommendations = 4

// estimatedMinutes is the per-type duration estimate used for productive
// hours. Interactions carry no explicit duration, so the estimate is keyed
// on the kind of work the event represents.
var estimatedMinutes = map[models.EventType]int{
	models.EventFeature:       45,
	models.EventBug:           30,
	models.EventRefactor:      40,
	models.EventDocumentation: 20,
	models.EventTesting:       25,
	models.EventDeployment:    35,
	models.EventLearning:      15,
	models.EventCollaboration: 30,
}

// Keyword families for the 8-way event type classification, checked in
// priority order.
var (
	testingTerms       = []string{"test", "coverage", "assert"}
	documentationTerms = []string{"document", "readme", "docs", "comment"}
	deploymentTerms    = []string{"deploy", "release", "pipeline", "rollout"}
	refactorTerms      = []string{"refactor", "restructure", "clean up", "cleanup", "simplify"}
	learningTerms      = []string{"how do i", "how does", "what is", "explain", "learn", "understand"}
	collaborationTerms = []string{"review", "pair", "discuss", "team", "meeting", "feedback"}
	bugTerms           = []string{"bug", "error", "fix", "broken", "crash", "issue", "fail"}
)

// Keyword families for the 5-way category classification.
var (
	frontendTerms = []string{"component", "ui", "css", "react", "vue", "svelte", "html", "frontend", "style", "layout"}
	backendTerms  = []string{"api", "server", "endpoint", "service", "backend", "handler", "controller"}
	databaseTerms = []string{"database", "sql", "query", "migration", "schema", "index", "postgres", "sqlite"}
	infraTerms    = []string{"docker", "kubernetes", "terraform", "deploy", "infra", "pipeline", "aws", "gcp"}
)

// criticalTerms escalate impact alongside error language.
var criticalTerms = []string{"production", "critical", "outage", "data loss", "security"}

// TimelineAnalyzer converts windowed records into categorized events and
// aggregates them into daily groups, summary statistics, patterns, and
// recommendations.
type TimelineAnalyzer struct{}

// NewTimelineAnalyzer creates a TimelineAnalyzer.
func NewTimelineAnalyzer() *TimelineAnalyzer {
	return &TimelineAnalyzer{}
}

// ClassifyEvent maps one record to a TimelineEvent.
func (a *TimelineAnalyzer) ClassifyEvent(rec models.InteractionRecord, now time.Time) models.TimelineEvent {
	text := strings.ToLower(rec.QueryText + " " + rec.ResponseText)
	eventType := classifyEventType(text)

	return models.TimelineEvent{
		ID:              rec.ID,
		Date:            rec.Timestamp.UTC().Format("2006-01-02"),
		Time:            rec.Timestamp.UTC().Format("15:04"),
		Type:            eventType,
		Category:        classifyCategory(text),
		Impact:          classifyImpact(text, eventType),
		Status:          classifyEventStatus(rec, text, now),
		DurationMinutes: estimatedMinutes[eventType],
		Technologies:    extractMatches(text, technologyVocabulary),
		FilesTouched:    extractFiles(rec.QueryText + " " + rec.ResponseText),
	}
}

func classifyEventType(text string) models.EventType {
	switch {
	case containsAny(text, testingTerms):
		return models.EventTesting
	case containsAny(text, documentationTerms):
		return models.EventDocumentation
	case containsAny(text, deploymentTerms):
		return models.EventDeployment
	case containsAny(text, bugTerms):
		return models.EventBug
	case containsAny(text, refactorTerms):
		return models.EventRefactor
	case containsAny(text, learningTerms):
		return models.EventLearning
	case containsAny(text, collaborationTerms):
		return models.EventCollaboration
	default:
		return models.EventFeature
	}
}

func classifyCategory(text string) models.EventCategory {
	counts := map[models.EventCategory]int{
		models.CategoryFrontend:       countMatches(text, frontendTerms),
		models.CategoryBackend:        countMatches(text, backendTerms),
		models.CategoryDatabase:       countMatches(text, databaseTerms),
		models.CategoryInfrastructure: countMatches(text, infraTerms),
	}

	best := models.CategoryGeneral
	bestCount := 0
	// Fixed evaluation order keeps ties deterministic.
	for _, cat := range []models.EventCategory{
		models.CategoryFrontend, models.CategoryBackend,
		models.CategoryDatabase, models.CategoryInfrastructure,
	} {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	return best
}

func classifyImpact(text string, eventType models.EventType) models.EventImpact {
	switch {
	case containsAny(text, criticalTerms) && containsAny(text, bugTerms):
		return models.ImpactCritical
	case eventType == models.EventBug || eventType == models.EventDeployment:
		return models.ImpactHigh
	case eventType == models.EventFeature || eventType == models.EventRefactor:
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}

func classifyEventStatus(rec models.InteractionRecord, text string, now time.Time) models.EventStatus {
	switch {
	case containsAny(text, stuckIndicators):
		return models.EventBlocked
	case rec.Completed():
		return models.EventCompleted
	case now.Sub(rec.Timestamp) < time.Hour:
		return models.EventInProgress
	default:
		return models.EventPending
	}
}

// Analyze converts all records into events and aggregates them. Records may
// span multiple users; the analysis treats them as one activity stream.
func (a *TimelineAnalyzer) Analyze(records []models.InteractionRecord, now time.Time) models.TimelineAnalysis {
	sorted := make([]models.InteractionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	events := make([]models.TimelineEvent, len(sorted))
	for i, rec := range sorted {
		events[i] = a.ClassifyEvent(rec, now)
	}

	summary := summarize(events)
	patterns := detectPatterns(sorted, events)
	return models.TimelineAnalysis{
		Summary:         summary,
		Patterns:        patterns,
		Recommendations: recommend(summary, patterns, events),
		Days:            groupByDay(events),
	}
}

// groupByDay buckets events by calendar date, newest date first. Events
// within a day keep their newest-first order.
func groupByDay(events []models.TimelineEvent) []models.DayGroup {
	byDate := make(map[string][]models.TimelineEvent)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]models.DayGroup, len(dates))
	for i, d := range dates {
		groups[i] = models.DayGroup{Date: d, Events: byDate[d]}
	}
	return groups
}

func summarize(events []models.TimelineEvent) models.TimelineSummary {
	totalMinutes := 0
	categoryCounts := make(map[string]int)
	techCounts := make(map[string]int)
	collaborationCount := 0
	for _, e := range events {
		totalMinutes += e.DurationMinutes
		categoryCounts[string(e.Category)]++
		for _, t := range e.Technologies {
			techCounts[t]++
		}
		if e.Type == models.EventCollaboration {
			collaborationCount++
		}
	}

	return models.TimelineSummary{
		TotalEvents:        len(events),
		ProductiveHours:    float64(totalMinutes) / 60.0,
		FocusAreas:         topK(categoryCounts, 3),
		TopTechnologies:    topK(techCounts, 5),
		CollaborationLevel: collaborationLevel(collaborationCount),
		OverallMomentum:    Momentum(events),
	}
}

// collaborationLevel buckets the collaboration-typed event count.
func collaborationLevel(count int) models.CollaborationLevel {
	switch {
	case count == 0:
		return models.CollabSolo
	case count <= 2:
		return models.CollabOccasional
	case count <= 5:
		return models.CollabRegular
	default:
		return models.CollabHigh
	}
}

// Momentum derives the trend from the five most recent events (events are
// expected newest-first). A blocked majority dominates; otherwise the
// completed ratio decides.
func Momentum(events []models.TimelineEvent) models.TrendMomentum {
	sample := events
	if len(sample) > momentumSampleSize {
		sample = sample[:momentumSampleSize]
	}
	if len(sample) == 0 {
		return models.TrendSteady
	}

	blocked, completed := 0, 0
	for _, e := range sample {
		switch e.Status {
		case models.EventBlocked:
			blocked++
		case models.EventCompleted:
			completed++
		}
	}

	switch {
	case blocked > len(sample)/2:
		return models.TrendBlocked
	case completed >= 4:
		return models.TrendAccelerating
	case completed >= 2:
		return models.TrendSteady
	default:
		return models.TrendSlowing
	}
}

func detectPatterns(records []models.InteractionRecord, events []models.TimelineEvent) models.TimelinePatterns {
	return models.TimelinePatterns{
		PeakTime:   peakTime(records),
		WorkStyle:  workStyle(events),
		Challenges: collectChallenges(events, records),
		Strengths:  collectStrengths(events),
	}
}

// peakTime names the day quarter with the most activity.
func peakTime(records []models.InteractionRecord) string {
	if len(records) == 0 {
		return "unknown"
	}
	buckets := map[string]int{}
	for _, r := range records {
		hour := r.Timestamp.UTC().Hour()
		switch {
		case hour >= 5 && hour < 12:
			buckets["morning"]++
		case hour >= 12 && hour < 17:
			buckets["afternoon"]++
		case hour >= 17 && hour < 22:
			buckets["evening"]++
		default:
			buckets["night"]++
		}
	}
	names := topK(buckets, 1)
	return names[0]
}

// workStyle is "focused" when most events fall into one category,
// otherwise "varied".
func workStyle(events []models.TimelineEvent) string {
	if len(events) == 0 {
		return "unknown"
	}
	counts := make(map[models.EventCategory]int)
	best := 0
	for _, e := range events {
		counts[e.Category]++
		if counts[e.Category] > best {
			best = counts[e.Category]
		}
	}
	if best*2 >= len(events) {
		return "focused"
	}
	return "varied"
}

// collectChallenges lists short excerpts of blocked or bug-heavy work.
func collectChallenges(events []models.TimelineEvent, records []models.InteractionRecord) []string {
	var challenges []string
	for i, e := range events {
		if len(challenges) >= 3 {
			break
		}
		if e.Status == models.EventBlocked || e.Type == models.EventBug {
			challenges = append(challenges, truncate(records[i].QueryText, 60))
		}
	}
	return challenges
}

// collectStrengths names the event types the developer completes most.
func collectStrengths(events []models.TimelineEvent) []string {
	completedByType := make(map[string]int)
	for _, e := range events {
		if e.Status == models.EventCompleted {
			completedByType[string(e.Type)]++
		}
	}
	return topK(completedByType, 3)
}

// recommend applies a small ordered rule table, capped at four items.
func recommend(summary models.TimelineSummary, patterns models.TimelinePatterns, events []models.TimelineEvent) []string {
	var recs []string
	add := func(r string) {
		if len(recs) < maxRecommendations {
			recs = append(recs, r)
		}
	}

	if summary.OverallMomentum == models.TrendBlocked {
		add("Recent work is mostly blocked; consider pairing with a teammate or stepping back to re-scope the problem.")
	} else if summary.OverallMomentum == models.TrendSlowing {
		add("Momentum is slowing; closing out one in-progress item before starting new work may help.")
	}

	if len(patterns.Challenges) >= 2 {
		add("Several recurring errors appeared; capturing the root cause in a short write-up could prevent repeats.")
	}

	distinctTech := make(map[string]struct{})
	for _, e := range events {
		for _, t := range e.Technologies {
			distinctTech[t] = struct{}{}
		}
	}
	if len(distinctTech) > 5 {
		add("Work spans many technologies; narrowing focus to the core stack may reduce context switching.")
	} else if len(distinctTech) == 1 {
		add("Activity is concentrated in a single technology; exploring an adjacent tool could broaden options.")
	}

	testing, documentation := 0, 0
	for _, e := range events {
		switch e.Type {
		case models.EventTesting:
			testing++
		case models.EventDocumentation:
			documentation++
		}
	}
	if total := len(events); total > 0 {
		if testing*10 < total {
			add("Testing activity is under 10% of recent work; adding tests for recent changes would derisk them.")
		}
		if documentation*20 < total {
			add("Little documentation activity lately; a short note on recent decisions would help the team.")
		}
	}

	return recs
}
