package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codelens-hq/pulse/internal/cache"
	"github.com/codelens-hq/pulse/pkg/models"
)

// Engine orchestrates the pipeline: it pulls records from the store, windows
// them per user, classifies each developer, extracts tasks, and serves
// timelines, digests, sessions, collisions, and team metrics on demand.
//
// All derived state is recomputed from the in-memory record set; nothing is
// mutated in place. A monotonically increasing refresh id protects against a
// slow refresh overwriting a newer one.
type Engine struct {
	mu      sync.Mutex
	records map[string]models.InteractionRecord
	states  map[string]models.DeveloperState

	store     RecordStore
	snapshots StateSnapshotter
	events    EventLogger
	clock     cache.Clock

	windower   *Windower
	classifier *Classifier
	extractor  *TaskExtractor
	grouper    *SessionGrouper
	collisions *CollisionDetector
	timeline   *TimelineAnalyzer
	digests    *DigestGenerator

	cfg models.GlobalConfig

	refreshCounter atomic.Uint64
	lastApplied    atomic.Uint64
}

// NewEngine wires the pipeline components from one GlobalConfig. snapshots
// and events may be nil; the engine then skips snapshotting and event
// logging. model may be nil to force the digest fallback path.
func NewEngine(cfg models.GlobalConfig, store RecordStore, snapshots StateSnapshotter, events EventLogger, model DigestModel, clock cache.Clock) *Engine {
	if clock == nil {
		clock = cache.SystemClock()
	}
	if cfg.RefreshIntervalSeconds <= 0 {
		cfg.RefreshIntervalSeconds = 30
	}

	e := &Engine{
		records:    make(map[string]models.InteractionRecord),
		states:     make(map[string]models.DeveloperState),
		store:      store,
		snapshots:  snapshots,
		events:     events,
		clock:      clock,
		windower:   NewWindower(cfg.RecentWindowHours, cfg.DailyWindowHours),
		classifier: NewClassifier(cfg.Classifier),
		extractor:  NewTaskExtractor(cfg.MaxTasks),
		grouper:    NewSessionGrouper(cfg.SessionGapMinutes),
		collisions: NewCollisionDetector(),
		timeline:   NewTimelineAnalyzer(),
		cfg:        cfg,
	}

	digestDefaults := models.DigestOptions{
		Enabled:      &cfg.LLM.Enabled,
		CacheMinutes: cfg.CacheTTLMinutes,
		MaxRecords:   cfg.DigestMaxRecords,
	}
	digestCache := cache.New(clock, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
	e.digests = NewDigestGenerator(model, digestCache, clock, digestDefaults, func(userID string, reason error) {
		e.logEvent("digest.fallback", map[string]any{
			"user_id": userID,
			"reason":  fmt.Sprint(reason),
		})
	})
	return e
}

func (e *Engine) logEvent(eventType string, data map[string]any) {
	if e.events == nil {
		return
	}
	_ = e.events.LogEvent(eventType, data)
}

// Refresh pulls the daily window from the store and recomputes every
// developer's state. When the store is unavailable the previously computed
// states (or the last snapshot) keep serving and the error is returned.
//
// Refreshes carry increasing ids; a refresh whose id is lower than the last
// applied one discards its result instead of overwriting newer state.
func (e *Engine) Refresh(ctx context.Context) error {
	id := e.refreshCounter.Add(1)
	now := e.clock.Now()

	from := now.Add(-time.Duration(e.cfg.DailyWindowHours) * time.Hour)
	fetched, err := e.store.FetchRecords(ctx, models.RecordFilter{From: &from})
	if err != nil {
		e.logEvent("store.unavailable", map[string]any{"error": err.Error()})
		e.restoreSnapshot()
		return fmt.Errorf("refreshing records: %w", err)
	}

	e.mu.Lock()
	if id < e.lastApplied.Load() {
		e.mu.Unlock()
		return nil
	}
	e.lastApplied.Store(id)

	e.records = make(map[string]models.InteractionRecord, len(fetched))
	for _, rec := range fetched {
		e.records[rec.ID] = rec
	}
	e.recomputeLocked(now)
	states := e.statesLocked()
	e.mu.Unlock()

	e.saveSnapshot(states)
	e.logEvent("refresh.completed", map[string]any{
		"refresh_id": id,
		"records":    len(fetched),
		"developers": len(states),
	})
	return nil
}

// restoreSnapshot loads the last persisted states when no live state exists
// yet. Live state always wins over a snapshot.
func (e *Engine) restoreSnapshot() {
	if e.snapshots == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.states) > 0 {
		return
	}
	saved, err := e.snapshots.LoadStates()
	if err != nil {
		return
	}
	for _, s := range saved {
		e.states[s.ID] = s
	}
}

func (e *Engine) saveSnapshot(states []models.DeveloperState) {
	if e.snapshots == nil {
		return
	}
	if err := e.snapshots.SaveStates(states); err != nil {
		e.logEvent("snapshot.failed", map[string]any{"error": err.Error()})
	}
}

// ApplyRecord ingests one new record and recomputes the affected developer's
// state only. Other developers' states are untouched.
func (e *Engine) ApplyRecord(rec models.InteractionRecord) {
	now := e.clock.Now()

	e.mu.Lock()
	e.records[rec.ID] = rec
	windows, ok := e.windower.WindowFor(rec.UserID, e.userRecordsLocked(rec.UserID), now)
	if ok {
		e.states[rec.UserID] = e.computeState(windows, now)
	}
	e.mu.Unlock()

	e.logEvent("record.ingested", map[string]any{
		"record_id": rec.ID,
		"user_id":   rec.UserID,
	})
}

func (e *Engine) userRecordsLocked(userID string) []models.InteractionRecord {
	var out []models.InteractionRecord
	for _, rec := range e.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

// recomputeLocked rebuilds every developer state from the current record set.
// Callers hold e.mu.
func (e *Engine) recomputeLocked(now time.Time) {
	all := e.allRecordsLocked()
	e.states = make(map[string]models.DeveloperState)
	for userID, windows := range e.windower.Partition(all, now) {
		e.states[userID] = e.computeState(windows, now)
	}
}

func (e *Engine) allRecordsLocked() []models.InteractionRecord {
	all := make([]models.InteractionRecord, 0, len(e.records))
	for _, rec := range e.records {
		all = append(all, rec)
	}
	return all
}

// computeState derives one developer's state from their windows.
func (e *Engine) computeState(windows UserWindows, now time.Time) models.DeveloperState {
	status, message := e.classifier.Classify(windows.Recent)

	completed := 0
	for _, rec := range windows.Daily {
		if rec.Completed() {
			completed++
		}
	}

	return models.DeveloperState{
		ID:                windows.UserID,
		DisplayName:       displayName(windows.UserID),
		Status:            status,
		StatusMessage:     message,
		CurrentTasks:      e.extractor.Extract(windows.Recent, now),
		InteractionsToday: len(windows.Daily),
		CompletedToday:    completed,
		LastActive:        windows.Daily[0].Timestamp,
	}
}

func (e *Engine) statesLocked() []models.DeveloperState {
	states := make([]models.DeveloperState, 0, len(e.states))
	for _, s := range e.states {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

// DeveloperStates returns the current states sorted by user id.
func (e *Engine) DeveloperStates() []models.DeveloperState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statesLocked()
}

// DeveloperState returns one developer's state.
func (e *Engine) DeveloperState(userID string) (models.DeveloperState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.states[userID]
	return s, ok
}

// TimelineAnalysis analyzes the daily-window records. An empty userID
// analyzes the whole team's stream.
func (e *Engine) TimelineAnalysis(userID string) models.TimelineAnalysis {
	now := e.clock.Now()

	e.mu.Lock()
	var records []models.InteractionRecord
	if userID == "" {
		records = e.allRecordsLocked()
	} else {
		records = e.userRecordsLocked(userID)
	}
	e.mu.Unlock()

	return e.timeline.Analyze(records, now)
}

// Digest returns the cached or freshly generated digest for one developer.
func (e *Engine) Digest(ctx context.Context, userID string, opts models.DigestOptions) (*models.DigestResult, error) {
	now := e.clock.Now()

	e.mu.Lock()
	windows, ok := e.windower.WindowFor(userID, e.userRecordsLocked(userID), now)
	e.mu.Unlock()

	var daily []models.InteractionRecord
	if ok {
		daily = windows.Daily
	}
	return e.digests.Generate(ctx, userID, daily, opts)
}

// Sessions groups the current record set into conversation sessions.
func (e *Engine) Sessions() []models.ConversationSession {
	e.mu.Lock()
	all := e.allRecordsLocked()
	e.mu.Unlock()
	return e.grouper.Group(all)
}

// Collisions detects work overlaps inside one project across the recent
// window.
func (e *Engine) Collisions(projectID string) []models.Collision {
	now := e.clock.Now()
	cutoff := now.Add(-time.Duration(e.cfg.RecentWindowHours) * time.Hour)
	return e.collisions.Detect(e.Sessions(), projectID, cutoff, now)
}

// TeamMetrics summarizes the daily window across all developers.
func (e *Engine) TeamMetrics() models.TeamMetrics {
	sessions := e.Sessions()

	e.mu.Lock()
	states := e.statesLocked()
	total := 0
	for _, s := range states {
		total += s.InteractionsToday
	}
	e.mu.Unlock()

	files := make(map[string]struct{})
	success, indicators := 0, 0
	for _, s := range sessions {
		for _, f := range s.FilesMentioned {
			files[f] = struct{}{}
		}
		success += s.SuccessIndicators
		indicators += s.SuccessIndicators + s.StuckIndicators
	}

	rate := 0.0
	if indicators > 0 {
		rate = float64(success) / float64(indicators)
	}

	return models.TeamMetrics{
		TotalInteractions24h: total,
		ActiveDevelopers:     len(states),
		FilesInFlight:        len(files),
		AvgSuccessRate:       rate,
	}
}

// Run performs an initial refresh, then consumes the store's subscription
// for incremental updates and refreshes on the configured interval until ctx
// is done. Subscription failures degrade to interval-only refreshing.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Refresh(ctx); err != nil {
		// The store may come back; keep serving snapshot state meanwhile.
		e.logEvent("run.initial_refresh_failed", map[string]any{"error": err.Error()})
	}

	var inserts <-chan models.InteractionRecord
	if e.store != nil {
		ch, err := e.store.Subscribe(ctx)
		if err != nil {
			e.logEvent("subscribe.failed", map[string]any{"error": err.Error()})
		} else {
			inserts = ch
		}
	}

	ticker := time.NewTicker(time.Duration(e.cfg.RefreshIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-inserts:
			if !ok {
				inserts = nil
				continue
			}
			e.ApplyRecord(rec)
		case <-ticker.C:
			if err := e.Refresh(ctx); err != nil {
				continue
			}
		}
	}
}
