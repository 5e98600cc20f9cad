package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/codelens-hq/pulse/internal/cache"
	"github.com/codelens-hq/pulse/pkg/models"
)

// DefaultDigestMaxRecords bounds the sample handed to the digest model.
const DefaultDigestMaxRecords = 30

// fallbackConfidence is the fixed confidence of deterministically built
// digests. It stays below the model path's scores so consumers can tell the
// two apart.
const fallbackConfidence = 0.3

// DigestModel produces a digest from a rendered prompt. The llm package
// provides the production implementation; tests substitute their own.
type DigestModel interface {
	GenerateDigest(ctx context.Context, prompt string) (*models.DigestResult, error)
}

// DigestGenerator memoizes digest generation per user and record set. The
// model path is tried first when enabled; any model failure degrades to the
// deterministic fallback builder so a digest is always returned.
type DigestGenerator struct {
	model      DigestModel
	store      cache.Store
	clock      cache.Clock
	defaults   models.DigestOptions
	onFallback func(userID string, reason error)
}

// NewDigestGenerator creates a DigestGenerator. model may be nil, in which
// case every request takes the fallback path. onFallback, when non-nil, is
// invoked each time a model failure forces a fallback digest.
func NewDigestGenerator(model DigestModel, store cache.Store, clock cache.Clock, defaults models.DigestOptions, onFallback func(userID string, reason error)) *DigestGenerator {
	if clock == nil {
		clock = cache.SystemClock()
	}
	if defaults.MaxRecords <= 0 {
		defaults.MaxRecords = DefaultDigestMaxRecords
	}
	return &DigestGenerator{
		model:      model,
		store:      store,
		clock:      clock,
		defaults:   defaults,
		onFallback: onFallback,
	}
}

// Generate returns the digest for a user's records, serving an unexpired
// cached result when the record set is unchanged. records are expected
// newest-first; only the configured maximum is analyzed.
func (g *DigestGenerator) Generate(ctx context.Context, userID string, records []models.InteractionRecord, opts models.DigestOptions) (*models.DigestResult, error) {
	maxRecords := opts.MaxRecords
	if maxRecords <= 0 {
		maxRecords = g.defaults.MaxRecords
	}
	sample := records
	if len(sample) > maxRecords {
		sample = sample[:maxRecords]
	}

	ids := make([]string, len(sample))
	for i, rec := range sample {
		ids[i] = rec.ID
	}
	key := cache.Fingerprint("digest:"+userID, ids)

	if g.store != nil {
		if cached, ok := g.store.Get(key); ok {
			if digest, ok := cached.(*models.DigestResult); ok {
				return digest, nil
			}
		}
	}

	digest := g.build(ctx, userID, sample, opts)

	if g.store != nil {
		ttl := time.Duration(opts.CacheMinutes) * time.Minute
		if opts.CacheMinutes <= 0 {
			ttl = time.Duration(g.defaults.CacheMinutes) * time.Minute
		}
		g.store.Set(key, digest, ttl)
	}
	return digest, nil
}

func (g *DigestGenerator) build(ctx context.Context, userID string, sample []models.InteractionRecord, opts models.DigestOptions) *models.DigestResult {
	now := g.clock.Now()

	enabled := g.defaults.Enabled != nil && *g.defaults.Enabled
	if opts.Enabled != nil {
		enabled = *opts.Enabled
	}
	if enabled && g.model != nil && len(sample) > 0 {
		digest, err := g.model.GenerateDigest(ctx, BuildDigestPrompt(userID, sample))
		if err == nil && digest != nil {
			digest.UserID = userID
			digest.GeneratedAt = now
			digest.Source = models.DigestFromModel
			return digest
		}
		if g.onFallback != nil {
			g.onFallback(userID, err)
		}
	}

	digest := FallbackDigest(userID, sample, now)
	return &digest
}

// BuildDigestPrompt renders the model prompt for one user's sample. The
// transcript is bounded per record so prompts stay a predictable size.
func BuildDigestPrompt(userID string, sample []models.InteractionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the recent coding-assistant interactions of developer %q and respond with a single JSON object.\n", userID)
	b.WriteString("Required fields: recent_focus (string), activity_summary (string), key_learnings (string array), progress_highlights (string array), current_momentum (high|medium|low), learning_trajectory (string), problem_solving_approach (string), collaboration_patterns (string), growth_areas (string array), technical_depth (beginner|intermediate|advanced), confidence_score (number 0..1).\n")
	b.WriteString("Respond with JSON only, no surrounding prose.\n\nInteractions, newest first:\n")
	for i, rec := range sample {
		fmt.Fprintf(&b, "%d. [%s] Q: %s\n   A: %s\n",
			i+1,
			rec.Timestamp.UTC().Format(time.RFC3339),
			truncate(rec.QueryText, 200),
			truncate(rec.ResponseText, 200))
	}
	return b.String()
}

// FallbackDigest builds a digest from keyword statistics alone. Every
// contract field is populated; the result is identical for identical input.
func FallbackDigest(userID string, sample []models.InteractionRecord, now time.Time) models.DigestResult {
	digest := models.DigestResult{
		UserID:          userID,
		GeneratedAt:     now,
		Source:          models.DigestFromFallback,
		ConfidenceScore: fallbackConfidence,
	}

	if len(sample) == 0 {
		digest.RecentFocus = "No recent activity"
		digest.ActivitySummary = "No interactions recorded in the analyzed window."
		digest.KeyLearnings = []string{}
		digest.ProgressHighlights = []string{}
		digest.CurrentMomentum = models.MomentumLow
		digest.LearningTrajectory = "Not enough activity to assess."
		digest.ProblemSolvingApproach = "Not enough activity to assess."
		digest.CollaborationPatterns = "No collaboration signals observed."
		digest.GrowthAreas = []string{}
		digest.TechnicalDepth = models.DepthBeginner
		return digest
	}

	var b strings.Builder
	completed := 0
	for _, rec := range sample {
		b.WriteString(rec.QueryText)
		b.WriteString(" ")
		b.WriteString(rec.ResponseText)
		b.WriteString(" ")
		if rec.Completed() {
			completed++
		}
	}
	text := strings.ToLower(b.String())

	technologies := extractMatches(text, technologyVocabulary)
	features := extractMatches(text, featureVocabulary)

	digest.RecentFocus = describeFocus(features, technologies, sample)
	digest.ActivitySummary = fmt.Sprintf("%d interactions analyzed, %d completed.", len(sample), completed)
	digest.KeyLearnings = learningsFrom(technologies)
	digest.ProgressHighlights = highlightsFrom(sample)
	digest.CurrentMomentum = momentumFromRatio(completed, len(sample))
	digest.LearningTrajectory = trajectoryFrom(text, technologies)
	digest.ProblemSolvingApproach = approachFrom(text)
	digest.CollaborationPatterns = collaborationFrom(text)
	digest.GrowthAreas = growthAreasFrom(text, technologies)
	digest.TechnicalDepth = depthFrom(technologies)
	return digest
}

// describeFocus prefers named feature areas, then technologies, then the
// latest query excerpt.
func describeFocus(features, technologies []string, sample []models.InteractionRecord) string {
	if len(features) > 0 {
		n := len(features)
		if n > 3 {
			n = 3
		}
		return strings.Join(features[:n], ", ")
	}
	if len(technologies) > 0 {
		n := len(technologies)
		if n > 3 {
			n = 3
		}
		return strings.Join(technologies[:n], ", ")
	}
	return truncate(sample[0].QueryText, 60)
}

func learningsFrom(technologies []string) []string {
	learnings := make([]string, 0, 3)
	for _, t := range technologies {
		if len(learnings) == 3 {
			break
		}
		learnings = append(learnings, fmt.Sprintf("Hands-on work with %s", t))
	}
	return learnings
}

// highlightsFrom lists excerpts of up to three completed interactions.
func highlightsFrom(sample []models.InteractionRecord) []string {
	highlights := make([]string, 0, 3)
	for _, rec := range sample {
		if len(highlights) == 3 {
			break
		}
		if rec.Completed() {
			highlights = append(highlights, truncate(rec.QueryText, 60))
		}
	}
	return highlights
}

func momentumFromRatio(completed, total int) models.Momentum {
	ratio := float64(completed) / float64(total)
	switch {
	case ratio >= 0.7:
		return models.MomentumHigh
	case ratio >= 0.4:
		return models.MomentumMedium
	default:
		return models.MomentumLow
	}
}

func trajectoryFrom(text string, technologies []string) string {
	learning := countMatches(text, learningTerms)
	switch {
	case learning >= 3:
		return "Actively exploring unfamiliar ground with frequent how-and-why questions."
	case len(technologies) >= 4:
		return "Broadening across several technologies at once."
	default:
		return "Deepening within an established stack."
	}
}

func approachFrom(text string) string {
	problem := countMatches(text, problemKeywords)
	flow := countMatches(text, flowKeywords)
	switch {
	case problem > flow:
		return "Iterative debugging: reproduce, narrow down, fix, verify."
	case flow > 0:
		return "Steady build-out of new functionality with few detours."
	default:
		return "Mixed investigation and implementation."
	}
}

func collaborationFrom(text string) string {
	if countMatches(text, collaborationTerms) > 0 {
		return "Regularly references reviews and teammates in queries."
	}
	return "Works mostly solo in the analyzed window."
}

// growthAreasFrom names the technologies most often co-located with stuck
// language, falling back to a generic suggestion when work is going smoothly.
func growthAreasFrom(text string, technologies []string) []string {
	if countMatches(text, stuckIndicators) == 0 {
		return []string{"Maintain current pace"}
	}
	areas := make([]string, 0, 2)
	for _, t := range technologies {
		if len(areas) == 2 {
			break
		}
		areas = append(areas, fmt.Sprintf("Troubleshooting %s issues", t))
	}
	if len(areas) == 0 {
		areas = append(areas, "Systematic debugging practice")
	}
	sort.Strings(areas)
	return areas
}

func depthFrom(technologies []string) models.TechnicalDepth {
	switch {
	case len(technologies) >= 6:
		return models.DepthAdvanced
	case len(technologies) >= 3:
		return models.DepthIntermediate
	default:
		return models.DepthBeginner
	}
}
