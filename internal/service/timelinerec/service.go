package timelinerec

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

const (
	// MinDurationHours is the absolute floor on a recommended duration.
	MinDurationHours = 4.0

	// baseFraction of the allowed maximum seeds the estimate.
	baseFraction = 0.8
	// historyBlendWeight is the base share when blending with history.
	historyBlendWeight = 0.6

	// Buffer percentage rules.
	bufferBasePct          = 15.0
	bufferHighlyComplexPct = 5.0
	bufferLargeRiskPct     = 5.0
	largeRiskAdjustment    = 4.0

	// Additive risk adjustments, in hours.
	riskAdjHighInherent  = 2.0
	riskAdjFirstTime     = 3.0
	riskAdjScarce        = 1.5
	highInherentRisk     = 20.0

	// Delay probability components.
	delayBaseline       = 30.0
	delayHighlyComplex  = 25.0
	delayCriticalUrgency = 20.0
	delayResourceScarce = 15.0

	// Confidence bounds.
	confidenceBase    = 50.0
	confidenceFloor   = 40.0
	confidenceCeiling = 95.0

	minHistorySamples = 3
	minLearningBatch  = 5
	// minOptimalSamples of successful audits before a combination yields an
	// optimal-duration override.
	minOptimalSamples = 5
)

// contextKey identifies a risk-category/complexity combination.
type contextKey struct {
	category   audit.RiskCategory
	complexity audit.ComplexityLevel
}

// optimalDuration is the learned sweet spot for one combination.
type optimalDuration struct {
	hours   float64
	samples int
}

// service implements the Service interface.
type service struct {
	history HistoryRepository
	logger  *zap.Logger
	now     func() time.Time

	// mu guards the learned stores below. Reads on the request path take the
	// read lock; only the learning pipeline writes.
	mu      sync.RWMutex
	optimal map[contextKey]optimalDuration
	seen    map[contextKey]int
}

// NewService creates a timeline recommender.
func NewService(history HistoryRepository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		history: history,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		optimal: make(map[contextKey]optimalDuration),
		seen:    make(map[contextKey]int),
	}
}

// Recommend predicts a duration and schedule shape for the context.
func (s *service) Recommend(ctx context.Context, auditCtx *audit.Context) (*recommendation.TimelineRecommendation, error) {
	key := contextKey{category: auditCtx.Risk.Category, complexity: auditCtx.Complexity}

	stats, err := s.history.Stats(ctx, recommendation.HistoryFilter{
		EntityType:   recommendation.EntityTimeline,
		RiskCategory: auditCtx.Risk.Category,
		Complexity:   &auditCtx.Complexity,
	})
	if err != nil {
		stats = &recommendation.HistoryStats{}
	}

	s.mu.RLock()
	opt := s.optimal[key]
	firstTime := s.seen[key] == 0
	s.mu.RUnlock()

	base := auditCtx.Timeline.MaxDurationHours * baseFraction
	if opt.samples >= minOptimalSamples {
		base = opt.hours
	}
	if stats.SampleCount >= minHistorySamples && stats.AvgCompletionHours > 0 {
		base = historyBlendWeight*base + (1-historyBlendWeight)*stats.AvgCompletionHours
	}

	factors := durationFactors(auditCtx, stats)
	adjusted := applyFactors(base, factors)

	riskAdj := 0.0
	if auditCtx.Risk.InherentRiskScore >= highInherentRisk {
		riskAdj += riskAdjHighInherent
	}
	if firstTime {
		riskAdj += riskAdjFirstTime
	}
	if auditCtx.ResourceScarce() {
		riskAdj += riskAdjScarce
	}

	final := math.Max(MinDurationHours, adjusted+riskAdj)
	buffer := bufferHours(auditCtx, base, riskAdj)

	rec := &recommendation.TimelineRecommendation{
		ID:                 uuid.New(),
		RecommendedHours:   final,
		BufferHours:        buffer,
		Confidence:         confidence(stats.SampleCount, factors),
		Factors:            factors,
		Milestones:         milestones(final),
		Contingencies:      contingencies(auditCtx, stats),
		SchedulingStrategy: schedulingStrategy(auditCtx),
		Optimizations:      optimizations(auditCtx, stats),
		Reasoning: fmt.Sprintf("base %.1fh adjusted to %.1fh (+%.1fh risk adjustment) for %s/%s, %d historical samples",
			base, adjusted, riskAdj, auditCtx.Risk.Category, auditCtx.Complexity, stats.SampleCount),
		GeneratedAt: s.now(),
	}
	return rec, nil
}

// bufferHours computes the contingency buffer as a percentage of base.
func bufferHours(auditCtx *audit.Context, base, riskAdj float64) float64 {
	pct := bufferBasePct
	if auditCtx.Complexity == audit.ComplexityHighlyComplex {
		pct += bufferHighlyComplexPct
	}
	if riskAdj > largeRiskAdjustment {
		pct += bufferLargeRiskPct
	}
	if auditCtx.Timeline.Urgency == audit.UrgencyCritical {
		pct *= 0.5
	}
	return math.Max(0, base*pct/100)
}

// milestones emits the four fixed-proportion checkpoints with dependency
// chaining.
func milestones(finalHours float64) []recommendation.Milestone {
	spec := []struct {
		name        string
		proportion  float64
		flexibility float64
	}{
		{"planning_complete", 0.18, 20},
		{"fieldwork_complete", 0.65, 10},
		{"draft_report", 0.85, 15},
		{"final_report", 1.00, 25},
	}
	out := make([]recommendation.Milestone, 0, len(spec))
	prev := ""
	for _, m := range spec {
		out = append(out, recommendation.Milestone{
			Name:        m.name,
			OffsetHours: finalHours * m.proportion,
			Flexibility: m.flexibility,
			DependsOn:   prev,
		})
		prev = m.name
	}
	return out
}

// contingencies enumerates the delay, escalation, and resource-loss plans.
func contingencies(auditCtx *audit.Context, stats *recommendation.HistoryStats) []recommendation.ContingencyOption {
	delay := delayBaseline
	if auditCtx.Complexity == audit.ComplexityHighlyComplex {
		delay += delayHighlyComplex
	}
	if auditCtx.Timeline.Urgency == audit.UrgencyCritical {
		delay += delayCriticalUrgency
	}
	if auditCtx.ResourceScarce() {
		delay += delayResourceScarce
	}
	if stats.SampleCount >= minHistorySamples {
		delay = 0.6*delay + 0.4*stats.DelayRate
	}
	delay = math.Min(100, delay)

	escalation := 20.0
	if auditCtx.Complexity >= audit.ComplexityComplex {
		escalation += 15
	}
	resourceLoss := 15.0
	if auditCtx.ResourceScarce() {
		resourceLoss += 10
	}

	return []recommendation.ContingencyOption{
		{
			Scenario:    "schedule_delay",
			Probability: delay,
			Impact:      "milestones shift right",
			Response:    "consume buffer, then renegotiate scope with the audit owner",
		},
		{
			Scenario:    "complexity_escalation",
			Probability: escalation,
			Impact:      "fieldwork expands beyond plan",
			Response:    "split the engagement and escalate the expanded scope",
		},
		{
			Scenario:    "resource_loss",
			Probability: resourceLoss,
			Impact:      "assigned staff become unavailable",
			Response:    "activate the backup assignment from the auditor ranking",
		},
	}
}

// confidence grows with sample count plus the average factor certainty,
// clamped to [40, 95].
func confidence(sampleCount int, factors []recommendation.DurationFactor) values.Score {
	c := confidenceBase + math.Min(30, 3*float64(sampleCount))
	if len(factors) > 0 {
		sum := 0.0
		for _, f := range factors {
			sum += certaintyBonus(f)
		}
		c += sum / float64(len(factors))
	}
	return values.NewScore(math.Min(confidenceCeiling, math.Max(confidenceFloor, c)))
}

func schedulingStrategy(auditCtx *audit.Context) string {
	switch {
	case auditCtx.Timeline.Urgency == audit.UrgencyCritical:
		return "front_loaded"
	case auditCtx.Complexity == audit.ComplexityHighlyComplex:
		return "phased"
	default:
		return "balanced"
	}
}

func optimizations(auditCtx *audit.Context, stats *recommendation.HistoryStats) []string {
	var out []string
	if len(auditCtx.Resources.Tools) > 0 {
		out = append(out, "automate evidence collection with available tooling")
	}
	if len(auditCtx.Resources.Skills) >= 3 {
		out = append(out, "parallelize fieldwork across skill areas")
	}
	if stats.SampleCount >= minHistorySamples {
		out = append(out, "reuse working papers from comparable engagements")
	}
	return out
}

// RecordOutcomes appends timeline history rows and refreshes the learned
// optimal-duration store. Batches below the learning minimum are no-ops.
func (s *service) RecordOutcomes(ctx context.Context, batch []audit.LearningData) error {
	if len(batch) < minLearningBatch {
		s.logger.Debug("learning batch below minimum, timeline state unchanged",
			zap.Int("batch_size", len(batch)))
		return nil
	}

	records := make([]*recommendation.PerformanceRecord, 0, len(batch))
	for i := range batch {
		d := &batch[i]
		accuracy := math.Max(0, 100-d.TimelineErrorRatio()*100)
		records = append(records, &recommendation.PerformanceRecord{
			ID:               uuid.New(),
			EntityType:       recommendation.EntityTimeline,
			EntityID:         d.AuditID,
			AuditID:          d.AuditID,
			Effectiveness:    d.QualityScore,
			CompletionHours:  d.ActualDurationHours,
			QualityRating:    d.QualityScore,
			TimelineAccuracy: accuracy,
			Success:          d.Success,
			RiskCategory:     d.Context.Risk.Category,
			Complexity:       d.Context.Complexity,
			Industry:         d.Context.Organization.Industry,
			OrgSize:          d.Context.Organization.Size,
			RecordedAt:       d.CompletedAt,
		})
	}
	if err := s.history.Append(ctx, records); err != nil {
		return errors.NewPersistenceError("appending timeline history").WithCause(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range batch {
		d := &batch[i]
		key := contextKey{category: d.Context.Risk.Category, complexity: d.Context.Complexity}
		s.seen[key]++

		if !d.Success || d.QualityScore < 75 || d.ActualDurationHours <= 0 {
			continue
		}
		opt := s.optimal[key]
		// Running mean over successful high-quality completions. The override
		// is only consulted once enough samples accumulate.
		opt.hours = (opt.hours*float64(opt.samples) + d.ActualDurationHours) / float64(opt.samples+1)
		opt.samples++
		s.optimal[key] = opt
	}
	s.logger.Info("recorded timeline outcomes", zap.Int("batch_size", len(batch)))
	return nil
}
