package procedurerec

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

// minLearningBatch is the smallest batch that changes derived state.
const minLearningBatch = 5

// service implements the Service interface.
type service struct {
	templates TemplateRepository
	practices BestPracticeRepository
	history   HistoryRepository
	model     EffectivenessModel
	logger    *zap.Logger

	// historyMu serializes history appends; reads need no ordering.
	historyMu sync.Mutex
}

// NewService creates a procedure recommender.
func NewService(
	templates TemplateRepository,
	practices BestPracticeRepository,
	history HistoryRepository,
	model EffectivenessModel,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		templates: templates,
		practices: practices,
		history:   history,
		model:     model,
		logger:    logger,
	}
}

// scoredTemplate pairs a candidate with its computed scores.
type scoredTemplate struct {
	tmpl    *procedure.Template
	factors factorScores
	score   float64
	stats   *recommendation.HistoryStats
}

// Recommend scores every applicable template and returns the top candidates.
func (s *service) Recommend(ctx context.Context, auditCtx *audit.Context) ([]recommendation.ProcedureRecommendation, error) {
	templates, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing procedure templates")
	}

	practices, err := s.practices.ListBestPractices(ctx)
	if err != nil {
		// Best-practice data is an enrichment; score without it.
		s.logger.Warn("best practice lookup failed, using neutral alignment", zap.Error(err))
		practices = nil
	}

	candidates := make([]*procedure.Template, 0, len(templates))
	for _, t := range templates {
		if t.AppliesTo(auditCtx) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return []recommendation.ProcedureRecommendation{}, nil
	}

	scored := s.scoreCandidates(ctx, auditCtx, candidates, practices)

	// Reject below threshold, sort descending, truncate.
	kept := scored[:0]
	for _, c := range scored {
		if c.score >= ConfidenceThreshold-scoreEpsilon {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].score > kept[j].score })
	if len(kept) > MaxRecommendations {
		kept = kept[:MaxRecommendations]
	}

	out := make([]recommendation.ProcedureRecommendation, 0, len(kept))
	for _, c := range kept {
		out = append(out, s.buildRecommendation(auditCtx, c, kept))
	}
	return out, nil
}

// scoreCandidates fans per-candidate scoring out across a worker pool sized
// to available cores. Scoring has no cross-candidate dependency.
func (s *service) scoreCandidates(
	ctx context.Context,
	auditCtx *audit.Context,
	candidates []*procedure.Template,
	practices []*procedure.BestPractice,
) []scoredTemplate {
	scored := make([]scoredTemplate, len(candidates))

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i, tmpl := range candidates {
		wg.Add(1)
		go func(idx int, t *procedure.Template) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			scored[idx] = s.scoreOne(ctx, auditCtx, t, practices)
		}(i, tmpl)
	}
	wg.Wait()
	return scored
}

func (s *service) scoreOne(
	ctx context.Context,
	auditCtx *audit.Context,
	tmpl *procedure.Template,
	practices []*procedure.BestPractice,
) scoredTemplate {
	stats, err := s.history.Stats(ctx, recommendation.HistoryFilter{
		EntityType:   recommendation.EntityProcedure,
		EntityID:     tmpl.ID,
		RiskCategory: auditCtx.Risk.Category,
	})
	if err != nil {
		// History is advisory: score with neutral components instead.
		stats = &recommendation.HistoryStats{}
	}

	f := factorScores{
		contextMatch:   contextMatchScore(auditCtx, tmpl),
		bestPractice:   bestPracticeScore(auditCtx, practices),
		timeEfficiency: timeEfficiencyScore(tmpl, stats),
	}
	if stats.SampleCount > 0 {
		f.historicalSuccess = stats.SuccessRate
		f.quality = stats.AvgQualityRating
	} else {
		f.historicalSuccess = neutralFactorScore
		f.quality = neutralFactorScore
	}

	return scoredTemplate{
		tmpl:    tmpl,
		factors: f,
		score:   f.composite(),
		stats:   stats,
	}
}

func (s *service) buildRecommendation(
	auditCtx *audit.Context,
	c scoredTemplate,
	all []scoredTemplate,
) recommendation.ProcedureRecommendation {
	return recommendation.ProcedureRecommendation{
		ID:                     uuid.New(),
		TemplateID:             c.tmpl.ID,
		Name:                   c.tmpl.Name,
		Score:                  values.NewScore(c.score),
		Factors:                c.factors.breakdown(),
		PredictedEffectiveness: s.predictEffectiveness(auditCtx, c),
		EstimatedHours:         s.estimateHours(auditCtx, c),
		Alternatives:           buildAlternatives(c, all),
		ContextualFactors:      buildContextualFactors(auditCtx, c),
		Reasoning: fmt.Sprintf("%s scored %.1f for %s risk at %s complexity (%d historical samples)",
			c.tmpl.Name, c.score, auditCtx.Risk.Category, auditCtx.Complexity, c.stats.SampleCount),
		GeneratedAt: time.Now().UTC(),
	}
}

// predictEffectiveness adjusts the registry heuristic's base prediction by
// maturity, then blends 70/30 with the historical average when history
// exists.
func (s *service) predictEffectiveness(auditCtx *audit.Context, c scoredTemplate) float64 {
	base := c.tmpl.BaseEffectiveness
	if s.model != nil {
		base = s.model.PredictProcedureEffectiveness(auditCtx, c.tmpl)
	} else {
		base += complexityEffectivenessDelta(auditCtx.Complexity)
	}
	base += maturityEffectivenessDelta(auditCtx.Organization.MaturityLevel)
	base = math.Min(100, math.Max(0, base))

	if c.stats.SampleCount > 0 {
		return 0.7*base + 0.3*c.stats.AvgEffectiveness
	}
	return base
}

// estimateHours scales the template estimate by complexity and org-size
// multipliers, blending 70/30 with the historical average when present.
func (s *service) estimateHours(auditCtx *audit.Context, c scoredTemplate) float64 {
	est := c.tmpl.EstimatedHours *
		complexityHoursMultiplier(auditCtx.Complexity) *
		orgSizeHoursMultiplier(auditCtx.Organization.Size)
	if c.stats.SampleCount > 0 && c.stats.AvgCompletionHours > 0 {
		return 0.7*est + 0.3*c.stats.AvgCompletionHours
	}
	return est
}

// buildAlternatives lists up to three other surviving candidates with
// explicit tradeoffs.
func buildAlternatives(self scoredTemplate, all []scoredTemplate) []recommendation.ProcedureAlternative {
	alts := make([]recommendation.ProcedureAlternative, 0, maxAlternatives)
	for _, other := range all {
		if other.tmpl.ID == self.tmpl.ID {
			continue
		}
		if len(alts) == maxAlternatives {
			break
		}
		alt := recommendation.ProcedureAlternative{
			TemplateID: other.tmpl.ID,
			Name:       other.tmpl.Name,
			Score:      values.NewScore(other.score),
		}
		diff := self.score - other.score
		switch {
		case diff > 10:
			alt.Tradeoffs = "materially lower composite score"
			alt.Limitations = "weaker fit for this context"
		case diff > 0:
			alt.Tradeoffs = "slightly lower composite score"
			alt.Limitations = "comparable fit, less historical support"
		default:
			alt.Tradeoffs = "competitive score"
			alt.Limitations = "ranked lower on tie-break"
		}
		if other.tmpl.EstimatedHours < self.tmpl.EstimatedHours {
			alt.Benefits = "shorter estimated duration"
		} else {
			alt.Benefits = "broader procedure coverage"
		}
		alts = append(alts, alt)
	}
	return alts
}

// buildContextualFactors explains up to four context attributes that moved
// the score.
func buildContextualFactors(auditCtx *audit.Context, c scoredTemplate) []recommendation.ContextualFactor {
	factors := make([]recommendation.ContextualFactor, 0, maxContextualFactors)

	if matchesRisk(auditCtx, c.tmpl) {
		factors = append(factors, recommendation.ContextualFactor{
			Name:        "risk_category",
			Impact:      "positive",
			Description: fmt.Sprintf("template covers %s risk", auditCtx.Risk.Category),
		})
	}
	switch auditCtx.Complexity {
	case audit.ComplexityHighlyComplex, audit.ComplexityComplex:
		factors = append(factors, recommendation.ContextualFactor{
			Name:        "complexity",
			Impact:      "negative",
			Description: fmt.Sprintf("%s engagements reduce predicted effectiveness", auditCtx.Complexity),
		})
	default:
		factors = append(factors, recommendation.ContextualFactor{
			Name:        "complexity",
			Impact:      "neutral",
			Description: fmt.Sprintf("%s complexity within template coverage", auditCtx.Complexity),
		})
	}
	if matchesIndustry(auditCtx, c.tmpl) && auditCtx.Organization.Industry != "" {
		factors = append(factors, recommendation.ContextualFactor{
			Name:        "industry",
			Impact:      "positive",
			Description: fmt.Sprintf("proven in %s", auditCtx.Organization.Industry),
		})
	}
	if len(factors) < maxContextualFactors && c.stats.SampleCount >= 3 {
		factors = append(factors, recommendation.ContextualFactor{
			Name:        "historical_evidence",
			Impact:      "positive",
			Description: fmt.Sprintf("%d comparable completed audits", c.stats.SampleCount),
		})
	}
	if len(factors) > maxContextualFactors {
		factors = factors[:maxContextualFactors]
	}
	return factors
}

// RecordOutcomes appends one performance row per actually-run procedure.
// Batches below the learning minimum leave all derived state unchanged.
func (s *service) RecordOutcomes(ctx context.Context, batch []audit.LearningData) error {
	if len(batch) < minLearningBatch {
		s.logger.Debug("learning batch below minimum, procedure history unchanged",
			zap.Int("batch_size", len(batch)))
		return nil
	}

	records := make([]*recommendation.PerformanceRecord, 0, len(batch))
	for i := range batch {
		d := &batch[i]
		accuracy := math.Max(0, 100-d.TimelineErrorRatio()*100)
		for _, procID := range d.ActualProcedures {
			records = append(records, &recommendation.PerformanceRecord{
				ID:               uuid.New(),
				EntityType:       recommendation.EntityProcedure,
				EntityID:         procID,
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
	}
	if len(records) == 0 {
		return nil
	}

	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	if err := s.history.Append(ctx, records); err != nil {
		return errors.NewPersistenceError("appending procedure history").WithCause(err)
	}
	s.logger.Info("recorded procedure outcomes",
		zap.Int("batch_size", len(batch)),
		zap.Int("history_rows", len(records)))
	return nil
}
