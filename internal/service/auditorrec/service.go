package auditorrec

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

// Composite weights over the six sub-scores. Preserved verbatim.
const (
	weightSkillAlignment     = 0.25
	weightRiskSpecialization = 0.20
	weightExperienceLevel    = 0.15
	weightAvailability       = 0.15
	weightQualityConsistency = 0.15
	weightReliability        = 0.10
)

const (
	// MinMatchScore is the cut below which auditors never appear in output.
	MinMatchScore = 60.0
	// MaxRecommendations caps the returned list.
	MaxRecommendations = 5

	// weeklyCapacityHours is the workload denominator.
	weeklyCapacityHours = 40.0
	// Utilization buckets.
	fullyAvailableMax     = 70.0
	partiallyAvailableMax = 80.0

	// lookbackMonths windows auditor history aggregation.
	lookbackMonths = 12
	// minHistorySamples below which profile defaults stand in.
	minHistorySamples = 3
	// minLearningBatch is the smallest batch that changes derived state.
	minLearningBatch = 5

	// profileUpdateAlpha weights new evidence in profile EMA updates.
	profileUpdateAlpha = 0.3
)

// service implements the Service interface.
type service struct {
	auditors    AuditorRepository
	profiles    ProfileRepository
	assignments AssignmentRepository
	history     HistoryRepository
	model       PerformanceModel
	logger      *zap.Logger

	now func() time.Time

	// profileMu keeps profile writes single-writer per auditor.
	profileMu sync.Mutex
}

// NewService creates an auditor recommender.
func NewService(
	auditors AuditorRepository,
	profiles ProfileRepository,
	assignments AssignmentRepository,
	history HistoryRepository,
	model PerformanceModel,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		auditors:    auditors,
		profiles:    profiles,
		assignments: assignments,
		history:     history,
		model:       model,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// candidate carries everything computed about one auditor during scoring.
type candidate struct {
	auditor     *auditor.Auditor
	profile     *auditor.ExpertiseProfile
	stats       *recommendation.HistoryStats
	skills      skillAssessment
	utilization float64
	factors     []recommendation.FactorScore
	score       float64
}

// Recommend scores every active auditor and returns the top matches.
func (s *service) Recommend(ctx context.Context, auditCtx *audit.Context) ([]recommendation.AuditorRecommendation, error) {
	active, err := s.auditors.ListActiveAuditors(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing active auditors")
	}
	if len(active) == 0 {
		return []recommendation.AuditorRecommendation{}, nil
	}

	candidates := make([]candidate, len(active))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i, a := range active {
		wg.Add(1)
		go func(idx int, a *auditor.Auditor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			candidates[idx] = s.evaluate(ctx, auditCtx, a)
		}(i, a)
	}
	wg.Wait()

	kept := candidates[:0]
	for _, c := range candidates {
		if c.score >= MinMatchScore {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		// Stable tie-break so identical inputs produce identical ordering.
		return kept[i].auditor.ID.String() < kept[j].auditor.ID.String()
	})
	if len(kept) > MaxRecommendations {
		kept = kept[:MaxRecommendations]
	}

	out := make([]recommendation.AuditorRecommendation, 0, len(kept))
	for _, c := range kept {
		out = append(out, s.buildRecommendation(auditCtx, c))
	}
	return out, nil
}

// evaluate computes every sub-score for one auditor.
func (s *service) evaluate(ctx context.Context, auditCtx *audit.Context, a *auditor.Auditor) candidate {
	profile := s.loadOrCreateProfile(ctx, a.ID)
	stats := s.loadHistory(ctx, a.ID, auditCtx)
	skills := assessSkills(auditCtx, profile)
	utilization := s.currentUtilization(ctx, a.ID)

	riskSpec := riskSpecializationScore(auditCtx, profile)
	experience := experienceScore(profile, stats)
	availability := availabilityScore(utilization)
	quality := profile.QualityConsistency
	reliability := profile.CompletionReliability
	if stats.SampleCount >= minHistorySamples {
		quality = stats.AvgQualityRating
		reliability = stats.SuccessRate
	}

	factors := []recommendation.FactorScore{
		{Name: "skill_alignment", Score: skills.alignment, Weight: weightSkillAlignment},
		{Name: "risk_specialization", Score: riskSpec, Weight: weightRiskSpecialization},
		{Name: "experience_level", Score: experience, Weight: weightExperienceLevel},
		{Name: "availability", Score: availability, Weight: weightAvailability},
		{Name: "quality_consistency", Score: quality, Weight: weightQualityConsistency},
		{Name: "reliability", Score: reliability, Weight: weightReliability},
	}

	score := 0.0
	for _, f := range factors {
		score += f.Score * f.Weight
	}

	return candidate{
		auditor:     a,
		profile:     profile,
		stats:       stats,
		skills:      skills,
		utilization: utilization,
		factors:     factors,
		score:       score,
	}
}

// loadOrCreateProfile fetches a profile, lazily creating the canonical
// default on first lookup. A failed save is logged and the default used.
func (s *service) loadOrCreateProfile(ctx context.Context, auditorID uuid.UUID) *auditor.ExpertiseProfile {
	profile, err := s.profiles.GetProfile(ctx, auditorID)
	if err == nil {
		return profile
	}
	if !errors.IsNotFound(err) {
		s.logger.Warn("profile lookup failed, using defaults",
			zap.String("auditor_id", auditorID.String()), zap.Error(err))
	}
	profile = auditor.DefaultExpertiseProfile(auditorID)
	if saveErr := s.profiles.SaveProfile(ctx, profile); saveErr != nil {
		s.logger.Warn("failed to persist default profile",
			zap.String("auditor_id", auditorID.String()), zap.Error(saveErr))
	}
	return profile
}

// loadHistory aggregates the auditor's performance over the lookback window.
func (s *service) loadHistory(ctx context.Context, auditorID uuid.UUID, auditCtx *audit.Context) *recommendation.HistoryStats {
	stats, err := s.history.Stats(ctx, recommendation.HistoryFilter{
		EntityType:   recommendation.EntityAuditor,
		EntityID:     auditorID,
		RiskCategory: auditCtx.Risk.Category,
		Since:        s.now().AddDate(0, -lookbackMonths, 0),
	})
	if err != nil {
		return &recommendation.HistoryStats{}
	}
	return stats
}

// currentUtilization sums active assignment hours against weekly capacity.
func (s *service) currentUtilization(ctx context.Context, auditorID uuid.UUID) float64 {
	assignments, err := s.assignments.ActiveAssignments(ctx, auditorID)
	if err != nil {
		return 0
	}
	total := 0.0
	for _, a := range assignments {
		total += a.EstimatedHours
	}
	return total / weeklyCapacityHours * 100
}

func riskSpecializationScore(auditCtx *audit.Context, profile *auditor.ExpertiseProfile) float64 {
	if !profile.SpecializedIn(auditCtx.Risk.Category) {
		return 40
	}
	if len(profile.RiskSpecializations) >= 3 {
		return 95
	}
	return 90
}

// experienceScore averages the four historical performance metrics,
// substituting profile aggregates when fewer than three samples exist.
func experienceScore(profile *auditor.ExpertiseProfile, stats *recommendation.HistoryStats) float64 {
	if stats.SampleCount >= minHistorySamples {
		return (stats.AvgQualityRating + stats.SuccessRate +
			stats.AvgTimelineAccuracy + stats.AvgEffectiveness) / 4
	}
	return (profile.QualityConsistency + profile.CompletionReliability +
		profile.AveragePerformance + profile.LearningVelocity) / 4
}

func availabilityScore(utilization float64) float64 {
	if utilization >= 100 {
		return 0
	}
	return 100 - utilization
}

func availabilityStatus(utilization float64) recommendation.AvailabilityStatus {
	switch {
	case utilization <= fullyAvailableMax:
		return recommendation.FullyAvailable
	case utilization <= partiallyAvailableMax:
		return recommendation.PartiallyAvailable
	default:
		return recommendation.Overloaded
	}
}

func (s *service) buildRecommendation(auditCtx *audit.Context, c candidate) recommendation.AuditorRecommendation {
	strengths, challenges := deriveStrengthsChallenges(auditCtx, c)
	prediction := s.predictFor(auditCtx, c)

	return recommendation.AuditorRecommendation{
		ID:           uuid.New(),
		AuditorID:    c.auditor.ID,
		Name:         c.auditor.Name,
		MatchScore:   values.NewScore(c.score),
		Factors:      c.factors,
		Availability: availabilityStatus(c.utilization),
		Utilization:  c.utilization,
		SkillGaps:    c.skills.gaps,
		Strengths:    strengths,
		Challenges:   challenges,
		Prediction:   prediction,
		Reasoning: fmt.Sprintf("%s matched %.1f for %s risk: skill alignment %.0f, utilization %.0f%%",
			c.auditor.Name, c.score, auditCtx.Risk.Category, c.skills.alignment, c.utilization),
		GeneratedAt: s.now(),
	}
}

// deriveStrengthsChallenges applies the fixed threshold checks.
func deriveStrengthsChallenges(auditCtx *audit.Context, c candidate) ([]string, []string) {
	var strengths, challenges []string

	if c.profile.CompletionReliability >= 90 {
		strengths = append(strengths, "excellent track record")
	}
	if c.profile.QualityConsistency >= 85 {
		strengths = append(strengths, "consistent quality delivery")
	}
	if c.profile.SpecializedIn(auditCtx.Risk.Category) {
		strengths = append(strengths, fmt.Sprintf("deep %s specialization", auditCtx.Risk.Category))
	}
	if c.utilization <= 50 {
		strengths = append(strengths, "ample capacity for new work")
	}

	if c.utilization > 80 {
		challenges = append(challenges, "high current workload")
	}
	if !c.profile.SpecializedIn(auditCtx.Risk.Category) {
		challenges = append(challenges, fmt.Sprintf("limited experience with %s", auditCtx.Risk.Category))
	}
	if c.profile.ComplexityHandling < auditCtx.Complexity {
		challenges = append(challenges, "complexity above demonstrated handling level")
	}
	for _, g := range c.skills.gaps {
		if g.Impact == "high" {
			challenges = append(challenges, describeGap(g))
		}
	}
	return strengths, challenges
}

// RecordOutcomes appends auditor history rows and folds outcomes into
// expertise profiles. Batches below the learning minimum are no-ops.
func (s *service) RecordOutcomes(ctx context.Context, batch []audit.LearningData) error {
	if len(batch) < minLearningBatch {
		s.logger.Debug("learning batch below minimum, auditor state unchanged",
			zap.Int("batch_size", len(batch)))
		return nil
	}

	records := make([]*recommendation.PerformanceRecord, 0, len(batch))
	for i := range batch {
		d := &batch[i]
		if d.ActualAuditorID == uuid.Nil {
			continue
		}
		accuracy := 100 - d.TimelineErrorRatio()*100
		if accuracy < 0 {
			accuracy = 0
		}
		records = append(records, &recommendation.PerformanceRecord{
			ID:               uuid.New(),
			EntityType:       recommendation.EntityAuditor,
			EntityID:         d.ActualAuditorID,
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

	s.profileMu.Lock()
	defer s.profileMu.Unlock()

	if len(records) > 0 {
		if err := s.history.Append(ctx, records); err != nil {
			return errors.NewPersistenceError("appending auditor history").WithCause(err)
		}
	}

	for i := range batch {
		s.updateProfile(ctx, &batch[i])
	}
	s.logger.Info("recorded auditor outcomes", zap.Int("batch_size", len(batch)))
	return nil
}

// updateProfile folds one completed audit into the auditor's profile as a
// slow EMA so single outcomes cannot swing aggregates.
func (s *service) updateProfile(ctx context.Context, d *audit.LearningData) {
	if d.ActualAuditorID == uuid.Nil {
		return
	}
	profile, err := s.profiles.GetProfile(ctx, d.ActualAuditorID)
	if err != nil {
		profile = auditor.DefaultExpertiseProfile(d.ActualAuditorID)
	}

	profile.AveragePerformance = ema(profile.AveragePerformance, d.QualityScore)
	profile.QualityConsistency = ema(profile.QualityConsistency, d.QualityScore)
	reliabilitySignal := 0.0
	if d.Success {
		reliabilitySignal = 100
	}
	profile.CompletionReliability = ema(profile.CompletionReliability, reliabilitySignal)

	// A successful engagement above the demonstrated complexity level raises
	// the handling level one notch.
	if d.Success && d.Context.Complexity > profile.ComplexityHandling {
		profile.ComplexityHandling = profile.ComplexityHandling + 1
	}
	if d.Success && d.QualityScore >= 80 && !profile.SpecializedIn(d.Context.Risk.Category) {
		profile.RiskSpecializations = append(profile.RiskSpecializations, d.Context.Risk.Category)
	}
	profile.UpdatedAt = s.now()

	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		s.logger.Warn("failed to save updated profile",
			zap.String("auditor_id", d.ActualAuditorID.String()), zap.Error(err))
	}
}

func ema(current, observed float64) float64 {
	return profileUpdateAlpha*observed + (1-profileUpdateAlpha)*current
}
