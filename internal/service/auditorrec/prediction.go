package auditorrec

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

// Success probability bounds and baseline.
const (
	successBaseline = 75.0
	successFloor    = 50.0
	successCeiling  = 95.0
)

// PredictPerformance estimates how an auditor would fare on a context. An
// unknown auditor yields the canonical default estimate rather than an
// error.
func (s *service) PredictPerformance(ctx context.Context, auditorID uuid.UUID, auditCtx *audit.Context) (*recommendation.PerformancePrediction, error) {
	a, err := s.auditors.GetAuditor(ctx, auditorID)
	if err != nil || a == nil {
		s.logger.Debug("auditor not found, returning default prediction")
		return defaultPrediction(auditorID, auditCtx), nil
	}
	c := s.evaluate(ctx, auditCtx, a)
	return s.predictFor(auditCtx, c), nil
}

// predictFor computes the prediction from an already-evaluated candidate.
func (s *service) predictFor(auditCtx *audit.Context, c candidate) *recommendation.PerformancePrediction {
	base := c.profile.AveragePerformance
	if s.model != nil {
		base = s.model.PredictAuditorPerformance(auditCtx, c.profile)
	} else {
		if c.profile.SpecializedIn(auditCtx.Risk.Category) {
			base += 5
		}
		if c.profile.ComplexityHandling >= auditCtx.Complexity {
			base += 3
		}
	}
	quality := base
	if c.stats.SampleCount >= minHistorySamples {
		quality = 0.7*base + 0.3*c.stats.AvgQualityRating
	}

	return &recommendation.PerformancePrediction{
		AuditorID:          c.auditor.ID,
		ExpectedQuality:    values.NewScore(quality),
		ExpectedHours:      s.expectedHours(auditCtx, c),
		SuccessProbability: s.successProbability(auditCtx, c),
		RiskFactors:        deriveRiskFactors(auditCtx, c),
	}
}

// expectedHours starts from 80% of the allowed duration and shifts 5-15%
// by historical timeline accuracy.
func (s *service) expectedHours(auditCtx *audit.Context, c candidate) float64 {
	hours := auditCtx.Timeline.MaxDurationHours * 0.8
	if c.stats.SampleCount >= minHistorySamples {
		switch {
		case c.stats.AvgTimelineAccuracy >= 90:
			hours *= 0.95
		case c.stats.AvgTimelineAccuracy >= 75:
			hours *= 1.05
		default:
			hours *= 1.15
		}
	}
	return hours
}

// successProbability adjusts the 75 baseline by reliability, specialization,
// quality, and complexity fit, clamped to [50, 95].
func (s *service) successProbability(auditCtx *audit.Context, c candidate) float64 {
	p := successBaseline
	switch {
	case c.profile.CompletionReliability >= 90:
		p += 5
	case c.profile.CompletionReliability < 70:
		p -= 5
	}
	if c.profile.SpecializedIn(auditCtx.Risk.Category) {
		p += 5
	}
	if c.profile.QualityConsistency >= 85 {
		p += 3
	}
	if c.profile.ComplexityHandling < auditCtx.Complexity {
		p -= 8
	}
	return math.Min(successCeiling, math.Max(successFloor, p))
}

// deriveRiskFactors flags assignment risks with mitigation suggestions.
func deriveRiskFactors(auditCtx *audit.Context, c candidate) []recommendation.RiskFactor {
	var factors []recommendation.RiskFactor

	if c.utilization > 80 {
		factors = append(factors, recommendation.RiskFactor{
			Name:       "High Workload",
			Severity:   "high",
			Mitigation: "rebalance active assignments before the engagement starts",
		})
	}
	if !c.profile.SpecializedIn(auditCtx.Risk.Category) {
		factors = append(factors, recommendation.RiskFactor{
			Name:       "Limited Expertise",
			Severity:   "medium",
			Mitigation: "pair with a specialist reviewer for key procedures",
		})
	}
	if auditCtx.Timeline.Urgency == audit.UrgencyCritical {
		factors = append(factors, recommendation.RiskFactor{
			Name:       "Critical Timeline",
			Severity:   "high",
			Mitigation: "front-load planning and add mid-engagement checkpoints",
		})
	}
	if auditCtx.Complexity >= audit.ComplexityComplex {
		factors = append(factors, recommendation.RiskFactor{
			Name:       "High Complexity Delays",
			Severity:   "medium",
			Mitigation: "schedule an explicit complexity buffer and escalation path",
		})
	}
	return factors
}

// defaultPrediction is the fixed estimate used when the auditor is unknown.
func defaultPrediction(auditorID uuid.UUID, auditCtx *audit.Context) *recommendation.PerformancePrediction {
	return &recommendation.PerformancePrediction{
		AuditorID:          auditorID,
		ExpectedQuality:    values.NewScore(75),
		ExpectedHours:      auditCtx.Timeline.MaxDurationHours * 0.8,
		SuccessProbability: successBaseline,
		RiskFactors: []recommendation.RiskFactor{
			{
				Name:       "Unknown Auditor",
				Severity:   "medium",
				Mitigation: "confirm availability and skills before assignment",
			},
		},
	}
}
