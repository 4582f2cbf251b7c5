package modelregistry

import (
	"math"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
)

// Deterministic fallback heuristics. These stand in when no model-backed
// prediction path is available and are intentionally independent of the
// stored models' state.

// PredictProcedureEffectiveness estimates template effectiveness for a
// context from the template's base effectiveness and context alignment.
func (s *service) PredictProcedureEffectiveness(auditCtx *audit.Context, tmpl *procedure.Template) float64 {
	score := tmpl.BaseEffectiveness
	if tmpl.AppliesTo(auditCtx) {
		score += 8
	}
	switch auditCtx.Complexity {
	case audit.ComplexityComplex:
		score -= 4
	case audit.ComplexityHighlyComplex:
		score -= 8
	}
	if auditCtx.Risk.InherentRiskScore >= 20 {
		score -= 3
	}
	return clamp(score, 0, 100)
}

// PredictAuditorPerformance estimates quality delivered by a profile on a
// context from its aggregates and specialization fit.
func (s *service) PredictAuditorPerformance(auditCtx *audit.Context, profile *auditor.ExpertiseProfile) float64 {
	score := profile.AveragePerformance
	if profile.SpecializedIn(auditCtx.Risk.Category) {
		score += 5
	}
	if profile.ComplexityHandling >= auditCtx.Complexity {
		score += 3
	} else {
		score -= 6
	}
	if profile.HasIndustryExperience(auditCtx.Organization.Industry) {
		score += 2
	}
	return clamp(score, 0, 100)
}

// PredictTimelineDuration estimates duration in hours straight from the
// context's constraints and complexity.
func (s *service) PredictTimelineDuration(auditCtx *audit.Context) float64 {
	hours := auditCtx.Timeline.MaxDurationHours * 0.8
	switch auditCtx.Complexity {
	case audit.ComplexitySimple:
		hours *= 0.9
	case audit.ComplexityComplex:
		hours *= 1.15
	case audit.ComplexityHighlyComplex:
		hours *= 1.3
	}
	return math.Max(4, hours)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
