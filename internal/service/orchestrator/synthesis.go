package orchestrator

import (
	"fmt"
	"strings"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

// Success-probability adjustments around the 80-point baseline.
const (
	successBaseline = 80.0
	successFloor    = 30.0
	successCeiling  = 95.0
)

// assessRisk derives delivery risk from context flags plus the top auditor's
// outlook.
func assessRisk(auditCtx *audit.Context, auditorRecs []recommendation.AuditorRecommendation) recommendation.RiskAssessment {
	var factors []recommendation.RiskFactor

	if auditCtx.Complexity >= audit.ComplexityComplex {
		factors = append(factors, recommendation.RiskFactor{
			Name:       "Elevated Complexity",
			Severity:   complexitySeverity(auditCtx.Complexity),
			Mitigation: "assign senior staff and schedule interim reviews",
		})
	}
	if auditCtx.Timeline.Urgency == audit.UrgencyCritical {
		factors = append(factors, recommendation.RiskFactor{
			Name:       "Critical Timeline",
			Severity:   "high",
			Mitigation: "front-load fieldwork and pre-clear stakeholder availability",
		})
	}
	if auditCtx.ResourceScarce() {
		factors = append(factors, recommendation.RiskFactor{
			Name:       "Scarce Resources",
			Severity:   "medium",
			Mitigation: "secure tooling or cross-team support before fieldwork starts",
		})
	}
	if len(auditorRecs) > 0 && auditorRecs[0].Availability == recommendation.Overloaded {
		factors = append(factors, recommendation.RiskFactor{
			Name:       "Constrained Staffing",
			Severity:   "medium",
			Mitigation: "rebalance the top candidate's active assignments",
		})
	}

	level := "low"
	switch {
	case countHigh(factors) >= 2:
		level = "high"
	case len(factors) >= 2 || countHigh(factors) == 1:
		level = "medium"
	}

	contingency := "standard buffer absorbs expected variance"
	if level != "low" {
		contingency = "weekly risk checkpoint with pre-approved scope reduction options"
	}
	return recommendation.RiskAssessment{
		Level:       level,
		Factors:     factors,
		Contingency: contingency,
	}
}

func complexitySeverity(level audit.ComplexityLevel) string {
	if level == audit.ComplexityHighlyComplex {
		return "high"
	}
	return "medium"
}

func countHigh(factors []recommendation.RiskFactor) int {
	n := 0
	for _, f := range factors {
		if f.Severity == "high" {
			n++
		}
	}
	return n
}

// alternativeStrategies returns the two pre-built execution alternatives.
func alternativeStrategies() []recommendation.AlternativeStrategy {
	return []recommendation.AlternativeStrategy{
		{
			Name:        "phased",
			Description: "split the engagement into sequential scoped phases with a go/no-go between each",
			Pros: []string{
				"early findings surface before full budget is committed",
				"scope can shrink without renegotiating the whole engagement",
			},
			Cons: []string{
				"longer elapsed calendar time",
				"handover overhead between phases",
			},
			ExpectedOutcome: "slightly lower total risk at the cost of schedule length",
		},
		{
			Name:        "team_based",
			Description: "staff a small team across skill areas instead of a single lead auditor",
			Pros: []string{
				"skill gaps covered by complementary members",
				"parallel fieldwork shortens elapsed time",
			},
			Cons: []string{
				"higher coordination cost",
				"depends on multiple auditors' availability windows",
			},
			ExpectedOutcome: "faster delivery when staffing allows, with added coordination overhead",
		},
	}
}

// implementationPlan splits the recommended duration into the fixed
// planning/execution/review phases with quality gates.
func implementationPlan(durationHours float64) []recommendation.ImplementationPhase {
	return []recommendation.ImplementationPhase{
		{
			Name:  "planning",
			Hours: durationHours * 0.20,
			Deliverables: []string{
				"engagement plan and scoped procedure list",
				"stakeholder schedule",
			},
			Gates: []recommendation.QualityGate{
				{Name: "plan_approved", Criteria: "audit owner signs off scope, staffing, and milestones"},
			},
		},
		{
			Name:  "execution",
			Hours: durationHours * 0.60,
			Deliverables: []string{
				"completed procedures with working papers",
				"preliminary findings log",
			},
			Gates: []recommendation.QualityGate{
				{Name: "fieldwork_complete", Criteria: "all planned procedures executed or formally descoped"},
				{Name: "evidence_reviewed", Criteria: "working papers pass supervisory review"},
			},
		},
		{
			Name:  "review",
			Hours: durationHours * 0.20,
			Deliverables: []string{
				"draft and final report",
				"management action plan",
			},
			Gates: []recommendation.QualityGate{
				{Name: "report_issued", Criteria: "final report accepted by the audit committee"},
			},
		},
	}
}

// successProbability starts at the 80-point baseline and moves with each
// recommender's confidence and the assessed risk level, clamped to [30, 95].
func successProbability(
	procedures []recommendation.ProcedureRecommendation,
	auditorRecs []recommendation.AuditorRecommendation,
	timeline *recommendation.TimelineRecommendation,
	risk recommendation.RiskAssessment,
) float64 {
	p := successBaseline
	if len(procedures) > 0 {
		switch score := procedures[0].Score.Float64(); {
		case score >= 85:
			p += 5
		case score < 75:
			p -= 5
		}
	} else {
		p -= 5
	}
	if len(auditorRecs) > 0 {
		switch score := auditorRecs[0].MatchScore.Float64(); {
		case score >= 85:
			p += 5
		case score < 70:
			p -= 5
		}
	} else {
		p -= 5
	}
	if timeline != nil {
		switch conf := timeline.Confidence.Float64(); {
		case conf >= 75:
			p += 3
		case conf < 55:
			p -= 5
		}
	} else {
		p -= 5
	}
	switch risk.Level {
	case "high":
		p -= 10
	case "medium":
		p -= 5
	}
	if p < successFloor {
		return successFloor
	}
	if p > successCeiling {
		return successCeiling
	}
	return p
}

// synthesizeReasoning builds the one-paragraph explanation.
func synthesizeReasoning(
	procedures []recommendation.ProcedureRecommendation,
	auditorRecs []recommendation.AuditorRecommendation,
	timeline *recommendation.TimelineRecommendation,
	overall values.Score,
) string {
	parts := make([]string, 0, 4)
	if len(procedures) > 0 {
		parts = append(parts, fmt.Sprintf("%d procedures led by %q (%.1f)", len(procedures), procedures[0].Name, procedures[0].Score.Float64()))
	} else {
		parts = append(parts, "no procedure cleared the confidence threshold")
	}
	if len(auditorRecs) > 0 {
		parts = append(parts, fmt.Sprintf("top auditor match %.1f", auditorRecs[0].MatchScore.Float64()))
	} else {
		parts = append(parts, "no auditor cleared the match threshold")
	}
	if timeline != nil {
		parts = append(parts, fmt.Sprintf("%.0fh recommended with %.0fh buffer", timeline.RecommendedHours, timeline.BufferHours))
	}
	parts = append(parts, fmt.Sprintf("overall score %.1f", overall.Float64()))
	return strings.Join(parts, "; ")
}
