package procedurerec

import (
	"math"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Composite weights. Preserved verbatim from the tuned heuristic; do not
// adjust individually.
const (
	weightHistoricalSuccess = 0.30
	weightContextMatch      = 0.25
	weightBestPractice      = 0.20
	weightTimeEfficiency    = 0.15
	weightQuality           = 0.10
)

// Context-match component weights, summing to 100.
const (
	matchWeightRisk       = 30.0
	matchWeightComplexity = 25.0
	matchWeightIndustry   = 20.0
	matchWeightOrgSize    = 15.0
	matchWeightCompliance = 10.0
)

const (
	// ConfidenceThreshold is the minimum composite score a template must
	// reach to be recommended.
	ConfidenceThreshold = 70.0
	// MaxRecommendations caps the returned list.
	MaxRecommendations = 5
	// neutralFactorScore stands in for history-derived factors when no
	// history exists.
	neutralFactorScore = 50.0
	// scoreEpsilon absorbs float rounding at the threshold boundary.
	scoreEpsilon = 1e-9

	maxAlternatives     = 3
	maxContextualFactors = 4
)

// factorScores holds the five component scores for one template.
type factorScores struct {
	historicalSuccess float64
	contextMatch      float64
	bestPractice      float64
	timeEfficiency    float64
	quality           float64
}

func (f factorScores) composite() float64 {
	return weightHistoricalSuccess*f.historicalSuccess +
		weightContextMatch*f.contextMatch +
		weightBestPractice*f.bestPractice +
		weightTimeEfficiency*f.timeEfficiency +
		weightQuality*f.quality
}

func (f factorScores) breakdown() []recommendation.FactorScore {
	return []recommendation.FactorScore{
		{Name: "historical_success", Score: f.historicalSuccess, Weight: weightHistoricalSuccess},
		{Name: "context_match", Score: f.contextMatch, Weight: weightContextMatch},
		{Name: "best_practice_alignment", Score: f.bestPractice, Weight: weightBestPractice},
		{Name: "time_efficiency", Score: f.timeEfficiency, Weight: weightTimeEfficiency},
		{Name: "quality_potential", Score: f.quality, Weight: weightQuality},
	}
}

// contextMatchScore is the weighted sum of per-dimension matches. An empty
// declaration list on the template counts as a match (generic coverage).
func contextMatchScore(auditCtx *audit.Context, tmpl *procedure.Template) float64 {
	score := 0.0
	if matchesRisk(auditCtx, tmpl) {
		score += matchWeightRisk
	}
	if matchesComplexity(auditCtx, tmpl) {
		score += matchWeightComplexity
	}
	if matchesIndustry(auditCtx, tmpl) {
		score += matchWeightIndustry
	}
	if matchesOrgSize(auditCtx, tmpl) {
		score += matchWeightOrgSize
	}
	if matchesCompliance(auditCtx, tmpl) {
		score += matchWeightCompliance
	}
	return score
}

func matchesRisk(auditCtx *audit.Context, tmpl *procedure.Template) bool {
	if len(tmpl.RiskCategories) == 0 {
		return true
	}
	for _, c := range tmpl.RiskCategories {
		if c == auditCtx.Risk.Category {
			return true
		}
	}
	return false
}

func matchesComplexity(auditCtx *audit.Context, tmpl *procedure.Template) bool {
	if len(tmpl.ComplexityLevels) == 0 {
		return true
	}
	for _, l := range tmpl.ComplexityLevels {
		if l == auditCtx.Complexity {
			return true
		}
	}
	return false
}

func matchesIndustry(auditCtx *audit.Context, tmpl *procedure.Template) bool {
	if len(tmpl.Industries) == 0 {
		return true
	}
	for _, i := range tmpl.Industries {
		if i == auditCtx.Organization.Industry {
			return true
		}
	}
	return false
}

func matchesOrgSize(auditCtx *audit.Context, tmpl *procedure.Template) bool {
	if len(tmpl.OrgSizes) == 0 {
		return true
	}
	for _, s := range tmpl.OrgSizes {
		if s == auditCtx.Organization.Size {
			return true
		}
	}
	return false
}

func matchesCompliance(auditCtx *audit.Context, tmpl *procedure.Template) bool {
	if len(tmpl.ComplianceLevels) == 0 {
		return true
	}
	for _, c := range tmpl.ComplianceLevels {
		if c == auditCtx.Organization.ComplianceLevel {
			return true
		}
	}
	return false
}

// bestPracticeScore averages the success rates of matching best-practice
// records, defaulting to neutral when none match.
func bestPracticeScore(auditCtx *audit.Context, practices []*procedure.BestPractice) float64 {
	sum, n := 0.0, 0
	for _, p := range practices {
		if p.Matches(auditCtx) {
			sum += p.SuccessRate
			n++
		}
	}
	if n == 0 {
		return neutralFactorScore
	}
	return sum / float64(n)
}

// timeEfficiencyScore measures how closely historical completion time tracks
// the template's estimate. With no history there is no deviation evidence,
// so the factor scores full.
func timeEfficiencyScore(tmpl *procedure.Template, stats *recommendation.HistoryStats) float64 {
	if stats == nil || stats.SampleCount == 0 || tmpl.EstimatedHours <= 0 {
		return 100
	}
	deviation := math.Abs(stats.AvgCompletionHours-tmpl.EstimatedHours) / tmpl.EstimatedHours
	return math.Max(0, 100-deviation*100)
}

// complexityHoursMultiplier scales a template's estimate by context
// complexity.
func complexityHoursMultiplier(level audit.ComplexityLevel) float64 {
	switch level {
	case audit.ComplexitySimple:
		return 0.9
	case audit.ComplexityComplex:
		return 1.2
	case audit.ComplexityHighlyComplex:
		return 1.4
	default:
		return 1.0
	}
}

// orgSizeHoursMultiplier scales a template's estimate by organization size.
func orgSizeHoursMultiplier(size audit.OrgSize) float64 {
	switch size {
	case audit.OrgSmall:
		return 0.9
	case audit.OrgLarge:
		return 1.15
	case audit.OrgEnterprise:
		return 1.3
	default:
		return 1.0
	}
}

// maturityEffectivenessDelta adjusts predicted effectiveness by the audited
// organization's maturity level.
func maturityEffectivenessDelta(maturity string) float64 {
	switch maturity {
	case "optimized", "advanced":
		return 5
	case "initial":
		return -5
	default:
		return 0
	}
}

// complexityEffectivenessDelta adjusts predicted effectiveness downward for
// harder engagements.
func complexityEffectivenessDelta(level audit.ComplexityLevel) float64 {
	switch level {
	case audit.ComplexityComplex:
		return -5
	case audit.ComplexityHighlyComplex:
		return -10
	default:
		return 0
	}
}
