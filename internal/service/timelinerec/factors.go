package timelinerec

import (
	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Factor directions.
const (
	directionIncreases = "increases"
	directionDecreases = "decreases"
	directionVaries    = "varies"
)

// durationFactors builds the ordered list of signed multiplicative
// adjustments. Order is fixed so adjustment is reproducible.
func durationFactors(auditCtx *audit.Context, stats *recommendation.HistoryStats) []recommendation.DurationFactor {
	factors := []recommendation.DurationFactor{
		complexityFactor(auditCtx.Complexity),
		orgSizeFactor(auditCtx.Organization.Size),
		riskLevelFactor(auditCtx.Risk.InherentRiskScore),
	}
	if auditCtx.Timeline.Urgency == audit.UrgencyCritical {
		factors = append(factors, recommendation.DurationFactor{
			Name:      "critical_urgency",
			Direction: directionDecreases,
			Magnitude: -15,
		})
	}
	if stats.SampleCount >= minHistorySamples && stats.AvgCompletionHours > 0 &&
		stats.DurationStdDev/stats.AvgCompletionHours > 0.25 {
		factors = append(factors, recommendation.DurationFactor{
			Name:      "historical_variance",
			Direction: directionVaries,
			Magnitude: 10,
		})
	}
	return factors
}

func complexityFactor(level audit.ComplexityLevel) recommendation.DurationFactor {
	f := recommendation.DurationFactor{Name: "complexity"}
	switch level {
	case audit.ComplexitySimple:
		f.Direction, f.Magnitude = directionDecreases, -10
	case audit.ComplexityComplex:
		f.Direction, f.Magnitude = directionIncreases, 15
	case audit.ComplexityHighlyComplex:
		f.Direction, f.Magnitude = directionIncreases, 30
	default:
		f.Direction, f.Magnitude = directionVaries, 0
	}
	return f
}

func orgSizeFactor(size audit.OrgSize) recommendation.DurationFactor {
	f := recommendation.DurationFactor{Name: "organization_size"}
	switch size {
	case audit.OrgSmall:
		f.Direction, f.Magnitude = directionDecreases, -5
	case audit.OrgLarge:
		f.Direction, f.Magnitude = directionIncreases, 10
	case audit.OrgEnterprise:
		f.Direction, f.Magnitude = directionIncreases, 15
	default:
		f.Direction, f.Magnitude = directionVaries, 0
	}
	return f
}

func riskLevelFactor(inherentRisk float64) recommendation.DurationFactor {
	f := recommendation.DurationFactor{Name: "risk_level"}
	switch {
	case inherentRisk >= 20:
		f.Direction, f.Magnitude = directionIncreases, 10
	case inherentRisk >= 15:
		f.Direction, f.Magnitude = directionIncreases, 5
	default:
		f.Direction, f.Magnitude = directionVaries, 0
	}
	return f
}

// applyFactors multiplies the factors into the base in sequence, never
// letting the result drop below half the base.
func applyFactors(base float64, factors []recommendation.DurationFactor) float64 {
	adjusted := base
	for _, f := range factors {
		if f.Direction == directionVaries {
			continue
		}
		adjusted *= 1 + f.Magnitude/100
	}
	if min := base * 0.5; adjusted < min {
		return min
	}
	return adjusted
}

// certaintyBonus is the per-factor contribution to confidence: directional
// factors carry more certainty than "varies" factors.
func certaintyBonus(f recommendation.DurationFactor) float64 {
	if f.Direction == directionVaries {
		return 10
	}
	return 20
}
