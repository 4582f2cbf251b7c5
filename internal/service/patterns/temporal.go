package patterns

import (
	"fmt"
	"math"
	"time"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// detectTemporalPatterns buckets quality by calendar month of completion and
// flags seasonality when the spread across months is wide enough. Months are
// grouped across years.
func (e *engine) detectTemporalPatterns(data []audit.LearningData) []*recommendation.Pattern {
	if len(data) < minClassPoints {
		return nil
	}

	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for i := range data {
		m := data[i].CompletedAt.Month()
		sums[m] += data[i].QualityScore
		counts[m]++
	}
	if len(counts) < minTemporalMonths {
		return nil
	}

	averages := make(map[time.Month]float64, len(counts))
	total := 0.0
	for m, c := range counts {
		averages[m] = sums[m] / float64(c)
		total += averages[m]
	}
	mean := total / float64(len(averages))

	variance := 0.0
	best, worst := time.January, time.January
	bestQ, worstQ := math.Inf(-1), math.Inf(1)
	for m, avg := range averages {
		variance += (avg - mean) * (avg - mean)
		if avg > bestQ || (avg == bestQ && m < best) {
			best, bestQ = m, avg
		}
		if avg < worstQ || (avg == worstQ && m < worst) {
			worst, worstQ = m, avg
		}
	}
	stdDev := math.Sqrt(variance / float64(len(averages)))
	if stdDev <= temporalStdDevMin {
		return nil
	}

	p := e.newPattern(recommendation.PatternTemporal,
		"seasonal_quality_swing",
		fmt.Sprintf("average quality swings from %.1f in %s to %.1f in %s (std dev %.1f across %d months)",
			worstQ, worst, bestQ, best, stdDev, len(averages)),
		math.Min(strengthCap, stdDev/20),
		len(data))
	p.Attributes = map[string]any{
		"best_month":     best.String(),
		"worst_month":    worst.String(),
		"best_quality":   bestQ,
		"worst_quality":  worstQ,
		"quality_stddev": stdDev,
	}
	p.Actions = []string{
		fmt.Sprintf("investigate staffing and workload around %s", worst),
		fmt.Sprintf("schedule high-stakes audits toward %s when possible", best),
	}
	return []*recommendation.Pattern{p}
}
