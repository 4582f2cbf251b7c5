package patterns

import (
	"fmt"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// detectFailurePatterns mines low-quality or failed records for negative
// context factors and recommendation deviation.
func (e *engine) detectFailurePatterns(data []audit.LearningData) []*recommendation.Pattern {
	failures := make([]*audit.LearningData, 0, len(data))
	for i := range data {
		if !data[i].Success || data[i].QualityScore < failureQuality {
			failures = append(failures, &data[i])
		}
	}
	if len(failures) < minClassPoints {
		return nil
	}

	var out []*recommendation.Pattern

	factorCounts := make(map[string]int)
	deviated := 0
	for _, d := range failures {
		for _, f := range d.ContextFactors {
			if f.Influence == audit.InfluenceNegative {
				factorCounts[f.Name]++
			}
		}
		if !d.RecommendationFollowed {
			deviated++
		}
	}

	minCount := int(failureFactorShare * float64(len(failures)))
	if minCount < 1 {
		minCount = 1
	}
	for name, count := range factorCounts {
		if count < minCount {
			continue
		}
		p := e.newPattern(recommendation.PatternFailure,
			"recurring_failure_factor",
			fmt.Sprintf("factor %q present in %d of %d failed or low-quality audits", name, count, len(failures)),
			countStrength(count, len(failures)),
			count)
		p.Attributes = map[string]any{"factor": name}
		p.Actions = []string{fmt.Sprintf("screen upcoming audits for %q and plan mitigation up front", name)}
		out = append(out, p)
	}

	if deviated >= minCount {
		p := e.newPattern(recommendation.PatternFailure,
			"recommendation_deviation",
			fmt.Sprintf("%d of %d failed or low-quality audits deviated from the recommendation", deviated, len(failures)),
			countStrength(deviated, len(failures)),
			deviated)
		p.Actions = []string{"review why recommendations were overridden on failed audits"}
		out = append(out, p)
	}

	return out
}
