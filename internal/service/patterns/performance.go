package patterns

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// detectPerformancePatterns mines quality>=85 records for characteristics
// shared by most of the class, plus an under-budget efficiency pattern over
// the whole corpus.
func (e *engine) detectPerformancePatterns(data []audit.LearningData) []*recommendation.Pattern {
	top := make([]*audit.LearningData, 0, len(data))
	for i := range data {
		if data[i].QualityScore >= performanceQuality {
			top = append(top, &data[i])
		}
	}
	if len(top) < minClassPoints {
		return nil
	}

	var out []*recommendation.Pattern

	// Characteristics: same auditor, recommendation followed, positive
	// context factors.
	auditorCounts := make(map[uuid.UUID]int)
	factorCounts := make(map[string]int)
	followed := 0
	for _, d := range top {
		auditorCounts[d.ActualAuditorID]++
		if d.RecommendationFollowed {
			followed++
		}
		for _, f := range d.ContextFactors {
			if f.Influence == audit.InfluencePositive {
				factorCounts[f.Name]++
			}
		}
	}

	minCount := int(performanceTraitShare * float64(len(top)))
	if minCount < 1 {
		minCount = 1
	}
	for auditorID, count := range auditorCounts {
		if count < minCount || auditorID == uuid.Nil {
			continue
		}
		p := e.newPattern(recommendation.PatternPerformance,
			"dominant_top_performer",
			fmt.Sprintf("auditor %s delivered %d of %d top-quality audits", auditorID, count, len(top)),
			countStrength(count, len(top)),
			count)
		p.Attributes = map[string]any{"auditor_id": auditorID}
		p.Actions = []string{"study this auditor's approach for training material"}
		out = append(out, p)
	}
	if followed >= minCount {
		p := e.newPattern(recommendation.PatternPerformance,
			"adherence_drives_quality",
			fmt.Sprintf("%d of %d top-quality audits followed the recommendation", followed, len(top)),
			countStrength(followed, len(top)),
			followed)
		p.Actions = []string{"reinforce recommendation adoption with audit owners"}
		out = append(out, p)
	}
	for name, count := range factorCounts {
		if count < minCount {
			continue
		}
		p := e.newPattern(recommendation.PatternPerformance,
			"shared_positive_factor",
			fmt.Sprintf("factor %q present in %d of %d top-quality audits", name, count, len(top)),
			countStrength(count, len(top)),
			count)
		p.Attributes = map[string]any{"factor": name}
		p.Actions = []string{fmt.Sprintf("replicate %q on upcoming audits where feasible", name)}
		out = append(out, p)
	}

	// Efficiency: finished at or under the predicted duration with solid
	// quality, measured over the full corpus.
	efficient := 0
	for i := range data {
		d := &data[i]
		if d.PredictedDurationHours > 0 &&
			d.ActualDurationHours <= d.PredictedDurationHours &&
			d.QualityScore >= efficiencyQuality {
			efficient++
		}
	}
	if efficient >= minClassPoints {
		p := e.newPattern(recommendation.PatternPerformance,
			"efficient_delivery",
			fmt.Sprintf("%d of %d audits finished at or under the predicted duration without quality loss", efficient, len(data)),
			countStrength(efficient, len(data)),
			efficient)
		p.Actions = []string{"consider tightening duration estimates for comparable contexts"}
		out = append(out, p)
	}

	return out
}
