package patterns

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// detectSuccessPatterns mines quality>=80 successful records for recurring
// auditors, recurring procedures, and overall timeline accuracy.
func (e *engine) detectSuccessPatterns(data []audit.LearningData) []*recommendation.Pattern {
	successes := make([]*audit.LearningData, 0, len(data))
	for i := range data {
		if data[i].Success && data[i].QualityScore >= successQuality {
			successes = append(successes, &data[i])
		}
	}
	if len(successes) < minClassPoints {
		return nil
	}

	var out []*recommendation.Pattern

	auditorCounts := make(map[uuid.UUID]int)
	procedureCounts := make(map[uuid.UUID]int)
	accurate := 0
	for _, d := range successes {
		auditorCounts[d.ActualAuditorID]++
		for _, p := range d.ActualProcedures {
			procedureCounts[p]++
		}
		if withinTolerance(d) {
			accurate++
		}
	}

	for auditorID, count := range auditorCounts {
		if count < minAppearances || auditorID == uuid.Nil {
			continue
		}
		p := e.newPattern(recommendation.PatternSuccess,
			"high_performing_auditor",
			fmt.Sprintf("auditor %s delivered %d of %d high-quality successful audits", auditorID, count, len(successes)),
			countStrength(count, len(successes)),
			count)
		p.Attributes = map[string]any{"auditor_id": auditorID}
		p.Actions = []string{"prioritize this auditor for comparable contexts"}
		out = append(out, p)
	}

	for procedureID, count := range procedureCounts {
		if count < minAppearances || procedureID == uuid.Nil {
			continue
		}
		p := e.newPattern(recommendation.PatternSuccess,
			"effective_procedure",
			fmt.Sprintf("procedure %s appeared in %d of %d high-quality successful audits", procedureID, count, len(successes)),
			countStrength(count, len(successes)),
			count)
		p.Attributes = map[string]any{"procedure_id": procedureID}
		p.Actions = []string{"raise this procedure's ranking for comparable contexts"}
		out = append(out, p)
	}

	if share := float64(accurate) / float64(len(successes)); share >= timelineAccuracyShare {
		p := e.newPattern(recommendation.PatternSuccess,
			"timeline_accuracy",
			fmt.Sprintf("%d of %d successful audits finished within %.0f%% of the predicted duration", accurate, len(successes), timelineTolerance*100),
			countStrength(accurate, len(successes)),
			accurate)
		p.Actions = []string{"keep current duration estimation parameters"}
		out = append(out, p)
	}

	return out
}
