package audit

import (
	"time"

	"github.com/google/uuid"
)

// FactorInfluence marks how a contextual factor affected an outcome.
type FactorInfluence string

const (
	InfluencePositive FactorInfluence = "positive"
	InfluenceNegative FactorInfluence = "negative"
	InfluenceNeutral  FactorInfluence = "neutral"
)

// ContextFactor is one named condition observed during a completed audit.
type ContextFactor struct {
	Name      string          `json:"name"`
	Influence FactorInfluence `json:"influence"`
}

// LearningData is the post-hoc record for one completed audit: what was
// recommended, what actually happened, and how it turned out. Records are
// immutable after creation and consumed exactly once by the learning
// pipeline, then retained as historical evidence.
type LearningData struct {
	ID      uuid.UUID `json:"id"`
	AuditID uuid.UUID `json:"audit_id"`

	RecommendedProcedures []uuid.UUID `json:"recommended_procedures"`
	ActualProcedures      []uuid.UUID `json:"actual_procedures"`
	RecommendedAuditorID  uuid.UUID   `json:"recommended_auditor_id"`
	ActualAuditorID       uuid.UUID   `json:"actual_auditor_id"`

	PredictedDurationHours float64 `json:"predicted_duration_hours"`
	ActualDurationHours    float64 `json:"actual_duration_hours"`

	QualityScore           float64         `json:"quality_score"`
	Success                bool            `json:"success"`
	RecommendationFollowed bool            `json:"recommendation_followed"`
	ContextFactors         []ContextFactor `json:"context_factors"`

	Context     Context   `json:"context"`
	CompletedAt time.Time `json:"completed_at"`
}

// AuditorFollowed reports whether the assigned auditor matched the
// recommendation.
func (d *LearningData) AuditorFollowed() bool {
	return d.RecommendedAuditorID == d.ActualAuditorID
}

// TimelineErrorRatio returns |actual-predicted|/predicted, or 0 when no
// prediction exists.
func (d *LearningData) TimelineErrorRatio() float64 {
	if d.PredictedDurationHours <= 0 {
		return 0
	}
	diff := d.ActualDurationHours - d.PredictedDurationHours
	if diff < 0 {
		diff = -diff
	}
	return diff / d.PredictedDurationHours
}
