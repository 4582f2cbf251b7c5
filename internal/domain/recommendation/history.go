package recommendation

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
)

// EntityType distinguishes what a performance record describes.
type EntityType string

const (
	EntityProcedure EntityType = "procedure"
	EntityAuditor   EntityType = "auditor"
	EntityTimeline  EntityType = "timeline"
)

// PerformanceRecord is one append-only history row derived from a closed
// audit. Aggregations over these rows feed every recommender.
type PerformanceRecord struct {
	ID         uuid.UUID  `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	AuditID    uuid.UUID  `json:"audit_id"`

	Effectiveness    float64 `json:"effectiveness"`     // 0-100
	CompletionHours  float64 `json:"completion_hours"`
	QualityRating    float64 `json:"quality_rating"`    // 0-100
	TimelineAccuracy float64 `json:"timeline_accuracy"` // 0-100, closeness to prediction
	Success          bool    `json:"success"`

	// Context slice for filtered aggregation.
	RiskCategory audit.RiskCategory    `json:"risk_category"`
	Complexity   audit.ComplexityLevel `json:"complexity"`
	Industry     string                `json:"industry"`
	OrgSize      audit.OrgSize         `json:"org_size"`

	RecordedAt time.Time `json:"recorded_at"`
}

// HistoryFilter selects performance records for aggregation.
type HistoryFilter struct {
	EntityType   EntityType
	EntityID     uuid.UUID
	RiskCategory audit.RiskCategory
	Complexity   *audit.ComplexityLevel
	Industry     string
	OrgSize      audit.OrgSize
	Since        time.Time
}

// HistoryStats is the windowed aggregate over matching records.
type HistoryStats struct {
	SampleCount         int     `json:"sample_count"`
	SuccessRate         float64 `json:"success_rate"`          // 0-100
	AvgEffectiveness    float64 `json:"avg_effectiveness"`     // 0-100
	AvgCompletionHours  float64 `json:"avg_completion_hours"`
	AvgQualityRating    float64 `json:"avg_quality_rating"`    // 0-100
	AvgTimelineAccuracy float64 `json:"avg_timeline_accuracy"` // 0-100
	DurationStdDev      float64 `json:"duration_std_dev"`
	DelayRate           float64 `json:"delay_rate"` // 0-100, actual > predicted
}

// Feedback is one user reaction to a stored recommendation.
type Feedback struct {
	ID               uuid.UUID `json:"id"`
	RecommendationID uuid.UUID `json:"recommendation_id"`
	AuditID          uuid.UUID `json:"audit_id"`
	UserID           uuid.UUID `json:"user_id"`
	Rating           int       `json:"rating"` // 1-5
	Followed         bool      `json:"followed"`
	Comment          string    `json:"comment"`
	SubmittedAt      time.Time `json:"submitted_at"`
}
