package recommendation

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

// PatternType classifies a mined regularity.
type PatternType string

const (
	PatternSuccess     PatternType = "success"
	PatternFailure     PatternType = "failure"
	PatternPerformance PatternType = "performance"
	PatternTemporal    PatternType = "temporal"
)

// Pattern is one regularity mined from completed-audit records. Patterns are
// never mutated; a newer analysis pass supersedes older ones wholesale.
// Strength is a bounded heuristic, not a p-value.
type Pattern struct {
	ID          uuid.UUID       `json:"id"`
	Type        PatternType     `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Strength    values.Strength `json:"strength"`

	SupportingPoints int            `json:"supporting_points"`
	Attributes       map[string]any `json:"attributes,omitempty"`
	Actions          []string       `json:"actions"`

	DetectedAt time.Time `json:"detected_at"`
}

// Significant reports whether the pattern clears the persistence threshold.
func (p *Pattern) Significant() bool {
	return p.Strength.Significant()
}

// Anomaly flags one learning record whose quality or timeline variance sits
// far outside the corpus distribution.
type Anomaly struct {
	LearningDataID uuid.UUID `json:"learning_data_id"`
	AuditID        uuid.UUID `json:"audit_id"`
	Dimension      string    `json:"dimension"` // quality | timeline_variance
	ZScore         float64   `json:"z_score"`
	Severity       string    `json:"severity"` // notable | critical
	Description    string    `json:"description"`
}

// AdherenceCorrelation summarizes the quality gap between audits that
// followed the recommendation and those that did not. A simple difference of
// means; no statistical test behind it.
type AdherenceCorrelation struct {
	FollowedCount    int     `json:"followed_count"`
	DeviatedCount    int     `json:"deviated_count"`
	FollowedQuality  float64 `json:"followed_quality"`
	DeviatedQuality  float64 `json:"deviated_quality"`
	QualityDelta     float64 `json:"quality_delta"`
}
