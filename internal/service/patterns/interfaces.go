package patterns

import (
	"context"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Engine mines completed-audit records for regularities and outliers. All
// detection runs over the full corpus passed in; nothing is incrementally
// updated, so strengths are always recomputed from scratch.
type Engine interface {
	// Analyze runs every detector and returns all detected patterns.
	// Patterns at or above the significance threshold are also persisted;
	// persistence failure is logged, never surfaced.
	Analyze(ctx context.Context, data []audit.LearningData) ([]*recommendation.Pattern, error)

	// DetectAnomalies flags records whose quality or timeline variance sits
	// far outside the corpus distribution.
	DetectAnomalies(data []audit.LearningData) []recommendation.Anomaly

	// CorrelateAdherence compares outcome quality between audits that
	// followed the recommendation and those that deviated. Returns nil when
	// either group is too small to compare.
	CorrelateAdherence(data []audit.LearningData) *recommendation.AdherenceCorrelation
}

// PatternRepository persists significant patterns.
type PatternRepository interface {
	SavePatterns(ctx context.Context, patterns []*recommendation.Pattern) error
}
