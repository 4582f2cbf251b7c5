package auditorrec

import (
	"context"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Service scores available auditors against a context and predicts
// individual performance.
type Service interface {
	// Recommend returns up to MaxRecommendations auditors sorted by match
	// score descending, each at or above MinMatchScore. Calling twice with
	// the same context and no intervening learning yields identical output.
	Recommend(ctx context.Context, auditCtx *audit.Context) ([]recommendation.AuditorRecommendation, error)
	// PredictPerformance estimates one auditor's expected quality, duration,
	// and success probability. An unknown auditor yields the canonical
	// default estimate, never an error.
	PredictPerformance(ctx context.Context, auditorID uuid.UUID, auditCtx *audit.Context) (*recommendation.PerformancePrediction, error)
	// RecordOutcomes folds completed audits into auditor history and
	// expertise profiles. Batches below the learning minimum are no-ops.
	RecordOutcomes(ctx context.Context, batch []audit.LearningData) error
}

// AuditorRepository looks up auditor directory records.
type AuditorRepository interface {
	GetAuditor(ctx context.Context, id uuid.UUID) (*auditor.Auditor, error)
	ListActiveAuditors(ctx context.Context) ([]*auditor.Auditor, error)
}

// ProfileRepository stores expertise profiles. A missing profile returns a
// not-found error; callers lazily create the canonical default.
type ProfileRepository interface {
	GetProfile(ctx context.Context, auditorID uuid.UUID) (*auditor.ExpertiseProfile, error)
	SaveProfile(ctx context.Context, profile *auditor.ExpertiseProfile) error
}

// AssignmentRepository lists active engagements per auditor.
type AssignmentRepository interface {
	ActiveAssignments(ctx context.Context, auditorID uuid.UUID) ([]*auditor.Assignment, error)
}

// HistoryRepository aggregates and appends auditor performance rows.
type HistoryRepository interface {
	Stats(ctx context.Context, filter recommendation.HistoryFilter) (*recommendation.HistoryStats, error)
	Append(ctx context.Context, records []*recommendation.PerformanceRecord) error
}

// PerformanceModel supplies the registry's fallback performance heuristic.
type PerformanceModel interface {
	PredictAuditorPerformance(auditCtx *audit.Context, profile *auditor.ExpertiseProfile) float64
}
