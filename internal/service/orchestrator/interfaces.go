package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Service is the top-level recommendation entry point. It composes the three
// recommenders, the pattern engine, and the model registry.
type Service interface {
	// GenerateComprehensive runs the three recommenders concurrently and
	// synthesizes a comprehensive recommendation. When a recommender misses
	// the fan-out deadline the result is returned with Partial set instead
	// of failing the request. Persistence of the result is best-effort.
	GenerateComprehensive(ctx context.Context, auditID, userID uuid.UUID, auditCtx *audit.Context) (*recommendation.Comprehensive, error)

	// LearnFromCompletedAudits queues one completed-audit batch for the
	// learning worker. Re-queueing a batch id that was already consumed is a
	// no-op, so retries never double-count.
	LearnFromCompletedAudits(ctx context.Context, batchID uuid.UUID, batch []audit.LearningData) error

	// ProcessFeedback stores feedback and forwards it to the model registry.
	// Accumulating ten items since the last validation triggers a model
	// revalidation pass.
	ProcessFeedback(ctx context.Context, items []recommendation.Feedback) error

	// ValidateAccuracy compares a stored recommendation for the audit
	// against the actual outcome.
	ValidateAccuracy(ctx context.Context, auditID uuid.UUID, actual *audit.LearningData) (*AccuracyReport, error)

	// Close stops the learning worker and waits for in-flight batches.
	Close() error
}

// AccuracyReport compares one recommendation to the actual outcome.
type AccuracyReport struct {
	AuditID          uuid.UUID `json:"audit_id"`
	ProcedureOverlap float64   `json:"procedure_overlap"` // 0-100
	AuditorMatched   bool      `json:"auditor_matched"`
	TimelineErrorPct float64   `json:"timeline_error_pct"`
	OverallAccuracy  float64   `json:"overall_accuracy"` // 0-100
}

// RecommendationRepository persists comprehensive recommendations keyed by
// audit id.
type RecommendationRepository interface {
	SaveComprehensive(ctx context.Context, rec *recommendation.Comprehensive) error
	GetComprehensive(ctx context.Context, auditID uuid.UUID) (*recommendation.Comprehensive, error)
}

// FeedbackRepository stores user feedback on recommendations.
type FeedbackRepository interface {
	SaveFeedback(ctx context.Context, fb recommendation.Feedback) error
}

// RecommendationCache is an optional read-through cache in front of the
// repository. Failures are treated as misses.
type RecommendationCache interface {
	Put(ctx context.Context, rec *recommendation.Comprehensive) error
	Get(ctx context.Context, auditID uuid.UUID) (*recommendation.Comprehensive, error)
}
