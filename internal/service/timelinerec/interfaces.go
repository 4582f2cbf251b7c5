package timelinerec

import (
	"context"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Service predicts audit duration, milestones, buffers, and scheduling
// strategy for a context.
type Service interface {
	// Recommend produces a single timeline recommendation. The recommended
	// duration is always at least MinDurationHours and at least half the
	// unadjusted base; the buffer is never negative.
	Recommend(ctx context.Context, auditCtx *audit.Context) (*recommendation.TimelineRecommendation, error)
	// RecordOutcomes folds completed audits into timeline history and the
	// optimal-duration store. Batches below the learning minimum are no-ops.
	RecordOutcomes(ctx context.Context, batch []audit.LearningData) error
}

// HistoryRepository aggregates and appends timeline performance rows.
type HistoryRepository interface {
	Stats(ctx context.Context, filter recommendation.HistoryFilter) (*recommendation.HistoryStats, error)
	Append(ctx context.Context, records []*recommendation.PerformanceRecord) error
}
