package orchestrator

import (
	"context"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Per-dimension weights in the overall accuracy score. Same proportions as
// the overall recommendation score.
const (
	accuracyWeightProcedure = 0.40
	accuracyWeightAuditor   = 0.35
	accuracyWeightTimeline  = 0.25
)

// ValidateAccuracy compares the stored recommendation for an audit against
// its actual outcome.
func (s *service) ValidateAccuracy(ctx context.Context, auditID uuid.UUID, actual *audit.LearningData) (*AccuracyReport, error) {
	if actual == nil {
		return nil, errors.NewValidationError("INVALID_OUTCOME", "actual outcome is required")
	}
	stored, err := s.loadComprehensive(ctx, auditID)
	if err != nil {
		return nil, err
	}

	report := &AccuracyReport{
		AuditID:          auditID,
		ProcedureOverlap: procedureOverlap(stored.Procedures, actual.ActualProcedures),
		TimelineErrorPct: timelineErrorPct(stored.Timeline, actual.ActualDurationHours),
	}
	if len(stored.Auditors) > 0 {
		report.AuditorMatched = stored.Auditors[0].AuditorID == actual.ActualAuditorID
	}

	auditorScore := 0.0
	if report.AuditorMatched {
		auditorScore = 100
	}
	report.OverallAccuracy = accuracyWeightProcedure*report.ProcedureOverlap +
		accuracyWeightAuditor*auditorScore +
		accuracyWeightTimeline*math.Max(0, 100-report.TimelineErrorPct)

	if s.metrics != nil {
		s.metrics.AccuracyScore.Record(ctx, report.OverallAccuracy)
	}
	s.logger.Info("recommendation accuracy validated",
		zap.String("audit_id", auditID.String()),
		zap.Float64("procedure_overlap", report.ProcedureOverlap),
		zap.Bool("auditor_matched", report.AuditorMatched),
		zap.Float64("timeline_error_pct", report.TimelineErrorPct),
		zap.Float64("overall_accuracy", report.OverallAccuracy))
	return report, nil
}

// procedureOverlap is the percentage of recommended templates that were
// actually executed.
func procedureOverlap(recommended []recommendation.ProcedureRecommendation, actual []uuid.UUID) float64 {
	if len(recommended) == 0 {
		return 0
	}
	executed := make(map[uuid.UUID]struct{}, len(actual))
	for _, id := range actual {
		executed[id] = struct{}{}
	}
	hits := 0
	for _, rec := range recommended {
		if _, ok := executed[rec.TemplateID]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(recommended)) * 100
}

// timelineErrorPct is the absolute deviation of the actual duration from the
// recommended one. A missing timeline counts as full error.
func timelineErrorPct(timeline *recommendation.TimelineRecommendation, actualHours float64) float64 {
	if timeline == nil || timeline.RecommendedHours <= 0 {
		return 100
	}
	return math.Abs(actualHours-timeline.RecommendedHours) / timeline.RecommendedHours * 100
}
