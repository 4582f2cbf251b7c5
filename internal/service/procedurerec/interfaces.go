package procedurerec

import (
	"context"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Service scores candidate audit-procedure templates against a context.
type Service interface {
	// Recommend returns up to MaxRecommendations templates, sorted by score
	// descending, each at or above the confidence threshold. Pure read.
	Recommend(ctx context.Context, auditCtx *audit.Context) ([]recommendation.ProcedureRecommendation, error)
	// RecordOutcomes appends procedure performance history from completed
	// audits. Batches below the learning minimum leave state unchanged.
	RecordOutcomes(ctx context.Context, batch []audit.LearningData) error
}

// TemplateRepository provides the candidate procedure templates.
type TemplateRepository interface {
	ListTemplates(ctx context.Context) ([]*procedure.Template, error)
}

// BestPracticeRepository provides recorded practice outcomes.
type BestPracticeRepository interface {
	ListBestPractices(ctx context.Context) ([]*procedure.BestPractice, error)
}

// HistoryRepository aggregates and appends performance history rows.
type HistoryRepository interface {
	Stats(ctx context.Context, filter recommendation.HistoryFilter) (*recommendation.HistoryStats, error)
	Append(ctx context.Context, records []*recommendation.PerformanceRecord) error
}

// EffectivenessModel supplies the registry's fallback effectiveness
// heuristic. Satisfied by the model registry service.
type EffectivenessModel interface {
	PredictProcedureEffectiveness(auditCtx *audit.Context, tmpl *procedure.Template) float64
}
