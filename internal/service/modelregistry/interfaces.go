package modelregistry

import (
	"context"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// Service manages the three named scoring models and their simulated
// training lifecycle.
type Service interface {
	// EnsureModels creates the default models on first initialization.
	// Idempotent: a present active model of a type is left untouched.
	EnsureModels(ctx context.Context) error
	// GetModel returns the active model of the given type.
	GetModel(ctx context.Context, modelType recommendation.ModelType) (*recommendation.ScoringModel, error)
	// UpdateWithLearningData appends training bookkeeping to every model.
	// A no-op below the minimum batch size.
	UpdateWithLearningData(ctx context.Context, batch []audit.LearningData) error
	// RecordFeedback folds one user feedback item into model bookkeeping.
	RecordFeedback(ctx context.Context, fb recommendation.Feedback) error
	// AssessRetrainingNeed lists models that should be retrained and why.
	AssessRetrainingNeed(ctx context.Context) ([]RetrainingAssessment, error)
	// Retrain runs the simulated retraining cycle for one model type.
	Retrain(ctx context.Context, modelType recommendation.ModelType) (*recommendation.ScoringModel, error)

	// The Predict* methods are deterministic fallback heuristics. They do not
	// read the stored models' trained parameters.
	PredictProcedureEffectiveness(auditCtx *audit.Context, tmpl *procedure.Template) float64
	PredictAuditorPerformance(auditCtx *audit.Context, profile *auditor.ExpertiseProfile) float64
	PredictTimelineDuration(auditCtx *audit.Context) float64
}

// ModelRepository is the registry's persistence collaborator.
type ModelRepository interface {
	// GetActiveByType returns the active model of a type, or a not-found error.
	GetActiveByType(ctx context.Context, modelType recommendation.ModelType) (*recommendation.ScoringModel, error)
	// Save inserts or replaces a model record.
	Save(ctx context.Context, model *recommendation.ScoringModel) error
}

// RetrainingAssessment explains why one model needs retraining.
type RetrainingAssessment struct {
	ModelType recommendation.ModelType
	Needed    bool
	Reason    string
}
