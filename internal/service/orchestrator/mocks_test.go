package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/service/modelregistry"
)

type mockProcedureService struct {
	mock.Mock
}

func (m *mockProcedureService) Recommend(ctx context.Context, auditCtx *audit.Context) ([]recommendation.ProcedureRecommendation, error) {
	args := m.Called(ctx, auditCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recommendation.ProcedureRecommendation), args.Error(1)
}

func (m *mockProcedureService) RecordOutcomes(ctx context.Context, batch []audit.LearningData) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type mockAuditorService struct {
	mock.Mock
}

func (m *mockAuditorService) Recommend(ctx context.Context, auditCtx *audit.Context) ([]recommendation.AuditorRecommendation, error) {
	args := m.Called(ctx, auditCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recommendation.AuditorRecommendation), args.Error(1)
}

func (m *mockAuditorService) PredictPerformance(ctx context.Context, auditorID uuid.UUID, auditCtx *audit.Context) (*recommendation.PerformancePrediction, error) {
	args := m.Called(ctx, auditorID, auditCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.PerformancePrediction), args.Error(1)
}

func (m *mockAuditorService) RecordOutcomes(ctx context.Context, batch []audit.LearningData) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type mockTimelineService struct {
	mock.Mock
}

func (m *mockTimelineService) Recommend(ctx context.Context, auditCtx *audit.Context) (*recommendation.TimelineRecommendation, error) {
	args := m.Called(ctx, auditCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.TimelineRecommendation), args.Error(1)
}

func (m *mockTimelineService) RecordOutcomes(ctx context.Context, batch []audit.LearningData) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type mockPatternEngine struct {
	mock.Mock
}

func (m *mockPatternEngine) Analyze(ctx context.Context, data []audit.LearningData) ([]*recommendation.Pattern, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recommendation.Pattern), args.Error(1)
}

func (m *mockPatternEngine) DetectAnomalies(data []audit.LearningData) []recommendation.Anomaly {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]recommendation.Anomaly)
}

func (m *mockPatternEngine) CorrelateAdherence(data []audit.LearningData) *recommendation.AdherenceCorrelation {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*recommendation.AdherenceCorrelation)
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) EnsureModels(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockRegistry) GetModel(ctx context.Context, modelType recommendation.ModelType) (*recommendation.ScoringModel, error) {
	args := m.Called(ctx, modelType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.ScoringModel), args.Error(1)
}

func (m *mockRegistry) UpdateWithLearningData(ctx context.Context, batch []audit.LearningData) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *mockRegistry) RecordFeedback(ctx context.Context, fb recommendation.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

func (m *mockRegistry) AssessRetrainingNeed(ctx context.Context) ([]modelregistry.RetrainingAssessment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]modelregistry.RetrainingAssessment), args.Error(1)
}

func (m *mockRegistry) Retrain(ctx context.Context, modelType recommendation.ModelType) (*recommendation.ScoringModel, error) {
	args := m.Called(ctx, modelType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.ScoringModel), args.Error(1)
}

func (m *mockRegistry) PredictProcedureEffectiveness(auditCtx *audit.Context, tmpl *procedure.Template) float64 {
	args := m.Called(auditCtx, tmpl)
	return args.Get(0).(float64)
}

func (m *mockRegistry) PredictAuditorPerformance(auditCtx *audit.Context, profile *auditor.ExpertiseProfile) float64 {
	args := m.Called(auditCtx, profile)
	return args.Get(0).(float64)
}

func (m *mockRegistry) PredictTimelineDuration(auditCtx *audit.Context) float64 {
	args := m.Called(auditCtx)
	return args.Get(0).(float64)
}

type mockRecommendationRepo struct {
	mock.Mock
}

func (m *mockRecommendationRepo) SaveComprehensive(ctx context.Context, rec *recommendation.Comprehensive) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRecommendationRepo) GetComprehensive(ctx context.Context, auditID uuid.UUID) (*recommendation.Comprehensive, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.Comprehensive), args.Error(1)
}

type mockFeedbackRepo struct {
	mock.Mock
}

func (m *mockFeedbackRepo) SaveFeedback(ctx context.Context, fb recommendation.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}
