package procedurerec

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

type mockTemplateRepo struct {
	mock.Mock
}

func (m *mockTemplateRepo) ListTemplates(ctx context.Context) ([]*procedure.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*procedure.Template), args.Error(1)
}

type mockPracticeRepo struct {
	mock.Mock
}

func (m *mockPracticeRepo) ListBestPractices(ctx context.Context) ([]*procedure.BestPractice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*procedure.BestPractice), args.Error(1)
}

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Stats(ctx context.Context, filter recommendation.HistoryFilter) (*recommendation.HistoryStats, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.HistoryStats), args.Error(1)
}

func (m *mockHistoryRepo) Append(ctx context.Context, records []*recommendation.PerformanceRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// stubModel returns the template's base effectiveness unchanged.
type stubModel struct{}

func (stubModel) PredictProcedureEffectiveness(_ *audit.Context, tmpl *procedure.Template) float64 {
	return tmpl.BaseEffectiveness
}
