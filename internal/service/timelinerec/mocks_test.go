package timelinerec

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

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
