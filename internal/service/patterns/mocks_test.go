package patterns

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

type mockPatternRepo struct {
	mock.Mock
}

func (m *mockPatternRepo) SavePatterns(ctx context.Context, patterns []*recommendation.Pattern) error {
	args := m.Called(ctx, patterns)
	return args.Error(0)
}
