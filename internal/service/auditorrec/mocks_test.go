package auditorrec

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

type mockAuditorRepo struct {
	mock.Mock
}

func (m *mockAuditorRepo) GetAuditor(ctx context.Context, id uuid.UUID) (*auditor.Auditor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditor.Auditor), args.Error(1)
}

func (m *mockAuditorRepo) ListActiveAuditors(ctx context.Context) ([]*auditor.Auditor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditor.Auditor), args.Error(1)
}

// memoryProfileRepo is a concurrency-safe in-memory ProfileRepository; the
// recommender writes lazily-created defaults through it.
type memoryProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*auditor.ExpertiseProfile
}

func newMemoryProfileRepo() *memoryProfileRepo {
	return &memoryProfileRepo{profiles: make(map[uuid.UUID]*auditor.ExpertiseProfile)}
}

func (r *memoryProfileRepo) GetProfile(_ context.Context, auditorID uuid.UUID) (*auditor.ExpertiseProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[auditorID]
	if !ok {
		return nil, errors.NewNotFoundError("expertise profile")
	}
	cp := *p
	return &cp, nil
}

func (r *memoryProfileRepo) SaveProfile(_ context.Context, profile *auditor.ExpertiseProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.AuditorID] = &cp
	return nil
}

type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) ActiveAssignments(ctx context.Context, auditorID uuid.UUID) ([]*auditor.Assignment, error) {
	args := m.Called(ctx, auditorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditor.Assignment), args.Error(1)
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
