package modelregistry

import (
	"context"
	"sync"

	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// memoryModelRepo is a minimal in-memory ModelRepository for tests.
type memoryModelRepo struct {
	mu     sync.Mutex
	models map[recommendation.ModelType]*recommendation.ScoringModel
	fail   bool
}

func newMemoryModelRepo() *memoryModelRepo {
	return &memoryModelRepo{models: make(map[recommendation.ModelType]*recommendation.ScoringModel)}
}

func (r *memoryModelRepo) GetActiveByType(_ context.Context, mt recommendation.ModelType) (*recommendation.ScoringModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[mt]
	if !ok {
		return nil, errors.NewNotFoundError("scoring model")
	}
	cp := *m
	return &cp, nil
}

func (r *memoryModelRepo) Save(_ context.Context, model *recommendation.ScoringModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.NewPersistenceError("save disabled")
	}
	cp := *model
	r.models[model.Type] = &cp
	return nil
}
