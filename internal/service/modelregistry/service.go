package modelregistry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

const (
	// MinTrainingData is the accumulated-data floor used by the retraining
	// staleness rule.
	MinTrainingData = 50
	// minBatchSize is the smallest learning batch worth recording.
	minBatchSize = 5
	// retrainStaleAfter is how long a model may go without training before
	// the staleness rule can fire.
	retrainStaleAfter = 30 * 24 * time.Hour
	// maxPerformanceScore caps the simulated post-retraining score.
	maxPerformanceScore = 95
)

// service implements the Service interface.
type service struct {
	repo   ModelRepository
	logger *zap.Logger

	trainingDelay time.Duration
	now           func() time.Time

	// One lock per model type keeps model writes single-writer without
	// serializing writes across types.
	locks map[recommendation.ModelType]*sync.Mutex
}

// Option tweaks registry construction.
type Option func(*service)

// WithTrainingDelay overrides the simulated retraining delay.
func WithTrainingDelay(d time.Duration) Option {
	return func(s *service) { s.trainingDelay = d }
}

// WithClock overrides the time source for bookkeeping timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a model registry backed by the given repository.
func NewService(repo ModelRepository, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:          repo,
		logger:        logger,
		trainingDelay: 100 * time.Millisecond,
		now:           func() time.Time { return time.Now().UTC() },
		locks: map[recommendation.ModelType]*sync.Mutex{
			recommendation.ModelProcedureEffectiveness: {},
			recommendation.ModelAuditorPerformance:     {},
			recommendation.ModelTimelinePrediction:     {},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureModels creates the three default models if absent.
func (s *service) EnsureModels(ctx context.Context) error {
	for _, mt := range []recommendation.ModelType{
		recommendation.ModelProcedureEffectiveness,
		recommendation.ModelAuditorPerformance,
		recommendation.ModelTimelinePrediction,
	} {
		lock := s.locks[mt]
		lock.Lock()
		_, err := s.repo.GetActiveByType(ctx, mt)
		if err == nil {
			lock.Unlock()
			continue
		}
		if !errors.IsNotFound(err) {
			lock.Unlock()
			return errors.Wrap(err, "loading model")
		}
		model := defaultModel(mt, s.now())
		if err := s.repo.Save(ctx, model); err != nil {
			lock.Unlock()
			return errors.NewPersistenceError("saving default model").WithCause(err)
		}
		s.logger.Info("created default scoring model",
			zap.String("model_type", string(mt)),
			zap.String("version", model.Version.String()))
		lock.Unlock()
	}
	return nil
}

// GetModel returns the active model of the given type.
func (s *service) GetModel(ctx context.Context, modelType recommendation.ModelType) (*recommendation.ScoringModel, error) {
	return s.repo.GetActiveByType(ctx, modelType)
}

// UpdateWithLearningData appends training bookkeeping to every model. No
// parameter fitting happens here; only counters and timestamps move.
func (s *service) UpdateWithLearningData(ctx context.Context, batch []audit.LearningData) error {
	if len(batch) < minBatchSize {
		s.logger.Debug("learning batch below minimum, skipping model update",
			zap.Int("batch_size", len(batch)))
		return nil
	}
	now := s.now()
	for mt, lock := range s.locks {
		lock.Lock()
		model, err := s.repo.GetActiveByType(ctx, mt)
		if err != nil {
			lock.Unlock()
			if errors.IsNotFound(err) {
				continue
			}
			return errors.Wrap(err, "loading model for update")
		}
		model.TrainingDataPoints += len(batch)
		model.LastTrained = now
		if err := s.repo.Save(ctx, model); err != nil {
			lock.Unlock()
			return errors.NewPersistenceError("saving model bookkeeping").WithCause(err)
		}
		lock.Unlock()
	}
	return nil
}

// RecordFeedback nudges the matching model's accuracy bookkeeping from a
// user rating. Best-effort: a missing model is skipped.
func (s *service) RecordFeedback(ctx context.Context, fb recommendation.Feedback) error {
	for mt, lock := range s.locks {
		lock.Lock()
		model, err := s.repo.GetActiveByType(ctx, mt)
		if err != nil {
			lock.Unlock()
			continue
		}
		// Rating 1-5 mapped to 0-1, folded in as a slow EMA.
		signal := float64(fb.Rating-1) / 4.0
		model.Metrics.Accuracy = 0.9*model.Metrics.Accuracy + 0.1*signal
		if err := s.repo.Save(ctx, model); err != nil {
			lock.Unlock()
			return errors.NewPersistenceError("saving feedback bookkeeping").WithCause(err)
		}
		lock.Unlock()
	}
	return nil
}

// AssessRetrainingNeed flags models with low performance or stale training.
func (s *service) AssessRetrainingNeed(ctx context.Context) ([]RetrainingAssessment, error) {
	var out []RetrainingAssessment
	for _, mt := range []recommendation.ModelType{
		recommendation.ModelProcedureEffectiveness,
		recommendation.ModelAuditorPerformance,
		recommendation.ModelTimelinePrediction,
	} {
		model, err := s.repo.GetActiveByType(ctx, mt)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, errors.Wrap(err, "loading model for assessment")
		}
		a := RetrainingAssessment{ModelType: mt}
		switch {
		case model.Metrics.PerformanceScore < 60:
			a.Needed = true
			a.Reason = "performance score below threshold"
		case s.now().Sub(model.LastTrained) > retrainStaleAfter && model.TrainingDataPoints > 2*MinTrainingData:
			a.Needed = true
			a.Reason = "training stale with sufficient accumulated data"
		default:
			a.Reason = "healthy"
		}
		out = append(out, a)
	}
	return out, nil
}

// Retrain runs the simulated retraining cycle: status goes to training, a
// fixed delay passes, the performance score gets a bounded nudge, the patch
// version increments, and the model returns to ready.
func (s *service) Retrain(ctx context.Context, modelType recommendation.ModelType) (*recommendation.ScoringModel, error) {
	lock, ok := s.locks[modelType]
	if !ok {
		return nil, errors.NewValidationError("UNKNOWN_MODEL_TYPE", "unknown model type: "+string(modelType))
	}
	lock.Lock()
	defer lock.Unlock()

	model, err := s.repo.GetActiveByType(ctx, modelType)
	if err != nil {
		return nil, err
	}

	model.Status = recommendation.StatusTraining
	if err := s.repo.Save(ctx, model); err != nil {
		return nil, errors.NewPersistenceError("marking model training").WithCause(err)
	}

	select {
	case <-time.After(s.trainingDelay):
	case <-ctx.Done():
		model.Status = recommendation.StatusFailed
		if saveErr := s.repo.Save(ctx, model); saveErr != nil {
			s.logger.Warn("failed to record aborted training", zap.Error(saveErr))
		}
		return nil, errors.NewTimeoutError("model retraining").WithCause(ctx.Err())
	}

	improvement := rand.Float64() * 10
	model.Metrics.PerformanceScore = math.Min(maxPerformanceScore, model.Metrics.PerformanceScore+improvement)
	model.Status = recommendation.StatusReady
	model.Version = model.Version.NextPatch()
	model.LastTrained = s.now()

	if err := s.repo.Save(ctx, model); err != nil {
		return nil, errors.NewPersistenceError("saving retrained model").WithCause(err)
	}

	s.logger.Info("model retrained",
		zap.String("model_type", string(modelType)),
		zap.String("version", model.Version.String()),
		zap.Float64("performance_score", model.Metrics.PerformanceScore))

	return model, nil
}

func defaultModel(mt recommendation.ModelType, now time.Time) *recommendation.ScoringModel {
	return &recommendation.ScoringModel{
		ID:      uuid.New(),
		Type:    mt,
		Version: recommendation.ModelVersion{Major: 1, Minor: 0, Patch: 0},
		Status:  recommendation.StatusReady,
		Active:  true,
		Configuration: map[string]float64{
			"learning_rate":   0.01,
			"decay":           0.95,
			"min_data_points": MinTrainingData,
		},
		Metrics: recommendation.ModelMetrics{
			PerformanceScore: 75,
			Accuracy:         0.75,
			Precision:        0.72,
			Recall:           0.70,
		},
		LastTrained: now,
		CreatedAt:   now,
	}
}
