package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// learningBatch is one queued unit of work for the learning worker.
type learningBatch struct {
	id   uuid.UUID
	data []audit.LearningData
}

// LearnFromCompletedAudits queues a batch for the learning worker. The batch
// id is the idempotency key: a batch that was already consumed (or is
// already queued) is dropped silently so retries never double-count.
func (s *service) LearnFromCompletedAudits(ctx context.Context, batchID uuid.UUID, batch []audit.LearningData) error {
	if batchID == uuid.Nil {
		return errors.NewValidationError("INVALID_BATCH", "learning batch id is required")
	}
	s.mu.Lock()
	if _, dup := s.processed[batchID]; dup {
		s.mu.Unlock()
		s.logger.Debug("duplicate learning batch dropped", zap.String("batch_id", batchID.String()))
		return nil
	}
	s.processed[batchID] = struct{}{}
	s.mu.Unlock()

	select {
	case s.queue <- learningBatch{id: batchID, data: batch}:
		if s.metrics != nil {
			s.metrics.SetLearningQueueDepth(len(s.queue))
		}
		return nil
	case <-ctx.Done():
		// Undo the idempotency mark so the caller can retry.
		s.mu.Lock()
		delete(s.processed, batchID)
		s.mu.Unlock()
		return errors.NewTimeoutError("queueing learning batch").WithCause(ctx.Err())
	}
}

// learningWorker consumes batches one at a time off the request hot path.
func (s *service) learningWorker() {
	defer s.workerWG.Done()
	for batch := range s.queue {
		if err := s.limiter.Wait(context.Background()); err != nil {
			return
		}
		s.consumeBatch(batch)
		if s.metrics != nil {
			s.metrics.SetLearningQueueDepth(len(s.queue))
		}
	}
}

// consumeBatch fans one batch out to the pattern engine, the model registry,
// and the three recommenders' learning hooks. Individual failures are
// logged; the batch is still considered consumed.
func (s *service) consumeBatch(batch learningBatch) {
	ctx := context.Background()
	log := s.logger.With(
		zap.String("batch_id", batch.id.String()),
		zap.Int("batch_size", len(batch.data)))

	detected, err := s.patternEng.Analyze(ctx, batch.data)
	if err != nil {
		log.Error("pattern analysis failed", zap.Error(err))
	} else if s.metrics != nil {
		significant := 0
		for _, p := range detected {
			if p.Significant() {
				significant++
			}
		}
		s.metrics.PatternCounter.Add(ctx, int64(significant))
	}

	if err := s.registry.UpdateWithLearningData(ctx, batch.data); err != nil {
		log.Error("model registry update failed", zap.Error(err))
	}
	if err := s.procedures.RecordOutcomes(ctx, batch.data); err != nil {
		log.Error("procedure learning failed", zap.Error(err))
	}
	if err := s.auditors.RecordOutcomes(ctx, batch.data); err != nil {
		log.Error("auditor learning failed", zap.Error(err))
	}
	if err := s.timelines.RecordOutcomes(ctx, batch.data); err != nil {
		log.Error("timeline learning failed", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.LearningBatchCounter.Add(ctx, 1)
		s.metrics.LearningBatchSize.Record(ctx, int64(len(batch.data)))
	}
	log.Info("learning batch consumed")
}

// ProcessFeedback stores each item and forwards it to the model registry.
// Every tenth accumulated item triggers a revalidation pass.
func (s *service) ProcessFeedback(ctx context.Context, items []recommendation.Feedback) error {
	for _, fb := range items {
		if s.feedback != nil {
			if err := s.feedback.SaveFeedback(ctx, fb); err != nil {
				s.logger.Warn("feedback persistence failed",
					zap.String("feedback_id", fb.ID.String()),
					zap.Error(err))
			}
		}
		if err := s.registry.RecordFeedback(ctx, fb); err != nil {
			return errors.Wrap(err, "forwarding feedback to model registry")
		}
		if s.metrics != nil {
			s.metrics.FeedbackCounter.Add(ctx, 1)
		}
	}

	s.mu.Lock()
	s.feedbackSinceVal += len(items)
	trigger := s.feedbackSinceVal >= revalidationThreshold
	if trigger {
		s.feedbackSinceVal = 0
	}
	s.mu.Unlock()

	if trigger {
		s.revalidateModels(ctx)
	}
	return nil
}

// revalidateModels retrains every model the registry flags.
func (s *service) revalidateModels(ctx context.Context) {
	assessments, err := s.registry.AssessRetrainingNeed(ctx)
	if err != nil {
		s.logger.Error("retraining assessment failed", zap.Error(err))
		return
	}
	for _, a := range assessments {
		if !a.Needed {
			continue
		}
		s.logger.Info("retraining model",
			zap.String("model_type", string(a.ModelType)),
			zap.String("reason", a.Reason))
		if _, err := s.registry.Retrain(ctx, a.ModelType); err != nil {
			s.logger.Error("retraining failed",
				zap.String("model_type", string(a.ModelType)),
				zap.Error(err))
			continue
		}
		if s.metrics != nil {
			s.metrics.RetrainingCounter.Add(ctx, 1)
		}
	}
}
