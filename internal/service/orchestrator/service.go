package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
	"github.com/auditforge/audit-intelligence/internal/metrics"
	"github.com/auditforge/audit-intelligence/internal/service/auditorrec"
	"github.com/auditforge/audit-intelligence/internal/service/modelregistry"
	"github.com/auditforge/audit-intelligence/internal/service/patterns"
	"github.com/auditforge/audit-intelligence/internal/service/procedurerec"
	"github.com/auditforge/audit-intelligence/internal/service/timelinerec"
)

// Overall-score weights across the three recommenders.
const (
	WeightProcedure = 0.40
	WeightAuditor   = 0.35
	WeightTimeline  = 0.25
)

const (
	defaultFanoutTimeout = 5 * time.Second
	defaultQueueCapacity = 16
	// defaultLearningRate bounds learning-batch consumption per second.
	defaultLearningRate = 4.0
	// revalidationThreshold of accumulated feedback items triggers a model
	// revalidation pass.
	revalidationThreshold = 10
)

type service struct {
	procedures procedurerec.Service
	auditors   auditorrec.Service
	timelines  timelinerec.Service
	patternEng patterns.Engine
	registry   modelregistry.Service

	repo     RecommendationRepository
	feedback FeedbackRepository
	cache    RecommendationCache

	logger   *zap.Logger
	metrics  *metrics.Registry
	validate *validator.Validate
	now      func() time.Time

	fanoutTimeout time.Duration

	// Learning worker state.
	queue     chan learningBatch
	limiter   *rate.Limiter
	workerWG  sync.WaitGroup
	closeOnce sync.Once

	mu               sync.Mutex
	processed        map[uuid.UUID]struct{}
	feedbackSinceVal int
}

// Option adjusts orchestrator construction.
type Option func(*service)

// WithFanoutTimeout bounds the three-recommender fan-out.
func WithFanoutTimeout(d time.Duration) Option {
	return func(s *service) { s.fanoutTimeout = d }
}

// WithQueueCapacity sizes the learning batch queue.
func WithQueueCapacity(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.queue = make(chan learningBatch, n)
		}
	}
}

// WithLearningRate bounds learning-batch consumption per second.
func WithLearningRate(perSecond float64) Option {
	return func(s *service) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithCache installs a read-through recommendation cache.
func WithCache(c RecommendationCache) Option {
	return func(s *service) { s.cache = c }
}

// WithMetrics installs the domain metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *service) { s.metrics = m }
}

// NewService wires the orchestrator and starts its learning worker. Call
// Close to stop the worker.
func NewService(
	procedures procedurerec.Service,
	auditors auditorrec.Service,
	timelines timelinerec.Service,
	patternEng patterns.Engine,
	registry modelregistry.Service,
	repo RecommendationRepository,
	feedback FeedbackRepository,
	logger *zap.Logger,
	opts ...Option,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		procedures:    procedures,
		auditors:      auditors,
		timelines:     timelines,
		patternEng:    patternEng,
		registry:      registry,
		repo:          repo,
		feedback:      feedback,
		logger:        logger,
		validate:      validator.New(),
		now:           func() time.Time { return time.Now().UTC() },
		fanoutTimeout: defaultFanoutTimeout,
		queue:         make(chan learningBatch, defaultQueueCapacity),
		limiter:       rate.NewLimiter(rate.Limit(defaultLearningRate), 1),
		processed:     make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.workerWG.Add(1)
	go s.learningWorker()
	return s
}

// fanoutResult collects the three recommenders' output under one lock.
type fanoutResult struct {
	mu          sync.Mutex
	procedures  []recommendation.ProcedureRecommendation
	auditorRecs []recommendation.AuditorRecommendation
	timeline    *recommendation.TimelineRecommendation
	completed   int
	errs        []error
}

func (s *service) GenerateComprehensive(ctx context.Context, auditID, userID uuid.UUID, auditCtx *audit.Context) (*recommendation.Comprehensive, error) {
	start := s.now()
	if auditCtx == nil {
		return nil, errors.NewValidationError("INVALID_CONTEXT", "audit context is required")
	}
	if err := s.validate.Struct(auditCtx); err != nil {
		return nil, errors.NewValidationError("INVALID_CONTEXT", "audit context failed validation").WithCause(err)
	}

	fanCtx, cancel := context.WithTimeout(ctx, s.fanoutTimeout)
	defer cancel()

	res := &fanoutResult{}
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		out, err := s.procedures.Recommend(fanCtx, auditCtx)
		res.mu.Lock()
		defer res.mu.Unlock()
		if err != nil {
			res.errs = append(res.errs, errors.Wrap(err, "procedure recommender"))
			return
		}
		res.procedures = out
		res.completed++
	}()
	go func() {
		defer wg.Done()
		out, err := s.auditors.Recommend(fanCtx, auditCtx)
		res.mu.Lock()
		defer res.mu.Unlock()
		if err != nil {
			res.errs = append(res.errs, errors.Wrap(err, "auditor recommender"))
			return
		}
		res.auditorRecs = out
		res.completed++
	}()
	go func() {
		defer wg.Done()
		out, err := s.timelines.Recommend(fanCtx, auditCtx)
		res.mu.Lock()
		defer res.mu.Unlock()
		if err != nil {
			res.errs = append(res.errs, errors.Wrap(err, "timeline recommender"))
			return
		}
		res.timeline = out
		res.completed++
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	timedOut := false
	select {
	case <-done:
	case <-fanCtx.Done():
		timedOut = true
	}

	res.mu.Lock()
	procedures := res.procedures
	auditorRecs := res.auditorRecs
	timeline := res.timeline
	completed := res.completed
	errs := append([]error(nil), res.errs...)
	res.mu.Unlock()

	// Hard recommender errors propagate; deadline misses degrade to a
	// partial result instead.
	if !timedOut && len(errs) > 0 {
		return nil, errs[0]
	}
	partial := timedOut || completed < 3

	comp := s.synthesize(auditID, userID, auditCtx, procedures, auditorRecs, timeline, partial)

	s.persist(ctx, comp)
	if s.metrics != nil {
		s.metrics.RecordRecommendation(ctx,
			float64(s.now().Sub(start).Microseconds())/1000,
			comp.OverallScore.Float64(), partial)
	}
	s.logger.Info("comprehensive recommendation generated",
		zap.String("audit_id", auditID.String()),
		zap.Float64("overall_score", comp.OverallScore.Float64()),
		zap.Bool("partial", partial))
	return comp, nil
}

// synthesize combines recommender output into the comprehensive structure.
func (s *service) synthesize(
	auditID, userID uuid.UUID,
	auditCtx *audit.Context,
	procedures []recommendation.ProcedureRecommendation,
	auditorRecs []recommendation.AuditorRecommendation,
	timeline *recommendation.TimelineRecommendation,
	partial bool,
) *recommendation.Comprehensive {
	overall := overallScore(procedures, auditorRecs, timeline)
	risk := assessRisk(auditCtx, auditorRecs)

	durationHours := auditCtx.Timeline.MaxDurationHours * 0.8
	if timeline != nil {
		durationHours = timeline.RecommendedHours
	}

	return &recommendation.Comprehensive{
		ID:                 uuid.New(),
		AuditID:            auditID,
		UserID:             userID,
		Procedures:         procedures,
		Auditors:           auditorRecs,
		Timeline:           timeline,
		OverallScore:       overall,
		SuccessProbability: successProbability(procedures, auditorRecs, timeline, risk),
		Risk:               risk,
		Alternatives:       alternativeStrategies(),
		Plan:               implementationPlan(durationHours),
		Reasoning:          synthesizeReasoning(procedures, auditorRecs, timeline, overall),
		Partial:            partial,
		Context:            *auditCtx,
		GeneratedAt:        s.now(),
	}
}

// overallScore is the weighted average of each recommender's top-item score,
// renormalized over the components that produced output.
func overallScore(
	procedures []recommendation.ProcedureRecommendation,
	auditorRecs []recommendation.AuditorRecommendation,
	timeline *recommendation.TimelineRecommendation,
) values.Score {
	sum, weight := 0.0, 0.0
	if len(procedures) > 0 {
		sum += WeightProcedure * procedures[0].Score.Float64()
		weight += WeightProcedure
	}
	if len(auditorRecs) > 0 {
		sum += WeightAuditor * auditorRecs[0].MatchScore.Float64()
		weight += WeightAuditor
	}
	if timeline != nil {
		sum += WeightTimeline * timeline.Confidence.Float64()
		weight += WeightTimeline
	}
	if weight == 0 {
		return values.NewScore(0)
	}
	return values.NewScore(sum / weight)
}

// persist stores the recommendation best-effort. Failures never abort the
// response.
func (s *service) persist(ctx context.Context, comp *recommendation.Comprehensive) {
	if s.repo != nil {
		if err := s.repo.SaveComprehensive(ctx, comp); err != nil {
			s.logger.Warn("recommendation persistence failed",
				zap.String("audit_id", comp.AuditID.String()),
				zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, comp); err != nil {
			s.logger.Warn("recommendation cache write failed",
				zap.String("audit_id", comp.AuditID.String()),
				zap.Error(err))
		}
	}
}

// loadComprehensive reads through the cache to the repository.
func (s *service) loadComprehensive(ctx context.Context, auditID uuid.UUID) (*recommendation.Comprehensive, error) {
	if s.cache != nil {
		if rec, err := s.cache.Get(ctx, auditID); err == nil && rec != nil {
			return rec, nil
		}
	}
	if s.repo == nil {
		return nil, errors.NewNotFoundError("comprehensive recommendation")
	}
	rec, err := s.repo.GetComprehensive(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("loading recommendation for audit %s: %w", auditID, err)
	}
	return rec, nil
}

func (s *service) Close() error {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	s.workerWG.Wait()
	return nil
}
