package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds all recommendation-domain metrics.
type Registry struct {
	meter metric.Meter

	// Recommendation metrics
	RecommendationDuration metric.Float64Histogram
	RecommendationCounter  metric.Int64Counter
	PartialResultCounter   metric.Int64Counter
	OverallScore           metric.Float64Histogram

	// Learning pipeline metrics
	LearningBatchCounter metric.Int64Counter
	LearningBatchSize    metric.Int64Histogram
	LearningQueueDepth   metric.Int64ObservableGauge
	PatternCounter       metric.Int64Counter
	FeedbackCounter      metric.Int64Counter
	RetrainingCounter    metric.Int64Counter
	AccuracyScore        metric.Float64Histogram

	// State for observable metrics
	mu               sync.RWMutex
	learningQueueLen int64
}

// NewRegistry creates a metrics registry on the named meter.
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{meter: otel.Meter(meterName)}
	if err := r.initRecommendationMetrics(); err != nil {
		return nil, err
	}
	if err := r.initLearningMetrics(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) initRecommendationMetrics() error {
	var err error

	r.RecommendationDuration, err = r.meter.Float64Histogram(
		"ari.recommendation.duration",
		metric.WithDescription("End-to-end comprehensive recommendation latency in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.RecommendationCounter, err = r.meter.Int64Counter(
		"ari.recommendation.total",
		metric.WithDescription("Total comprehensive recommendations generated"),
	)
	if err != nil {
		return err
	}

	r.PartialResultCounter, err = r.meter.Int64Counter(
		"ari.recommendation.partial_total",
		metric.WithDescription("Recommendations produced with at least one recommender timed out"),
	)
	if err != nil {
		return err
	}

	r.OverallScore, err = r.meter.Float64Histogram(
		"ari.recommendation.overall_score",
		metric.WithDescription("Distribution of overall recommendation scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	)
	return err
}

func (r *Registry) initLearningMetrics() error {
	var err error

	r.LearningBatchCounter, err = r.meter.Int64Counter(
		"ari.learning.batch_total",
		metric.WithDescription("Learning-data batches consumed"),
	)
	if err != nil {
		return err
	}

	r.LearningBatchSize, err = r.meter.Int64Histogram(
		"ari.learning.batch_size",
		metric.WithDescription("Completed-audit records per learning batch"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250),
	)
	if err != nil {
		return err
	}

	r.LearningQueueDepth, err = r.meter.Int64ObservableGauge(
		"ari.learning.queue_depth",
		metric.WithDescription("Learning batches waiting for the worker"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.learningQueueLen)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.PatternCounter, err = r.meter.Int64Counter(
		"ari.learning.patterns_total",
		metric.WithDescription("Significant patterns persisted by analysis passes"),
	)
	if err != nil {
		return err
	}

	r.FeedbackCounter, err = r.meter.Int64Counter(
		"ari.learning.feedback_total",
		metric.WithDescription("User feedback items processed"),
	)
	if err != nil {
		return err
	}

	r.RetrainingCounter, err = r.meter.Int64Counter(
		"ari.learning.retraining_total",
		metric.WithDescription("Simulated model retraining runs"),
	)
	if err != nil {
		return err
	}

	r.AccuracyScore, err = r.meter.Float64Histogram(
		"ari.learning.accuracy_score",
		metric.WithDescription("Recommendation accuracy measured against actual outcomes"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	)
	return err
}

// SetLearningQueueDepth records the current worker queue length.
func (r *Registry) SetLearningQueueDepth(n int) {
	r.mu.Lock()
	r.learningQueueLen = int64(n)
	r.mu.Unlock()
}

// RecordRecommendation records one completed recommendation request.
func (r *Registry) RecordRecommendation(ctx context.Context, durationMs, overallScore float64, partial bool) {
	attrs := metric.WithAttributes(attribute.Bool("partial", partial))
	r.RecommendationDuration.Record(ctx, durationMs, attrs)
	r.RecommendationCounter.Add(ctx, 1, attrs)
	r.OverallScore.Record(ctx, overallScore)
	if partial {
		r.PartialResultCounter.Add(ctx, 1)
	}
}
