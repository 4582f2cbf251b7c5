package patterns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

const (
	// minClassPoints is the minimum corpus size per pattern class. Below it
	// the class yields no patterns at all.
	minClassPoints = 5
	// minAppearances an auditor or procedure needs among successful records.
	minAppearances = 3

	// successQuality and performanceQuality bound the record classes.
	successQuality     = 80.0
	failureQuality     = 60.0
	performanceQuality = 85.0
	efficiencyQuality  = 75.0

	// timelineAccuracyShare of successful records must land within
	// timelineTolerance of the prediction to form an accuracy pattern.
	timelineAccuracyShare = 0.70
	timelineTolerance     = 0.15

	// failureFactorShare and performanceTraitShare are the minimum fraction
	// of the class a factor/characteristic must cover.
	failureFactorShare    = 0.30
	performanceTraitShare = 0.60

	// strengthCap and strengthBonus shape the count-based strength heuristic
	// min(cap, share + bonus).
	strengthCap   = 0.95
	strengthBonus = 0.20

	minTemporalMonths = 6
	temporalStdDevMin = 5.0
)

type engine struct {
	repo   PatternRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates a pattern engine. The repository may be nil, in which
// case significant patterns are only returned, not stored.
func NewEngine(repo PatternRepository, logger *zap.Logger) Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &engine{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (e *engine) Analyze(ctx context.Context, data []audit.LearningData) ([]*recommendation.Pattern, error) {
	detected := make([]*recommendation.Pattern, 0, 8)
	detected = append(detected, e.detectSuccessPatterns(data)...)
	detected = append(detected, e.detectFailurePatterns(data)...)
	detected = append(detected, e.detectPerformancePatterns(data)...)
	detected = append(detected, e.detectTemporalPatterns(data)...)

	significant := make([]*recommendation.Pattern, 0, len(detected))
	for _, p := range detected {
		if p.Significant() {
			significant = append(significant, p)
		}
	}
	if len(significant) > 0 && e.repo != nil {
		if err := e.repo.SavePatterns(ctx, significant); err != nil {
			e.logger.Warn("pattern persistence failed, returning results anyway",
				zap.Int("significant", len(significant)),
				zap.Error(err))
		}
	}

	e.logger.Info("pattern analysis complete",
		zap.Int("corpus_size", len(data)),
		zap.Int("detected", len(detected)),
		zap.Int("significant", len(significant)))
	return detected, nil
}

// newPattern stamps the shared fields.
func (e *engine) newPattern(t recommendation.PatternType, name, description string, strength float64, points int) *recommendation.Pattern {
	return &recommendation.Pattern{
		ID:               uuid.New(),
		Type:             t,
		Name:             name,
		Description:      description,
		Strength:         values.NewStrength(strength),
		SupportingPoints: points,
		DetectedAt:       e.now(),
	}
}

// countStrength is the shared share-based heuristic min(0.95, share + 0.2).
func countStrength(matching, total int) float64 {
	if total == 0 {
		return 0
	}
	s := float64(matching)/float64(total) + strengthBonus
	if s > strengthCap {
		return strengthCap
	}
	return s
}

// withinTolerance reports whether actual landed within the fractional
// tolerance of predicted.
func withinTolerance(d *audit.LearningData) bool {
	return d.PredictedDurationHours > 0 && d.TimelineErrorRatio() <= timelineTolerance
}
