package patterns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

func completedRecord(quality float64, success bool, completed time.Time) audit.LearningData {
	return audit.LearningData{
		ID:              uuid.New(),
		AuditID:         uuid.New(),
		ActualAuditorID: uuid.New(),
		QualityScore:    quality,
		Success:         success,
		CompletedAt:     completed,
	}
}

func monthOf(m time.Month) time.Time {
	return time.Date(2026, m, 15, 0, 0, 0, 0, time.UTC)
}

func findByName(t *testing.T, patterns []*recommendation.Pattern, name string) *recommendation.Pattern {
	t.Helper()
	for _, p := range patterns {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func TestAnalyzeTemporalWorstMonth(t *testing.T) {
	ctx := context.Background()
	repo := &mockPatternRepo{}
	repo.On("SavePatterns", ctx, mock.Anything).Return(nil)

	// Five steady months and one bad one.
	data := []audit.LearningData{
		completedRecord(80, true, monthOf(time.January)),
		completedRecord(80, true, monthOf(time.February)),
		completedRecord(80, true, monthOf(time.March)),
		completedRecord(80, true, monthOf(time.April)),
		completedRecord(80, true, monthOf(time.May)),
		completedRecord(40, true, monthOf(time.June)),
	}

	eng := NewEngine(repo, zap.NewNop())
	detected, err := eng.Analyze(ctx, data)
	require.NoError(t, err)

	seasonal := findByName(t, detected, "seasonal_quality_swing")
	require.NotNil(t, seasonal)
	assert.Equal(t, recommendation.PatternTemporal, seasonal.Type)
	assert.Equal(t, "June", seasonal.Attributes["worst_month"])
	assert.Equal(t, "January", seasonal.Attributes["best_month"])
	assert.Greater(t, seasonal.Strength.Float64(), 0.0)
	assert.LessOrEqual(t, seasonal.Strength.Float64(), 1.0)
	assert.True(t, seasonal.Significant()) // std dev ~14.9 -> strength ~0.75
}

func TestAnalyzeRecurringAuditor(t *testing.T) {
	ctx := context.Background()
	repo := &mockPatternRepo{}
	repo.On("SavePatterns", ctx, mock.Anything).Return(nil)

	star := uuid.New()
	data := make([]audit.LearningData, 0, 6)
	for i := 0; i < 4; i++ {
		d := completedRecord(90, true, monthOf(time.March))
		d.ActualAuditorID = star
		data = append(data, d)
	}
	data = append(data,
		completedRecord(90, true, monthOf(time.April)),
		completedRecord(90, true, monthOf(time.May)),
	)

	eng := NewEngine(repo, zap.NewNop())
	detected, err := eng.Analyze(ctx, data)
	require.NoError(t, err)

	p := findByName(t, detected, "high_performing_auditor")
	require.NotNil(t, p)
	assert.Equal(t, star, p.Attributes["auditor_id"])
	assert.Equal(t, 4, p.SupportingPoints)
	// 4/6 + 0.2 ~= 0.867
	assert.InDelta(t, 0.867, p.Strength.Float64(), 0.001)
}

func TestAnalyzeFailureFactor(t *testing.T) {
	ctx := context.Background()
	repo := &mockPatternRepo{}
	repo.On("SavePatterns", ctx, mock.Anything).Return(nil)

	data := make([]audit.LearningData, 0, 6)
	for i := 0; i < 6; i++ {
		d := completedRecord(50, false, monthOf(time.March))
		if i < 3 {
			d.ContextFactors = []audit.ContextFactor{
				{Name: "tight_deadline", Influence: audit.InfluenceNegative},
			}
		}
		data = append(data, d)
	}

	eng := NewEngine(repo, zap.NewNop())
	detected, err := eng.Analyze(ctx, data)
	require.NoError(t, err)

	p := findByName(t, detected, "recurring_failure_factor")
	require.NotNil(t, p)
	assert.Equal(t, "tight_deadline", p.Attributes["factor"])
	assert.InDelta(t, 0.7, p.Strength.Float64(), 0.001)
}

func TestAnalyzeBelowMinimumYieldsNothing(t *testing.T) {
	ctx := context.Background()
	repo := &mockPatternRepo{}

	data := []audit.LearningData{
		completedRecord(90, true, monthOf(time.March)),
		completedRecord(40, false, monthOf(time.April)),
		completedRecord(85, true, monthOf(time.May)),
	}

	eng := NewEngine(repo, zap.NewNop())
	detected, err := eng.Analyze(ctx, data)
	require.NoError(t, err)
	assert.Empty(t, detected)
	repo.AssertNotCalled(t, "SavePatterns", mock.Anything, mock.Anything)
}

func TestAnalyzePersistsOnlySignificant(t *testing.T) {
	ctx := context.Background()
	repo := &mockPatternRepo{}

	var saved []*recommendation.Pattern
	repo.On("SavePatterns", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]*recommendation.Pattern)
		}).
		Return(nil)

	star := uuid.New()
	data := make([]audit.LearningData, 0, 8)
	for i := 0; i < 3; i++ {
		d := completedRecord(90, true, monthOf(time.March))
		d.ActualAuditorID = star
		data = append(data, d)
	}
	for i := 0; i < 5; i++ {
		data = append(data, completedRecord(82, true, monthOf(time.Month(i+1))))
	}

	eng := NewEngine(repo, zap.NewNop())
	_, err := eng.Analyze(ctx, data)
	require.NoError(t, err)

	for _, p := range saved {
		assert.True(t, p.Significant(), "persisted pattern %s below threshold", p.Name)
	}
}

func TestDetectAnomaliesQualityOutlier(t *testing.T) {
	data := make([]audit.LearningData, 0, 11)
	for i := 0; i < 10; i++ {
		data = append(data, completedRecord(80, true, monthOf(time.March)))
	}
	outlier := completedRecord(0, false, monthOf(time.March))
	data = append(data, outlier)

	eng := NewEngine(nil, zap.NewNop())
	anomalies := eng.DetectAnomalies(data)

	require.Len(t, anomalies, 1)
	a := anomalies[0]
	assert.Equal(t, outlier.AuditID, a.AuditID)
	assert.Equal(t, "quality", a.Dimension)
	assert.Greater(t, a.ZScore, 3.0)
	assert.Equal(t, "critical", a.Severity)
}

func TestDetectAnomaliesUniformCorpus(t *testing.T) {
	data := make([]audit.LearningData, 0, 8)
	for i := 0; i < 8; i++ {
		data = append(data, completedRecord(75, true, monthOf(time.March)))
	}
	eng := NewEngine(nil, zap.NewNop())
	assert.Empty(t, eng.DetectAnomalies(data))
}

func TestCorrelateAdherence(t *testing.T) {
	data := make([]audit.LearningData, 0, 7)
	for i := 0; i < 4; i++ {
		d := completedRecord(90, true, monthOf(time.March))
		d.RecommendationFollowed = true
		data = append(data, d)
	}
	for i := 0; i < 3; i++ {
		data = append(data, completedRecord(60, false, monthOf(time.March)))
	}

	eng := NewEngine(nil, zap.NewNop())
	corr := eng.CorrelateAdherence(data)
	require.NotNil(t, corr)
	assert.Equal(t, 4, corr.FollowedCount)
	assert.Equal(t, 3, corr.DeviatedCount)
	assert.InDelta(t, 30.0, corr.QualityDelta, 0.001)
}

func TestCorrelateAdherenceSmallGroup(t *testing.T) {
	data := []audit.LearningData{
		completedRecord(90, true, monthOf(time.March)),
		completedRecord(60, false, monthOf(time.March)),
	}
	eng := NewEngine(nil, zap.NewNop())
	assert.Nil(t, eng.CorrelateAdherence(data))
}
