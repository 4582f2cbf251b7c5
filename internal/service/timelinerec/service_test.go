package timelinerec

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
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

func moderateContext(maxHours float64) *audit.Context {
	return &audit.Context{
		Risk:         audit.RiskProfile{Category: audit.RiskOperational, InherentRiskScore: 10},
		Organization: audit.OrganizationalContext{Industry: "manufacturing", Size: audit.OrgMedium},
		Complexity:   audit.ComplexityModerate,
		Timeline:     audit.TimelineConstraints{MaxDurationHours: maxHours, Urgency: audit.UrgencyHigh},
		Resources: audit.AvailableResources{
			Skills: []values.SkillTag{
				values.RiskSkill("operational"),
				values.IndustrySkill("manufacturing"),
			},
		},
	}
}

func emptyStats(history *mockHistoryRepo, ctx context.Context) {
	history.On("Stats", ctx, mock.AnythingOfType("recommendation.HistoryFilter")).
		Return(&recommendation.HistoryStats{}, nil)
}

func completedAudit(category audit.RiskCategory, complexity audit.ComplexityLevel, hours, quality float64, success bool) audit.LearningData {
	return audit.LearningData{
		AuditID:                uuid.New(),
		PredictedDurationHours: hours,
		ActualDurationHours:    hours,
		QualityScore:           quality,
		Success:                success,
		Context: audit.Context{
			Risk:       audit.RiskProfile{Category: category, InherentRiskScore: 10},
			Complexity: complexity,
			Timeline:   audit.TimelineConstraints{MaxDurationHours: hours * 1.25},
		},
		CompletedAt: time.Now().UTC(),
	}
}

func TestRecommendNoHistoryModerate(t *testing.T) {
	ctx := context.Background()
	history := &mockHistoryRepo{}
	emptyStats(history, ctx)

	svc := NewService(history, zap.NewNop())
	rec, err := svc.Recommend(ctx, moderateContext(100))
	require.NoError(t, err)

	// Base 80h, every factor neutral, first-time combination adds 3h.
	assert.InDelta(t, 83.0, rec.RecommendedHours, 0.01)
	assert.InDelta(t, 12.0, rec.BufferHours, 0.01) // 15% of base
	assert.Equal(t, "balanced", rec.SchedulingStrategy)
	assert.InDelta(t, 60.0, rec.Confidence.Float64(), 0.01)

	require.Len(t, rec.Milestones, 4)
	assert.Equal(t, "planning_complete", rec.Milestones[0].Name)
	assert.InDelta(t, 83*0.18, rec.Milestones[0].OffsetHours, 0.01)
	assert.Empty(t, rec.Milestones[0].DependsOn)
	assert.Equal(t, "final_report", rec.Milestones[3].Name)
	assert.InDelta(t, 83.0, rec.Milestones[3].OffsetHours, 0.01)
	assert.Equal(t, "draft_report", rec.Milestones[3].DependsOn)
	assert.InDelta(t, 25.0, rec.Milestones[3].Flexibility, 0.01)
}

func TestRecommendCriticalHighlyComplex(t *testing.T) {
	ctx := context.Background()
	history := &mockHistoryRepo{}
	emptyStats(history, ctx)

	auditCtx := &audit.Context{
		Risk:         audit.RiskProfile{Category: audit.RiskFraud, InherentRiskScore: 22},
		Organization: audit.OrganizationalContext{Industry: "banking", Size: audit.OrgMedium},
		Complexity:   audit.ComplexityHighlyComplex,
		Timeline:     audit.TimelineConstraints{MaxDurationHours: 100, Urgency: audit.UrgencyCritical},
	}

	svc := NewService(history, zap.NewNop())
	rec, err := svc.Recommend(ctx, auditCtx)
	require.NoError(t, err)

	// 80 * 1.30 * 1.10 * 0.85 = 97.24, plus 2 + 3 + 1.5 risk hours.
	assert.InDelta(t, 103.74, rec.RecommendedHours, 0.01)

	// Buffer: (15 + 5 highly complex + 5 large risk adjustment) halved for
	// critical urgency, applied to the 80h base.
	assert.InDelta(t, 10.0, rec.BufferHours, 0.01)
	assert.GreaterOrEqual(t, rec.BufferHours, 0.0)
	assert.Equal(t, "front_loaded", rec.SchedulingStrategy)

	require.NotEmpty(t, rec.Contingencies)
	assert.Equal(t, "schedule_delay", rec.Contingencies[0].Scenario)
	assert.InDelta(t, 90.0, rec.Contingencies[0].Probability, 0.01)
}

func TestRecommendBlendsHistory(t *testing.T) {
	ctx := context.Background()
	history := &mockHistoryRepo{}
	history.On("Stats", ctx, mock.AnythingOfType("recommendation.HistoryFilter")).
		Return(&recommendation.HistoryStats{
			SampleCount:        5,
			AvgCompletionHours: 100,
		}, nil)

	svc := NewService(history, zap.NewNop())
	rec, err := svc.Recommend(ctx, moderateContext(100))
	require.NoError(t, err)

	// 0.6*80 + 0.4*100 = 88, neutral factors, +3h first-time adjustment.
	assert.InDelta(t, 91.0, rec.RecommendedHours, 0.01)
	// 50 base + 15 sample bonus + 10 average certainty.
	assert.InDelta(t, 75.0, rec.Confidence.Float64(), 0.01)
}

func TestRecommendDurationFloor(t *testing.T) {
	ctx := context.Background()
	history := &mockHistoryRepo{}
	emptyStats(history, ctx)
	history.On("Append", ctx, mock.Anything).Return(nil)

	svc := NewService(history, zap.NewNop())

	// Teach the operational/moderate combination a 2h optimal duration.
	batch := make([]audit.LearningData, 0, minLearningBatch)
	for i := 0; i < minLearningBatch; i++ {
		batch = append(batch, completedAudit(audit.RiskOperational, audit.ComplexityModerate, 2, 85, true))
	}
	require.NoError(t, svc.RecordOutcomes(ctx, batch))

	rec, err := svc.Recommend(ctx, moderateContext(3))
	require.NoError(t, err)
	assert.InDelta(t, MinDurationHours, rec.RecommendedHours, 0.01)
}

func TestRecommendUsesLearnedOptimal(t *testing.T) {
	ctx := context.Background()
	history := &mockHistoryRepo{}
	emptyStats(history, ctx)
	history.On("Append", ctx, mock.Anything).Return(nil)

	svc := NewService(history, zap.NewNop())

	batch := make([]audit.LearningData, 0, minLearningBatch)
	for i := 0; i < minLearningBatch; i++ {
		batch = append(batch, completedAudit(audit.RiskOperational, audit.ComplexityModerate, 60, 90, true))
	}
	require.NoError(t, svc.RecordOutcomes(ctx, batch))

	rec, err := svc.Recommend(ctx, moderateContext(100))
	require.NoError(t, err)

	// Learned 60h optimal replaces the 80h base; neutral factors, no
	// first-time adjustment after learning.
	assert.InDelta(t, 60.0, rec.RecommendedHours, 0.01)
	assert.InDelta(t, 9.0, rec.BufferHours, 0.01)
}

func TestRecordOutcomesSmallBatchIgnored(t *testing.T) {
	ctx := context.Background()
	history := &mockHistoryRepo{}

	svc := NewService(history, zap.NewNop())
	batch := []audit.LearningData{
		completedAudit(audit.RiskFraud, audit.ComplexityComplex, 40, 80, true),
	}
	require.NoError(t, svc.RecordOutcomes(ctx, batch))
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRecordOutcomesAppendsTimelineRows(t *testing.T) {
	ctx := context.Background()
	history := &mockHistoryRepo{}

	var captured []*recommendation.PerformanceRecord
	history.On("Append", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).([]*recommendation.PerformanceRecord)
		}).
		Return(nil)

	svc := NewService(history, zap.NewNop())
	batch := make([]audit.LearningData, 0, minLearningBatch)
	for i := 0; i < minLearningBatch; i++ {
		batch = append(batch, completedAudit(audit.RiskCompliance, audit.ComplexitySimple, 20, 70, i%2 == 0))
	}
	require.NoError(t, svc.RecordOutcomes(ctx, batch))

	require.Len(t, captured, minLearningBatch)
	for _, r := range captured {
		assert.Equal(t, recommendation.EntityTimeline, r.EntityType)
		assert.Equal(t, audit.RiskCompliance, r.RiskCategory)
		assert.InDelta(t, 100.0, r.TimelineAccuracy, 0.01) // actual == predicted
	}
}
