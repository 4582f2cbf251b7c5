package procedurerec

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

func fraudBankingContext() *audit.Context {
	return &audit.Context{
		Risk: audit.RiskProfile{Category: audit.RiskFraud, InherentRiskScore: 22},
		Organization: audit.OrganizationalContext{
			Industry:        "banking",
			Size:            audit.OrgLarge,
			ComplianceLevel: "regulated",
			MaturityLevel:   "managed",
		},
		Complexity: audit.ComplexityComplex,
		Timeline:   audit.TimelineConstraints{MaxDurationHours: 120, Urgency: audit.UrgencyCritical},
	}
}

// fullMatchTemplate declares coverage for every dimension of the fraud
// banking context.
func fullMatchTemplate(name string, hours float64) *procedure.Template {
	return &procedure.Template{
		ID:                uuid.New(),
		Name:              name,
		RiskCategories:    []audit.RiskCategory{audit.RiskFraud},
		ComplexityLevels:  []audit.ComplexityLevel{audit.ComplexityComplex},
		Industries:        []string{"banking"},
		OrgSizes:          []audit.OrgSize{audit.OrgLarge},
		ComplianceLevels:  []string{"regulated"},
		BaseEffectiveness: 75,
		EstimatedHours:    hours,
	}
}

func newRecommender(templates *mockTemplateRepo, practices *mockPracticeRepo, history *mockHistoryRepo) Service {
	return NewService(templates, practices, history, stubModel{}, zap.NewNop())
}

func TestRecommendNoHistory(t *testing.T) {
	ctx := context.Background()

	templates := &mockTemplateRepo{}
	practices := &mockPracticeRepo{}
	history := &mockHistoryRepo{}

	full := fullMatchTemplate("fraud walkthrough", 40)
	offCategory := &procedure.Template{
		ID:               uuid.New(),
		Name:             "inventory count",
		RiskCategories:   []audit.RiskCategory{audit.RiskOperational},
		ComplexityLevels: []audit.ComplexityLevel{audit.ComplexityComplex},
	}
	partial := &procedure.Template{
		ID:               uuid.New(),
		Name:             "generic fraud review",
		RiskCategories:   []audit.RiskCategory{audit.RiskFraud},
		ComplexityLevels: []audit.ComplexityLevel{audit.ComplexityComplex},
		Industries:       []string{"retail"}, // industry mismatch drops 20 match points
		BaseEffectiveness: 70,
		EstimatedHours:    30,
	}

	templates.On("ListTemplates", ctx).Return([]*procedure.Template{full, offCategory, partial}, nil)
	practices.On("ListBestPractices", ctx).Return([]*procedure.BestPractice{}, nil)
	history.On("Stats", ctx, mock.AnythingOfType("recommendation.HistoryFilter")).
		Return(&recommendation.HistoryStats{}, nil)

	svc := newRecommender(templates, practices, history)
	recs, err := svc.Recommend(ctx, fraudBankingContext())
	require.NoError(t, err)

	// Only the full-match template reaches the threshold with no history:
	// 0.30*50 + 0.25*100 + 0.20*50 + 0.15*100 + 0.10*50 = 70.
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, full.ID, rec.TemplateID)
	assert.InDelta(t, 70.0, rec.Score.Float64(), 0.01)

	for _, f := range rec.Factors {
		assert.GreaterOrEqual(t, f.Score, 0.0)
		assert.LessOrEqual(t, f.Score, 100.0)
		switch f.Name {
		case "historical_success", "best_practice_alignment", "quality_potential":
			assert.InDelta(t, 50.0, f.Score, 0.01, f.Name)
		case "context_match", "time_efficiency":
			assert.InDelta(t, 100.0, f.Score, 0.01, f.Name)
		}
	}
	assert.NotEmpty(t, rec.ContextualFactors)
	assert.LessOrEqual(t, len(rec.ContextualFactors), 4)
}

func TestRecommendSortedAndTruncated(t *testing.T) {
	ctx := context.Background()

	templates := &mockTemplateRepo{}
	practices := &mockPracticeRepo{}
	history := &mockHistoryRepo{}

	var all []*procedure.Template
	for i := 0; i < 8; i++ {
		all = append(all, fullMatchTemplate("procedure", 20+float64(i)*5))
	}
	templates.On("ListTemplates", ctx).Return(all, nil)
	practices.On("ListBestPractices", ctx).Return([]*procedure.BestPractice{}, nil)

	// Distinct success rates so candidates separate; all above threshold.
	for i, tmpl := range all {
		history.On("Stats", ctx, mock.MatchedBy(func(id uuid.UUID) func(recommendation.HistoryFilter) bool {
			return func(f recommendation.HistoryFilter) bool { return f.EntityID == id }
		}(tmpl.ID))).Return(&recommendation.HistoryStats{
			SampleCount:        4,
			SuccessRate:        float64(60 + i*5),
			AvgQualityRating:   80,
			AvgEffectiveness:   75,
			AvgCompletionHours: tmpl.EstimatedHours,
		}, nil)
	}

	svc := newRecommender(templates, practices, history)
	recs, err := svc.Recommend(ctx, fraudBankingContext())
	require.NoError(t, err)

	require.Len(t, recs, MaxRecommendations)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score.Float64(), recs[i].Score.Float64())
	}
	for _, r := range recs {
		assert.True(t, r.Score.Valid())
		assert.GreaterOrEqual(t, r.Score.Float64(), ConfidenceThreshold-0.01)
		assert.LessOrEqual(t, len(r.Alternatives), 3)
	}
}

func TestRecommendNoCandidates(t *testing.T) {
	ctx := context.Background()

	templates := &mockTemplateRepo{}
	practices := &mockPracticeRepo{}
	history := &mockHistoryRepo{}
	templates.On("ListTemplates", ctx).Return([]*procedure.Template{
		{
			ID:             uuid.New(),
			RiskCategories: []audit.RiskCategory{audit.RiskStrategic},
		},
	}, nil)
	practices.On("ListBestPractices", ctx).Return([]*procedure.BestPractice{}, nil)

	svc := newRecommender(templates, practices, history)
	recs, err := svc.Recommend(ctx, fraudBankingContext())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestBestPracticeAlignment(t *testing.T) {
	ctx := fraudBankingContext()

	practices := []*procedure.BestPractice{
		{RiskCategory: audit.RiskFraud, Industry: "banking", SuccessRate: 90},
		{RiskCategory: audit.RiskFraud, Industry: "", SuccessRate: 70},
		{RiskCategory: audit.RiskOperational, Industry: "banking", SuccessRate: 10},
	}
	assert.InDelta(t, 80.0, bestPracticeScore(ctx, practices), 0.01)
	assert.InDelta(t, 50.0, bestPracticeScore(ctx, nil), 0.01)
}

func TestTimeEfficiencyScore(t *testing.T) {
	tmpl := &procedure.Template{EstimatedHours: 40}

	tests := []struct {
		name     string
		stats    *recommendation.HistoryStats
		expected float64
	}{
		{name: "no history scores full", stats: &recommendation.HistoryStats{}, expected: 100},
		{
			name:     "exact tracking scores full",
			stats:    &recommendation.HistoryStats{SampleCount: 5, AvgCompletionHours: 40},
			expected: 100,
		},
		{
			name:     "25 percent overrun drops 25 points",
			stats:    &recommendation.HistoryStats{SampleCount: 5, AvgCompletionHours: 50},
			expected: 75,
		},
		{
			name:     "massive deviation floors at zero",
			stats:    &recommendation.HistoryStats{SampleCount: 5, AvgCompletionHours: 200},
			expected: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, timeEfficiencyScore(tmpl, tt.stats), 0.01)
		})
	}
}

func TestRecordOutcomes(t *testing.T) {
	ctx := context.Background()

	makeBatch := func(n int) []audit.LearningData {
		batch := make([]audit.LearningData, n)
		for i := range batch {
			batch[i] = audit.LearningData{
				ID:                  uuid.New(),
				AuditID:             uuid.New(),
				ActualProcedures:    []uuid.UUID{uuid.New(), uuid.New()},
				QualityScore:        82,
				Success:             true,
				ActualDurationHours: 35,
			}
		}
		return batch
	}

	t.Run("small batch leaves history unchanged", func(t *testing.T) {
		history := &mockHistoryRepo{}
		svc := newRecommender(&mockTemplateRepo{}, &mockPracticeRepo{}, history)

		require.NoError(t, svc.RecordOutcomes(ctx, makeBatch(4)))
		history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("full batch appends one row per procedure", func(t *testing.T) {
		history := &mockHistoryRepo{}
		history.On("Append", ctx, mock.MatchedBy(func(records []*recommendation.PerformanceRecord) bool {
			return len(records) == 10 // 5 audits x 2 procedures
		})).Return(nil)

		svc := newRecommender(&mockTemplateRepo{}, &mockPracticeRepo{}, history)
		require.NoError(t, svc.RecordOutcomes(ctx, makeBatch(5)))
		history.AssertExpectations(t)
	})
}
