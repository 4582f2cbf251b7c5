package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/service/auditorrec"
	"github.com/auditforge/audit-intelligence/internal/service/modelregistry"
	"github.com/auditforge/audit-intelligence/internal/service/orchestrator"
	"github.com/auditforge/audit-intelligence/internal/service/patterns"
	"github.com/auditforge/audit-intelligence/internal/service/procedurerec"
	"github.com/auditforge/audit-intelligence/internal/service/timelinerec"
)

// The store must back every service without adapters.
var (
	_ procedurerec.TemplateRepository       = (*Store)(nil)
	_ procedurerec.BestPracticeRepository   = (*Store)(nil)
	_ procedurerec.HistoryRepository        = (*Store)(nil)
	_ auditorrec.AuditorRepository          = (*Store)(nil)
	_ auditorrec.ProfileRepository          = (*Store)(nil)
	_ auditorrec.AssignmentRepository       = (*Store)(nil)
	_ auditorrec.HistoryRepository          = (*Store)(nil)
	_ timelinerec.HistoryRepository         = (*Store)(nil)
	_ modelregistry.ModelRepository         = (*Store)(nil)
	_ patterns.PatternRepository            = (*Store)(nil)
	_ orchestrator.RecommendationRepository = (*Store)(nil)
	_ orchestrator.FeedbackRepository       = (*Store)(nil)
)

func historyRow(entityType recommendation.EntityType, opts func(*recommendation.PerformanceRecord)) *recommendation.PerformanceRecord {
	r := &recommendation.PerformanceRecord{
		ID:               uuid.New(),
		EntityType:       entityType,
		EntityID:         uuid.New(),
		AuditID:          uuid.New(),
		Effectiveness:    80,
		CompletionHours:  40,
		QualityRating:    85,
		TimelineAccuracy: 90,
		Success:          true,
		RiskCategory:     audit.RiskCompliance,
		Complexity:       audit.ComplexityModerate,
		Industry:         "healthcare",
		OrgSize:          audit.OrgMedium,
		RecordedAt:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	if opts != nil {
		opts(r)
	}
	return r
}

func TestStatsAggregatesMatchingRows(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, []*recommendation.PerformanceRecord{
		historyRow(recommendation.EntityProcedure, func(r *recommendation.PerformanceRecord) {
			r.CompletionHours = 30
			r.TimelineAccuracy = 95
		}),
		historyRow(recommendation.EntityProcedure, func(r *recommendation.PerformanceRecord) {
			r.CompletionHours = 50
			r.TimelineAccuracy = 70 // counts as delayed
			r.Success = false
		}),
		// different risk category, must not match
		historyRow(recommendation.EntityProcedure, func(r *recommendation.PerformanceRecord) {
			r.RiskCategory = audit.RiskFraud
			r.CompletionHours = 500
		}),
	}))

	stats, err := s.Stats(ctx, recommendation.HistoryFilter{
		EntityType:   recommendation.EntityProcedure,
		RiskCategory: audit.RiskCompliance,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SampleCount)
	assert.InDelta(t, 50.0, stats.SuccessRate, 0.01)
	assert.InDelta(t, 40.0, stats.AvgCompletionHours, 0.01)
	assert.InDelta(t, 82.5, stats.AvgTimelineAccuracy, 0.01)
	assert.InDelta(t, 10.0, stats.DurationStdDev, 0.01)
	assert.InDelta(t, 50.0, stats.DelayRate, 0.01)
}

func TestStatsFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	entityID := uuid.New()
	complex := audit.ComplexityComplex
	require.NoError(t, s.Append(ctx, []*recommendation.PerformanceRecord{
		historyRow(recommendation.EntityAuditor, func(r *recommendation.PerformanceRecord) {
			r.EntityID = entityID
			r.Complexity = complex
			r.RecordedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		}),
		historyRow(recommendation.EntityAuditor, nil), // moderate, March
	}))

	tests := []struct {
		name   string
		filter recommendation.HistoryFilter
		want   int
	}{
		{"by entity id", recommendation.HistoryFilter{EntityID: entityID}, 1},
		{"by complexity", recommendation.HistoryFilter{Complexity: &complex}, 1},
		{"by since", recommendation.HistoryFilter{Since: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}, 1},
		{"by org size", recommendation.HistoryFilter{OrgSize: audit.OrgMedium}, 2},
		{"no match", recommendation.HistoryFilter{Industry: "mining"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := s.Stats(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stats.SampleCount)
		})
	}
}

func TestStatsEmptyWindow(t *testing.T) {
	s := NewStore()

	stats, err := s.Stats(context.Background(), recommendation.HistoryFilter{})
	require.NoError(t, err)
	assert.Zero(t, stats.SampleCount)
	assert.Zero(t, stats.AvgCompletionHours)
}

func TestGetActiveByType(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.GetActiveByType(ctx, recommendation.ModelProcedureEffectiveness)
	assert.True(t, errors.IsNotFound(err))

	model := &recommendation.ScoringModel{
		ID:     uuid.New(),
		Type:   recommendation.ModelProcedureEffectiveness,
		Active: true,
	}
	require.NoError(t, s.Save(ctx, model))

	got, err := s.GetActiveByType(ctx, recommendation.ModelProcedureEffectiveness)
	require.NoError(t, err)
	assert.Equal(t, model.ID, got.ID)

	// deactivated models behave as missing
	model.Active = false
	require.NoError(t, s.Save(ctx, model))
	_, err = s.GetActiveByType(ctx, recommendation.ModelProcedureEffectiveness)
	assert.True(t, errors.IsNotFound(err))
}

func TestProfileLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id := uuid.New()

	_, err := s.GetProfile(ctx, id)
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, s.SaveProfile(ctx, auditor.DefaultExpertiseProfile(id)))
	got, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.AuditorID)
}

func TestSavePatternsSupersedes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first := []*recommendation.Pattern{{ID: uuid.New()}, {ID: uuid.New()}}
	require.NoError(t, s.SavePatterns(ctx, first))

	second := []*recommendation.Pattern{{ID: uuid.New()}}
	require.NoError(t, s.SavePatterns(ctx, second))

	got := s.Patterns()
	require.Len(t, got, 1)
	assert.Equal(t, second[0].ID, got[0].ID)
}

func TestRecommendationRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	auditID := uuid.New()

	_, err := s.GetComprehensive(ctx, auditID)
	assert.True(t, errors.IsNotFound(err))

	rec := &recommendation.Comprehensive{ID: uuid.New(), AuditID: auditID}
	require.NoError(t, s.SaveComprehensive(ctx, rec))

	got, err := s.GetComprehensive(ctx, auditID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestSeedDemoPopulatesEveryCollection(t *testing.T) {
	s := NewStore()
	SeedDemo(s, 42, 8, 30)

	ctx := context.Background()

	templates, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, templates)

	practices, err := s.ListBestPractices(ctx)
	require.NoError(t, err)
	assert.Len(t, practices, 6)

	active, err := s.ListActiveAuditors(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 8)

	for _, a := range active {
		profile, err := s.GetProfile(ctx, a.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, profile.TechnicalSkills)
	}

	// one row per entity type per closed audit
	assert.Equal(t, 90, s.HistoryLen())
}

func TestSeedDemoIsDeterministic(t *testing.T) {
	a, b := NewStore(), NewStore()
	SeedDemo(a, 7, 3, 5)
	SeedDemo(b, 7, 3, 5)

	auditorsA, err := a.ListActiveAuditors(context.Background())
	require.NoError(t, err)
	auditorsB, err := b.ListActiveAuditors(context.Background())
	require.NoError(t, err)

	namesA := map[string]bool{}
	for _, x := range auditorsA {
		namesA[x.Name] = true
	}
	for _, x := range auditorsB {
		assert.True(t, namesA[x.Name])
	}
}
