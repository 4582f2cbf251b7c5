package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
	"github.com/auditforge/audit-intelligence/internal/infrastructure/cache"
	"github.com/auditforge/audit-intelligence/internal/infrastructure/config"
	"github.com/auditforge/audit-intelligence/internal/infrastructure/repository"
	"github.com/auditforge/audit-intelligence/internal/infrastructure/telemetry"
	"github.com/auditforge/audit-intelligence/internal/metrics"
	"github.com/auditforge/audit-intelligence/internal/service/auditorrec"
	"github.com/auditforge/audit-intelligence/internal/service/modelregistry"
	"github.com/auditforge/audit-intelligence/internal/service/orchestrator"
	"github.com/auditforge/audit-intelligence/internal/service/patterns"
	"github.com/auditforge/audit-intelligence/internal/service/procedurerec"
	"github.com/auditforge/audit-intelligence/internal/service/timelinerec"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		seed        = flag.Int64("seed", 1, "Seed for generated demo data")
		auditors    = flag.Int("auditors", 12, "Number of seeded auditors")
		historyRows = flag.Int("history", 60, "Number of seeded closed audits")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store := repository.NewStore()
	repository.SeedDemo(store, *seed, *auditors, *historyRows)
	logger.Info("seeded demo corpus",
		zap.Int("auditors", *auditors),
		zap.Int("history_rows", store.HistoryLen()))

	registry := modelregistry.NewService(store, logger,
		modelregistry.WithTrainingDelay(cfg.Registry.TrainingDelay))
	if err := registry.EnsureModels(ctx); err != nil {
		log.Fatalf("Failed to initialize scoring models: %v", err)
	}

	procedures := procedurerec.NewService(store, store, store, registry, logger)
	auditorRec := auditorrec.NewService(store, store, store, store, registry, logger)
	timelines := timelinerec.NewService(store, logger)
	patternEng := patterns.NewEngine(store, logger)

	opts := []orchestrator.Option{
		orchestrator.WithFanoutTimeout(cfg.Recommender.FanoutTimeout),
		orchestrator.WithQueueCapacity(cfg.Learning.QueueCapacity),
		orchestrator.WithLearningRate(cfg.Learning.BatchesPerSecond),
	}
	if cfg.Telemetry.MetricsEnabled {
		reg, err := metrics.NewRegistry(cfg.Telemetry.MeterName)
		if err != nil {
			log.Fatalf("Failed to initialize metrics: %v", err)
		}
		opts = append(opts, orchestrator.WithMetrics(reg))
	}

	// The engine degrades to repository-only reads when Redis is down.
	recCache, err := cache.NewRecommendationCache(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("recommendation cache unavailable, continuing without it",
			zap.Error(err))
	} else {
		defer recCache.Close()
		opts = append(opts, orchestrator.WithCache(recCache))
	}

	engine := orchestrator.NewService(
		procedures, auditorRec, timelines, patternEng, registry,
		store, store, logger, opts...)
	defer engine.Close()

	if err := runDemo(ctx, engine, logger); err != nil {
		log.Fatalf("Demo run failed: %v", err)
	}
}

// runDemo exercises the full recommendation lifecycle once: generate, learn
// from a batch of closed audits, submit feedback, and validate accuracy.
func runDemo(ctx context.Context, engine orchestrator.Service, logger *zap.Logger) error {
	auditID := uuid.New()
	userID := uuid.New()

	auditCtx := demoContext()
	rec, err := engine.GenerateComprehensive(ctx, auditID, userID, auditCtx)
	if err != nil {
		return err
	}
	logger.Info("generated recommendation",
		zap.String("audit_id", auditID.String()),
		zap.Float64("overall_score", float64(rec.OverallScore)),
		zap.Float64("success_probability", rec.SuccessProbability),
		zap.Int("procedures", len(rec.Procedures)),
		zap.Int("auditors", len(rec.Auditors)),
		zap.Bool("partial", rec.Partial))

	batch := demoLearningBatch(rec, auditCtx)
	if err := engine.LearnFromCompletedAudits(ctx, uuid.New(), batch); err != nil {
		return err
	}

	now := time.Now().UTC()
	feedback := []recommendation.Feedback{
		{
			ID:               uuid.New(),
			RecommendationID: rec.ID,
			AuditID:          auditID,
			UserID:           userID,
			Rating:           4,
			Followed:         true,
			Comment:          "solid procedure mix",
			SubmittedAt:      now,
		},
		{
			ID:               uuid.New(),
			RecommendationID: rec.ID,
			AuditID:          auditID,
			UserID:           uuid.New(),
			Rating:           5,
			Followed:         true,
			SubmittedAt:      now,
		},
	}
	if err := engine.ProcessFeedback(ctx, feedback); err != nil {
		return err
	}

	report, err := engine.ValidateAccuracy(ctx, auditID, &batch[0])
	if err != nil {
		return err
	}
	logger.Info("validated recommendation accuracy",
		zap.Float64("procedure_overlap", report.ProcedureOverlap),
		zap.Bool("auditor_matched", report.AuditorMatched),
		zap.Float64("timeline_error_pct", report.TimelineErrorPct),
		zap.Float64("overall_accuracy", report.OverallAccuracy))
	return nil
}

func demoContext() *audit.Context {
	return &audit.Context{
		Risk: audit.RiskProfile{
			Category:          audit.RiskCompliance,
			InherentRiskScore: 14,
		},
		Organization: audit.OrganizationalContext{
			Industry:        "healthcare",
			Size:            audit.OrgMedium,
			ComplianceLevel: "regulated",
			MaturityLevel:   "defined",
		},
		Complexity: audit.ComplexityModerate,
		Timeline: audit.TimelineConstraints{
			MaxDurationHours: 120,
			Urgency:          audit.UrgencyNormal,
		},
		Quality: audit.QualityRequirements{
			TargetQualityScore: 80,
		},
		Resources: audit.AvailableResources{
			Skills: []values.SkillTag{
				values.TechnicalSkill("regulatory_review"),
				values.TechnicalSkill("controls_testing"),
			},
			Tools: []string{"workpaper_suite"},
		},
	}
}

// demoLearningBatch fabricates closed-audit outcomes around the generated
// recommendation so the learning pipeline has something to chew on. The first
// entry closes the recommended audit itself; the rest are synthetic history.
func demoLearningBatch(rec *recommendation.Comprehensive, auditCtx *audit.Context) []audit.LearningData {
	var recommended []uuid.UUID
	for _, p := range rec.Procedures {
		recommended = append(recommended, p.TemplateID)
	}
	var topAuditor uuid.UUID
	if len(rec.Auditors) > 0 {
		topAuditor = rec.Auditors[0].AuditorID
	}
	predicted := 96.0
	if rec.Timeline != nil {
		predicted = rec.Timeline.RecommendedHours
	}

	now := time.Now().UTC()
	batch := []audit.LearningData{{
		ID:                     uuid.New(),
		AuditID:                rec.AuditID,
		RecommendedProcedures:  recommended,
		ActualProcedures:       recommended,
		RecommendedAuditorID:   topAuditor,
		ActualAuditorID:        topAuditor,
		PredictedDurationHours: predicted,
		ActualDurationHours:    predicted * 1.05,
		QualityScore:           86,
		Success:                true,
		RecommendationFollowed: true,
		ContextFactors: []audit.ContextFactor{
			{Name: "stakeholder_support", Influence: audit.InfluencePositive},
		},
		Context:     *auditCtx,
		CompletedAt: now,
	}}

	qualities := []float64{82, 74, 91, 58, 88}
	for i, q := range qualities {
		batch = append(batch, audit.LearningData{
			ID:                     uuid.New(),
			AuditID:                uuid.New(),
			RecommendedProcedures:  recommended,
			ActualProcedures:       recommended,
			RecommendedAuditorID:   topAuditor,
			ActualAuditorID:        topAuditor,
			PredictedDurationHours: predicted,
			ActualDurationHours:    predicted * (0.9 + 0.06*float64(i)),
			QualityScore:           q,
			Success:                q >= 60,
			RecommendationFollowed: i%2 == 0,
			Context:                *auditCtx,
			CompletedAt:            now.AddDate(0, -i, 0),
		})
	}
	return batch
}
