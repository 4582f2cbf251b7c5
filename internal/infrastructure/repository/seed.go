package repository

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

var seedRiskCategories = []audit.RiskCategory{
	audit.RiskFraud,
	audit.RiskCompliance,
	audit.RiskOperational,
	audit.RiskFinancial,
	audit.RiskITSecurity,
	audit.RiskStrategic,
}

var seedIndustries = []string{
	"healthcare", "banking", "manufacturing", "retail", "technology", "energy",
}

var seedSkills = []string{
	"data_analysis", "regulatory_review", "process_mapping",
	"forensic_accounting", "penetration_testing", "interviewing",
	"sampling", "controls_testing",
}

var seedOrgSizes = []audit.OrgSize{
	audit.OrgSmall, audit.OrgMedium, audit.OrgLarge, audit.OrgEnterprise,
}

// SeedDemo fills the store with a plausible corpus: procedure templates per
// risk category, a bench of auditors with expertise profiles, and closed-audit
// history rows for every entity type. Deterministic for a given seed so demo
// runs are reproducible.
func SeedDemo(s *Store, seed int64, auditors, historyRows int) {
	if auditors < 1 {
		auditors = 1
	}
	f := gofakeit.New(seed)

	templates := seedTemplates(f)
	s.AddTemplates(templates...)
	s.AddBestPractices(seedBestPractices(f)...)

	bench := make([]*auditor.Auditor, 0, auditors)
	for i := 0; i < auditors; i++ {
		a, profile := seedAuditor(f)
		s.AddAuditor(a, profile)
		bench = append(bench, a)

		for j := 0; j < f.Number(0, 2); j++ {
			started := time.Now().UTC().Add(-time.Duration(f.Number(1, 20)) * 24 * time.Hour)
			s.AddAssignment(&auditor.Assignment{
				ID:             uuid.New(),
				AuditorID:      a.ID,
				AuditID:        uuid.New(),
				EstimatedHours: f.Float64Range(20, 120),
				StartedAt:      started,
				DueAt:          started.Add(time.Duration(f.Number(10, 45)) * 24 * time.Hour),
			})
		}
	}

	s.mu.Lock()
	s.history = append(s.history, seedHistory(f, templates, bench, historyRows)...)
	s.mu.Unlock()
}

func seedTemplates(f *gofakeit.Faker) []*procedure.Template {
	names := map[audit.RiskCategory][]string{
		audit.RiskFraud:       {"Transaction Pattern Review", "Vendor Master Screening"},
		audit.RiskCompliance:  {"Regulatory Gap Assessment", "Policy Adherence Walkthrough"},
		audit.RiskOperational: {"Process Control Testing", "Segregation of Duties Review"},
		audit.RiskFinancial:   {"Account Reconciliation Audit", "Revenue Recognition Testing"},
		audit.RiskITSecurity:  {"Access Control Review", "Change Management Audit"},
		audit.RiskStrategic:   {"Initiative Alignment Review"},
	}

	var out []*procedure.Template
	for _, cat := range seedRiskCategories {
		for _, name := range names[cat] {
			out = append(out, &procedure.Template{
				ID:                uuid.New(),
				Name:              name,
				Description:       fmt.Sprintf("Standard %s procedure.", cat),
				RiskCategories:    []audit.RiskCategory{cat},
				ComplexityLevels:  nil, // any
				Industries:        nil, // any
				BaseEffectiveness: f.Float64Range(62, 88),
				EstimatedHours:    f.Float64Range(12, 60),
				RequiredSkills:    pickSkills(f, 2),
				RequiredTools:     []string{"workpaper_suite"},
				CreatedAt:         time.Now().UTC(),
			})
		}
	}
	return out
}

func seedBestPractices(f *gofakeit.Faker) []*procedure.BestPractice {
	var out []*procedure.BestPractice
	for _, cat := range seedRiskCategories {
		out = append(out, &procedure.BestPractice{
			ID:           uuid.New(),
			Name:         fmt.Sprintf("Early stakeholder alignment for %s audits", cat),
			RiskCategory: cat,
			Industry:     f.RandomString(seedIndustries),
			Complexity:   audit.ComplexityLevel(f.Number(0, 3)),
			SuccessRate:  f.Float64Range(70, 95),
			Source:       "internal_review",
		})
	}
	return out
}

func seedAuditor(f *gofakeit.Faker) (*auditor.Auditor, *auditor.ExpertiseProfile) {
	a := &auditor.Auditor{
		ID:        uuid.New(),
		Name:      f.Name(),
		Email:     f.Email(),
		Role:      f.RandomString([]string{"staff_auditor", "senior_auditor", "audit_manager"}),
		Active:    true,
		CreatedAt: time.Now().UTC().Add(-time.Duration(f.Number(30, 900)) * 24 * time.Hour),
	}

	profile := auditor.DefaultExpertiseProfile(a.ID)
	profile.RiskSpecializations = []audit.RiskCategory{
		seedRiskCategories[f.Number(0, len(seedRiskCategories)-1)],
	}
	profile.IndustryExperience = []string{f.RandomString(seedIndustries)}
	profile.TechnicalSkills = pickSkills(f, 3)
	profile.AveragePerformance = f.Float64Range(60, 92)
	profile.CompletionReliability = f.Float64Range(65, 95)
	profile.QualityConsistency = f.Float64Range(60, 92)
	profile.AvailabilityScore = f.Float64Range(40, 100)
	profile.ComplexityHandling = audit.ComplexityLevel(f.Number(0, 3))
	return a, profile
}

func seedHistory(f *gofakeit.Faker, templates []*procedure.Template, bench []*auditor.Auditor, n int) []*recommendation.PerformanceRecord {
	now := time.Now().UTC()
	out := make([]*recommendation.PerformanceRecord, 0, n*3)

	for i := 0; i < n; i++ {
		auditID := uuid.New()
		cat := seedRiskCategories[f.Number(0, len(seedRiskCategories)-1)]
		complexity := audit.ComplexityLevel(f.Number(0, 3))
		industry := f.RandomString(seedIndustries)
		size := seedOrgSizes[f.Number(0, len(seedOrgSizes)-1)]
		recorded := now.Add(-time.Duration(f.Number(1, 360)) * 24 * time.Hour)

		quality := f.Float64Range(45, 98)
		success := quality >= 60
		hours := f.Float64Range(15, 110)
		accuracy := f.Float64Range(55, 100)

		tmpl := templates[f.Number(0, len(templates)-1)]
		who := bench[f.Number(0, len(bench)-1)]

		base := recommendation.PerformanceRecord{
			AuditID:          auditID,
			Effectiveness:    f.Float64Range(50, 95),
			CompletionHours:  hours,
			QualityRating:    quality,
			TimelineAccuracy: accuracy,
			Success:          success,
			RiskCategory:     cat,
			Complexity:       complexity,
			Industry:         industry,
			OrgSize:          size,
			RecordedAt:       recorded,
		}

		proc := base
		proc.ID = uuid.New()
		proc.EntityType = recommendation.EntityProcedure
		proc.EntityID = tmpl.ID

		aud := base
		aud.ID = uuid.New()
		aud.EntityType = recommendation.EntityAuditor
		aud.EntityID = who.ID

		tl := base
		tl.ID = uuid.New()
		tl.EntityType = recommendation.EntityTimeline

		out = append(out, &proc, &aud, &tl)
	}
	return out
}

func pickSkills(f *gofakeit.Faker, n int) []string {
	picked := make([]string, 0, n)
	for len(picked) < n {
		candidate := f.RandomString(seedSkills)
		if !contains(picked, candidate) {
			picked = append(picked, candidate)
		}
	}
	return picked
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
