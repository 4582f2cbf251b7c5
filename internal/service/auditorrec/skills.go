package auditorrec

import (
	"fmt"
	"math"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

// Required proficiency levels per skill kind.
const (
	requiredLevelRisk         = 75.0
	requiredLevelIndustry     = 65.0
	requiredLevelComplexity   = 70.0
	requiredLevelExpertReview = 80.0
	requiredLevelRapid        = 75.0
)

// Skill-gap flag thresholds.
const (
	gapFlagThreshold   = 20.0
	gapHighImpact      = 40.0
	gapMediumImpact    = 30.0
)

// Names for conditional technical skills.
const (
	skillExpertReview  = "expert_review"
	skillRapidDelivery = "rapid_delivery"
)

// requiredSkill pairs a skill tag with the proficiency the context demands.
type requiredSkill struct {
	tag   values.SkillTag
	level float64
}

// extractRequiredSkills derives the skill demands of a context. Ordering is
// deterministic so repeated calls produce identical gap lists.
func extractRequiredSkills(auditCtx *audit.Context) []requiredSkill {
	skills := []requiredSkill{
		{tag: values.RiskSkill(string(auditCtx.Risk.Category)), level: requiredLevelRisk},
	}
	if auditCtx.Organization.Industry != "" {
		skills = append(skills, requiredSkill{
			tag:   values.IndustrySkill(auditCtx.Organization.Industry),
			level: requiredLevelIndustry,
		})
	}
	skills = append(skills, requiredSkill{
		tag:   values.ComplexitySkill(auditCtx.Complexity.String()),
		level: requiredLevelComplexity,
	})
	if auditCtx.Quality.ExpertReviewRequired {
		skills = append(skills, requiredSkill{
			tag:   values.TechnicalSkill(skillExpertReview),
			level: requiredLevelExpertReview,
		})
	}
	if auditCtx.Timeline.Urgency == audit.UrgencyCritical {
		skills = append(skills, requiredSkill{
			tag:   values.TechnicalSkill(skillRapidDelivery),
			level: requiredLevelRapid,
		})
	}
	return skills
}

// proficiency looks up a profile's level for one skill tag. Each category has
// its own lookup table; there is no name matching across categories.
func proficiency(profile *auditor.ExpertiseProfile, tag values.SkillTag) float64 {
	switch tag.Category {
	case values.SkillCategoryRisk:
		if profile.SpecializedIn(audit.RiskCategory(tag.Name)) {
			return 90
		}
		return 40
	case values.SkillCategoryIndustry:
		if profile.HasIndustryExperience(tag.Name) {
			return 85
		}
		return 45
	case values.SkillCategoryComplexity:
		required := audit.ParseComplexityLevel(tag.Name)
		switch {
		case profile.ComplexityHandling >= required:
			return 90
		case required-profile.ComplexityHandling == 1:
			return 55
		default:
			return 35
		}
	case values.SkillCategoryTechnical:
		switch tag.Name {
		case skillExpertReview:
			return profile.QualityConsistency
		case skillRapidDelivery:
			return profile.CompletionReliability
		default:
			for _, s := range profile.TechnicalSkills {
				if s == tag.Name {
					return 80
				}
			}
			return 50
		}
	default:
		return 50
	}
}

// skillAssessment is the outcome of matching one profile against a context's
// skill demands.
type skillAssessment struct {
	alignment float64 // 0-100, mean of proficiency/required ratios
	gaps      []recommendation.SkillGap
}

// assessSkills scores each required skill and flags material gaps.
func assessSkills(auditCtx *audit.Context, profile *auditor.ExpertiseProfile) skillAssessment {
	required := extractRequiredSkills(auditCtx)
	if len(required) == 0 {
		return skillAssessment{alignment: 100}
	}

	sum := 0.0
	var gaps []recommendation.SkillGap
	for _, rs := range required {
		level := proficiency(profile, rs.tag)
		sum += math.Min(100, level/rs.level*100)

		gap := rs.level - level
		if gap > gapFlagThreshold {
			impact := "low"
			switch {
			case gap > gapHighImpact:
				impact = "high"
			case gap > gapMediumImpact:
				impact = "medium"
			}
			gaps = append(gaps, recommendation.SkillGap{
				Skill:         rs.tag,
				RequiredLevel: rs.level,
				CurrentLevel:  level,
				Gap:           gap,
				Impact:        impact,
			})
		}
	}
	return skillAssessment{
		alignment: sum / float64(len(required)),
		gaps:      gaps,
	}
}

// describeGap renders a gap for strengths/challenges lists.
func describeGap(g recommendation.SkillGap) string {
	return fmt.Sprintf("%s below required level (gap %.0f)", g.Skill, g.Gap)
}
