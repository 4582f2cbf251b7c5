package values

import "fmt"

// SkillCategory classifies a skill tag so lookups are driven by an explicit
// variant instead of substring matching on skill names.
type SkillCategory int

const (
	SkillCategoryRisk SkillCategory = iota
	SkillCategoryIndustry
	SkillCategoryComplexity
	SkillCategoryTechnical
)

func (c SkillCategory) String() string {
	switch c {
	case SkillCategoryRisk:
		return "risk"
	case SkillCategoryIndustry:
		return "industry"
	case SkillCategoryComplexity:
		return "complexity"
	case SkillCategoryTechnical:
		return "technical"
	default:
		return "unknown"
	}
}

// SkillTag identifies one skill as a (category, name) pair. Tags are
// comparable and safe to use as map keys.
type SkillTag struct {
	Category SkillCategory `json:"category"`
	Name     string        `json:"name"`
}

// RiskSkill creates a risk-category skill tag (e.g. risk:fraud).
func RiskSkill(name string) SkillTag {
	return SkillTag{Category: SkillCategoryRisk, Name: name}
}

// IndustrySkill creates an industry-experience skill tag.
func IndustrySkill(name string) SkillTag {
	return SkillTag{Category: SkillCategoryIndustry, Name: name}
}

// ComplexitySkill creates a complexity-handling skill tag.
func ComplexitySkill(name string) SkillTag {
	return SkillTag{Category: SkillCategoryComplexity, Name: name}
}

// TechnicalSkill creates a technical skill tag (tools, methods).
func TechnicalSkill(name string) SkillTag {
	return SkillTag{Category: SkillCategoryTechnical, Name: name}
}

func (t SkillTag) String() string {
	return fmt.Sprintf("%s:%s", t.Category, t.Name)
}
