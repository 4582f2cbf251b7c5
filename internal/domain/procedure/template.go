package procedure

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
)

// Template describes one audit procedure that can be recommended.
type Template struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`

	RiskCategories   []audit.RiskCategory    `json:"risk_categories"`
	ComplexityLevels []audit.ComplexityLevel `json:"complexity_levels"`
	Industries       []string                `json:"industries"`
	OrgSizes         []audit.OrgSize         `json:"org_sizes"`
	ComplianceLevels []string                `json:"compliance_levels"`

	BaseEffectiveness float64  `json:"base_effectiveness"` // 0-100
	EstimatedHours    float64  `json:"estimated_hours"`
	RequiredSkills    []string `json:"required_skills"`
	RequiredTools     []string `json:"required_tools"`

	CreatedAt time.Time `json:"created_at"`
}

// AppliesTo reports whether the template declares coverage for the context's
// risk category and complexity level. Empty declaration lists mean "any".
func (t *Template) AppliesTo(ctx *audit.Context) bool {
	if len(t.RiskCategories) > 0 {
		found := false
		for _, c := range t.RiskCategories {
			if c == ctx.Risk.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(t.ComplexityLevels) > 0 {
		for _, l := range t.ComplexityLevels {
			if l == ctx.Complexity {
				return true
			}
		}
		return false
	}
	return true
}

// BestPractice is one recorded practice outcome used for alignment scoring.
type BestPractice struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	RiskCategory audit.RiskCategory    `json:"risk_category"`
	Industry     string                `json:"industry"`
	Complexity   audit.ComplexityLevel `json:"complexity"`
	SuccessRate  float64               `json:"success_rate"` // 0-100
	Source       string                `json:"source"`
}

// Matches reports whether the practice is relevant to the context. Risk
// category must line up; industry matches when declared.
func (b *BestPractice) Matches(ctx *audit.Context) bool {
	if b.RiskCategory != ctx.Risk.Category {
		return false
	}
	if b.Industry != "" && b.Industry != ctx.Organization.Industry {
		return false
	}
	return true
}
