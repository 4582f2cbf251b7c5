package audit

import (
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

// RiskCategory tags the primary risk area an audit addresses.
type RiskCategory string

const (
	RiskFraud       RiskCategory = "fraud"
	RiskCompliance  RiskCategory = "compliance"
	RiskOperational RiskCategory = "operational"
	RiskFinancial   RiskCategory = "financial"
	RiskITSecurity  RiskCategory = "it_security"
	RiskStrategic   RiskCategory = "strategic"
)

// ComplexityLevel is the 4-level ordered complexity domain shared by audit
// contexts and auditor profiles. Ordering is by the underlying int value.
type ComplexityLevel int

const (
	ComplexitySimple ComplexityLevel = iota
	ComplexityModerate
	ComplexityComplex
	ComplexityHighlyComplex
)

func (c ComplexityLevel) String() string {
	switch c {
	case ComplexitySimple:
		return "simple"
	case ComplexityModerate:
		return "moderate"
	case ComplexityComplex:
		return "complex"
	case ComplexityHighlyComplex:
		return "highly_complex"
	default:
		return "unknown"
	}
}

// ParseComplexityLevel maps a stored string back to its level. Unknown input
// falls back to moderate.
func ParseComplexityLevel(s string) ComplexityLevel {
	switch s {
	case "simple":
		return ComplexitySimple
	case "moderate":
		return ComplexityModerate
	case "complex":
		return ComplexityComplex
	case "highly_complex":
		return ComplexityHighlyComplex
	default:
		return ComplexityModerate
	}
}

// UrgencyLevel ranks timeline pressure on an audit.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyNormal   UrgencyLevel = "normal"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// OrgSize buckets the audited organization by headcount/scope.
type OrgSize string

const (
	OrgSmall      OrgSize = "small"
	OrgMedium     OrgSize = "medium"
	OrgLarge      OrgSize = "large"
	OrgEnterprise OrgSize = "enterprise"
)

// RiskProfile describes the risk being audited.
type RiskProfile struct {
	Category          RiskCategory `json:"category" validate:"required"`
	InherentRiskScore float64      `json:"inherent_risk_score" validate:"gte=0,lte=25"`
}

// OrganizationalContext describes the audited organization.
type OrganizationalContext struct {
	Industry        string  `json:"industry"`
	Size            OrgSize `json:"size"`
	ComplianceLevel string  `json:"compliance_level"`
	MaturityLevel   string  `json:"maturity_level"`
}

// TimelineConstraints bound the audit schedule.
type TimelineConstraints struct {
	MaxDurationHours float64      `json:"max_duration_hours" validate:"gt=0"`
	Urgency          UrgencyLevel `json:"urgency"`
}

// QualityRequirements capture the quality bar for the engagement.
type QualityRequirements struct {
	TargetQualityScore   float64 `json:"target_quality_score"`
	ExpertReviewRequired bool    `json:"expert_review_required"`
}

// AvailableResources lists what the engagement can draw on.
type AvailableResources struct {
	Skills []values.SkillTag `json:"skills"`
	Tools  []string          `json:"tools"`
}

// Context is the immutable per-request description of an upcoming audit. All
// recommenders score candidates against it; none of them mutate it.
type Context struct {
	Risk         RiskProfile           `json:"risk" validate:"required"`
	Organization OrganizationalContext `json:"organization"`
	Complexity   ComplexityLevel       `json:"complexity"`
	Timeline     TimelineConstraints   `json:"timeline" validate:"required"`
	Quality      QualityRequirements   `json:"quality"`
	Resources    AvailableResources    `json:"resources"`
}

// ResourceScarce reports whether the context offers fewer resources than a
// typical engagement needs.
func (c *Context) ResourceScarce() bool {
	return len(c.Resources.Skills) < 2 && len(c.Resources.Tools) == 0
}
