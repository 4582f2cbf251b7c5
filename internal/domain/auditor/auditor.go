package auditor

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
)

// Auditor is the directory record for one auditor.
type Auditor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpertiseProfile aggregates what the system knows about an auditor's
// capabilities. Profiles are created lazily on first lookup, mutated only by
// the learning pipeline, and never deleted.
type ExpertiseProfile struct {
	AuditorID uuid.UUID `json:"auditor_id"`

	RiskSpecializations []audit.RiskCategory `json:"risk_specializations"`
	IndustryExperience  []string             `json:"industry_experience"`
	TechnicalSkills     []string             `json:"technical_skills"`

	AveragePerformance    float64               `json:"average_performance"`
	CompletionReliability float64               `json:"completion_reliability"`
	QualityConsistency    float64               `json:"quality_consistency"`
	LearningVelocity      float64               `json:"learning_velocity"`
	AvailabilityScore     float64               `json:"availability_score"`
	ComplexityHandling    audit.ComplexityLevel `json:"complexity_handling"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultExpertiseProfile is the single canonical default used wherever a
// profile is missing. Every lazy-create path must go through here.
func DefaultExpertiseProfile(auditorID uuid.UUID) *ExpertiseProfile {
	return &ExpertiseProfile{
		AuditorID:             auditorID,
		RiskSpecializations:   []audit.RiskCategory{},
		IndustryExperience:    []string{},
		TechnicalSkills:       []string{},
		AveragePerformance:    75,
		CompletionReliability: 80,
		QualityConsistency:    75,
		LearningVelocity:      70,
		AvailabilityScore:     100,
		ComplexityHandling:    audit.ComplexityModerate,
		UpdatedAt:             time.Now().UTC(),
	}
}

// SpecializedIn reports whether the profile lists the given risk category.
func (p *ExpertiseProfile) SpecializedIn(category audit.RiskCategory) bool {
	for _, c := range p.RiskSpecializations {
		if c == category {
			return true
		}
	}
	return false
}

// HasIndustryExperience reports whether the profile lists the industry.
func (p *ExpertiseProfile) HasIndustryExperience(industry string) bool {
	for _, i := range p.IndustryExperience {
		if i == industry {
			return true
		}
	}
	return false
}

// Assignment is one active engagement consuming an auditor's capacity.
type Assignment struct {
	ID             uuid.UUID `json:"id"`
	AuditorID      uuid.UUID `json:"auditor_id"`
	AuditID        uuid.UUID `json:"audit_id"`
	EstimatedHours float64   `json:"estimated_hours"`
	StartedAt      time.Time `json:"started_at"`
	DueAt          time.Time `json:"due_at"`
}
