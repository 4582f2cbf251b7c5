package recommendation

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/values"
)

// FactorScore is one component of a composite score, kept for explainability.
type FactorScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`  // 0-100
	Weight float64 `json:"weight"` // fraction of the composite
}

// ContextualFactor explains how one context attribute moved a score.
type ContextualFactor struct {
	Name        string `json:"name"`
	Impact      string `json:"impact"` // positive | negative | neutral
	Description string `json:"description"`
}

// ProcedureAlternative is a runner-up template with explicit tradeoffs.
type ProcedureAlternative struct {
	TemplateID  uuid.UUID    `json:"template_id"`
	Name        string       `json:"name"`
	Score       values.Score `json:"score"`
	Tradeoffs   string       `json:"tradeoffs"`
	Benefits    string       `json:"benefits"`
	Limitations string       `json:"limitations"`
}

// ProcedureRecommendation scores one procedure template for a context.
// Immutable once produced.
type ProcedureRecommendation struct {
	ID         uuid.UUID `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	Name       string    `json:"name"`

	Score   values.Score  `json:"score"`
	Factors []FactorScore `json:"factors"`

	PredictedEffectiveness float64 `json:"predicted_effectiveness"` // 0-100
	EstimatedHours         float64 `json:"estimated_hours"`

	Alternatives      []ProcedureAlternative `json:"alternatives"`
	ContextualFactors []ContextualFactor     `json:"contextual_factors"`
	Reasoning         string                 `json:"reasoning"`

	GeneratedAt time.Time `json:"generated_at"`
}

// SkillGap flags a required skill the auditor falls short on.
type SkillGap struct {
	Skill         values.SkillTag `json:"skill"`
	RequiredLevel float64         `json:"required_level"`
	CurrentLevel  float64         `json:"current_level"`
	Gap           float64         `json:"gap"`
	Impact        string          `json:"impact"` // low | medium | high
}

// RiskFactor names one delivery risk for an assignment, with mitigation.
type RiskFactor struct {
	Name       string `json:"name"`
	Severity   string `json:"severity"` // low | medium | high
	Mitigation string `json:"mitigation"`
}

// AvailabilityStatus buckets an auditor's current workload.
type AvailabilityStatus string

const (
	FullyAvailable     AvailabilityStatus = "fully_available"
	PartiallyAvailable AvailabilityStatus = "partially_available"
	Overloaded         AvailabilityStatus = "overloaded"
)

// PerformancePrediction estimates how an auditor would fare on a context.
type PerformancePrediction struct {
	AuditorID          uuid.UUID    `json:"auditor_id"`
	ExpectedQuality    values.Score `json:"expected_quality"`
	ExpectedHours      float64      `json:"expected_hours"`
	SuccessProbability float64      `json:"success_probability"` // 50-95
	RiskFactors        []RiskFactor `json:"risk_factors"`
}

// AuditorRecommendation scores one auditor for a context.
type AuditorRecommendation struct {
	ID        uuid.UUID `json:"id"`
	AuditorID uuid.UUID `json:"auditor_id"`
	Name      string    `json:"name"`

	MatchScore values.Score  `json:"match_score"`
	Factors    []FactorScore `json:"factors"`

	Availability AvailabilityStatus `json:"availability"`
	Utilization  float64            `json:"utilization"` // percent of weekly capacity

	SkillGaps  []SkillGap `json:"skill_gaps"`
	Strengths  []string   `json:"strengths"`
	Challenges []string   `json:"challenges"`

	Prediction *PerformancePrediction `json:"prediction,omitempty"`
	Reasoning  string                 `json:"reasoning"`

	GeneratedAt time.Time `json:"generated_at"`
}

// DurationFactor is one signed multiplicative adjustment on the timeline.
type DurationFactor struct {
	Name      string  `json:"name"`
	Direction string  `json:"direction"` // increases | decreases | varies
	Magnitude float64 `json:"magnitude"` // percent, signed
}

// Milestone is one fixed-proportion checkpoint in the timeline.
// Flexibility is the percentage the checkpoint may slip without replanning.
type Milestone struct {
	Name        string  `json:"name"`
	OffsetHours float64 `json:"offset_hours"`
	Flexibility float64 `json:"flexibility"`
	DependsOn   string  `json:"depends_on,omitempty"`
}

// ContingencyOption is a pre-planned response to a named schedule risk.
type ContingencyOption struct {
	Scenario    string  `json:"scenario"`
	Probability float64 `json:"probability"` // 0-100
	Impact      string  `json:"impact"`
	Response    string  `json:"response"`
}

// TimelineRecommendation predicts duration and schedule shape for a context.
type TimelineRecommendation struct {
	ID uuid.UUID `json:"id"`

	RecommendedHours float64      `json:"recommended_hours"`
	BufferHours      float64      `json:"buffer_hours"`
	Confidence       values.Score `json:"confidence"`

	Factors       []DurationFactor    `json:"factors"`
	Milestones    []Milestone         `json:"milestones"`
	Contingencies []ContingencyOption `json:"contingencies"`

	SchedulingStrategy string   `json:"scheduling_strategy"`
	Optimizations      []string `json:"optimizations"`
	Reasoning          string   `json:"reasoning"`

	GeneratedAt time.Time `json:"generated_at"`
}

// RiskAssessment summarizes delivery risk for a comprehensive recommendation.
type RiskAssessment struct {
	Level       string       `json:"level"` // low | medium | high
	Factors     []RiskFactor `json:"factors"`
	Contingency string       `json:"contingency"`
}

// AlternativeStrategy is one pre-built alternative execution approach.
type AlternativeStrategy struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
	ExpectedOutcome string   `json:"expected_outcome"`
}

// QualityGate is a checkpoint a phase must pass before the next begins.
type QualityGate struct {
	Name     string `json:"name"`
	Criteria string `json:"criteria"`
}

// ImplementationPhase is one phase of the delivery plan.
type ImplementationPhase struct {
	Name         string        `json:"name"`
	Hours        float64       `json:"hours"`
	Deliverables []string      `json:"deliverables"`
	Gates        []QualityGate `json:"gates"`
}

// Comprehensive composes the three recommendation types for one audit.
// One instance per request, owned by the orchestrator; stored feedback
// references it by RecommendationID rather than duplicating it.
type Comprehensive struct {
	ID      uuid.UUID `json:"id"`
	AuditID uuid.UUID `json:"audit_id"`
	UserID  uuid.UUID `json:"user_id"`

	Procedures []ProcedureRecommendation `json:"procedures"`
	Auditors   []AuditorRecommendation   `json:"auditors"`
	Timeline   *TimelineRecommendation   `json:"timeline,omitempty"`

	OverallScore       values.Score          `json:"overall_score"`
	SuccessProbability float64               `json:"success_probability"` // 30-95
	Risk               RiskAssessment        `json:"risk"`
	Alternatives       []AlternativeStrategy `json:"alternatives"`
	Plan               []ImplementationPhase `json:"plan"`
	Reasoning          string                `json:"reasoning"`

	Partial     bool          `json:"partial"` // a recommender missed the deadline
	Context     audit.Context `json:"context"`
	GeneratedAt time.Time     `json:"generated_at"`
}
