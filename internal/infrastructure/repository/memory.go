package repository

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/auditforge/audit-intelligence/internal/domain/auditor"
	"github.com/auditforge/audit-intelligence/internal/domain/errors"
	"github.com/auditforge/audit-intelligence/internal/domain/procedure"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// delayedAccuracyThreshold is the accuracy below which a history row counts
// as delayed when computing DelayRate. Predicted durations are not stored on
// the row, so accuracy is the proxy.
const delayedAccuracyThreshold = 85.0

// Store is the in-memory persistence backend. It satisfies every consumer-side
// repository interface the services declare, which makes it the default
// backend for the engine binary and the integration tests. All methods are
// safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	templates []*procedure.Template
	practices []*procedure.BestPractice

	auditors    map[uuid.UUID]*auditor.Auditor
	profiles    map[uuid.UUID]*auditor.ExpertiseProfile
	assignments map[uuid.UUID][]*auditor.Assignment

	history  []*recommendation.PerformanceRecord
	models   map[recommendation.ModelType]*recommendation.ScoringModel
	patterns []*recommendation.Pattern

	recommendations map[uuid.UUID]*recommendation.Comprehensive
	feedback        []recommendation.Feedback
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		auditors:        make(map[uuid.UUID]*auditor.Auditor),
		profiles:        make(map[uuid.UUID]*auditor.ExpertiseProfile),
		assignments:     make(map[uuid.UUID][]*auditor.Assignment),
		models:          make(map[recommendation.ModelType]*recommendation.ScoringModel),
		recommendations: make(map[uuid.UUID]*recommendation.Comprehensive),
	}
}

// --- procedure repositories ---

func (s *Store) ListTemplates(_ context.Context) ([]*procedure.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*procedure.Template, len(s.templates))
	copy(out, s.templates)
	return out, nil
}

func (s *Store) ListBestPractices(_ context.Context) ([]*procedure.BestPractice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*procedure.BestPractice, len(s.practices))
	copy(out, s.practices)
	return out, nil
}

// AddTemplates registers procedure templates. Seed-time only.
func (s *Store) AddTemplates(templates ...*procedure.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append(s.templates, templates...)
}

// AddBestPractices registers best practices. Seed-time only.
func (s *Store) AddBestPractices(practices ...*procedure.BestPractice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.practices = append(s.practices, practices...)
}

// --- auditor repositories ---

func (s *Store) GetAuditor(_ context.Context, id uuid.UUID) (*auditor.Auditor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auditors[id]
	if !ok {
		return nil, errors.NewNotFoundError("auditor")
	}
	return a, nil
}

func (s *Store) ListActiveAuditors(_ context.Context) ([]*auditor.Auditor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*auditor.Auditor, 0, len(s.auditors))
	for _, a := range s.auditors {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

// AddAuditor registers an auditor and, when profile is non-nil, its expertise
// profile. Seed-time only.
func (s *Store) AddAuditor(a *auditor.Auditor, profile *auditor.ExpertiseProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auditors[a.ID] = a
	if profile != nil {
		s.profiles[a.ID] = profile
	}
}

func (s *Store) GetProfile(_ context.Context, auditorID uuid.UUID) (*auditor.ExpertiseProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[auditorID]
	if !ok {
		return nil, errors.NewNotFoundError("expertise profile")
	}
	return p, nil
}

func (s *Store) SaveProfile(_ context.Context, profile *auditor.ExpertiseProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.AuditorID] = profile
	return nil
}

func (s *Store) ActiveAssignments(_ context.Context, auditorID uuid.UUID) ([]*auditor.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.assignments[auditorID]
	out := make([]*auditor.Assignment, len(list))
	copy(out, list)
	return out, nil
}

// AddAssignment registers an active engagement. Seed-time only.
func (s *Store) AddAssignment(a *auditor.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.AuditorID] = append(s.assignments[a.AuditorID], a)
}

// --- performance history ---

func (s *Store) Append(_ context.Context, records []*recommendation.PerformanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, records...)
	return nil
}

// Stats aggregates history rows matching the filter. Zero-value filter fields
// match everything; an empty window yields a zero-sample result rather than
// an error so callers can apply their own fallbacks.
func (s *Store) Stats(_ context.Context, filter recommendation.HistoryFilter) (*recommendation.HistoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		matched   []*recommendation.PerformanceRecord
		successes int
	)
	for _, r := range s.history {
		if !matches(r, filter) {
			continue
		}
		matched = append(matched, r)
		if r.Success {
			successes++
		}
	}

	stats := &recommendation.HistoryStats{SampleCount: len(matched)}
	if len(matched) == 0 {
		return stats, nil
	}

	n := float64(len(matched))
	var delayed int
	for _, r := range matched {
		stats.AvgEffectiveness += r.Effectiveness
		stats.AvgCompletionHours += r.CompletionHours
		stats.AvgQualityRating += r.QualityRating
		stats.AvgTimelineAccuracy += r.TimelineAccuracy
		if r.TimelineAccuracy < delayedAccuracyThreshold {
			delayed++
		}
	}
	stats.AvgEffectiveness /= n
	stats.AvgCompletionHours /= n
	stats.AvgQualityRating /= n
	stats.AvgTimelineAccuracy /= n
	stats.SuccessRate = float64(successes) / n * 100
	stats.DelayRate = float64(delayed) / n * 100

	var variance float64
	for _, r := range matched {
		d := r.CompletionHours - stats.AvgCompletionHours
		variance += d * d
	}
	stats.DurationStdDev = math.Sqrt(variance / n)

	return stats, nil
}

func matches(r *recommendation.PerformanceRecord, f recommendation.HistoryFilter) bool {
	if f.EntityType != "" && r.EntityType != f.EntityType {
		return false
	}
	if f.EntityID != uuid.Nil && r.EntityID != f.EntityID {
		return false
	}
	if f.RiskCategory != "" && r.RiskCategory != f.RiskCategory {
		return false
	}
	if f.Complexity != nil && r.Complexity != *f.Complexity {
		return false
	}
	if f.Industry != "" && r.Industry != f.Industry {
		return false
	}
	if f.OrgSize != "" && r.OrgSize != f.OrgSize {
		return false
	}
	if !f.Since.IsZero() && r.RecordedAt.Before(f.Since) {
		return false
	}
	return true
}

// HistoryLen reports the number of stored history rows.
func (s *Store) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// --- scoring models ---

func (s *Store) GetActiveByType(_ context.Context, modelType recommendation.ModelType) (*recommendation.ScoringModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.models[modelType]
	if !ok || !m.Active {
		return nil, errors.NewNotFoundError("scoring model")
	}
	return m, nil
}

func (s *Store) Save(_ context.Context, model *recommendation.ScoringModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.models[model.Type] = model
	return nil
}

// --- mined patterns ---

// SavePatterns replaces the stored pattern set. A newer analysis pass
// supersedes older ones wholesale.
func (s *Store) SavePatterns(_ context.Context, patterns []*recommendation.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patterns = append(s.patterns[:0], patterns...)
	return nil
}

// Patterns returns the most recently stored pattern set.
func (s *Store) Patterns() []*recommendation.Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*recommendation.Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// --- recommendations and feedback ---

func (s *Store) SaveComprehensive(_ context.Context, rec *recommendation.Comprehensive) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recommendations[rec.AuditID] = rec
	return nil
}

func (s *Store) GetComprehensive(_ context.Context, auditID uuid.UUID) (*recommendation.Comprehensive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recommendations[auditID]
	if !ok {
		return nil, errors.NewNotFoundError("recommendation")
	}
	return rec, nil
}

func (s *Store) SaveFeedback(_ context.Context, fb recommendation.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feedback = append(s.feedback, fb)
	return nil
}

// FeedbackFor returns stored feedback for one recommendation.
func (s *Store) FeedbackFor(recommendationID uuid.UUID) []recommendation.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []recommendation.Feedback
	for _, fb := range s.feedback {
		if fb.RecommendationID == recommendationID {
			out = append(out, fb)
		}
	}
	return out
}
