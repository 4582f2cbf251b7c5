package patterns

import (
	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

// minGroupSize for each side of the adherence comparison.
const minGroupSize = 3

// CorrelateAdherence compares average quality between audits that followed
// the recommendation and those that deviated. A plain difference of means;
// nil when either group is too small.
func (e *engine) CorrelateAdherence(data []audit.LearningData) *recommendation.AdherenceCorrelation {
	var followedSum, deviatedSum float64
	var followedCount, deviatedCount int
	for i := range data {
		if data[i].RecommendationFollowed {
			followedSum += data[i].QualityScore
			followedCount++
		} else {
			deviatedSum += data[i].QualityScore
			deviatedCount++
		}
	}
	if followedCount < minGroupSize || deviatedCount < minGroupSize {
		return nil
	}

	followedQ := followedSum / float64(followedCount)
	deviatedQ := deviatedSum / float64(deviatedCount)
	return &recommendation.AdherenceCorrelation{
		FollowedCount:   followedCount,
		DeviatedCount:   deviatedCount,
		FollowedQuality: followedQ,
		DeviatedQuality: deviatedQ,
		QualityDelta:    followedQ - deviatedQ,
	}
}
