package recommendation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ModelType names one of the registry's scoring models.
type ModelType string

const (
	ModelProcedureEffectiveness ModelType = "procedure_effectiveness"
	ModelAuditorPerformance     ModelType = "auditor_performance"
	ModelTimelinePrediction     ModelType = "timeline_prediction"
)

// TrainingStatus tracks a model's lifecycle state.
type TrainingStatus string

const (
	StatusReady    TrainingStatus = "ready"
	StatusTraining TrainingStatus = "training"
	StatusFailed   TrainingStatus = "failed"
)

// ModelMetrics are the registry's recorded performance numbers for a model.
// They describe heuristic scorers, not fitted estimators.
type ModelMetrics struct {
	PerformanceScore float64 `json:"performance_score"` // 0-100
	Accuracy         float64 `json:"accuracy"`          // 0-1
	Precision        float64 `json:"precision"`         // 0-1
	Recall           float64 `json:"recall"`            // 0-1
}

// ScoringModel is a named, versioned heuristic scorer configuration.
// Versions increment monotonically; only retraining mutates a model.
type ScoringModel struct {
	ID      uuid.UUID      `json:"id"`
	Type    ModelType      `json:"type"`
	Version ModelVersion   `json:"version"`
	Status  TrainingStatus `json:"status"`
	Active  bool           `json:"active"`

	Configuration map[string]float64 `json:"configuration"`
	Metrics       ModelMetrics       `json:"metrics"`

	TrainingDataPoints int       `json:"training_data_points"`
	LastTrained        time.Time `json:"last_trained"`
	CreatedAt          time.Time `json:"created_at"`
}

// ModelVersion is a simple semver-style version for scoring models.
type ModelVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v ModelVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// NextPatch returns the version with the patch component incremented.
func (v ModelVersion) NextPatch() ModelVersion {
	return ModelVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}
