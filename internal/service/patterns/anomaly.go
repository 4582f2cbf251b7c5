package patterns

import (
	"fmt"
	"math"

	"github.com/auditforge/audit-intelligence/internal/domain/audit"
	"github.com/auditforge/audit-intelligence/internal/domain/recommendation"
)

const (
	anomalyZ  = 2.5
	criticalZ = 3.0
)

const (
	dimensionQuality  = "quality"
	dimensionTimeline = "timeline_variance"
)

// DetectAnomalies flags records whose quality score or timeline error ratio
// sits more than 2.5 standard deviations from the corpus mean. Above 3
// standard deviations the anomaly is critical.
func (e *engine) DetectAnomalies(data []audit.LearningData) []recommendation.Anomaly {
	if len(data) < minClassPoints {
		return nil
	}

	quality := make([]float64, len(data))
	variance := make([]float64, len(data))
	for i := range data {
		quality[i] = data[i].QualityScore
		variance[i] = data[i].TimelineErrorRatio()
	}
	qMean, qStd := meanStdDev(quality)
	vMean, vStd := meanStdDev(variance)

	var out []recommendation.Anomaly
	for i := range data {
		d := &data[i]
		if z := zScore(d.QualityScore, qMean, qStd); z > anomalyZ {
			out = append(out, recommendation.Anomaly{
				LearningDataID: d.ID,
				AuditID:        d.AuditID,
				Dimension:      dimensionQuality,
				ZScore:         z,
				Severity:       severity(z),
				Description:    fmt.Sprintf("quality %.1f is %.1f standard deviations from the mean %.1f", d.QualityScore, z, qMean),
			})
		}
		if z := zScore(d.TimelineErrorRatio(), vMean, vStd); z > anomalyZ {
			out = append(out, recommendation.Anomaly{
				LearningDataID: d.ID,
				AuditID:        d.AuditID,
				Dimension:      dimensionTimeline,
				ZScore:         z,
				Severity:       severity(z),
				Description:    fmt.Sprintf("timeline error ratio %.2f is %.1f standard deviations from the mean %.2f", d.TimelineErrorRatio(), z, vMean),
			})
		}
	}
	return out
}

func severity(z float64) string {
	if z > criticalZ {
		return "critical"
	}
	return "notable"
}

func zScore(v, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return math.Abs(v-mean) / stdDev
}

func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
