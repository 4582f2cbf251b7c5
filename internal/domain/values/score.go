package values

import (
	"fmt"
	"math"
)

// Score is a 0-100 heuristic rating used across all recommenders.
type Score float64

// NewScore creates a Score, clamping the input into [0, 100].
func NewScore(v float64) Score {
	return Score(math.Min(100, math.Max(0, v)))
}

// Float64 returns the score as a plain float64.
func (s Score) Float64() float64 {
	return float64(s)
}

// Valid reports whether the score lies in [0, 100].
func (s Score) Valid() bool {
	return s >= 0 && s <= 100
}

func (s Score) String() string {
	return fmt.Sprintf("%.1f", float64(s))
}

// Strength is a 0-1 heuristic weight for mined patterns. It is not a
// calibrated probability and must not be treated as one.
type Strength float64

// NewStrength creates a Strength, clamping the input into [0, 1].
func NewStrength(v float64) Strength {
	return Strength(math.Min(1, math.Max(0, v)))
}

// Float64 returns the strength as a plain float64.
func (s Strength) Float64() float64 {
	return float64(s)
}

// Significant reports whether the strength meets the persistence threshold.
func (s Strength) Significant() bool {
	return s >= SignificanceThreshold
}

// SignificanceThreshold is the minimum strength for a pattern to be stored.
const SignificanceThreshold Strength = 0.70
