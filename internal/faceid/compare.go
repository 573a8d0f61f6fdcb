package faceid

import (
	"fmt"
	"math"
)

// DefaultTolerance is the maximum embedding distance accepted as a match.
const DefaultTolerance = 0.6

// Distance computes the Euclidean distance between two embeddings.
// Both vectors must be non-empty, of equal length, and finite; each
// violation is a distinct ErrValidation.
func Distance(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: embedding vector is empty", ErrValidation)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: embedding length mismatch: %d vs %d", ErrValidation, len(a), len(b))
	}

	var sum float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			return 0, fmt.Errorf("%w: embedding contains non-finite value at index %d", ErrValidation, i)
		}
		diff := x - y
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}

// Compare decides whether two embeddings belong to the same face.
// The match boundary is inclusive: distance == tolerance is a match.
// Confidence is 1 - distance, clamped to [0, 1]; clamping cannot change
// a match decision because the decision is made on the raw distance.
func Compare(a, b []float32, tolerance float64) (match bool, confidence float64, err error) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	distance, err := Distance(a, b)
	if err != nil {
		return false, 0, err
	}

	confidence = 1 - distance
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return distance <= tolerance, confidence, nil
}

// RoundConfidence rounds a confidence value to 4 decimal places for
// presentation at the API boundary.
func RoundConfidence(c float64) float64 {
	return math.Round(c*10000) / 10000
}
