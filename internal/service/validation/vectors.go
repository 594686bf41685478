package validation

import (
	"fmt"
	"math"
)

// DefaultMaxAbsValue is the magnitude above which an element is flagged
// as suspicious. Normalized embeddings stay well below it; values past
// the threshold usually mean raw logits or corrupted data. Exceeding it
// is a warning, not an error.
const DefaultMaxAbsValue = 100.0

// BatchVerdict is the outcome of validating a batch of vectors.
type BatchVerdict struct {
	Valid             bool
	Errors            []string
	Warnings          []string
	Count             int
	ExpectedDimension int
}

// CheckVectorBatch checks every vector in the batch for shape and value
// sanity. Errors accumulate across all indices so the caller sees the
// full problem set in one pass; Valid ignores warnings. A maxAbs of 0
// or less selects DefaultMaxAbsValue.
func CheckVectorBatch(vectors [][]float32, expectedDim int, maxAbs float64) *BatchVerdict {
	if maxAbs <= 0 {
		maxAbs = DefaultMaxAbsValue
	}

	verdict := &BatchVerdict{
		Count:             len(vectors),
		ExpectedDimension: expectedDim,
	}

	if len(vectors) == 0 {
		verdict.Errors = append(verdict.Errors, "no vectors provided")
		return verdict
	}

	for i, vec := range vectors {
		if vec == nil {
			verdict.Errors = append(verdict.Errors, fmt.Sprintf("vector at index %d is not an array", i))
			continue
		}

		if len(vec) != expectedDim {
			verdict.Errors = append(verdict.Errors, fmt.Sprintf("vector at index %d has length %d, expected %d", i, len(vec), expectedDim))
			continue
		}

		nonFinite := 0
		extreme := 0
		for _, v := range vec {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				nonFinite++
				continue
			}
			if math.Abs(f) > maxAbs {
				extreme++
			}
		}

		if nonFinite > 0 {
			verdict.Errors = append(verdict.Errors, fmt.Sprintf("vector at index %d contains %d non-finite values", i, nonFinite))
			continue
		}

		if extreme > 0 {
			verdict.Warnings = append(verdict.Warnings, fmt.Sprintf("vector at index %d contains %d values with absolute value above %g", i, extreme, maxAbs))
		}
	}

	verdict.Valid = len(verdict.Errors) == 0
	return verdict
}

// CheckVector validates a single vector as a batch of one.
func CheckVector(vec []float32, expectedDim int, maxAbs float64) *BatchVerdict {
	return CheckVectorBatch([][]float32{vec}, expectedDim, maxAbs)
}
