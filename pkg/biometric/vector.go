package biometric

import (
	"math"
)

// Vector represents a biometric feature encoding as produced by an external
// face or voice model. The dimensionality depends on the model used.
type Vector []float64

// Validate rejects vectors that cannot participate in a comparison: empty
// vectors and vectors containing NaN or infinite components.
func (v Vector) Validate() error {
	if len(v) == 0 {
		return ErrInvalidSample
	}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ErrInvalidSample
		}
	}
	return nil
}

// Clone returns an independent copy, so stored templates cannot be mutated
// through the caller's slice.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// EuclideanDistance computes the L2 distance between two vectors.
// Dimensionality is checked before any arithmetic; mismatched vectors are
// never truncated or padded.
func EuclideanDistance(a, b Vector) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// CosineSimilarity computes the cosine of the angle between two vectors,
// in [-1, 1] where 1 means identical direction. Zero-magnitude vectors have
// no direction and are rejected as invalid samples.
func CosineSimilarity(a, b Vector) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, ErrInvalidSample
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
