// Package similarity holds the vector math shared by the in-memory store and
// the query layer.
package similarity

import (
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when two vectors differ in length
var ErrDimensionMismatch = errors.New("vectors must have same dimension")

// Calculator scores how close two vectors are
type Calculator interface {
	Calculate(a, b []float32) (float32, error)
}

// CosineCalculator scores vectors by cosine similarity in [-1, 1]
type CosineCalculator struct{}

// NewCosineCalculator creates a new cosine similarity calculator
func NewCosineCalculator() *CosineCalculator {
	return &CosineCalculator{}
}

// Calculate computes cosine similarity. Zero and empty vectors score 0.
func (c *CosineCalculator) Calculate(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}

// CosineDistance mirrors pgvector's <=> operator: 1 - cosine similarity
func CosineDistance(a, b []float32) (float32, error) {
	s, err := NewCosineCalculator().Calculate(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - s, nil
}

// Normalize returns v scaled to unit length; zero vectors are returned as is
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	scale := 1 / math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) * scale)
	}
	return out
}

// Uniform returns the unit vector with equal components. It is the neutral
// query used when results are selected by filter rather than similarity.
func Uniform(dimension int) []float32 {
	if dimension <= 0 {
		return nil
	}
	v := make([]float32, dimension)
	component := float32(1 / math.Sqrt(float64(dimension)))
	for i := range v {
		v[i] = component
	}
	return v
}
