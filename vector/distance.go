package vector

import (
	"fmt"

	"github.com/viant/vec/search"
)

// CosineDistance returns 1 - cosine similarity between two vectors.
// Zero-magnitude vectors are treated as maximally distant.
func CosineDistance(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: length mismatch %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 1, nil
	}

	va := search.Float32s(a)
	ma := va.Magnitude()
	mb := search.Float32s(b).Magnitude()
	if ma == 0 || mb == 0 {
		return 1, nil
	}
	return va.CosineDistanceWithMagnitude(b, ma, mb), nil
}

// CosineSimilarity returns the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) (float32, error) {
	d, err := CosineDistance(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - d, nil
}
