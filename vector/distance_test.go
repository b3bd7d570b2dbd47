package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{1, 0}

	// Orthogonal vectors -> similarity 0
	if sim, err := CosineSimilarity(a, b); err != nil || math.Abs(float64(sim)) > 1e-6 {
		t.Fatalf("CosineSimilarity(a,b) = %v, %v; want 0, nil", sim, err)
	}

	// Identical vectors -> similarity 1
	if sim, err := CosineSimilarity(a, c); err != nil || math.Abs(float64(sim)-1) > 1e-6 {
		t.Fatalf("CosineSimilarity(a,c) = %v, %v; want 1, nil", sim, err)
	}
}

func TestCosineDistanceLengthMismatch(t *testing.T) {
	if _, err := CosineDistance([]float32{1, 0}, []float32{1, 0, 0}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestCosineDistanceZeroVector(t *testing.T) {
	d, err := CosineDistance([]float32{0, 0}, []float32{1, 0})
	if err != nil {
		t.Fatalf("CosineDistance failed: %v", err)
	}
	if d != 1 {
		t.Fatalf("zero-magnitude distance = %v, want 1", d)
	}
}
