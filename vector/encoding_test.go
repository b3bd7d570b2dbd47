package vector

import (
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []float32{0.1, -2.5, 3.14159, 0, float32(math.MaxFloat32)}
	blob := EncodeEmbedding(in)
	if len(blob) != len(in)*4 {
		t.Fatalf("blob length = %d, want %d", len(blob), len(in)*4)
	}
	out, err := DecodeEmbedding(blob)
	if err != nil {
		t.Fatalf("DecodeEmbedding failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("decoded length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("element %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeEmbeddingInvalidLength(t *testing.T) {
	if _, err := DecodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for blob not divisible by 4")
	}
}

func TestDecodeEmbeddingEmpty(t *testing.T) {
	out, err := DecodeEmbedding(nil)
	if err != nil {
		t.Fatalf("DecodeEmbedding(nil) failed: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("decoded %d elements from empty blob", len(out))
	}
}
