package chunker

import (
	"strings"
	"testing"
)

func TestChunkRespectsSizeBound(t *testing.T) {
	text := strings.Repeat("This is a fairly ordinary sentence about nothing much. ", 50)

	chunks := Chunk(text, 200, 40)
	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}
	for i, c := range chunks {
		if len(c) > 200 {
			t.Fatalf("chunk %d has %d characters, want <= 200", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestChunkOverlapIsPrefixOfNext(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog every day. ", 40)

	overlap := 40
	chunks := Chunk(text, 200, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for i := 0; i+1 < len(chunks); i++ {
		// Chunks are whitespace-trimmed, so a tail starting mid-word
		// boundary loses its leading space in the next chunk.
		tail := strings.TrimSpace(chunks[i][len(chunks[i])-overlap:])
		if !strings.HasPrefix(chunks[i+1], tail) {
			t.Fatalf("chunk %d does not start with the previous chunk's trailing %d characters:\nprev tail: %q\nnext:      %q",
				i+1, overlap, tail, chunks[i+1][:overlap])
		}
	}
}

func TestChunkSplitsOversizedUnit(t *testing.T) {
	// No sentence boundary anywhere, so the character window applies.
	unit := strings.Repeat("a", 250)

	chunks := Chunk(unit, 100, 20)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 window chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if len(c) != 100 {
			t.Fatalf("window chunk %d has %d characters, want exactly 100", i, len(c))
		}
	}
	if last := chunks[len(chunks)-1]; len(last) != 90 {
		t.Fatalf("last window chunk has %d characters, want 90", len(last))
	}
}

func TestChunkOversizedUnitFlushesBuffer(t *testing.T) {
	text := "Short lead-in. " + strings.Repeat("b", 150)

	chunks := Chunk(text, 100, 10)
	if len(chunks) < 3 {
		t.Fatalf("expected buffered sentence plus window chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "Short lead-in." {
		t.Fatalf("expected pending buffer flushed first, got %q", chunks[0])
	}
}

func TestChunkClampsExcessiveOverlap(t *testing.T) {
	// overlap >= size would stall the window; it must be clamped.
	chunks := Chunk(strings.Repeat("c", 120), 50, 75)
	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}
	for i, c := range chunks {
		if len(c) > 50 {
			t.Fatalf("chunk %d has %d characters, want <= 50", i, len(c))
		}
	}
}

func TestChunkNormalizesLineEndings(t *testing.T) {
	chunks := Chunk("First line.\r\nSecond line.\rThird line.", 100, 10)
	for i, c := range chunks {
		if strings.ContainsRune(c, '\r') {
			t.Fatalf("chunk %d still contains CR: %q", i, c)
		}
	}
}

func TestChunkEmptyInput(t *testing.T) {
	if got := Chunk("", 100, 10); len(got) != 0 {
		t.Fatalf("expected no chunks for empty input, got %v", got)
	}
	if got := Chunk("   \n\t  ", 100, 10); len(got) != 0 {
		t.Fatalf("expected no chunks for whitespace input, got %v", got)
	}
	if got := Chunk("some text", 0, 0); len(got) != 0 {
		t.Fatalf("expected no chunks for non-positive size, got %v", got)
	}
}

func TestFingerprintDeterministicAndSensitive(t *testing.T) {
	a := Fingerprint("the same text")
	b := Fingerprint("the same text")
	c := Fingerprint("the same texT")

	if a != b {
		t.Fatalf("identical text produced different fingerprints: %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("different text produced the same fingerprint")
	}
	if len(a) != 32 {
		t.Fatalf("fingerprint length = %d, want 32 hex characters", len(a))
	}
}
