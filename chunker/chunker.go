// Package chunker splits document text into overlapping, boundary-aware
// segments and fingerprints each segment for deduplication.
package chunker

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Chunk splits text into ordered, non-empty pieces of at most size
// characters. Pieces end on sentence-like boundaries where possible; a
// single sentence longer than size is split by raw character position
// with a sliding window instead. Consecutive boundary-produced chunks
// share the trailing overlap characters of the previous chunk. An
// overlap of size or more is clamped to size-1 so the window always
// advances.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	units := splitUnits(Normalize(text))

	var chunks []string
	buf := ""
	for _, unit := range units {
		if len(unit) > size {
			if closed := strings.TrimSpace(buf); closed != "" {
				chunks = append(chunks, closed)
			}
			buf = ""
			chunks = append(chunks, splitOversized(unit, size, overlap)...)
			continue
		}

		if buf != "" && len(buf)+1+len(unit) > size {
			closed := strings.TrimSpace(buf)
			if closed != "" {
				chunks = append(chunks, closed)
			}
			// Seed the next buffer with the tail of the chunk just
			// closed, unless that would push it past size again.
			seed := overlapTail(closed, overlap)
			if seed != "" && len(seed)+1+len(unit) <= size {
				buf = seed + " " + unit
			} else {
				buf = unit
			}
			continue
		}

		if buf == "" {
			buf = unit
		} else {
			buf += " " + unit
		}
	}
	if closed := strings.TrimSpace(buf); closed != "" {
		chunks = append(chunks, closed)
	}
	return chunks
}

// Fingerprint returns the hex-encoded 128-bit digest of the exact chunk
// text. It detects identical content, not semantic similarity.
func Fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Normalize collapses CRLF and bare CR line endings to LF.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// splitUnits breaks text into sentence-like units after '.', '!', or '?'
// followed by whitespace. A heuristic, not a grammar: abbreviations and
// quotations are not special-cased.
func splitUnits(text string) []string {
	var units []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && isSpace(text[i+1]) {
			if u := strings.TrimSpace(text[start : i+1]); u != "" {
				units = append(units, u)
			}
			start = i + 1
		}
	}
	if u := strings.TrimSpace(text[start:]); u != "" {
		units = append(units, u)
	}
	return units
}

// splitOversized slices a unit longer than size into windows of exactly
// size characters (except possibly the last), advancing by size-overlap.
func splitOversized(unit string, size, overlap int) []string {
	stride := size - overlap
	var pieces []string
	for start := 0; start < len(unit); start += stride {
		end := start + size
		if end > len(unit) {
			end = len(unit)
		}
		if piece := unit[start:end]; strings.TrimSpace(piece) != "" {
			pieces = append(pieces, piece)
		}
		if end == len(unit) {
			break
		}
	}
	return pieces
}

func overlapTail(s string, overlap int) string {
	if overlap <= 0 || s == "" {
		return ""
	}
	if len(s) <= overlap {
		return s
	}
	return s[len(s)-overlap:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
