// Package core defines the shared data model for the sift library.
package core

import "time"

// Chunk is a bounded span of a document's text stored and embedded as one
// retrieval unit. The pair (SourcePath, Fingerprint) is unique within a
// store: re-inserting identical content for the same source replaces the
// existing row instead of duplicating it.
type Chunk struct {
	// SourcePath identifies the originating document, relative to the
	// indexed root.
	SourcePath string `json:"source_path"`

	// Content is the chunk text with line endings normalized to LF.
	Content string `json:"content"`

	// Fingerprint is a 128-bit content hash of Content, hex encoded.
	Fingerprint string `json:"fingerprint"`

	// Embedding is the vector representation of Content. Nil when no
	// embedding was produced.
	Embedding []float32 `json:"embedding,omitempty"`

	// VectorRef links to the vector index row holding Embedding. Zero
	// when no embedding is stored. Owned by the vector store.
	VectorRef int64 `json:"vector_ref,omitempty"`

	// CreatedAt is the insertion timestamp, set by the store.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// HasEmbedding reports whether the chunk carries an embedding vector.
func (c Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}
