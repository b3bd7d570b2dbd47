// Package vector provides durable chunk storage and similarity search.
package vector

import (
	"context"

	"github.com/hubenschmidt/go-sift/core"
)

// SearchResult is one ranked similarity hit.
type SearchResult struct {
	Content    string  `json:"content"`
	SourcePath string  `json:"source_path"`
	Similarity float64 `json:"similarity"` // 1 - cosine distance
}

// Store persists chunks with their embeddings and supports
// nearest-neighbor retrieval.
//
// Implementations guarantee that a chunk and its vector index row live
// and die together: replacing or deleting a chunk never orphans a
// vector, and InsertMany/DeleteBySource are atomic: a concurrent
// reader never observes a partial batch.
type Store interface {
	// InsertOne inserts or replaces a single chunk. Replacement occurs
	// on the (SourcePath, Fingerprint) uniqueness constraint.
	InsertOne(ctx context.Context, chunk core.Chunk) error

	// InsertMany inserts chunks as one atomic unit.
	InsertMany(ctx context.Context, chunks []core.Chunk) error

	// DeleteBySource removes every chunk for the source and all paired
	// vector rows, atomically.
	DeleteBySource(ctx context.Context, sourcePath string) error

	// Exists reports whether at least one chunk references the source.
	Exists(ctx context.Context, sourcePath string) (bool, error)

	// ListSources returns the distinct sources currently indexed.
	ListSources(ctx context.Context) ([]string, error)

	// Search returns the k stored vectors closest to query by cosine
	// distance, ascending, ties broken by storage order.
	Search(ctx context.Context, query []float32, k int) ([]SearchResult, error)

	// Count returns the total number of chunk rows.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying storage handle.
	Close() error
}
