package core

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey     = errors.New("no embedding API key configured")
	ErrStoreClosed       = errors.New("vector store is closed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrEmbeddingRequest  = errors.New("embedding request failed")
	ErrNotIndexed        = errors.New("source not indexed")
)

// IndexError wraps a failure in an indexing or query operation with the
// operation name and, when relevant, the source file being processed.
type IndexError struct {
	Op     string
	Source string
	Err    error
}

func (e *IndexError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s [source=%s]: %v", e.Op, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func NewIndexError(op, source string, err error) *IndexError {
	return &IndexError{Op: op, Source: source, Err: err}
}
