// Package llm provides clients for remote embedding APIs.
package llm

import (
	"context"
	"strings"
)

// EmbeddingResponse represents a single embedding result.
type EmbeddingResponse struct {
	Embedding  []float32 `json:"embedding"`
	TokenCount int       `json:"token_count"`
}

// EmbeddingClient generates embedding vectors for text inputs.
//
// EmbedBatch returns one vector per input, in input order, regardless of
// how the client splits the work across upstream requests. Any upstream
// failure fails the whole call; no partial results are returned. Clients
// do not retry; retry policy belongs to the caller.
type EmbeddingClient interface {
	Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error)
	EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error)
}

// ClientConfig configures an embedding client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout int
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout: 60,
	}
}

// modelDimensions maps embedding model identifiers to vector lengths.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// defaultDimension is the smallest known dimension. Unknown models fall
// back to it rather than erroring, for compatibility with local models.
const defaultDimension = 1536

// Dimension returns the vector length produced by the given model.
func Dimension(model string) int {
	if d, ok := modelDimensions[strings.TrimPrefix(model, "ollama/")]; ok {
		return d
	}
	return defaultDimension
}
