package llm

import (
	"context"
	"fmt"
	"strings"
)

// UnifiedClient routes embedding requests to the appropriate provider
// based on the model identifier.
type UnifiedClient struct {
	openai *OpenAIEmbedClient
	ollama *OllamaEmbedClient
}

type UnifiedConfig struct {
	OpenAIKey string
	BaseURL   string
	OllamaURL string
}

func NewUnifiedClient(cfg UnifiedConfig) *UnifiedClient {
	u := &UnifiedClient{}

	if cfg.OpenAIKey != "" {
		u.openai = NewOpenAIEmbedClientWithConfig(ClientConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.BaseURL,
			Timeout: 60,
		})
	}

	if cfg.OllamaURL != "" {
		u.ollama = NewOllamaEmbedClient(cfg.OllamaURL)
	}

	return u
}

// Embed generates an embedding for a single input.
func (u *UnifiedClient) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	client, resolvedModel := u.resolveClient(model)
	if client == nil {
		return nil, fmt.Errorf("no embedding client available for model: %s", model)
	}
	return client.Embed(ctx, resolvedModel, input)
}

// EmbedBatch generates embeddings for multiple inputs.
func (u *UnifiedClient) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	client, resolvedModel := u.resolveClient(model)
	if client == nil {
		return nil, fmt.Errorf("no embedding client available for model: %s", model)
	}
	return client.EmbedBatch(ctx, resolvedModel, inputs)
}

func (u *UnifiedClient) resolveClient(model string) (EmbeddingClient, string) {
	// Ollama embedding models
	if strings.HasPrefix(model, "ollama/") {
		if u.ollama == nil {
			return nil, model
		}
		return u.ollama, strings.TrimPrefix(model, "ollama/")
	}

	// OpenAI embedding models (text-embedding-3-small, text-embedding-3-large, etc.)
	if strings.HasPrefix(model, "text-embedding-") {
		if u.openai == nil {
			return nil, model
		}
		return u.openai, model
	}

	// Default to OpenAI for unknown embedding models
	if u.openai != nil {
		return u.openai, model
	}

	// Fall back to Ollama if OpenAI not available
	if u.ollama != nil {
		return u.ollama, model
	}

	return nil, model
}
