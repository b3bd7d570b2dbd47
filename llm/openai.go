package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// maxBatchSize caps inputs per upstream request to respect the API's
// request-size limits. Batching is invisible to callers.
const maxBatchSize = 100

// OpenAIEmbedClient calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAIEmbedClient(apiKey string) *OpenAIEmbedClient {
	return &OpenAIEmbedClient{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func NewOpenAIEmbedClientWithConfig(cfg ClientConfig) *OpenAIEmbedClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60
	}
	return &OpenAIEmbedClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// Embed generates an embedding for a single input.
func (c *OpenAIEmbedClient) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	results, err := c.EmbedBatch(ctx, model, []string{input})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return &results[0], nil
}

// EmbedBatch generates embeddings for multiple inputs, splitting the work
// into requests of at most maxBatchSize inputs. Output order and count
// match the input exactly; the first failed request fails the whole call.
func (c *OpenAIEmbedClient) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	results := make([]EmbeddingResponse, 0, len(inputs))

	for start := 0; start < len(inputs); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		batch, err := c.embedRequest(ctx, model, inputs[start:end])
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}

	return results, nil
}

func (c *OpenAIEmbedClient) embedRequest(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	reqBody := map[string]any{
		"model": model,
		"input": inputs,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result openAIEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Data) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(result.Data))
	}

	// The API documents response order as input order, but each item
	// carries an index; sort on it rather than trusting arrival order.
	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})

	results := make([]EmbeddingResponse, len(result.Data))
	for i, d := range result.Data {
		results[i] = EmbeddingResponse{Embedding: d.Embedding}
	}
	if len(inputs) == 1 {
		results[0].TokenCount = result.Usage.PromptTokens
	}
	return results, nil
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}
