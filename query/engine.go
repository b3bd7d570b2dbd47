// Package query answers similarity questions against an indexed store.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/hubenschmidt/go-sift/config"
	"github.com/hubenschmidt/go-sift/core"
	"github.com/hubenschmidt/go-sift/llm"
	"github.com/hubenschmidt/go-sift/vector"
)

// Config wires an Engine's collaborators.
type Config struct {
	Store    vector.Store
	Embedder llm.EmbeddingClient
	Settings config.Settings
}

// Engine embeds a question with the configured model, searches the
// store, and assembles ranked context plus deduplicated citations. It
// never mutates the store.
type Engine struct {
	store    vector.Store
	embedder llm.EmbeddingClient
	settings config.Settings
}

// Result is the answer context for one question.
type Result struct {
	// Text is the ranked chunk contents concatenated as "[i] content"
	// lines, ready to hand to an answer generator.
	Text string `json:"text"`

	// Context lists the ranked chunks with similarity scores.
	Context []vector.SearchResult `json:"context"`

	// Citations are the distinct source paths among the returned
	// chunks, in first-occurrence order.
	Citations []string `json:"citations"`
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		store:    cfg.Store,
		embedder: cfg.Embedder,
		settings: cfg.Settings,
	}
}

// Query embeds the question and returns the topK closest chunks. A topK
// of zero or less falls back to the configured default.
func (e *Engine) Query(ctx context.Context, question string, topK int) (Result, error) {
	if strings.TrimSpace(question) == "" {
		return Result{}, core.NewIndexError("query", "", fmt.Errorf("question is empty"))
	}
	if topK <= 0 {
		topK = e.settings.TopK
	}

	resp, err := e.embedder.Embed(ctx, e.settings.EmbedModel, question)
	if err != nil {
		return Result{}, core.NewIndexError("embed question", "", err)
	}

	results, err := e.store.Search(ctx, resp.Embedding, topK)
	if err != nil {
		return Result{}, core.NewIndexError("search", "", err)
	}

	var b strings.Builder
	seen := make(map[string]struct{})
	var citations []string
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, r.Content)
		if _, ok := seen[r.SourcePath]; !ok {
			seen[r.SourcePath] = struct{}{}
			citations = append(citations, r.SourcePath)
		}
	}

	return Result{
		Text:      strings.TrimRight(b.String(), "\n"),
		Context:   results,
		Citations: citations,
	}, nil
}
