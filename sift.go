// Package sift turns a directory of text-like documents into a
// persisted index of embedding vectors and answers similarity queries
// against that index.
//
// Example usage:
//
//	settings := config.Default().Apply(config.Override{
//	    StorePath: ptr("data/docs.db"),
//	})
//
//	result, err := sift.IndexDocuments(ctx, settings, "./docs", sift.IndexOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	answer, err := sift.Query(ctx, settings, "how do I rotate credentials?", 0)
package sift

import (
	"context"

	"github.com/hubenschmidt/go-sift/config"
	"github.com/hubenschmidt/go-sift/core"
	"github.com/hubenschmidt/go-sift/llm"
	"github.com/hubenschmidt/go-sift/monitor"
	"github.com/hubenschmidt/go-sift/pipeline"
	"github.com/hubenschmidt/go-sift/query"
	"github.com/hubenschmidt/go-sift/server"
	"github.com/hubenschmidt/go-sift/vector"
)

// Configuration aliases
type (
	Settings = config.Settings
	Override = config.Override
)

// DefaultSettings returns the baseline settings.
func DefaultSettings() Settings {
	return config.Default()
}

// Core type aliases
type (
	Chunk      = core.Chunk
	IndexError = core.IndexError
)

// Vector store aliases
type (
	Store        = vector.Store
	SearchResult = vector.SearchResult
)

// NewMemoryStore creates a new in-memory vector store.
func NewMemoryStore() *vector.MemoryStore {
	return vector.NewMemoryStore()
}

// NewSQLiteStore opens or creates a SQLite-backed vector store.
func NewSQLiteStore(path string, dimension int) (*vector.SQLiteStore, error) {
	return vector.NewSQLiteStore(path, dimension)
}

// NewPgVectorStore creates a new pgvector-backed vector store.
func NewPgVectorStore(dsn string, dimension int) (*vector.PgVectorStore, error) {
	return vector.NewPgVectorStore(dsn, dimension)
}

// Embedding client aliases
type (
	EmbeddingClient = llm.EmbeddingClient
	UnifiedClient   = llm.UnifiedClient
	UnifiedConfig   = llm.UnifiedConfig
)

// NewUnifiedClient creates an embedding client that routes to the
// appropriate provider by model identifier.
func NewUnifiedClient(cfg UnifiedConfig) *UnifiedClient {
	return llm.NewUnifiedClient(cfg)
}

// Pipeline and query aliases
type (
	Indexer       = pipeline.Indexer
	IndexerConfig = pipeline.Config
	IndexOptions  = pipeline.Options
	IndexResult   = pipeline.IndexResult
	ReindexResult = pipeline.ReindexResult
	QueryEngine   = query.Engine
	QueryConfig   = query.Config
	QueryResult   = query.Result
)

// NewIndexer creates an indexing pipeline over explicit collaborators.
func NewIndexer(cfg IndexerConfig) *Indexer {
	return pipeline.NewIndexer(cfg)
}

// NewQueryEngine creates a query engine over explicit collaborators.
func NewQueryEngine(cfg QueryConfig) *QueryEngine {
	return query.NewEngine(cfg)
}

// Monitor aliases
type (
	Collector         = monitor.Collector
	InMemoryCollector = monitor.InMemoryCollector
	RunMetrics        = monitor.RunMetrics
)

// NewInMemoryCollector creates a new in-memory metrics collector.
func NewInMemoryCollector(runID string) *InMemoryCollector {
	return monitor.NewInMemoryCollector(runID)
}

// Server aliases
type (
	Server       = server.Server
	ServerConfig = server.Config
)

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	return server.New(cfg)
}

// IndexDocuments resolves the settings, opens the configured store,
// indexes dir, and closes the store on every exit path.
func IndexDocuments(ctx context.Context, settings Settings, dir string, opts IndexOptions) (IndexResult, error) {
	resolved, store, embedder, err := openStore(settings)
	if err != nil {
		return IndexResult{}, err
	}
	defer store.Close()

	ix := pipeline.NewIndexer(pipeline.Config{Store: store, Embedder: embedder, Settings: resolved})
	return ix.IndexDocuments(ctx, dir, opts)
}

// ReindexDocuments is IndexDocuments plus reconciliation: sources gone
// from disk are removed and every discovered file is re-embedded.
func ReindexDocuments(ctx context.Context, settings Settings, dir string, opts IndexOptions) (ReindexResult, error) {
	resolved, store, embedder, err := openStore(settings)
	if err != nil {
		return ReindexResult{}, err
	}
	defer store.Close()

	ix := pipeline.NewIndexer(pipeline.Config{Store: store, Embedder: embedder, Settings: resolved})
	return ix.ReindexDocuments(ctx, dir, opts)
}

// Query embeds the question, searches the configured store, and returns
// ranked context with citations. A topK of zero uses the configured
// default. The store is closed before returning.
func Query(ctx context.Context, settings Settings, question string, topK int) (QueryResult, error) {
	resolved, store, embedder, err := openStore(settings)
	if err != nil {
		return QueryResult{}, err
	}
	defer store.Close()

	eng := query.NewEngine(query.Config{Store: store, Embedder: embedder, Settings: resolved})
	return eng.Query(ctx, question, topK)
}

func openStore(settings Settings) (Settings, vector.Store, llm.EmbeddingClient, error) {
	resolved, err := settings.Resolve()
	if err != nil {
		return resolved, nil, nil, err
	}

	store, err := server.NewStore(resolved)
	if err != nil {
		return resolved, nil, nil, err
	}

	embedder := llm.NewUnifiedClient(llm.UnifiedConfig{
		OpenAIKey: resolved.APIKey,
		BaseURL:   resolved.BaseURL,
		OllamaURL: resolved.OllamaURL,
	})
	return resolved, store, embedder, nil
}
