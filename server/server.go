// Package server exposes indexing and querying over HTTP. It is thin
// glue around the pipeline and query packages, not part of the core.
package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/hubenschmidt/go-sift/config"
	"github.com/hubenschmidt/go-sift/llm"
	"github.com/hubenschmidt/go-sift/pipeline"
	"github.com/hubenschmidt/go-sift/query"
	"github.com/hubenschmidt/go-sift/vector"
)

// Config configures a new Server instance.
type Config struct {
	Settings config.Settings

	// Store overrides the store selected from Settings.StorePath.
	Store vector.Store

	// Embedder overrides the unified client built from Settings.
	Embedder llm.EmbeddingClient
}

// Server holds one open store for the life of the process.
type Server struct {
	settings config.Settings
	store    vector.Store
	indexer  *pipeline.Indexer
	engine   *query.Engine
}

// New creates a new Server with the given configuration. The settings
// are resolved once, up front, so a missing credential fails here.
func New(cfg Config) (*Server, error) {
	settings, err := cfg.Settings.Resolve()
	if err != nil {
		return nil, err
	}

	store := cfg.Store
	if store == nil {
		store, err = NewStore(settings)
		if err != nil {
			return nil, fmt.Errorf("initialize store: %w", err)
		}
	}

	embedder := cfg.Embedder
	if embedder == nil {
		embedder = llm.NewUnifiedClient(llm.UnifiedConfig{
			OpenAIKey: settings.APIKey,
			BaseURL:   settings.BaseURL,
			OllamaURL: settings.OllamaURL,
		})
	}

	return &Server{
		settings: settings,
		store:    store,
		indexer: pipeline.NewIndexer(pipeline.Config{
			Store:    store,
			Embedder: embedder,
			Settings: settings,
		}),
		engine: query.NewEngine(query.Config{
			Store:    store,
			Embedder: embedder,
			Settings: settings,
		}),
	}, nil
}

// NewStore selects a vector store from the settings:
// - postgres:// or postgresql:// DSN: pgvector
// - Anything else: SQLite at the specified path
// The dimension is derived from the configured embedding model.
func NewStore(settings config.Settings) (vector.Store, error) {
	dimension := llm.Dimension(settings.EmbedModel)

	if strings.HasPrefix(settings.StorePath, "postgres://") || strings.HasPrefix(settings.StorePath, "postgresql://") {
		s, err := vector.NewPgVectorStore(settings.StorePath, dimension)
		if err != nil {
			return nil, fmt.Errorf("pgvector: %w", err)
		}
		log.Printf("[vector] Initialized pgvector store (dimension %d)", dimension)
		return s, nil
	}

	s, err := vector.NewSQLiteStore(settings.StorePath, dimension)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	log.Printf("[vector] Initialized sqlite store at %s (dimension %d)", settings.StorePath, dimension)
	return s, nil
}

// Close releases the store handle.
func (s *Server) Close() error {
	return s.store.Close()
}

// Handler returns an http.Handler for the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("POST /index", s.handleIndex)
	mux.HandleFunc("POST /reindex", s.handleReindex)
	mux.HandleFunc("POST /query", s.handleQuery)

	return corsMiddleware(mux)
}
