package server

import (
	"github.com/hubenschmidt/go-sift/pipeline"
	"github.com/hubenschmidt/go-sift/query"
	"github.com/hubenschmidt/go-sift/vector"
)

type IndexRequest struct {
	Directory      string   `json:"directory"`
	Extensions     []string `json:"extensions,omitempty"`
	IgnorePatterns []string `json:"ignore_patterns,omitempty"`
}

type QueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type StatsResponse struct {
	Chunks  int      `json:"chunks"`
	Sources []string `json:"sources"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Re-export result types from the core packages
type (
	IndexResult   = pipeline.IndexResult
	ReindexResult = pipeline.ReindexResult
	QueryResult   = query.Result
	SearchResult  = vector.SearchResult
)
