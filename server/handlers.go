package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/hubenschmidt/go-sift/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sources, err := s.store.ListSources(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, StatsResponse{Chunks: count, Sources: sources})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Directory == "" {
		http.Error(w, "directory is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := s.indexer.IndexDocuments(r.Context(), req.Directory, pipeline.Options{
		Extensions:     req.Extensions,
		IgnorePatterns: req.IgnorePatterns,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	log.Printf("[index] %s: %d files, %d chunks in %s",
		req.Directory, result.FilesProcessed, result.ChunksCreated, time.Since(start).Truncate(time.Millisecond))
	writeJSON(w, result)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Directory == "" {
		http.Error(w, "directory is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := s.indexer.ReindexDocuments(r.Context(), req.Directory, pipeline.Options{
		Extensions:     req.Extensions,
		IgnorePatterns: req.IgnorePatterns,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	log.Printf("[reindex] %s: %d files, %d updated, %d chunks in %s",
		req.Directory, result.FilesProcessed, result.FilesUpdated, result.ChunksCreated,
		time.Since(start).Truncate(time.Millisecond))
	writeJSON(w, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	result, err := s.engine.Query(r.Context(), req.Question, req.TopK)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
