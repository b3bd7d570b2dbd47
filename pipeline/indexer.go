// Package pipeline orchestrates file discovery, chunking, embedding, and
// storage for full and incremental indexing runs.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hubenschmidt/go-sift/chunker"
	"github.com/hubenschmidt/go-sift/config"
	"github.com/hubenschmidt/go-sift/core"
	"github.com/hubenschmidt/go-sift/llm"
	"github.com/hubenschmidt/go-sift/monitor"
	"github.com/hubenschmidt/go-sift/vector"
)

// Config wires an Indexer's collaborators.
type Config struct {
	Store    vector.Store
	Embedder llm.EmbeddingClient
	Settings config.Settings
	// Collector receives per-file metrics. Defaults to a no-op.
	Collector monitor.Collector
}

// Indexer feeds documents through the chunker and embedding client into
// the vector store. Files are processed sequentially in discovery order;
// each file's chunks are embedded in one batched call and inserted as
// one transaction, so a crash mid-run leaves previous files committed
// and the current file absent. Re-running reindex repairs the gap.
type Indexer struct {
	store     vector.Store
	embedder  llm.EmbeddingClient
	settings  config.Settings
	collector monitor.Collector
}

// Options narrows a single indexing run.
type Options struct {
	// Extensions overrides the default text-like extension allowlist.
	Extensions []string
	// IgnorePatterns prunes paths by substring containment.
	IgnorePatterns []string
}

// IndexResult reports a full indexing run.
type IndexResult struct {
	FilesProcessed int `json:"files_processed"`
	ChunksCreated  int `json:"chunks_created"`
}

// ReindexResult reports an incremental run. FilesUpdated counts removed
// sources plus re-embedded files.
type ReindexResult struct {
	FilesProcessed int `json:"files_processed"`
	FilesUpdated   int `json:"files_updated"`
	ChunksCreated  int `json:"chunks_created"`
}

func NewIndexer(cfg Config) *Indexer {
	collector := cfg.Collector
	if collector == nil {
		collector = monitor.NewNoOpCollector()
	}
	return &Indexer{
		store:     cfg.Store,
		embedder:  cfg.Embedder,
		settings:  cfg.Settings,
		collector: collector,
	}
}

// IndexDocuments walks dir, chunks and embeds every matching file, and
// inserts the results keyed by path relative to dir. Files producing
// zero chunks are skipped. The first failure aborts the run; chunks
// committed for earlier files remain.
func (ix *Indexer) IndexDocuments(ctx context.Context, dir string, opts Options) (IndexResult, error) {
	files, err := DiscoverFiles(dir, opts.Extensions, opts.IgnorePatterns)
	if err != nil {
		return IndexResult{}, core.NewIndexError("index documents", "", err)
	}

	var result IndexResult
	for _, path := range files {
		created, err := ix.indexFile(ctx, dir, path)
		if err != nil {
			return result, err
		}
		if created == 0 {
			continue
		}
		result.FilesProcessed++
		result.ChunksCreated += created
	}
	return result, nil
}

// ReindexDocuments reconciles the store against the directory: sources
// no longer on disk are deleted, and every discovered file is re-chunked
// and re-embedded (old chunks removed first, so the run is idempotent at
// file granularity). The reference policy re-embeds unconditionally
// rather than diffing stored fingerprints.
func (ix *Indexer) ReindexDocuments(ctx context.Context, dir string, opts Options) (ReindexResult, error) {
	indexed, err := ix.store.ListSources(ctx)
	if err != nil {
		return ReindexResult{}, core.NewIndexError("reindex documents", "", err)
	}

	files, err := DiscoverFiles(dir, opts.Extensions, opts.IgnorePatterns)
	if err != nil {
		return ReindexResult{}, core.NewIndexError("reindex documents", "", err)
	}

	onDisk := make(map[string]struct{}, len(files))
	for _, path := range files {
		rel, err := relSource(dir, path)
		if err != nil {
			return ReindexResult{}, err
		}
		onDisk[rel] = struct{}{}
	}

	var result ReindexResult
	for _, source := range indexed {
		if _, ok := onDisk[source]; ok {
			continue
		}
		if err := ix.store.DeleteBySource(ctx, source); err != nil {
			return result, core.NewIndexError("delete removed source", source, err)
		}
		result.FilesUpdated++
	}

	for _, path := range files {
		rel, err := relSource(dir, path)
		if err != nil {
			return result, err
		}
		if err := ix.store.DeleteBySource(ctx, rel); err != nil {
			return result, core.NewIndexError("delete stale chunks", rel, err)
		}
		created, err := ix.indexFile(ctx, dir, path)
		if err != nil {
			return result, err
		}
		if created == 0 {
			continue
		}
		result.FilesProcessed++
		result.FilesUpdated++
		result.ChunksCreated += created
	}
	return result, nil
}

// indexFile reads, chunks, embeds, and stores one file. Returns the
// number of chunks created; zero means the file had no indexable text.
func (ix *Indexer) indexFile(ctx context.Context, dir, path string) (int, error) {
	start := time.Now()
	source, err := relSource(dir, path)
	if err != nil {
		return 0, err
	}

	created, err := ix.indexSource(ctx, source, path)
	metrics := monitor.FileMetrics{
		Source:   source,
		Chunks:   created,
		Duration: time.Since(start),
		Success:  err == nil,
	}
	if err != nil {
		metrics.Error = err.Error()
	}
	ix.collector.Record(metrics)
	return created, err
}

func (ix *Indexer) indexSource(ctx context.Context, source, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, core.NewIndexError("read file", source, err)
	}

	pieces := chunker.Chunk(string(data), ix.settings.ChunkSize, ix.settings.ChunkOverlap)
	if len(pieces) == 0 {
		return 0, nil
	}

	embeddings, err := ix.embedder.EmbedBatch(ctx, ix.settings.EmbedModel, pieces)
	if err != nil {
		return 0, core.NewIndexError("embed chunks", source, err)
	}
	if len(embeddings) != len(pieces) {
		return 0, core.NewIndexError("embed chunks", source,
			fmt.Errorf("expected %d embeddings, got %d", len(pieces), len(embeddings)))
	}

	chunks := make([]core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = core.Chunk{
			SourcePath:  source,
			Content:     piece,
			Fingerprint: chunker.Fingerprint(piece),
			Embedding:   embeddings[i].Embedding,
		}
	}

	if err := ix.store.InsertMany(ctx, chunks); err != nil {
		return 0, core.NewIndexError("store chunks", source, err)
	}
	return len(chunks), nil
}

func relSource(dir, path string) (string, error) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", core.NewIndexError("resolve source path", path, err)
	}
	return filepath.ToSlash(rel), nil
}
