package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hubenschmidt/go-sift/config"
	"github.com/hubenschmidt/go-sift/core"
	"github.com/hubenschmidt/go-sift/llm"
	"github.com/hubenschmidt/go-sift/monitor"
	"github.com/hubenschmidt/go-sift/vector"
)

// fakeEmbedder returns deterministic vectors derived from the input text.
// failOnCall, when positive, fails the Nth EmbedBatch call.
type fakeEmbedder struct {
	calls      int
	failOnCall int
}

func embeddingFor(input string) []float32 {
	var sum float32
	for _, b := range []byte(input) {
		sum += float32(b)
	}
	return []float32{float32(len(input)), sum, 1}
}

func (f *fakeEmbedder) Embed(ctx context.Context, model, input string) (*llm.EmbeddingResponse, error) {
	results, err := f.EmbedBatch(ctx, model, []string{input})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, model string, inputs []string) ([]llm.EmbeddingResponse, error) {
	f.calls++
	if f.failOnCall > 0 && f.calls == f.failOnCall {
		return nil, errors.New("embedding backend unavailable")
	}
	results := make([]llm.EmbeddingResponse, len(inputs))
	for i, input := range inputs {
		results[i] = llm.EmbeddingResponse{Embedding: embeddingFor(input)}
	}
	return results, nil
}

func testSettings() config.Settings {
	return config.Settings{
		EmbedModel:   "test-model",
		ChunkSize:    100,
		ChunkOverlap: 20,
		TopK:         5,
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "sub/b.md", "beta")
	writeFile(t, dir, "c.bin", "binary")
	writeFile(t, dir, "node_modules/d.txt", "dep")

	files, err := DiscoverFiles(dir, nil, []string{"node_modules"})
	if err != nil {
		t.Fatalf("DiscoverFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("discovered %v, want a.txt and sub/b.md", files)
	}
	for _, f := range files {
		if strings.Contains(f, "node_modules") || strings.HasSuffix(f, ".bin") {
			t.Fatalf("discovered excluded file %s", f)
		}
	}
}

func TestIndexDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "The first document is short.")
	writeFile(t, dir, "sub/b.md", "The second document is also short.")

	store := vector.NewMemoryStore()
	collector := monitor.NewInMemoryCollector("test-run")
	ix := NewIndexer(Config{
		Store:     store,
		Embedder:  &fakeEmbedder{},
		Settings:  testSettings(),
		Collector: collector,
	})

	result, err := ix.IndexDocuments(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("IndexDocuments failed: %v", err)
	}
	if result.FilesProcessed != 2 {
		t.Fatalf("FilesProcessed = %d, want 2", result.FilesProcessed)
	}
	if result.ChunksCreated != 2 {
		t.Fatalf("ChunksCreated = %d, want 2", result.ChunksCreated)
	}

	// Sources are stored relative to the indexed directory, slash-separated.
	sources, err := store.ListSources(context.Background())
	if err != nil {
		t.Fatalf("ListSources failed: %v", err)
	}
	if len(sources) != 2 || sources[0] != "a.txt" || sources[1] != "sub/b.md" {
		t.Fatalf("sources = %v, want [a.txt sub/b.md]", sources)
	}

	run := collector.Flush()
	if run.TotalFiles != 2 || run.TotalChunks != 2 {
		t.Fatalf("run metrics = %d files / %d chunks, want 2/2", run.TotalFiles, run.TotalChunks)
	}
	for source, m := range run.FileMetrics {
		if !m.Success || m.Chunks != 1 {
			t.Fatalf("unexpected metrics for %s: %+v", source, m)
		}
	}
}

func TestIndexDocumentsSkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "")
	writeFile(t, dir, "real.txt", "Some actual content here.")

	store := vector.NewMemoryStore()
	ix := NewIndexer(Config{Store: store, Embedder: &fakeEmbedder{}, Settings: testSettings()})

	result, err := ix.IndexDocuments(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("IndexDocuments failed: %v", err)
	}
	if result.FilesProcessed != 1 {
		t.Fatalf("FilesProcessed = %d, want 1", result.FilesProcessed)
	}

	exists, err := store.Exists(context.Background(), "empty.txt")
	if err != nil || exists {
		t.Fatalf("Exists(empty.txt) = %v, %v; want false, nil", exists, err)
	}
}

func TestIndexDocumentsEmbedErrorAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "First file content.")
	writeFile(t, dir, "b.txt", "Second file content.")

	store := vector.NewMemoryStore()
	ix := NewIndexer(Config{
		Store:    store,
		Embedder: &fakeEmbedder{failOnCall: 2},
		Settings: testSettings(),
	})

	result, err := ix.IndexDocuments(context.Background(), dir, Options{})
	if err == nil {
		t.Fatal("expected error from failing embedder")
	}
	var ixErr *core.IndexError
	if !errors.As(err, &ixErr) {
		t.Fatalf("error %v is not an IndexError", err)
	}
	if ixErr.Source != "b.txt" {
		t.Fatalf("failing source = %q, want b.txt", ixErr.Source)
	}

	// The first file's chunks stay committed.
	if result.FilesProcessed != 1 {
		t.Fatalf("FilesProcessed = %d, want 1", result.FilesProcessed)
	}
	exists, err := store.Exists(context.Background(), "a.txt")
	if err != nil || !exists {
		t.Fatalf("Exists(a.txt) = %v, %v; want true, nil", exists, err)
	}
	exists, err = store.Exists(context.Background(), "b.txt")
	if err != nil || exists {
		t.Fatalf("Exists(b.txt) = %v, %v; want false, nil", exists, err)
	}
}

func TestReindexRemovesDeletedSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "This one stays on disk.")
	writeFile(t, dir, "gone.txt", "This one gets deleted.")

	store := vector.NewMemoryStore()
	ix := NewIndexer(Config{Store: store, Embedder: &fakeEmbedder{}, Settings: testSettings()})

	if _, err := ix.IndexDocuments(context.Background(), dir, Options{}); err != nil {
		t.Fatalf("IndexDocuments failed: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "gone.txt")); err != nil {
		t.Fatalf("remove file: %v", err)
	}

	result, err := ix.ReindexDocuments(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("ReindexDocuments failed: %v", err)
	}

	exists, err := store.Exists(context.Background(), "gone.txt")
	if err != nil || exists {
		t.Fatalf("Exists(gone.txt) = %v, %v; want false, nil", exists, err)
	}
	// One removal plus one re-embedded file.
	if result.FilesUpdated != 2 {
		t.Fatalf("FilesUpdated = %d, want 2", result.FilesUpdated)
	}
	if result.FilesProcessed != 1 {
		t.Fatalf("FilesProcessed = %d, want 1", result.FilesProcessed)
	}
}

func TestReindexIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Stable content that never changes.")

	store := vector.NewMemoryStore()
	ix := NewIndexer(Config{Store: store, Embedder: &fakeEmbedder{}, Settings: testSettings()})

	if _, err := ix.ReindexDocuments(context.Background(), dir, Options{}); err != nil {
		t.Fatalf("first reindex failed: %v", err)
	}
	first, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}

	if _, err := ix.ReindexDocuments(context.Background(), dir, Options{}); err != nil {
		t.Fatalf("second reindex failed: %v", err)
	}
	second, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if first != second {
		t.Fatalf("chunk count changed across reindex runs: %d -> %d", first, second)
	}
}

func TestIndexLargeFileChunking(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", strings.Repeat("a", 2500))

	store := vector.NewMemoryStore()
	settings := testSettings()
	settings.ChunkSize = 1000
	settings.ChunkOverlap = 200
	ix := NewIndexer(Config{Store: store, Embedder: &fakeEmbedder{}, Settings: settings})

	result, err := ix.IndexDocuments(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("IndexDocuments failed: %v", err)
	}
	if result.FilesProcessed != 1 {
		t.Fatalf("FilesProcessed = %d, want 1", result.FilesProcessed)
	}
	// 2500 chars with window 1000 and stride 800.
	if result.ChunksCreated != 3 {
		t.Fatalf("ChunksCreated = %d, want 3", result.ChunksCreated)
	}
}
