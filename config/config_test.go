package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/hubenschmidt/go-sift/core"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestDefault(t *testing.T) {
	s := Default()
	if s.EmbedModel != "text-embedding-3-small" {
		t.Errorf("EmbedModel = %q", s.EmbedModel)
	}
	if s.ChunkSize != 1000 || s.ChunkOverlap != 200 {
		t.Errorf("chunking defaults = %d/%d, want 1000/200", s.ChunkSize, s.ChunkOverlap)
	}
	if s.TopK != 5 {
		t.Errorf("TopK = %d, want 5", s.TopK)
	}
	if s.StorePath != "data/sift.db" {
		t.Errorf("StorePath = %q", s.StorePath)
	}
}

func TestApplyPartialOverride(t *testing.T) {
	s := Default().Apply(Override{
		ChunkSize: intPtr(500),
		APIKey:    strPtr("sk-test"),
	})

	if s.ChunkSize != 500 {
		t.Errorf("ChunkSize = %d, want 500", s.ChunkSize)
	}
	if s.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", s.APIKey)
	}
	// Fields absent from the override keep their values.
	if s.ChunkOverlap != 200 || s.EmbedModel != "text-embedding-3-small" {
		t.Errorf("untouched fields changed: %+v", s)
	}
}

func TestResolveMissingCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Default().Resolve()
	if !errors.Is(err, core.ErrMissingAPIKey) {
		t.Fatalf("Resolve without credential = %v, want ErrMissingAPIKey", err)
	}
}

func TestResolveOllamaCountsAsCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	s := Default()
	s.OllamaURL = "http://localhost:11434"
	resolved, err := s.Resolve()
	if err != nil {
		t.Fatalf("Resolve with OllamaURL failed: %v", err)
	}
	if resolved.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", resolved.APIKey)
	}
}

func TestResolveFillsFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("SIFT_DB", "/tmp/env.db")

	s := Settings{}
	resolved, err := s.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want sk-env", resolved.APIKey)
	}
	if resolved.StorePath != "/tmp/env.db" {
		t.Errorf("StorePath = %q, want /tmp/env.db", resolved.StorePath)
	}
	if resolved.ChunkSize != 1000 || resolved.TopK != 5 {
		t.Errorf("defaults not filled: %+v", resolved)
	}
}

func TestResolveRejectsOverlapAtLeastSize(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	s := Default()
	s.ChunkSize = 100
	s.ChunkOverlap = 100
	if _, err := s.Resolve(); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("Resolve with overlap == size = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s != Default() {
		t.Fatalf("Load of missing file = %+v, want defaults", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sift.yaml")

	want := Default()
	want.EmbedModel = "text-embedding-3-large"
	want.ChunkSize = 800
	want.TopK = 10
	want.StorePath = "/var/lib/sift/sift.db"

	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}
