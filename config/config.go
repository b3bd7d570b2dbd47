// Package config holds process-wide settings for indexing and querying.
//
// Settings are an explicit value threaded through component constructors.
// Environment-derived defaults are resolved once, at Resolve time, not
// implicitly on every read.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hubenschmidt/go-sift/core"
)

// Settings configures chunking, embedding, and storage.
type Settings struct {
	// APIKey authenticates against the embedding API. Resolved from
	// OPENAI_API_KEY when empty.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// OllamaURL enables routing ollama/-prefixed models to a local
	// Ollama instance.
	OllamaURL string `yaml:"ollama_url,omitempty"`

	// EmbedModel selects the embedding model and, through it, the
	// vector dimension.
	EmbedModel string `yaml:"embed_model"`

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is the number of trailing characters carried into
	// the next chunk. Must be smaller than ChunkSize; the chunker
	// clamps it otherwise.
	ChunkOverlap int `yaml:"chunk_overlap"`

	// TopK is the default similarity search result count.
	TopK int `yaml:"top_k"`

	// StorePath is the on-disk location of the vector store. A
	// postgres:// DSN selects the pgvector store instead of SQLite.
	// Resolved from SIFT_DB when empty.
	StorePath string `yaml:"store_path"`
}

// Override carries partial settings. Only non-nil fields replace the
// corresponding Settings value; absent fields never clobber.
type Override struct {
	APIKey       *string `yaml:"api_key,omitempty"`
	BaseURL      *string `yaml:"base_url,omitempty"`
	OllamaURL    *string `yaml:"ollama_url,omitempty"`
	EmbedModel   *string `yaml:"embed_model,omitempty"`
	ChunkSize    *int    `yaml:"chunk_size,omitempty"`
	ChunkOverlap *int    `yaml:"chunk_overlap,omitempty"`
	TopK         *int    `yaml:"top_k,omitempty"`
	StorePath    *string `yaml:"store_path,omitempty"`
}

// Default returns the baseline settings.
func Default() Settings {
	return Settings{
		EmbedModel:   "text-embedding-3-small",
		ChunkSize:    1000,
		ChunkOverlap: 200,
		TopK:         5,
		StorePath:    "data/sift.db",
	}
}

// Apply merges an override into the settings, field by field.
func (s Settings) Apply(o Override) Settings {
	if o.APIKey != nil {
		s.APIKey = *o.APIKey
	}
	if o.BaseURL != nil {
		s.BaseURL = *o.BaseURL
	}
	if o.OllamaURL != nil {
		s.OllamaURL = *o.OllamaURL
	}
	if o.EmbedModel != nil {
		s.EmbedModel = *o.EmbedModel
	}
	if o.ChunkSize != nil {
		s.ChunkSize = *o.ChunkSize
	}
	if o.ChunkOverlap != nil {
		s.ChunkOverlap = *o.ChunkOverlap
	}
	if o.TopK != nil {
		s.TopK = *o.TopK
	}
	if o.StorePath != nil {
		s.StorePath = *o.StorePath
	}
	return s
}

// Resolve fills environment-derived values and validates the settings.
// It fails fast when no embedding credential is resolvable; a local
// Ollama endpoint counts as a credential since it needs no key.
func (s Settings) Resolve() (Settings, error) {
	if s.APIKey == "" {
		s.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if s.StorePath == "" {
		s.StorePath = os.Getenv("SIFT_DB")
	}

	defaults := Default()
	if s.EmbedModel == "" {
		s.EmbedModel = defaults.EmbedModel
	}
	if s.ChunkSize <= 0 {
		s.ChunkSize = defaults.ChunkSize
	}
	if s.ChunkOverlap < 0 {
		s.ChunkOverlap = defaults.ChunkOverlap
	}
	if s.TopK <= 0 {
		s.TopK = defaults.TopK
	}
	if s.StorePath == "" {
		s.StorePath = defaults.StorePath
	}

	if s.APIKey == "" && s.OllamaURL == "" {
		return s, core.ErrMissingAPIKey
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return s, fmt.Errorf("%w: chunk_overlap %d must be smaller than chunk_size %d",
			core.ErrInvalidConfig, s.ChunkOverlap, s.ChunkSize)
	}
	return s, nil
}

// Load reads settings from a YAML file, layered over the defaults. A
// missing file returns the defaults unchanged.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	var o Override
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	return Default().Apply(o), nil
}

// Save writes settings to a YAML file, creating directories as needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
