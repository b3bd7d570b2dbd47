package vector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hubenschmidt/go-sift/core"
)

// PgVectorStore is a PostgreSQL-backed Store using the pgvector
// extension. The embedding lives in a vector column on the chunk row
// itself, so chunk and vector share a lifetime by construction.
type PgVectorStore struct {
	db        *sql.DB
	dimension int
}

// NewPgVectorStore connects to PostgreSQL and ensures the schema exists.
// The dimension parameter fixes the vector column width (e.g. 1536).
func NewPgVectorStore(dsn string, dimension int) (*PgVectorStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: vector dimension %d", core.ErrInvalidConfig, dimension)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PgVectorStore{db: db, dimension: dimension}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PgVectorStore) migrate() error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id BIGSERIAL PRIMARY KEY,
			source_path TEXT NOT NULL,
			content TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (source_path, fingerprint)
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks (source_path)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// InsertOne inserts or replaces a single chunk.
func (s *PgVectorStore) InsertOne(ctx context.Context, chunk core.Chunk) error {
	return s.InsertMany(ctx, []core.Chunk{chunk})
}

// InsertMany inserts chunks in one transaction with upsert semantics on
// (source_path, fingerprint).
func (s *PgVectorStore) InsertMany(ctx context.Context, chunks []core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	for _, c := range chunks {
		if c.HasEmbedding() && len(c.Embedding) != s.dimension {
			return fmt.Errorf("%w: embedding has %d values, store holds %d",
				core.ErrDimensionMismatch, len(c.Embedding), s.dimension)
		}

		var embedding any
		if c.HasEmbedding() {
			embedding = formatEmbedding(c.Embedding)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (source_path, content, fingerprint, embedding)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (source_path, fingerprint) DO UPDATE SET
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding
		`, c.SourcePath, c.Content, c.Fingerprint, embedding)
		if err != nil {
			return fmt.Errorf("upsert chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// DeleteBySource removes every chunk for the source.
func (s *PgVectorStore) DeleteBySource(ctx context.Context, sourcePath string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source_path = $1`, sourcePath)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// Exists reports whether at least one chunk references the source.
func (s *PgVectorStore) Exists(ctx context.Context, sourcePath string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM chunks WHERE source_path = $1 LIMIT 1`, sourcePath).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// ListSources returns the distinct indexed sources.
func (s *PgVectorStore) ListSources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT source_path FROM chunks ORDER BY source_path`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// Search ranks stored vectors by cosine distance with the <=> operator.
func (s *PgVectorStore) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d values, store holds %d",
			core.ErrDimensionMismatch, len(query), s.dimension)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content, source_path, embedding <=> $1 AS distance
		FROM chunks
		WHERE embedding IS NOT NULL
		ORDER BY distance ASC, id ASC
		LIMIT $2
	`, formatEmbedding(query), k)
	if err != nil {
		return nil, fmt.Errorf("query search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var distance float64
		if err := rows.Scan(&r.Content, &r.SourcePath, &distance); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Similarity = 1 - distance
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the total number of chunk rows.
func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("query count: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// formatEmbedding converts a float32 slice to pgvector format: "[0.1,0.2,0.3]"
func formatEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

var _ Store = (*PgVectorStore)(nil)
