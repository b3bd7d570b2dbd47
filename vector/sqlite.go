package vector

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hubenschmidt/go-sift/core"
)

// SQLiteStore is a file-backed Store. Chunk metadata and vectors live in
// two tables joined by chunks.vector_id; similarity ranking runs inside
// SQLite through the registered vec_cosine_distance function.
//
// The store assumes a single opener at a time; it is not designed for
// concurrent multi-process writers.
type SQLiteStore struct {
	db        *sql.DB
	dimension int
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vectors (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	embedding BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_path TEXT NOT NULL,
	content     TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	vector_id   INTEGER,
	created_at  TEXT NOT NULL,
	UNIQUE(source_path, fingerprint)
);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_path);
`

// NewSQLiteStore opens or creates the store at path, creating parent
// directories as needed. The vector dimension is baked into the store at
// creation time; reopening an existing store with a different dimension
// fails with core.ErrDimensionMismatch.
func NewSQLiteStore(path string, dimension int) (*SQLiteStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: vector dimension %d", core.ErrInvalidConfig, dimension)
	}

	registerSQLiteFunctions()

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := ensureDimension(db, dimension); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, dimension: dimension}, nil
}

func ensureDimension(db *sql.DB, dimension int) error {
	var raw string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'dimension'`).Scan(&raw)
	if err == sql.ErrNoRows {
		_, err = db.Exec(`INSERT INTO meta (key, value) VALUES ('dimension', ?)`, strconv.Itoa(dimension))
		if err != nil {
			return fmt.Errorf("store dimension metadata: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read dimension metadata: %w", err)
	}

	stored, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("corrupt dimension metadata %q: %w", raw, err)
	}
	if stored != dimension {
		return fmt.Errorf("%w: store was created with dimension %d, configured %d",
			core.ErrDimensionMismatch, stored, dimension)
	}
	return nil
}

// Dimension returns the vector length baked into the store.
func (s *SQLiteStore) Dimension() int {
	return s.dimension
}

// InsertOne inserts or replaces a single chunk.
func (s *SQLiteStore) InsertOne(ctx context.Context, chunk core.Chunk) error {
	return s.InsertMany(ctx, []core.Chunk{chunk})
}

// InsertMany inserts chunks in one transaction: either all become
// visible together or none do.
func (s *SQLiteStore) InsertMany(ctx context.Context, chunks []core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	for _, c := range chunks {
		if err := s.insertChunkTx(ctx, tx, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) insertChunkTx(ctx context.Context, tx *sql.Tx, c core.Chunk) error {
	if c.HasEmbedding() && len(c.Embedding) != s.dimension {
		return fmt.Errorf("%w: embedding has %d values, store holds %d",
			core.ErrDimensionMismatch, len(c.Embedding), s.dimension)
	}

	// Replacing an existing (source, fingerprint) row must not leak its
	// paired vector.
	var prev sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT vector_id FROM chunks WHERE source_path = ? AND fingerprint = ?`,
		c.SourcePath, c.Fingerprint).Scan(&prev)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("lookup chunk: %w", err)
	}
	if prev.Valid {
		if _, err := tx.ExecContext(ctx, `DELETE FROM vectors WHERE id = ?`, prev.Int64); err != nil {
			return fmt.Errorf("delete stale vector: %w", err)
		}
	}

	var vectorID any
	if c.HasEmbedding() {
		res, err := tx.ExecContext(ctx, `INSERT INTO vectors (embedding) VALUES (?)`,
			EncodeEmbedding(c.Embedding))
		if err != nil {
			return fmt.Errorf("insert vector: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("vector row id: %w", err)
		}
		vectorID = id
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO chunks (source_path, content, fingerprint, vector_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.SourcePath, c.Content, c.Fingerprint, vectorID, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// DeleteBySource removes every chunk for the source and all paired
// vector rows in one transaction.
func (s *SQLiteStore) DeleteBySource(ctx context.Context, sourcePath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM vectors WHERE id IN (
			SELECT vector_id FROM chunks WHERE source_path = ? AND vector_id IS NOT NULL
		)`, sourcePath)
	if err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_path = ?`, sourcePath); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// Exists reports whether at least one chunk references the source.
func (s *SQLiteStore) Exists(ctx context.Context, sourcePath string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM chunks WHERE source_path = ? LIMIT 1`, sourcePath).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// ListSources returns the distinct indexed sources.
func (s *SQLiteStore) ListSources(ctx context.Context) ([]string, error) {
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

// Search ranks stored vectors by cosine distance to the query, ascending,
// inside SQLite. Ties break by vector row id, i.e. storage order.
func (s *SQLiteStore) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d values, store holds %d",
			core.ErrDimensionMismatch, len(query), s.dimension)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.content, c.source_path, vec_cosine_distance(v.embedding, ?) AS distance
		FROM chunks c
		JOIN vectors v ON v.id = c.vector_id
		ORDER BY distance ASC, v.id ASC
		LIMIT ?`, EncodeEmbedding(query), k)
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
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("query count: %w", err)
	}
	return n, nil
}

// Close releases the database handle. Operations on a closed store fail.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
