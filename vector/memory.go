package vector

import (
	"context"
	"sort"
	"sync"

	"github.com/hubenschmidt/go-sift/core"
)

// MemoryStore is an in-memory Store for development and testing. It
// mirrors the SQLite store's semantics: (SourcePath, Fingerprint)
// uniqueness with replace, atomic batches, cosine ranking with storage
// order as the tiebreaker.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	seq     int64
	closed  bool
}

type memoryEntry struct {
	chunk core.Chunk
	seq   int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func memoryKey(sourcePath, fingerprint string) string {
	return sourcePath + "\x00" + fingerprint
}

// InsertOne inserts or replaces a single chunk.
func (s *MemoryStore) InsertOne(ctx context.Context, chunk core.Chunk) error {
	return s.InsertMany(ctx, []core.Chunk{chunk})
}

// InsertMany inserts chunks under one lock acquisition, so readers see
// all of the batch or none of it.
func (s *MemoryStore) InsertMany(ctx context.Context, chunks []core.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrStoreClosed
	}

	for _, c := range chunks {
		key := memoryKey(c.SourcePath, c.Fingerprint)
		seq := s.seq
		if prev, ok := s.entries[key]; ok {
			seq = prev.seq // replacement keeps its storage position
		} else {
			s.seq++
		}
		s.entries[key] = memoryEntry{chunk: c, seq: seq}
	}
	return nil
}

// DeleteBySource removes every chunk for the source.
func (s *MemoryStore) DeleteBySource(ctx context.Context, sourcePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrStoreClosed
	}

	for key, e := range s.entries {
		if e.chunk.SourcePath == sourcePath {
			delete(s.entries, key)
		}
	}
	return nil
}

// Exists reports whether at least one chunk references the source.
func (s *MemoryStore) Exists(ctx context.Context, sourcePath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, core.ErrStoreClosed
	}

	for _, e := range s.entries {
		if e.chunk.SourcePath == sourcePath {
			return true, nil
		}
	}
	return false, nil
}

// ListSources returns the distinct indexed sources, sorted.
func (s *MemoryStore) ListSources(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrStoreClosed
	}

	seen := make(map[string]struct{})
	var sources []string
	for _, e := range s.entries {
		if _, ok := seen[e.chunk.SourcePath]; !ok {
			seen[e.chunk.SourcePath] = struct{}{}
			sources = append(sources, e.chunk.SourcePath)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// Search ranks stored vectors by cosine distance to the query using
// brute force.
func (s *MemoryStore) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrStoreClosed
	}
	if k <= 0 {
		return nil, nil
	}

	type scored struct {
		result   SearchResult
		distance float64
		seq      int64
	}
	var hits []scored
	for _, e := range s.entries {
		if !e.chunk.HasEmbedding() {
			continue
		}
		d, err := CosineDistance(query, e.chunk.Embedding)
		if err != nil {
			return nil, err
		}
		hits = append(hits, scored{
			result: SearchResult{
				Content:    e.chunk.Content,
				SourcePath: e.chunk.SourcePath,
				Similarity: 1 - float64(d),
			},
			distance: float64(d),
			seq:      e.seq,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].seq < hits[j].seq
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	results := make([]SearchResult, len(hits))
	for i, h := range hits {
		results[i] = h.result
	}
	return results, nil
}

// Count returns the number of chunks in the store.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, core.ErrStoreClosed
	}
	return len(s.entries), nil
}

// Close marks the store closed; subsequent operations fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
