// Package memory provides an in-memory chunk store.
// Used in tests and as a fallback when no data directory is writable.
// Contents are lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
)

var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore keeps chunks in memory, guarded by a mutex.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk // insertion order preserved for tie-breaking
	byID   map[string]int // chunk ID -> index into chunks
	dim    int            // 0 until the first batch lands
}

// NewChunkStore creates an empty in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{byID: make(map[string]int)}
}

// InsertBatch stores all chunks of one document atomically.
func (s *ChunkStore) InsertBatch(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dim
	if dim == 0 {
		dim = len(chunks[0].Embedding)
	}

	// Validate the whole batch first so a failure leaves no partial state.
	seen := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has an empty embedding", domain.ErrInvariantViolation, chunk.ID)
		}
		if len(chunk.Embedding) != dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, index has %d",
				domain.ErrInvariantViolation, chunk.ID, len(chunk.Embedding), dim)
		}
		if _, exists := s.byID[chunk.ID]; exists || seen[chunk.ID] {
			return fmt.Errorf("%w: duplicate chunk id %s", domain.ErrInvariantViolation, chunk.ID)
		}
		seen[chunk.ID] = true
	}

	for _, chunk := range chunks {
		s.byID[chunk.ID] = len(s.chunks)
		s.chunks = append(s.chunks, chunk)
	}
	s.dim = dim
	return nil
}

// Search ranks all chunks by cosine similarity to the query.
func (s *ChunkStore) Search(_ context.Context, query []float32, topK int) ([]driven.ChunkHit, error) {
	if topK <= 0 {
		return []driven.ChunkHit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		return []driven.ChunkHit{}, nil
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: query dimension %d does not match index dimension %d",
			domain.ErrInvariantViolation, len(query), s.dim)
	}

	hits := make([]driven.ChunkHit, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		c := chunk
		c.Embedding = nil
		hits = append(hits, driven.ChunkHit{
			Chunk:      c,
			Similarity: cosineSimilarity(query, chunk.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// GetChunk retrieves a chunk by ID.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	chunk := s.chunks[idx]
	return &chunk, nil
}

// Stats reports chunk and distinct document counts.
func (s *ChunkStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string]bool)
	for _, chunk := range s.chunks {
		docs[chunk.DocumentID] = true
	}
	return domain.StoreStats{
		ChunkCount:    len(s.chunks),
		DocumentCount: len(docs),
	}, nil
}

// DeleteDocument removes all chunks of one document.
func (s *ChunkStore) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	for _, chunk := range s.chunks {
		if chunk.DocumentID != documentID {
			kept = append(kept, chunk)
		}
	}
	s.chunks = kept

	s.byID = make(map[string]int, len(s.chunks))
	for i, chunk := range s.chunks {
		s.byID[chunk.ID] = i
	}
	return nil
}

// Clear removes everything and resets the dimension invariant.
func (s *ChunkStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = nil
	s.byID = make(map[string]int)
	s.dim = 0
	return nil
}

// Close is a no-op for the in-memory store.
func (s *ChunkStore) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
