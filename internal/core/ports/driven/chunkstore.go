package driven

import (
	"context"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// ChunkStore persists chunks with their embeddings and answers exact
// nearest-neighbour queries by cosine similarity.
//
// The store is exclusively owned by the retriever service; no other
// component mutates it. Mutating operations are mutually exclusive and
// atomic per call: a batch is either fully visible or not at all, even
// across process restarts.
type ChunkStore interface {
	// InsertBatch stores all chunks of one document as a single atomic
	// batch. Chunk IDs must be unique and embedding dimensions must match
	// the store; violations surface domain.ErrInvariantViolation.
	InsertBatch(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to topK chunks ranked by descending cosine
	// similarity to the query vector. Ties break by insertion order.
	// An empty store returns an empty result, never an error.
	Search(ctx context.Context, query []float32, topK int) ([]ChunkHit, error)

	// GetChunk retrieves a stored chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// Stats reports chunk and distinct document counts.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// DeleteDocument atomically removes all chunks of one document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Clear removes all chunks. The only supported bulk delete.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChunkHit is a similarity search result.
type ChunkHit struct {
	// Chunk is the matched chunk with content and offsets populated.
	// The embedding is not hydrated.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score.
	Similarity float64
}
