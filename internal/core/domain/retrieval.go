package domain

import "fmt"

// Default retrieval parameters.
const (
	DefaultChunkSize = 800
	DefaultOverlap   = 200
	DefaultTopK      = 3
)

// RetrievalConfig holds the immutable parameters for ingestion and retrieval.
// A runtime change produces a new value; in-flight calls are never affected.
type RetrievalConfig struct {
	// ChunkSize is the window size in runes. Must be positive.
	ChunkSize int

	// Overlap is the number of runes shared by consecutive chunks.
	// Must satisfy 0 <= Overlap < ChunkSize or chunking would never advance.
	Overlap int

	// TopK is the maximum number of chunks a retrieval may return.
	TopK int
}

// DefaultRetrievalConfig returns the standard configuration.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
		TopK:      DefaultTopK,
	}
}

// Validate checks the configuration invariants.
func (c RetrievalConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, c.ChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, chunk size), got %d with chunk size %d",
			ErrConfiguration, c.Overlap, c.ChunkSize)
	}
	if c.TopK < 0 {
		return fmt.Errorf("%w: top-K must be non-negative, got %d", ErrConfiguration, c.TopK)
	}
	return nil
}

// RetrievedChunk is a query-scoped ranked result. Never persisted.
type RetrievedChunk struct {
	// Chunk is the matched chunk, embedding omitted.
	Chunk Chunk

	// Score is the cosine similarity to the query vector.
	Score float64
}
