package domain

import "time"

// Document represents an uploaded reference document with metadata.
// It is transient: once ingested it survives only through its chunks.
type Document struct {
	// ID is the unique identifier, typically the sanitised filename.
	ID string

	// Name is the original filename as uploaded.
	Name string

	// Extension is the lowercase file extension including the dot.
	Extension string

	// Content is the full extracted text before chunking.
	Content string

	// UploadedAt is when the document was received.
	UploadedAt time.Time
}

// Chunk is the atomic retrievable unit: a bounded, overlapping window of a
// source document together with its embedding vector.
type Chunk struct {
	// ID is the unique identifier for the chunk, stable for the lifetime
	// of the index.
	ID string

	// DocumentID links to the source document.
	DocumentID string

	// Seq is the ordinal position within the document.
	Seq int

	// Content is the chunk text. Immutable once created.
	Content string

	// Start and End are the rune offsets of this chunk in the source text,
	// half-open [Start, End).
	Start int
	End   int

	// Embedding is the vector representation produced by the embedding
	// service. Its length must match the store dimensionality.
	Embedding []float32
}

// StoreStats summarises the contents of the chunk store.
type StoreStats struct {
	// ChunkCount is the total number of stored chunks.
	ChunkCount int

	// DocumentCount is the number of distinct source documents.
	DocumentCount int
}
