package driving

import (
	"context"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// RetrieverService is the only interface the rest of the system uses to
// reach the chunk index.
type RetrieverService interface {
	// IngestFile extracts, chunks, embeds and stores an uploaded file.
	// Returns the number of chunks stored. Atomic per document: on any
	// failure the store is unchanged.
	IngestFile(ctx context.Context, filename string, content []byte) (int, error)

	// Ingest chunks, embeds and stores already-extracted text under the
	// given document ID.
	Ingest(ctx context.Context, documentID, text string) (int, error)

	// Retrieve returns up to topK chunks ranked by similarity to the
	// query. topK of zero yields an empty result; negative topK fails
	// with domain.ErrConfiguration. An empty index yields an empty
	// result, not an error. The configured default comes from Config.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)

	// Config returns the retrieval configuration in effect; callers use
	// its TopK when no explicit result count was requested.
	Config() domain.RetrievalConfig

	// Stats reports index contents.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// DeleteDocument removes all chunks of one document.
	DeleteDocument(ctx context.Context, documentID string) error

	// ClearAll removes every chunk from the index.
	ClearAll(ctx context.Context) error
}
