package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/repoqa-labs/repoqa-cli/internal/chunker"
	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
	"github.com/repoqa-labs/repoqa-cli/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.RetrieverService = (*RetrieverService)(nil)

// embedBatchSize bounds one embedding request; large documents are
// embedded in sub-batches with a context check between them.
const embedBatchSize = 64

// RetrieverService ties extraction, chunking, embedding and storage
// into the ingest/retrieve pipeline.
type RetrieverService struct {
	store     driven.ChunkStore
	embedding driven.EmbeddingService
	extractor driven.Extractor
	chunker   *chunker.Chunker
	cfg       domain.RetrievalConfig
}

// NewRetrieverService creates a retriever service. The configuration is
// validated once here and never mutated afterwards.
func NewRetrieverService(
	store driven.ChunkStore,
	embedding driven.EmbeddingService,
	extractor driven.Extractor,
	cfg domain.RetrievalConfig,
) (*RetrieverService, error) {
	ck, err := chunker.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &RetrieverService{
		store:     store,
		embedding: embedding,
		extractor: extractor,
		chunker:   ck,
		cfg:       cfg,
	}, nil
}

// Config returns the active retrieval configuration.
func (s *RetrieverService) Config() domain.RetrievalConfig {
	return s.cfg
}

// IngestFile extracts, chunks, embeds and stores an uploaded file.
func (s *RetrieverService) IngestFile(ctx context.Context, filename string, content []byte) (int, error) {
	logger.Section("Ingestion")
	logger.Debug("File: %s (%d bytes)", filename, len(content))

	ext := strings.ToLower(filepath.Ext(filename))
	text, err := s.extractor.Extract(ctx, content, ext)
	if err != nil {
		return 0, err
	}

	return s.Ingest(ctx, filename, text)
}

// Ingest chunks, embeds and stores already-extracted text. The batch is
// fully embedded before anything is written, so a failure anywhere
// leaves the store untouched.
func (s *RetrieverService) Ingest(ctx context.Context, documentID, text string) (int, error) {
	if s.embedding == nil {
		return 0, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingUnavailable)
	}

	pieces := s.chunker.Split(text)
	if len(pieces) == 0 {
		logger.Debug("Document %s produced no chunks", documentID)
		return 0, nil
	}
	logger.Debug("Document %s split into %d chunks", documentID, len(pieces))

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}

	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		return 0, err
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Seq:        i,
			Content:    piece.Text,
			Start:      piece.Start,
			End:        piece.End,
			Embedding:  embeddings[i],
		}
	}

	if err := s.store.InsertBatch(ctx, chunks); err != nil {
		return 0, err
	}

	logger.Info("ingested %s: %d chunks", documentID, len(chunks))
	return len(chunks), nil
}

// embedAll embeds texts in bounded sub-batches, preserving order.
func (s *RetrieverService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := s.embedding.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingUnavailable, len(batch), end-start)
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}

// Retrieve returns up to topK chunks ranked by similarity to the query.
// topK of zero asks for nothing and gets an empty result; a negative
// topK is a configuration error. Callers wanting the configured default
// resolve it from Config().TopK.
func (s *RetrieverService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	if topK < 0 {
		return nil, fmt.Errorf("%w: top k must not be negative, got %d", domain.ErrConfiguration, topK)
	}

	logger.Section("Retrieval")

	query = strings.TrimSpace(query)
	if query == "" || topK == 0 {
		return []domain.RetrievedChunk{}, nil
	}

	if s.embedding == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingUnavailable)
	}

	vector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}
	logger.Debug("Query matched %d chunks (topK=%d)", len(hits), topK)

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunk := hit.Chunk
		chunk.Embedding = nil
		results = append(results, domain.RetrievedChunk{
			Chunk: chunk,
			Score: hit.Similarity,
		})
	}
	return results, nil
}

// Stats reports index contents.
func (s *RetrieverService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.store.Stats(ctx)
}

// DeleteDocument removes all chunks of one document.
func (s *RetrieverService) DeleteDocument(ctx context.Context, documentID string) error {
	return s.store.DeleteDocument(ctx, documentID)
}

// ClearAll removes every chunk from the index.
func (s *RetrieverService) ClearAll(ctx context.Context) error {
	logger.Info("clearing chunk index")
	return s.store.Clear(ctx)
}
