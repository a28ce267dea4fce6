package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfiguration indicates invalid configuration such as a bad
	// chunk size, overlap, or top-K. Fails fast, never retried.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates an upload with an extension outside
	// the supported set (plain text, PDF, DOCX).
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction indicates a supported document could not be parsed.
	ErrExtraction = errors.New("document extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding service failed or is
	// not configured. Transient by default; a failed ingestion leaves the
	// store as if the document was never ingested.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service failed or is not
	// configured. Chat and report analysis are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrInvariantViolation indicates the store's own invariants are broken
	// (duplicate chunk ID, embedding dimension mismatch). Programming-error
	// class: not to be caught and continued.
	ErrInvariantViolation = errors.New("store invariant violation")

	// ErrRepoNotConnected indicates no repository is connected.
	// Repository-backed features are unavailable.
	ErrRepoNotConnected = errors.New("repository not connected")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")
)
