package driving

import (
	"context"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// AskOptions tunes a single chat turn.
type AskOptions struct {
	// PromptTemplate selects a system prompt template by name.
	// Empty selects the configured default.
	PromptTemplate string

	// CustomPrompt overrides the template with literal prompt text.
	CustomPrompt string

	// TopK overrides the configured retrieval depth when positive.
	TopK int

	// IncludeRepo attaches live repository context when connected.
	IncludeRepo bool
}

// Answer is the result of one chat turn.
type Answer struct {
	// Text is the generated response.
	Text string

	// Chunks are the retrieved context chunks that backed the answer.
	Chunks []domain.RetrievedChunk

	// RepoAttached reports whether repository context was included.
	RepoAttached bool
}

// ChatService answers questions against the document index and the
// connected repository.
type ChatService interface {
	// Ask runs one retrieval-augmented chat turn.
	Ask(ctx context.Context, query string, opts AskOptions) (*Answer, error)
}
