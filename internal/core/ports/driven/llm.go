package driven

import "context"

// GenerateOptions tunes a single generation request.
type GenerateOptions struct {
	// Temperature controls sampling randomness.
	Temperature float64

	// MaxOutputTokens bounds the response length.
	MaxOutputTokens int
}

// LLMService generates chat responses from an assembled prompt.
// This is an optional service - when nil, chat and report analysis are
// disabled and callers surface domain.ErrLLMUnavailable.
type LLMService interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the generation model in use.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
