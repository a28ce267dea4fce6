package domain

// AIProvider identifies an AI service backend.
type AIProvider string

// Supported AI providers.
const (
	AIProviderGemini AIProvider = "gemini"
	AIProviderOpenAI AIProvider = "openai"
)

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	Provider AIProvider
	APIKey   string
	BaseURL  string
	Model    string
}

// IsConfigured returns true if enough is set to create a service.
func (s *EmbeddingSettings) IsConfigured() bool {
	return s != nil && s.Provider != "" && s.APIKey != ""
}

// LLMSettings configures the generation service.
type LLMSettings struct {
	Provider AIProvider
	APIKey   string
	BaseURL  string
	Model    string
}

// IsConfigured returns true if enough is set to create a service.
func (s *LLMSettings) IsConfigured() bool {
	return s != nil && s.Provider != "" && s.APIKey != ""
}
