package driven

// Prompt template names.
const (
	// PromptDefault is the general-purpose assistant persona.
	PromptDefault = "default"

	// PromptTechnical is the documentation expert persona.
	PromptTechnical = "technical"

	// PromptAuditor is the compliance auditor persona.
	PromptAuditor = "auditor"

	// PromptDeveloper is the software developer persona.
	PromptDeveloper = "developer"

	// PromptAnalyst is the business analyst persona.
	PromptAnalyst = "analyst"
)

// PromptStore loads system prompt templates.
// Implementations fall back to embedded defaults when a user file is absent.
type PromptStore interface {
	// Load returns the prompt text for the given template name.
	Load(name string) (string, error)

	// Names lists the available template names.
	Names() []string
}
