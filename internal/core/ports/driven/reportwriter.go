package driven

import (
	"context"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// ReportWriter renders a parsed analysis into a formatted office document.
type ReportWriter interface {
	// Write renders the sections (keyed by domain.ReportSections titles)
	// into a document at path.
	Write(ctx context.Context, path string, sections map[string]string,
		meta domain.ReportMeta, branding domain.ReportBranding) error

	// Extension returns the file extension this writer produces (".docx").
	Extension() string
}
