package driving

import (
	"context"
	"time"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// ReportService turns analysis answers into formatted report documents.
type ReportService interface {
	// Generate parses analysisText into sections and writes a report
	// document. Returns the generated filename.
	Generate(ctx context.Context, analysisText, processName, query string,
		branding domain.ReportBranding) (string, error)

	// List returns generated reports, newest first.
	List(ctx context.Context) ([]domain.ReportInfo, error)

	// Cleanup deletes reports older than maxAge and returns the count.
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)

	// Path resolves a report filename to its absolute path.
	Path(filename string) (string, error)
}
