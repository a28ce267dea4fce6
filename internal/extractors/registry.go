// Package extractors routes documents to the extractor for their format.
package extractors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
	"github.com/repoqa-labs/repoqa-cli/internal/extractors/docx"
	"github.com/repoqa-labs/repoqa-cli/internal/extractors/pdf"
	"github.com/repoqa-labs/repoqa-cli/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.Extractor = (*Registry)(nil)

// Registry dispatches extraction by file extension.
type Registry struct {
	byExtension map[string]driven.Extractor
}

// NewRegistry creates a registry with the default extractor set:
// plain text, PDF and DOCX.
func NewRegistry() *Registry {
	r := &Registry{byExtension: make(map[string]driven.Extractor)}
	r.Register(plaintext.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	return r
}

// Register adds an extractor for each of its supported extensions.
// Later registrations win on conflict.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.SupportedExtensions() {
		r.byExtension[strings.ToLower(ext)] = e
	}
}

// Extract converts a document to plain text via the extractor that
// matches its extension.
func (r *Registry) Extract(ctx context.Context, content []byte, extension string) (string, error) {
	e, ok := r.byExtension[strings.ToLower(extension)]
	if !ok {
		return "", fmt.Errorf("%w: %s (supported: %s)",
			domain.ErrUnsupportedFormat, extension, strings.Join(r.SupportedExtensions(), ", "))
	}
	return e.Extract(ctx, content, extension)
}

// SupportedExtensions lists every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
