// Package plaintext extracts text from plain text files.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".md", ".log"}
}

// Extract returns the file content as UTF-8 text with normalised
// line endings.
func (e *Extractor) Extract(_ context.Context, content []byte, extension string) (string, error) {
	if !supported(e, extension) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, extension)
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: file is not valid UTF-8", domain.ErrExtraction)
	}

	text := string(content)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}

func supported(e driven.Extractor, extension string) bool {
	extension = strings.ToLower(extension)
	for _, ext := range e.SupportedExtensions() {
		if ext == extension {
			return true
		}
	}
	return false
}
