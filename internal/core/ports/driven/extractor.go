package driven

import "context"

// Extractor converts an uploaded document into normalised plain text.
// The chunker never sees raw bytes, only this output.
type Extractor interface {
	// Extract returns the text content of the file. Extensions outside
	// the supported set fail with domain.ErrUnsupportedFormat; corrupt
	// input fails with domain.ErrExtraction.
	Extract(ctx context.Context, content []byte, extension string) (string, error)

	// SupportedExtensions lists the lowercase extensions this extractor
	// accepts, including the dot.
	SupportedExtensions() []string
}
