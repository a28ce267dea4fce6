package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), nil, ".txt")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestExtract_CorruptInput(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), []byte("not a pdf"), ".pdf")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().SupportedExtensions())
}
