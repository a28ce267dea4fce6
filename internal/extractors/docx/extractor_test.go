package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// buildDocx assembles a minimal DOCX archive around the given
// document.xml payload.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	doc := `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
  </body>
</document>`

	e := New()
	text, err := e.Extract(context.Background(), buildDocx(t, doc), ".docx")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtract_NotAZip(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), []byte("plain bytes"), ".docx")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("other.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("nothing"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	e := New()
	_, err = e.Extract(context.Background(), buf.Bytes(), ".docx")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), nil, ".txt")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
