// Package docx renders analysis reports as Word documents.
package docx

import (
	"context"
	"fmt"
	"os"
	"strings"

	godocx "github.com/fumiama/go-docx"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.ReportWriter = (*Writer)(nil)

const (
	titleSize   = "36"
	headingSize = "28"
	metaColour  = "808080"
)

// Writer produces .docx report documents.
type Writer struct{}

// NewWriter creates a DOCX report writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Extension returns the file extension this writer produces.
func (w *Writer) Extension() string {
	return ".docx"
}

// Write renders the sections into a Word document at path. Sections
// appear in the canonical order; missing ones are rendered with a
// placeholder so the document structure stays constant.
func (w *Writer) Write(ctx context.Context, path string, sections map[string]string,
	meta domain.ReportMeta, branding domain.ReportBranding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := branding.Validate(); err != nil {
		return err
	}

	colour := strings.TrimPrefix(branding.BrandColour, "#")
	if colour == "" {
		colour = strings.TrimPrefix(domain.DefaultReportBranding().BrandColour, "#")
	}

	doc := godocx.New().WithDefaultTheme()

	// Title block.
	title := doc.AddParagraph().Justification("center")
	title.AddText(branding.ProjectName).Size(titleSize).Color(colour).Bold()

	subtitle := doc.AddParagraph().Justification("center")
	subtitle.AddText("Process Analysis Report").Size(headingSize).Color(metaColour)

	doc.AddParagraph() // spacer

	// Metadata block.
	writeMetaLine(doc, "Process", meta.ProcessName)
	writeMetaLine(doc, "Query", meta.Query)
	if branding.CompanyName != "" {
		writeMetaLine(doc, "Company", branding.CompanyName)
	}
	if !meta.GeneratedAt.IsZero() {
		writeMetaLine(doc, "Generated", meta.GeneratedAt.Format("2006-01-02 15:04"))
	}

	// Body sections in canonical order.
	for _, name := range domain.ReportSections {
		doc.AddParagraph() // spacer before each heading

		heading := doc.AddParagraph()
		heading.AddText(name).Size(headingSize).Color(colour).Bold()

		body := strings.TrimSpace(sections[name])
		if body == "" {
			body = "No content provided."
		}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			doc.AddParagraph().AddText(line)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if _, err := doc.WriteTo(f); err != nil {
		return fmt.Errorf("write report document: %w", err)
	}
	return nil
}

// writeMetaLine adds a "Label: value" line, skipping empty values.
func writeMetaLine(doc *godocx.Docx, label, value string) {
	if value == "" {
		return
	}
	p := doc.AddParagraph()
	p.AddText(label + ": ").Bold()
	p.AddText(value)
}
