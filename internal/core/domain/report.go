package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Report section titles in document order. The analysis parser maps
// numbered headings in the assistant's answer onto these.
var ReportSections = []string{
	"Control Objective",
	"Risks Addressed",
	"Testing Procedures",
	"Test Results and Findings",
	"Conclusion and Recommendation",
}

// hexColour matches a #RRGGBB colour value.
var hexColour = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ReportBranding configures the look of generated report documents.
// It is an explicit value passed per generation, never mutated in place.
type ReportBranding struct {
	// ProjectName appears in the page header.
	ProjectName string

	// CompanyName is optional and appears in the metadata table.
	CompanyName string

	// BrandColour is a #RRGGBB hex value used for headings.
	BrandColour string

	// TemplateType selects the report layout ("generic" by default).
	TemplateType string
}

// DefaultReportBranding returns the standard branding values.
func DefaultReportBranding() ReportBranding {
	return ReportBranding{
		ProjectName:  "Process Manager",
		BrandColour:  "#4A90E2",
		TemplateType: "generic",
	}
}

// Validate checks the branding values.
func (b ReportBranding) Validate() error {
	if b.BrandColour != "" && !hexColour.MatchString(b.BrandColour) {
		return fmt.Errorf("%w: brand colour must be a hex value like #4A90E2, got %q",
			ErrConfiguration, b.BrandColour)
	}
	return nil
}

// ReportMeta carries per-report metadata rendered into the document.
type ReportMeta struct {
	ProcessName string
	Query       string
	GeneratedAt time.Time
}

// ReportInfo describes a generated report file on disk.
type ReportInfo struct {
	Filename  string
	SizeBytes int64
	CreatedAt time.Time
}
