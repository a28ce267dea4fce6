package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
	"github.com/repoqa-labs/repoqa-cli/internal/logger"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// sectionPatterns extract the five numbered sections from an analysis
// answer. Content runs until the next numbered heading or end of text.
var sectionPatterns = []struct {
	re    *regexp.Regexp
	title string
}{
	{regexp.MustCompile(`(?is)1\.\s*Control Objective[:\s]*(.*?)(?:2\.\s*Risks|$)`), "Control Objective"},
	{regexp.MustCompile(`(?is)2\.\s*Risks Addressed[:\s]*(.*?)(?:3\.\s*Testing|$)`), "Risks Addressed"},
	{regexp.MustCompile(`(?is)3\.\s*Testing Procedures[:\s]*(.*?)(?:4\.\s*(?:Test Results|Results)|$)`), "Testing Procedures"},
	{regexp.MustCompile(`(?is)4\.\s*(?:Test Results and Findings|Results)[:\s]*(.*?)(?:5\.\s*Conclusion|$)`), "Test Results and Findings"},
	{regexp.MustCompile(`(?is)5\.\s*(?:Conclusion and Recommendation|Conclusion)[:\s]*(.*)$`), "Conclusion and Recommendation"},
}

// unsafeFilename strips characters that cannot appear in report filenames.
var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ReportService renders analysis answers into report documents on disk.
type ReportService struct {
	writer     driven.ReportWriter
	reportsDir string
}

// NewReportService creates a report service writing into reportsDir.
// If reportsDir is empty, defaults to ~/.repoqa/reports.
func NewReportService(writer driven.ReportWriter, reportsDir string) (*ReportService, error) {
	if reportsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		reportsDir = filepath.Join(home, ".repoqa", "reports")
	}

	if err := os.MkdirAll(reportsDir, 0700); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}

	return &ReportService{
		writer:     writer,
		reportsDir: reportsDir,
	}, nil
}

// Dir returns the reports directory.
func (s *ReportService) Dir() string {
	return s.reportsDir
}

// Generate parses analysisText into sections and writes a report
// document. Returns the generated filename.
func (s *ReportService) Generate(ctx context.Context, analysisText, processName, query string,
	branding domain.ReportBranding) (string, error) {
	if err := branding.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(analysisText) == "" {
		return "", fmt.Errorf("%w: analysis text is empty", domain.ErrConfiguration)
	}

	sections := ParseAnalysisSections(analysisText)

	now := time.Now()
	filename := reportFilename(processName, now, s.writer.Extension())
	path := filepath.Join(s.reportsDir, filename)

	meta := domain.ReportMeta{
		ProcessName: processName,
		Query:       query,
		GeneratedAt: now,
	}
	if err := s.writer.Write(ctx, path, sections, meta, branding); err != nil {
		return "", err
	}

	logger.Info("generated report %s", filename)
	return filename, nil
}

// List returns generated reports, newest first.
func (s *ReportService) List(_ context.Context) ([]domain.ReportInfo, error) {
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		return nil, fmt.Errorf("reading reports directory: %w", err)
	}

	reports := make([]domain.ReportInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, domain.ReportInfo{
			Filename:  entry.Name(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// Cleanup deletes reports older than maxAge and returns the count.
func (s *ReportService) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	reports, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, report := range reports {
		if report.CreatedAt.After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.reportsDir, report.Filename)); err != nil {
			return deleted, fmt.Errorf("deleting %s: %w", report.Filename, err)
		}
		deleted++
	}

	if deleted > 0 {
		logger.Info("cleaned up %d old reports", deleted)
	}
	return deleted, nil
}

// Path resolves a report filename to its absolute path. Filenames with
// path separators are rejected so callers cannot escape the reports dir.
func (s *ReportService) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: invalid report filename %q", domain.ErrNotFound, filename)
	}

	path := filepath.Join(s.reportsDir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: report %s", domain.ErrNotFound, filename)
	}
	return path, nil
}

// ParseAnalysisSections splits an analysis answer into the five report
// sections. When no numbered headings are found, the whole text lands
// in the first section so nothing is silently dropped.
func ParseAnalysisSections(analysisText string) map[string]string {
	sections := make(map[string]string, len(domain.ReportSections))
	for _, title := range domain.ReportSections {
		sections[title] = ""
	}

	for _, p := range sectionPatterns {
		if m := p.re.FindStringSubmatch(analysisText); m != nil {
			sections[p.title] = strings.TrimSpace(m[1])
		}
	}

	var any bool
	for _, content := range sections {
		if content != "" {
			any = true
			break
		}
	}
	if !any {
		sections[domain.ReportSections[0]] = strings.TrimSpace(analysisText)
	}

	return sections
}

// reportFilename builds a timestamped, filesystem-safe filename.
func reportFilename(processName string, at time.Time, ext string) string {
	name := unsafeFilename.ReplaceAllString(strings.TrimSpace(processName), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("%s_%s%s", name, at.Format("20060102_150405"), ext)
}
