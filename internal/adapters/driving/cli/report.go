package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
)

var (
	reportProcess  string
	reportTemplate string
	reportColour   string
	reportProject  string
	reportCompany  string
	reportMaxAge   time.Duration
	reportUseRepo  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate and manage analysis reports",
	Long: `Generates formatted Word documents from analysis answers and manages
previously generated reports.`,
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate [question]",
	Short: "Ask an analysis question and write the answer as a report",
	Long: `Runs a retrieval-augmented analysis of the question, parses the answer
into the five control-analysis sections and writes a formatted Word
document into the reports directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportGenerate,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated reports",
	RunE:  runReportList,
}

var reportCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old reports",
	RunE:  runReportCleanup,
}

func init() {
	reportGenerateCmd.Flags().StringVarP(&reportProcess, "process", "p", "analysis", "process name used in the report and filename")
	reportGenerateCmd.Flags().StringVarP(&reportTemplate, "template", "t", "auditor", "system prompt template for the analysis")
	reportGenerateCmd.Flags().StringVar(&reportColour, "colour", "", "brand colour as #RRGGBB")
	reportGenerateCmd.Flags().StringVar(&reportProject, "project", "", "project name for the report header")
	reportGenerateCmd.Flags().StringVar(&reportCompany, "company", "", "company name for the metadata table")
	reportGenerateCmd.Flags().BoolVar(&reportUseRepo, "repo", false, "attach connected repository context to the analysis")
	reportCleanupCmd.Flags().DurationVar(&reportMaxAge, "max-age", 30*24*time.Hour, "delete reports older than this")

	reportCmd.AddCommand(reportGenerateCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportCleanupCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportGenerate(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if reportService == nil {
		return errors.New("report service not configured")
	}

	ctx := context.Background()
	query := args[0]

	cmd.Println("Running analysis...")
	answer, err := chatService.Ask(ctx, query, driving.AskOptions{
		PromptTemplate: reportTemplate,
		IncludeRepo:    reportUseRepo,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	branding := domain.DefaultReportBranding()
	if reportColour != "" {
		branding.BrandColour = reportColour
	}
	if reportProject != "" {
		branding.ProjectName = reportProject
	}
	branding.CompanyName = reportCompany

	filename, err := reportService.Generate(ctx, answer.Text, reportProcess, query, branding)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	path, err := reportService.Path(filename)
	if err != nil {
		return fmt.Errorf("report written but could not be resolved: %w", err)
	}

	cmd.Printf("Report written: %s\n", path)
	return nil
}

func runReportList(cmd *cobra.Command, _ []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	reports, err := reportService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(reports) == 0 {
		cmd.Println("No reports generated yet.")
		return nil
	}

	cmd.Println("Reports:")
	for i := range reports {
		cmd.Printf("  %s  %8d bytes  %s\n", reports[i].CreatedAt.Format("2006-01-02 15:04"),
			reports[i].SizeBytes, reports[i].Filename)
	}
	return nil
}

func runReportCleanup(cmd *cobra.Command, _ []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}

	deleted, err := reportService.Cleanup(context.Background(), reportMaxAge)
	if err != nil {
		return fmt.Errorf("failed to clean up reports: %w", err)
	}

	cmd.Printf("Deleted %d report(s) older than %s.\n", deleted, reportMaxAge)
	return nil
}
