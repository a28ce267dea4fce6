package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

var (
	githubState        string
	githubLimit        int
	githubRef          string
	githubInputs       []string
	githubAnalysisType string
	githubArtifactName string
	githubWait         bool
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Work with the connected GitHub repository",
	Long: `Connect a GitHub repository and inspect its pull requests, issues and
workflow runs, or trigger analysis workflows and fetch their report
artifacts.`,
}

var githubConnectCmd = &cobra.Command{
	Use:   "connect [repo-url]",
	Short: "Connect a repository",
	Long: `Connects to a GitHub repository and persists the choice for later runs.

Accepted forms:
  https://github.com/owner/repo
  git@github.com:owner/repo.git
  owner/repo`,
	Args: cobra.ExactArgs(1),
	RunE: runGithubConnect,
}

var githubInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show repository metadata",
	RunE:  runGithubInfo,
}

var githubPRsCmd = &cobra.Command{
	Use:   "prs",
	Short: "List pull requests",
	RunE:  runGithubPRs,
}

var githubIssuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List issues",
	RunE:  runGithubIssues,
}

var githubWorkflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List workflow definitions",
	RunE:  runGithubWorkflows,
}

var githubRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent workflow runs",
	RunE:  runGithubRuns,
}

var githubTriggerCmd = &cobra.Command{
	Use:   "trigger [workflow-file]",
	Short: "Dispatch a workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  runGithubTrigger,
}

var githubAnalyzeCmd = &cobra.Command{
	Use:   "analyze [process-name] [process-data]",
	Short: "Trigger the process analysis workflow",
	Long: `Dispatches the configured analysis workflow with the given process name
and data, then reports the run that was started. Use 'github artifact'
to fetch the generated report once the run completes.`,
	Args: cobra.ExactArgs(2),
	RunE: runGithubAnalyze,
}

var githubArtifactCmd = &cobra.Command{
	Use:   "artifact [run-id]",
	Short: "Fetch a run's report artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  runGithubArtifact,
}

func init() {
	githubPRsCmd.Flags().StringVar(&githubState, "state", "open", "filter by state (open, closed, all)")
	githubPRsCmd.Flags().IntVarP(&githubLimit, "limit", "n", 10, "maximum number of results")
	githubIssuesCmd.Flags().StringVar(&githubState, "state", "open", "filter by state (open, closed, all)")
	githubIssuesCmd.Flags().IntVarP(&githubLimit, "limit", "n", 10, "maximum number of results")
	githubRunsCmd.Flags().IntVarP(&githubLimit, "limit", "n", 10, "maximum number of results")
	githubTriggerCmd.Flags().StringVar(&githubRef, "ref", "main", "git ref to run the workflow on")
	githubTriggerCmd.Flags().StringArrayVar(&githubInputs, "input", nil, "workflow input as key=value (repeatable)")
	githubAnalyzeCmd.Flags().StringVar(&githubAnalysisType, "type", "general", "analysis type passed to the workflow")
	githubArtifactCmd.Flags().StringVar(&githubArtifactName, "name", "process-analysis-report", "artifact name to fetch")
	githubArtifactCmd.Flags().BoolVar(&githubWait, "wait", false, "poll until the run completes")

	githubCmd.AddCommand(githubConnectCmd)
	githubCmd.AddCommand(githubInfoCmd)
	githubCmd.AddCommand(githubPRsCmd)
	githubCmd.AddCommand(githubIssuesCmd)
	githubCmd.AddCommand(githubWorkflowsCmd)
	githubCmd.AddCommand(githubRunsCmd)
	githubCmd.AddCommand(githubTriggerCmd)
	githubCmd.AddCommand(githubAnalyzeCmd)
	githubCmd.AddCommand(githubArtifactCmd)
	rootCmd.AddCommand(githubCmd)
}

func runGithubConnect(cmd *cobra.Command, args []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	info, err := repoService.Connect(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	cmd.Printf("Connected to %s\n", info.FullName)
	printRepoInfo(cmd, info)
	return nil
}

func runGithubInfo(cmd *cobra.Command, _ []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	info, err := repoService.Info(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get repository info: %w", err)
	}

	cmd.Printf("Repository: %s\n", info.FullName)
	printRepoInfo(cmd, info)
	return nil
}

func printRepoInfo(cmd *cobra.Command, info *domain.RepoInfo) {
	if info.Description != "" {
		cmd.Printf("  Description: %s\n", info.Description)
	}
	if info.Language != "" {
		cmd.Printf("  Language:    %s\n", info.Language)
	}
	cmd.Printf("  Stars:       %d\n", info.Stars)
	cmd.Printf("  Forks:       %d\n", info.Forks)
	cmd.Printf("  Open issues: %d\n", info.OpenIssues)
}

func runGithubPRs(cmd *cobra.Command, _ []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	prs, err := repoService.PullRequests(context.Background(), githubState, githubLimit)
	if err != nil {
		return fmt.Errorf("failed to list pull requests: %w", err)
	}

	if len(prs) == 0 {
		cmd.Printf("No %s pull requests.\n", githubState)
		return nil
	}

	for i := range prs {
		cmd.Printf("  #%d %s (%s)\n", prs[i].Number, prs[i].Title, prs[i].State)
		cmd.Printf("      by %s, updated %s\n", prs[i].Author, prs[i].UpdatedAt.Format("2006-01-02"))
	}
	return nil
}

func runGithubIssues(cmd *cobra.Command, _ []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	issues, err := repoService.Issues(context.Background(), githubState, githubLimit)
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	if len(issues) == 0 {
		cmd.Printf("No %s issues.\n", githubState)
		return nil
	}

	for i := range issues {
		cmd.Printf("  #%d %s (%s)\n", issues[i].Number, issues[i].Title, issues[i].State)
		if len(issues[i].Labels) > 0 {
			cmd.Printf("      labels: %v\n", issues[i].Labels)
		}
	}
	return nil
}

func runGithubWorkflows(cmd *cobra.Command, _ []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	workflows, err := repoService.Workflows(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}

	if len(workflows) == 0 {
		cmd.Println("No workflows found.")
		return nil
	}

	for i := range workflows {
		cmd.Printf("  %s (%s) - %s\n", workflows[i].Name, workflows[i].State, workflows[i].Path)
	}
	return nil
}

func runGithubRuns(cmd *cobra.Command, _ []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	runs, err := repoService.WorkflowRuns(context.Background(), githubLimit)
	if err != nil {
		return fmt.Errorf("failed to list workflow runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No workflow runs found.")
		return nil
	}

	for i := range runs {
		status := runs[i].Status
		if runs[i].Conclusion != "" {
			status = fmt.Sprintf("%s/%s", runs[i].Status, runs[i].Conclusion)
		}
		cmd.Printf("  %d %s [%s] %s\n", runs[i].ID, runs[i].Name, status,
			runs[i].CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runGithubTrigger(cmd *cobra.Command, args []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	inputs := make(map[string]any, len(githubInputs))
	for _, pair := range githubInputs {
		key, value, ok := splitKeyValue(pair)
		if !ok {
			return fmt.Errorf("invalid --input %q, expected key=value", pair)
		}
		inputs[key] = value
	}

	if err := repoService.TriggerWorkflow(context.Background(), args[0], githubRef, inputs); err != nil {
		return fmt.Errorf("failed to trigger workflow: %w", err)
	}

	cmd.Printf("Workflow %s dispatched on %s.\n", args[0], githubRef)
	return nil
}

func runGithubAnalyze(cmd *cobra.Command, args []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	result, err := repoService.TriggerAnalysis(context.Background(), args[0], args[1], githubAnalysisType)
	if err != nil {
		return fmt.Errorf("failed to trigger analysis: %w", err)
	}

	cmd.Printf("Analysis workflow %s dispatched.\n", result.WorkflowName)
	if result.RunID != 0 {
		cmd.Printf("  Run ID: %d\n", result.RunID)
		cmd.Printf("  Fetch the report with: repoqa github artifact %d\n", result.RunID)
	} else {
		cmd.Println("  Run not yet visible; check 'repoqa github runs' shortly.")
	}
	if result.RunURL != "" {
		cmd.Printf("  URL: %s\n", result.RunURL)
	}
	return nil
}

func runGithubArtifact(cmd *cobra.Command, args []string) error {
	if repoService == nil {
		return errors.New("repository service not configured (set GITHUB_TOKEN)")
	}

	var runID int64
	if _, err := fmt.Sscanf(args[0], "%d", &runID); err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	ctx := context.Background()
	for {
		result, err := repoService.FetchArtifact(ctx, runID, githubArtifactName)
		if err != nil {
			return fmt.Errorf("failed to fetch artifact: %w", err)
		}

		if result.Ready {
			cmd.Printf("Report downloaded: %s\n", result.Filename)
			return nil
		}

		if result.Status == domain.RunStatusCompleted {
			return fmt.Errorf("run %d completed with conclusion %q, no report available",
				runID, result.Conclusion)
		}

		if !githubWait {
			cmd.Printf("Run %d is %s. Re-run with --wait to poll until completion.\n",
				runID, result.Status)
			return nil
		}

		cmd.Printf("Run %d is %s, waiting...\n", runID, result.Status)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Second):
		}
	}
}

// splitKeyValue splits "key=value" at the first '='.
func splitKeyValue(pair string) (string, string, bool) {
	for i := range pair {
		if pair[i] == '=' {
			return pair[:i], pair[i+1:], i > 0
		}
	}
	return "", "", false
}
