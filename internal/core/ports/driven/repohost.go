package driven

import (
	"context"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// RepoHost provides access to the connected source-code repository.
// Backed by the GitHub API. All calls fail with domain.ErrRepoNotConnected
// until Connect succeeds.
type RepoHost interface {
	// Connect resolves a repository URL (https://github.com/owner/repo)
	// and validates access.
	Connect(ctx context.Context, repoURL string) error

	// Connected reports whether a repository is connected.
	Connected() bool

	// Info returns repository metadata.
	Info(ctx context.Context) (*domain.RepoInfo, error)

	// PullRequests lists pull requests filtered by state, newest first.
	PullRequests(ctx context.Context, state string, limit int) ([]domain.PullRequest, error)

	// Issues lists issues filtered by state, excluding pull requests.
	Issues(ctx context.Context, state string, limit int) ([]domain.Issue, error)

	// Workflows lists Actions workflow definitions.
	Workflows(ctx context.Context) ([]domain.Workflow, error)

	// WorkflowRuns lists recent workflow runs.
	WorkflowRuns(ctx context.Context, limit int) ([]domain.WorkflowRun, error)

	// TriggerWorkflow dispatches a workflow on the given ref with inputs.
	TriggerWorkflow(ctx context.Context, workflowFile, ref string, inputs map[string]any) error

	// TriggerAnalysis dispatches the process-analysis workflow and
	// resolves the resulting run.
	TriggerAnalysis(ctx context.Context, processName, processData, analysisType string) (*domain.DispatchResult, error)

	// FetchArtifact checks a run for the named artifact and, when the run
	// completed successfully, downloads it and extracts the report file
	// into destDir.
	FetchArtifact(ctx context.Context, runID int64, artifactName, destDir string) (*domain.ArtifactResult, error)
}
