package driving

import (
	"context"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// RepoService exposes the connected repository to the chat and report
// layers.
type RepoService interface {
	// Connect attaches to a repository by URL and persists the choice.
	Connect(ctx context.Context, repoURL string) (*domain.RepoInfo, error)

	// Connected reports whether a repository is attached.
	Connected() bool

	// Info returns repository metadata.
	Info(ctx context.Context) (*domain.RepoInfo, error)

	// Context gathers the repository data attached to chat prompts.
	Context(ctx context.Context, prLimit, issueLimit int) (*domain.RepoContext, error)

	// PullRequests lists pull requests.
	PullRequests(ctx context.Context, state string, limit int) ([]domain.PullRequest, error)

	// Issues lists issues.
	Issues(ctx context.Context, state string, limit int) ([]domain.Issue, error)

	// Workflows lists workflow definitions.
	Workflows(ctx context.Context) ([]domain.Workflow, error)

	// WorkflowRuns lists recent workflow runs, newest first.
	WorkflowRuns(ctx context.Context, limit int) ([]domain.WorkflowRun, error)

	// TriggerWorkflow dispatches a workflow.
	TriggerWorkflow(ctx context.Context, workflowFile, ref string, inputs map[string]any) error

	// TriggerAnalysis dispatches the process-analysis workflow.
	TriggerAnalysis(ctx context.Context, processName, processData, analysisType string) (*domain.DispatchResult, error)

	// FetchArtifact downloads a completed run's report artifact.
	FetchArtifact(ctx context.Context, runID int64, artifactName string) (*domain.ArtifactResult, error)
}
