package services

import (
	"context"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
	"github.com/repoqa-labs/repoqa-cli/internal/logger"
)

// Ensure RepoService implements the interface.
var _ driving.RepoService = (*RepoService)(nil)

// configKeyRepoURL persists the connected repository between runs.
const configKeyRepoURL = "github.repo_url"

// RepoService exposes the connected repository to the chat and report
// layers, persisting the connection choice in the config store.
type RepoService struct {
	host        driven.RepoHost
	config      driven.ConfigStore
	artifactDir string
}

// NewRepoService creates a repo service. If a repository URL was
// persisted by a previous run, it is reconnected lazily on first use.
func NewRepoService(host driven.RepoHost, config driven.ConfigStore, artifactDir string) *RepoService {
	return &RepoService{
		host:        host,
		config:      config,
		artifactDir: artifactDir,
	}
}

// Reconnect re-establishes a previously persisted connection.
// A stale URL is not an error; the repo simply stays disconnected.
func (s *RepoService) Reconnect(ctx context.Context) {
	if s.config == nil {
		return
	}
	url := s.config.GetString(configKeyRepoURL)
	if url == "" {
		return
	}
	if err := s.host.Connect(ctx, url); err != nil {
		logger.Warn("could not reconnect to %s: %v", url, err)
	}
}

// Connect attaches to a repository by URL and persists the choice.
func (s *RepoService) Connect(ctx context.Context, repoURL string) (*domain.RepoInfo, error) {
	if err := s.host.Connect(ctx, repoURL); err != nil {
		return nil, err
	}

	if s.config != nil {
		if err := s.config.Set(configKeyRepoURL, repoURL); err != nil {
			logger.Warn("could not persist repository url: %v", err)
		}
	}

	return s.host.Info(ctx)
}

// Connected reports whether a repository is attached.
func (s *RepoService) Connected() bool {
	return s.host.Connected()
}

// Info returns repository metadata.
func (s *RepoService) Info(ctx context.Context) (*domain.RepoInfo, error) {
	return s.host.Info(ctx)
}

// Context gathers the repository data attached to chat prompts.
// Pull requests and issues are fetched open-state, newest first.
func (s *RepoService) Context(ctx context.Context, prLimit, issueLimit int) (*domain.RepoContext, error) {
	info, err := s.host.Info(ctx)
	if err != nil {
		return nil, err
	}

	prs, err := s.host.PullRequests(ctx, "open", prLimit)
	if err != nil {
		return nil, err
	}

	issues, err := s.host.Issues(ctx, "open", issueLimit)
	if err != nil {
		return nil, err
	}

	return &domain.RepoContext{
		Info:         info,
		PullRequests: prs,
		Issues:       issues,
	}, nil
}

// PullRequests lists pull requests.
func (s *RepoService) PullRequests(ctx context.Context, state string, limit int) ([]domain.PullRequest, error) {
	return s.host.PullRequests(ctx, state, limit)
}

// Issues lists issues.
func (s *RepoService) Issues(ctx context.Context, state string, limit int) ([]domain.Issue, error) {
	return s.host.Issues(ctx, state, limit)
}

// Workflows lists workflow definitions.
func (s *RepoService) Workflows(ctx context.Context) ([]domain.Workflow, error) {
	return s.host.Workflows(ctx)
}

// WorkflowRuns lists recent workflow runs.
func (s *RepoService) WorkflowRuns(ctx context.Context, limit int) ([]domain.WorkflowRun, error) {
	return s.host.WorkflowRuns(ctx, limit)
}

// TriggerWorkflow dispatches a workflow.
func (s *RepoService) TriggerWorkflow(ctx context.Context, workflowFile, ref string, inputs map[string]any) error {
	return s.host.TriggerWorkflow(ctx, workflowFile, ref, inputs)
}

// TriggerAnalysis dispatches the process-analysis workflow.
func (s *RepoService) TriggerAnalysis(ctx context.Context, processName, processData, analysisType string) (*domain.DispatchResult, error) {
	return s.host.TriggerAnalysis(ctx, processName, processData, analysisType)
}

// FetchArtifact downloads a completed run's report artifact into the
// artifact directory.
func (s *RepoService) FetchArtifact(ctx context.Context, runID int64, artifactName string) (*domain.ArtifactResult, error) {
	return s.host.FetchArtifact(ctx, runID, artifactName, s.artifactDir)
}
