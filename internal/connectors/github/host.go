package github

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
	"github.com/repoqa-labs/repoqa-cli/internal/logger"
)

// Ensure Host implements the interface.
var _ driven.RepoHost = (*Host)(nil)

const (
	// DefaultAnalysisWorkflow is the workflow file dispatched by TriggerAnalysis.
	DefaultAnalysisWorkflow = "process-analysis.yml"

	// DefaultRef is the ref workflows are dispatched on.
	DefaultRef = "main"

	// dispatchResolveAttempts bounds polling for the run created by a dispatch.
	dispatchResolveAttempts = 5

	// dispatchResolveDelay is the pause between resolution attempts.
	dispatchResolveDelay = 2 * time.Second

	// maxArtifactSize caps artifact downloads (100 MB).
	maxArtifactSize = 100 << 20

	// maxDownloadRedirects bounds redirect following on artifact URLs.
	maxDownloadRedirects = 3
)

// HostConfig configures the GitHub repository host.
type HostConfig struct {
	// Token is the personal access token (required).
	Token string

	// AnalysisWorkflow is the workflow file for TriggerAnalysis.
	AnalysisWorkflow string

	// Ref is the git ref for workflow dispatches.
	Ref string
}

// Host provides repository access backed by the GitHub API.
type Host struct {
	client           *Client
	httpClient       *http.Client
	analysisWorkflow string
	ref              string

	mu    sync.RWMutex
	owner string
	repo  string
}

// NewHost creates a GitHub repository host.
func NewHost(ctx context.Context, cfg HostConfig) (*Host, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: github token is required", domain.ErrConfiguration)
	}
	if cfg.AnalysisWorkflow == "" {
		cfg.AnalysisWorkflow = DefaultAnalysisWorkflow
	}
	if cfg.Ref == "" {
		cfg.Ref = DefaultRef
	}

	return &Host{
		client:           NewClientWithToken(ctx, cfg.Token),
		httpClient:       &http.Client{Timeout: 5 * time.Minute},
		analysisWorkflow: cfg.AnalysisWorkflow,
		ref:              cfg.Ref,
	}, nil
}

// Connect resolves a repository URL and validates access.
func (h *Host) Connect(ctx context.Context, repoURL string) error {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return err
	}

	if err := h.client.wait(ctx); err != nil {
		return err
	}
	_, resp, err := h.client.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return h.client.wrapError(err, "get repo")
	}
	h.client.update(resp)

	h.mu.Lock()
	h.owner, h.repo = owner, repo
	h.mu.Unlock()

	logger.Info("connected to github repository %s/%s", owner, repo)
	return nil
}

// Connected reports whether a repository is connected.
func (h *Host) Connected() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.owner != ""
}

// target returns the connected owner/repo pair.
func (h *Host) target() (string, string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.owner == "" {
		return "", "", domain.ErrRepoNotConnected
	}
	return h.owner, h.repo, nil
}

// Info returns repository metadata.
func (h *Host) Info(ctx context.Context) (*domain.RepoInfo, error) {
	owner, repo, err := h.target()
	if err != nil {
		return nil, err
	}

	if err := h.client.wait(ctx); err != nil {
		return nil, err
	}
	repository, resp, err := h.client.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, h.client.wrapError(err, "get repo")
	}
	h.client.update(resp)

	return &domain.RepoInfo{
		FullName:    repository.GetFullName(),
		Description: repository.GetDescription(),
		Stars:       repository.GetStargazersCount(),
		Forks:       repository.GetForksCount(),
		OpenIssues:  repository.GetOpenIssuesCount(),
		Language:    repository.GetLanguage(),
		CreatedAt:   repository.GetCreatedAt().Time,
		UpdatedAt:   repository.GetUpdatedAt().Time,
	}, nil
}

// PullRequests lists pull requests filtered by state, newest first.
func (h *Host) PullRequests(ctx context.Context, state string, limit int) ([]domain.PullRequest, error) {
	owner, repo, err := h.target()
	if err != nil {
		return nil, err
	}
	if state == "" {
		state = "open"
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}

	if err := h.client.wait(ctx); err != nil {
		return nil, err
	}
	prs, resp, err := h.client.gh.PullRequests.List(ctx, owner, repo, &gh.PullRequestListOptions{
		State:       state,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, h.client.wrapError(err, "list pull requests")
	}
	h.client.update(resp)

	result := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, domain.PullRequest{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			State:     pr.GetState(),
			Author:    pr.GetUser().GetLogin(),
			CreatedAt: pr.GetCreatedAt().Time,
			UpdatedAt: pr.GetUpdatedAt().Time,
			URL:       pr.GetHTMLURL(),
		})
	}
	return result, nil
}

// Issues lists issues filtered by state. GitHub surfaces pull requests
// through the issues API; those are filtered out here.
func (h *Host) Issues(ctx context.Context, state string, limit int) ([]domain.Issue, error) {
	owner, repo, err := h.target()
	if err != nil {
		return nil, err
	}
	if state == "" {
		state = "open"
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}

	if err := h.client.wait(ctx); err != nil {
		return nil, err
	}
	issues, resp, err := h.client.gh.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{
		State:       state,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, h.client.wrapError(err, "list issues")
	}
	h.client.update(resp)

	result := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		labels := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			labels = append(labels, l.GetName())
		}
		result = append(result, domain.Issue{
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			State:     issue.GetState(),
			Author:    issue.GetUser().GetLogin(),
			Labels:    labels,
			CreatedAt: issue.GetCreatedAt().Time,
			UpdatedAt: issue.GetUpdatedAt().Time,
			URL:       issue.GetHTMLURL(),
		})
	}
	return result, nil
}

// Workflows lists Actions workflow definitions.
func (h *Host) Workflows(ctx context.Context) ([]domain.Workflow, error) {
	owner, repo, err := h.target()
	if err != nil {
		return nil, err
	}

	if err := h.client.wait(ctx); err != nil {
		return nil, err
	}
	workflows, resp, err := h.client.gh.Actions.ListWorkflows(ctx, owner, repo, &gh.ListOptions{PerPage: 100})
	if err != nil {
		return nil, h.client.wrapError(err, "list workflows")
	}
	h.client.update(resp)

	result := make([]domain.Workflow, 0, len(workflows.Workflows))
	for _, wf := range workflows.Workflows {
		result = append(result, domain.Workflow{
			ID:    wf.GetID(),
			Name:  wf.GetName(),
			Path:  wf.GetPath(),
			State: wf.GetState(),
		})
	}
	return result, nil
}

// WorkflowRuns lists recent workflow runs, newest first.
func (h *Host) WorkflowRuns(ctx context.Context, limit int) ([]domain.WorkflowRun, error) {
	owner, repo, err := h.target()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if err := h.client.wait(ctx); err != nil {
		return nil, err
	}
	runs, resp, err := h.client.gh.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, &gh.ListWorkflowRunsOptions{
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, h.client.wrapError(err, "list workflow runs")
	}
	h.client.update(resp)

	return convertRuns(runs.WorkflowRuns), nil
}

// TriggerWorkflow dispatches a workflow on the given ref with inputs.
func (h *Host) TriggerWorkflow(ctx context.Context, workflowFile, ref string, inputs map[string]any) error {
	owner, repo, err := h.target()
	if err != nil {
		return err
	}
	if ref == "" {
		ref = h.ref
	}

	if err := h.client.wait(ctx); err != nil {
		return err
	}
	resp, err := h.client.gh.Actions.CreateWorkflowDispatchEventByFileName(ctx, owner, repo, workflowFile,
		gh.CreateWorkflowDispatchEventRequest{
			Ref:    ref,
			Inputs: inputs,
		})
	if err != nil {
		return h.client.wrapError(err, "dispatch workflow")
	}
	h.client.update(resp)

	logger.Info("dispatched workflow %s on %s", workflowFile, ref)
	return nil
}

// TriggerAnalysis dispatches the analysis workflow and resolves the
// run it created. The dispatch API returns no run ID, so the newest
// workflow_dispatch run after the dispatch time is taken as ours.
func (h *Host) TriggerAnalysis(ctx context.Context, processName, processData, analysisType string) (*domain.DispatchResult, error) {
	owner, repo, err := h.target()
	if err != nil {
		return nil, err
	}

	dispatchedAt := time.Now().Add(-time.Second)
	err = h.TriggerWorkflow(ctx, h.analysisWorkflow, h.ref, map[string]any{
		"process_name":  processName,
		"process_data":  processData,
		"analysis_type": analysisType,
	})
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < dispatchResolveAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dispatchResolveDelay):
		}

		if err := h.client.wait(ctx); err != nil {
			return nil, err
		}
		runs, resp, err := h.client.gh.Actions.ListWorkflowRunsByFileName(ctx, owner, repo, h.analysisWorkflow,
			&gh.ListWorkflowRunsOptions{
				Event:       "workflow_dispatch",
				ListOptions: gh.ListOptions{PerPage: 5},
			})
		if err != nil {
			return nil, h.client.wrapError(err, "list workflow runs")
		}
		h.client.update(resp)

		for _, run := range runs.WorkflowRuns {
			if run.GetCreatedAt().Time.After(dispatchedAt) {
				return &domain.DispatchResult{
					WorkflowName: run.GetName(),
					RunID:        run.GetID(),
					RunURL:       run.GetHTMLURL(),
				}, nil
			}
		}
	}

	return nil, fmt.Errorf("github: dispatched run did not appear after %d attempts", dispatchResolveAttempts)
}

// FetchArtifact checks a run for the named artifact and, when the run
// completed successfully, downloads the zip and extracts its report
// file into destDir.
func (h *Host) FetchArtifact(ctx context.Context, runID int64, artifactName, destDir string) (*domain.ArtifactResult, error) {
	owner, repo, err := h.target()
	if err != nil {
		return nil, err
	}

	if err := h.client.wait(ctx); err != nil {
		return nil, err
	}
	run, resp, err := h.client.gh.Actions.GetWorkflowRunByID(ctx, owner, repo, runID)
	if err != nil {
		return nil, h.client.wrapError(err, "get workflow run")
	}
	h.client.update(resp)

	if run.GetStatus() != domain.RunStatusCompleted {
		return &domain.ArtifactResult{Status: run.GetStatus()}, nil
	}
	if run.GetConclusion() != domain.RunConclusionOK {
		return &domain.ArtifactResult{
			Status:     run.GetStatus(),
			Conclusion: run.GetConclusion(),
		}, nil
	}

	artifact, err := h.findArtifact(ctx, owner, repo, runID, artifactName)
	if err != nil {
		return nil, err
	}

	filename, err := h.downloadAndExtract(ctx, owner, repo, artifact, destDir)
	if err != nil {
		return nil, err
	}

	return &domain.ArtifactResult{
		Ready:      true,
		Status:     run.GetStatus(),
		Conclusion: run.GetConclusion(),
		Filename:   filename,
	}, nil
}

// findArtifact locates the named artifact on a completed run.
func (h *Host) findArtifact(ctx context.Context, owner, repo string, runID int64, name string) (*gh.Artifact, error) {
	if err := h.client.wait(ctx); err != nil {
		return nil, err
	}
	artifacts, resp, err := h.client.gh.Actions.ListWorkflowRunArtifacts(ctx, owner, repo, runID,
		&gh.ListOptions{PerPage: 100})
	if err != nil {
		return nil, h.client.wrapError(err, "list artifacts")
	}
	h.client.update(resp)

	for _, artifact := range artifacts.Artifacts {
		if artifact.GetName() == name {
			return artifact, nil
		}
	}
	return nil, fmt.Errorf("%w: %s on run %d", ErrArtifactNotFound, name, runID)
}

// downloadAndExtract fetches the artifact zip and writes its first
// regular file into destDir, returning the written filename.
func (h *Host) downloadAndExtract(ctx context.Context, owner, repo string, artifact *gh.Artifact, destDir string) (string, error) {
	if err := h.client.wait(ctx); err != nil {
		return "", err
	}
	url, resp, err := h.client.gh.Actions.DownloadArtifact(ctx, owner, repo, artifact.GetID(), maxDownloadRedirects)
	if err != nil {
		return "", h.client.wrapError(err, "download artifact")
	}
	h.client.update(resp)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}
	httpResp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download artifact: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download artifact: status %d", httpResp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxArtifactSize))
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}

	return extractFirstFile(data, destDir)
}

// extractFirstFile writes the first regular file in the zip to destDir.
func extractFirstFile(zipData []byte, destDir string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return "", fmt.Errorf("open artifact zip: %w", err)
	}

	if err := os.MkdirAll(destDir, 0700); err != nil {
		return "", fmt.Errorf("create dest dir: %w", err)
	}

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		// Flatten paths and reject traversal attempts.
		name := filepath.Base(file.Name)
		if name == "." || name == ".." || name == "/" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open zip entry: %w", err)
		}
		content, err := io.ReadAll(io.LimitReader(rc, maxArtifactSize))
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read zip entry: %w", err)
		}

		destPath := filepath.Join(destDir, name)
		if err := os.WriteFile(destPath, content, 0600); err != nil {
			return "", fmt.Errorf("write extracted file: %w", err)
		}
		return name, nil
	}

	return "", fmt.Errorf("artifact zip contains no files")
}

// convertRuns maps go-github workflow runs to domain values.
func convertRuns(runs []*gh.WorkflowRun) []domain.WorkflowRun {
	result := make([]domain.WorkflowRun, 0, len(runs))
	for _, run := range runs {
		result = append(result, domain.WorkflowRun{
			ID:         run.GetID(),
			Name:       run.GetName(),
			Status:     run.GetStatus(),
			Conclusion: run.GetConclusion(),
			CreatedAt:  run.GetCreatedAt().Time,
			UpdatedAt:  run.GetUpdatedAt().Time,
			URL:        run.GetHTMLURL(),
		})
	}
	return result
}

// ParseRepoURL extracts the owner and repository name from a GitHub
// URL or an owner/repo shorthand.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	s := strings.TrimSpace(repoURL)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	switch {
	case strings.HasPrefix(s, "git@github.com:"):
		s = strings.TrimPrefix(s, "git@github.com:")
	case strings.Contains(s, "github.com/"):
		_, after, found := strings.Cut(s, "github.com/")
		if !found {
			return "", "", fmt.Errorf("%w: %s", ErrInvalidRepoURL, repoURL)
		}
		s = after
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidRepoURL, repoURL)
	}
	return parts[0], parts[1], nil
}
