package domain

import "time"

// RepoInfo holds basic metadata about the connected repository.
type RepoInfo struct {
	FullName    string
	Description string
	Stars       int
	Forks       int
	OpenIssues  int
	Language    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PullRequest is a summarised pull request for prompt context and display.
type PullRequest struct {
	Number    int
	Title     string
	State     string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
	URL       string
}

// Issue is a summarised issue. Pull requests surfaced through the issues
// API are filtered out before this type is constructed.
type Issue struct {
	Number    int
	Title     string
	State     string
	Author    string
	Labels    []string
	CreatedAt time.Time
	UpdatedAt time.Time
	URL       string
}

// Workflow describes an Actions workflow definition.
type Workflow struct {
	ID    int64
	Name  string
	Path  string
	State string
}

// WorkflowRun describes a single execution of a workflow.
type WorkflowRun struct {
	ID         int64
	Name       string
	Status     string
	Conclusion string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	URL        string
}

// WorkflowRunStatus values reported by the API.
const (
	RunStatusCompleted = "completed"
	RunConclusionOK    = "success"
)

// DispatchResult reports a triggered workflow run.
type DispatchResult struct {
	WorkflowName string
	RunID        int64
	RunURL       string
}

// ArtifactResult reports the outcome of an artifact check-and-download.
type ArtifactResult struct {
	// Ready is true when the run completed successfully and the artifact
	// was downloaded.
	Ready bool

	// Status is the run status when not ready ("queued", "in_progress", ...).
	Status string

	// Conclusion is the run conclusion when completed unsuccessfully.
	Conclusion string

	// Filename is the extracted report file, relative to the reports dir.
	Filename string
}

// RepoContext bundles live repository data attached to a chat prompt.
type RepoContext struct {
	Info         *RepoInfo
	PullRequests []PullRequest
	Issues       []Issue
}
