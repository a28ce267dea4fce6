package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

// mockRepoHost implements driven.RepoHost for testing.
type mockRepoHost struct {
	connected  bool
	connectErr error
	info       *domain.RepoInfo
	prs        []domain.PullRequest
	issues     []domain.Issue

	connectedTo string
}

func (m *mockRepoHost) Connect(_ context.Context, repoURL string) error {
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	m.connectedTo = repoURL
	return nil
}

func (m *mockRepoHost) Connected() bool { return m.connected }

func (m *mockRepoHost) Info(_ context.Context) (*domain.RepoInfo, error) {
	if !m.connected {
		return nil, domain.ErrRepoNotConnected
	}
	return m.info, nil
}

func (m *mockRepoHost) PullRequests(_ context.Context, _ string, _ int) ([]domain.PullRequest, error) {
	return m.prs, nil
}

func (m *mockRepoHost) Issues(_ context.Context, _ string, _ int) ([]domain.Issue, error) {
	return m.issues, nil
}

func (m *mockRepoHost) Workflows(_ context.Context) ([]domain.Workflow, error) { return nil, nil }
func (m *mockRepoHost) WorkflowRuns(_ context.Context, _ int) ([]domain.WorkflowRun, error) {
	return nil, nil
}
func (m *mockRepoHost) TriggerWorkflow(_ context.Context, _, _ string, _ map[string]any) error {
	return nil
}
func (m *mockRepoHost) TriggerAnalysis(_ context.Context, _, _, _ string) (*domain.DispatchResult, error) {
	return &domain.DispatchResult{RunID: 99}, nil
}
func (m *mockRepoHost) FetchArtifact(_ context.Context, _ int64, _, destDir string) (*domain.ArtifactResult, error) {
	return &domain.ArtifactResult{Ready: true, Filename: "report.docx"}, nil
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	data map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.data[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.data[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.data[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func TestRepoService_ConnectPersistsURL(t *testing.T) {
	host := &mockRepoHost{info: &domain.RepoInfo{FullName: "octocat/hello-world"}}
	config := newMockConfigStore()
	svc := NewRepoService(host, config, t.TempDir())

	info, err := svc.Connect(context.Background(), "https://github.com/octocat/hello-world")
	require.NoError(t, err)

	assert.Equal(t, "octocat/hello-world", info.FullName)
	assert.Equal(t, "https://github.com/octocat/hello-world", config.GetString(configKeyRepoURL))
	assert.True(t, svc.Connected())
}

func TestRepoService_Reconnect(t *testing.T) {
	host := &mockRepoHost{info: &domain.RepoInfo{FullName: "octocat/hello-world"}}
	config := newMockConfigStore()
	require.NoError(t, config.Set(configKeyRepoURL, "octocat/hello-world"))

	svc := NewRepoService(host, config, t.TempDir())
	svc.Reconnect(context.Background())

	assert.True(t, svc.Connected())
	assert.Equal(t, "octocat/hello-world", host.connectedTo)
}

func TestRepoService_Context(t *testing.T) {
	host := &mockRepoHost{
		connected: true,
		info:      &domain.RepoInfo{FullName: "octocat/hello-world"},
		prs:       []domain.PullRequest{{Number: 1, Title: "fix"}},
		issues:    []domain.Issue{{Number: 2, Title: "bug"}},
	}
	svc := NewRepoService(host, newMockConfigStore(), t.TempDir())

	rc, err := svc.Context(context.Background(), 5, 5)
	require.NoError(t, err)
	assert.Equal(t, "octocat/hello-world", rc.Info.FullName)
	assert.Len(t, rc.PullRequests, 1)
	assert.Len(t, rc.Issues, 1)
}

func TestRepoService_ContextRequiresConnection(t *testing.T) {
	svc := NewRepoService(&mockRepoHost{}, newMockConfigStore(), t.TempDir())

	_, err := svc.Context(context.Background(), 5, 5)
	assert.ErrorIs(t, err, domain.ErrRepoNotConnected)
}
