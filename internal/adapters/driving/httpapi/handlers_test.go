package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
)

// mockRetriever implements driving.RetrieverService.
type mockRetriever struct {
	chunks    []domain.RetrievedChunk
	stats     domain.StoreStats
	ingestErr error
	cleared   bool
}

func (m *mockRetriever) IngestFile(_ context.Context, _ string, _ []byte) (int, error) {
	if m.ingestErr != nil {
		return 0, m.ingestErr
	}
	return 4, nil
}

func (m *mockRetriever) Ingest(_ context.Context, _, _ string) (int, error) { return 4, nil }

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievedChunk, error) {
	return m.chunks, nil
}

func (m *mockRetriever) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, nil
}

func (m *mockRetriever) DeleteDocument(_ context.Context, _ string) error { return nil }

func (m *mockRetriever) Config() domain.RetrievalConfig {
	return domain.RetrievalConfig{ChunkSize: 800, Overlap: 200, TopK: 3}
}

func (m *mockRetriever) ClearAll(_ context.Context) error {
	m.cleared = true
	return nil
}

// mockChat implements driving.ChatService.
type mockChat struct {
	answer *driving.Answer
	err    error
}

func (m *mockChat) Ask(_ context.Context, _ string, _ driving.AskOptions) (*driving.Answer, error) {
	return m.answer, m.err
}

// mockReport implements driving.ReportService.
type mockReport struct {
	reports []domain.ReportInfo
	pathErr error
}

func (m *mockReport) Generate(_ context.Context, _, _, _ string, _ domain.ReportBranding) (string, error) {
	return "analysis_20250101_120000.docx", nil
}

func (m *mockReport) List(_ context.Context) ([]domain.ReportInfo, error) {
	return m.reports, nil
}

func (m *mockReport) Cleanup(_ context.Context, _ time.Duration) (int, error) { return 0, nil }

func (m *mockReport) Path(filename string) (string, error) {
	if m.pathErr != nil {
		return "", m.pathErr
	}
	return "/tmp/reports/" + filename, nil
}

// mockRepo implements driving.RepoService.
type mockRepo struct {
	connected bool
	info      *domain.RepoInfo
	err       error
}

func (m *mockRepo) Connect(_ context.Context, _ string) (*domain.RepoInfo, error) {
	return m.info, m.err
}
func (m *mockRepo) Connected() bool { return m.connected }
func (m *mockRepo) Info(_ context.Context) (*domain.RepoInfo, error) {
	return m.info, m.err
}
func (m *mockRepo) Context(_ context.Context, _, _ int) (*domain.RepoContext, error) {
	return nil, m.err
}
func (m *mockRepo) PullRequests(_ context.Context, _ string, _ int) ([]domain.PullRequest, error) {
	return []domain.PullRequest{{Number: 1, Title: "fix"}}, m.err
}
func (m *mockRepo) Issues(_ context.Context, _ string, _ int) ([]domain.Issue, error) {
	return nil, m.err
}
func (m *mockRepo) Workflows(_ context.Context) ([]domain.Workflow, error) { return nil, m.err }
func (m *mockRepo) WorkflowRuns(_ context.Context, _ int) ([]domain.WorkflowRun, error) {
	return nil, m.err
}
func (m *mockRepo) TriggerWorkflow(_ context.Context, _, _ string, _ map[string]any) error {
	return m.err
}
func (m *mockRepo) TriggerAnalysis(_ context.Context, _, _, _ string) (*domain.DispatchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.DispatchResult{WorkflowName: "process-analysis.yml", RunID: 42}, nil
}
func (m *mockRepo) FetchArtifact(_ context.Context, _ int64, _ string) (*domain.ArtifactResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ArtifactResult{Ready: true, Filename: "report.docx"}, nil
}

func newTestRouter(retriever *mockRetriever, chat *mockChat, report *mockReport, repo *mockRepo) http.Handler {
	// A nil *mockRepo must become a nil interface, not an interface
	// wrapping a nil pointer, or the handler's configured check passes
	// and the call hits the nil mock.
	var repoSvc driving.RepoService
	if repo != nil {
		repoSvc = repo
	}
	return NewRouter(NewHandler(retriever, chat, report, repoSvc))
}

func TestHandleChat(t *testing.T) {
	chat := &mockChat{answer: &driving.Answer{
		Text: "the answer",
		Chunks: []domain.RetrievedChunk{
			{Chunk: domain.Chunk{DocumentID: "handbook.txt", Seq: 2}, Score: 0.88},
		},
	}}
	router := newTestRouter(&mockRetriever{}, chat, &mockReport{}, nil)

	body := `{"query": "what is the vacation policy?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "the answer", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "handbook.txt", resp.Sources[0].DocumentID)
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	router := newTestRouter(&mockRetriever{}, &mockChat{}, &mockReport{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_LLMUnavailable(t *testing.T) {
	chat := &mockChat{err: domain.ErrLLMUnavailable}
	router := newTestRouter(&mockRetriever{}, chat, &mockReport{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleUpload(t *testing.T) {
	retriever := &mockRetriever{}
	router := newTestRouter(retriever, &mockChat{}, &mockReport{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("document body"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "notes.txt", resp.Filename)
	assert.Equal(t, 4, resp.Chunks)
}

func TestHandleUpload_UnsupportedFormat(t *testing.T) {
	retriever := &mockRetriever{ingestErr: domain.ErrUnsupportedFormat}
	router := newTestRouter(retriever, &mockChat{}, &mockReport{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "binary.exe")
	_, _ = part.Write([]byte{0x00})
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandleRAGStatsAndClear(t *testing.T) {
	retriever := &mockRetriever{stats: domain.StoreStats{ChunkCount: 7, DocumentCount: 2}}
	router := newTestRouter(retriever, &mockChat{}, &mockReport{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rag/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chunk_count":7`)

	req = httptest.NewRequest(http.MethodPost, "/api/rag/clear", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, retriever.cleared)
}

func TestHandleGithubConnect(t *testing.T) {
	repo := &mockRepo{info: &domain.RepoInfo{FullName: "octocat/hello-world"}}
	router := newTestRouter(&mockRetriever{}, &mockChat{}, &mockReport{}, repo)

	body := `{"repo_url": "octocat/hello-world"}`
	req := httptest.NewRequest(http.MethodPost, "/api/github/connect", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "octocat/hello-world")
}

func TestHandleGithub_NotConfigured(t *testing.T) {
	router := newTestRouter(&mockRetriever{}, &mockChat{}, &mockReport{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/github/info", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleGithub_NotConnected(t *testing.T) {
	repo := &mockRepo{err: domain.ErrRepoNotConnected}
	router := newTestRouter(&mockRetriever{}, &mockChat{}, &mockReport{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/github/info", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGithubAnalyze(t *testing.T) {
	repo := &mockRepo{connected: true}
	router := newTestRouter(&mockRetriever{}, &mockChat{}, &mockReport{}, repo)

	body := `{"process_name": "deployment", "process_data": "steps..."}`
	req := httptest.NewRequest(http.MethodPost, "/api/github/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"RunID":42`)
}

func TestHandleGithubArtifact_InvalidRunID(t *testing.T) {
	repo := &mockRepo{connected: true}
	router := newTestRouter(&mockRetriever{}, &mockChat{}, &mockReport{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/github/artifact/not-a-number", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReportGenerate(t *testing.T) {
	chat := &mockChat{answer: &driving.Answer{Text: "1. Control Objective\nEnsure reviews."}}
	router := newTestRouter(&mockRetriever{}, chat, &mockReport{}, nil)

	body := `{"query": "are deployments reviewed?", "process_name": "deployment"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis_20250101_120000.docx")
}

func TestHandleReportDownload_NotFound(t *testing.T) {
	report := &mockReport{pathErr: domain.ErrNotFound}
	router := newTestRouter(&mockRetriever{}, &mockChat{}, report, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/download/missing.docx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	retriever := &mockRetriever{stats: domain.StoreStats{ChunkCount: 3}}
	repo := &mockRepo{connected: true}
	router := newTestRouter(retriever, &mockChat{}, &mockReport{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"repo_connected":true`)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&mockRetriever{}, &mockChat{}, &mockReport{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
