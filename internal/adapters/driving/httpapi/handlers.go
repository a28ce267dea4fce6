package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
)

// maxUploadSize bounds multipart uploads.
const maxUploadSize = 32 << 20 // 32 MB

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	retriever driving.RetrieverService
	chat      driving.ChatService
	report    driving.ReportService
	repo      driving.RepoService
}

// NewHandler creates a Handler over the wired services. Any service may
// be nil; its endpoints then report 503.
func NewHandler(retriever driving.RetrieverService, chat driving.ChatService,
	report driving.ReportService, repo driving.RepoService) *Handler {
	return &Handler{
		retriever: retriever,
		chat:      chat,
		report:    report,
		repo:      repo,
	}
}

type chatRequest struct {
	Query          string `json:"query"`
	PromptTemplate string `json:"prompt_template,omitempty"`
	CustomPrompt   string `json:"custom_prompt,omitempty"`
	TopK           int    `json:"top_k,omitempty"`
	IncludeRepo    bool   `json:"include_repo,omitempty"`
}

type chatSource struct {
	DocumentID string  `json:"document_id"`
	Seq        int     `json:"seq"`
	Score      float64 `json:"score"`
}

type chatResponse struct {
	Answer       string       `json:"answer"`
	Sources      []chatSource `json:"sources"`
	RepoAttached bool         `json:"repo_attached"`
}

// HandleChat handles POST /api/chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("chat is not configured"))
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	answer, err := h.chat.Ask(r.Context(), req.Query, driving.AskOptions{
		PromptTemplate: req.PromptTemplate,
		CustomPrompt:   req.CustomPrompt,
		TopK:           req.TopK,
		IncludeRepo:    req.IncludeRepo,
	})
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sources := make([]chatSource, 0, len(answer.Chunks))
	for _, c := range answer.Chunks {
		sources = append(sources, chatSource{
			DocumentID: c.Chunk.DocumentID,
			Seq:        c.Chunk.Seq,
			Score:      c.Score,
		})
	}

	sendJSON(w, http.StatusOK, chatResponse{
		Answer:       answer.Text,
		Sources:      sources,
		RepoAttached: answer.RepoAttached,
	})
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
}

// HandleUpload handles POST /api/upload multipart requests.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if h.retriever == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("ingestion is not configured"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		sendError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendError(w, http.StatusBadRequest, errors.New("missing 'file' form field"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		sendError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	count, err := h.retriever.IngestFile(r.Context(), header.Filename, content)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, uploadResponse{Filename: header.Filename, Chunks: count})
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type searchResult struct {
	DocumentID string  `json:"document_id"`
	Seq        int     `json:"seq"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// HandleSearch handles POST /api/search requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if h.retriever == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("retrieval is not configured"))
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = h.retriever.Config().TopK
	}
	chunks, err := h.retriever.Retrieve(r.Context(), req.Query, topK)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	results := make([]searchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, searchResult{
			DocumentID: c.Chunk.DocumentID,
			Seq:        c.Chunk.Seq,
			Content:    c.Chunk.Content,
			Score:      c.Score,
		})
	}

	sendJSON(w, http.StatusOK, map[string]any{"results": results})
}

// HandleRAGStats handles GET /api/rag/stats requests.
func (h *Handler) HandleRAGStats(w http.ResponseWriter, r *http.Request) {
	if h.retriever == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("retrieval is not configured"))
		return
	}

	stats, err := h.retriever.Stats(r.Context())
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]int{
		"chunk_count":    stats.ChunkCount,
		"document_count": stats.DocumentCount,
	})
}

// HandleRAGClear handles POST /api/rag/clear requests.
func (h *Handler) HandleRAGClear(w http.ResponseWriter, r *http.Request) {
	if h.retriever == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("retrieval is not configured"))
		return
	}

	if err := h.retriever.ClearAll(r.Context()); err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleDeleteDocument handles DELETE /api/rag/documents/{id} requests.
func (h *Handler) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if h.retriever == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("retrieval is not configured"))
		return
	}

	docID := mux.Vars(r)["id"]
	if err := h.retriever.DeleteDocument(r.Context(), docID); err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"status": "deleted", "document_id": docID})
}

type connectRequest struct {
	RepoURL string `json:"repo_url"`
}

// HandleGithubConnect handles POST /api/github/connect requests.
func (h *Handler) HandleGithubConnect(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("github is not configured"))
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	info, err := h.repo.Connect(r.Context(), req.RepoURL)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, info)
}

// HandleGithubInfo handles GET /api/github/info requests.
func (h *Handler) HandleGithubInfo(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("github is not configured"))
		return
	}

	info, err := h.repo.Info(r.Context())
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, info)
}

// HandleGithubPRs handles GET /api/github/prs requests.
func (h *Handler) HandleGithubPRs(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("github is not configured"))
		return
	}

	state, limit := listParams(r)
	prs, err := h.repo.PullRequests(r.Context(), state, limit)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{"pull_requests": prs})
}

// HandleGithubIssues handles GET /api/github/issues requests.
func (h *Handler) HandleGithubIssues(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("github is not configured"))
		return
	}

	state, limit := listParams(r)
	issues, err := h.repo.Issues(r.Context(), state, limit)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

// HandleGithubWorkflows handles GET /api/github/workflows requests.
func (h *Handler) HandleGithubWorkflows(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("github is not configured"))
		return
	}

	workflows, err := h.repo.Workflows(r.Context())
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{"workflows": workflows})
}

// HandleGithubRuns handles GET /api/github/runs requests.
func (h *Handler) HandleGithubRuns(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("github is not configured"))
		return
	}

	_, limit := listParams(r)
	runs, err := h.repo.WorkflowRuns(r.Context(), limit)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

type analyzeRequest struct {
	ProcessName  string `json:"process_name"`
	ProcessData  string `json:"process_data"`
	AnalysisType string `json:"analysis_type,omitempty"`
}

// HandleGithubAnalyze handles POST /api/github/analyze requests.
func (h *Handler) HandleGithubAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("github is not configured"))
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if req.AnalysisType == "" {
		req.AnalysisType = "general"
	}

	result, err := h.repo.TriggerAnalysis(r.Context(), req.ProcessName, req.ProcessData, req.AnalysisType)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusAccepted, result)
}

// HandleGithubArtifact handles GET /api/github/artifact/{runID} requests.
func (h *Handler) HandleGithubArtifact(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("github is not configured"))
		return
	}

	runID, err := strconv.ParseInt(mux.Vars(r)["runID"], 10, 64)
	if err != nil {
		sendError(w, http.StatusBadRequest, errors.New("invalid run id"))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "process-analysis-report"
	}

	result, err := h.repo.FetchArtifact(r.Context(), runID, name)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, result)
}

// HandleReportList handles GET /api/reports requests.
func (h *Handler) HandleReportList(w http.ResponseWriter, r *http.Request) {
	if h.report == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("reports are not configured"))
		return
	}

	reports, err := h.report.List(r.Context())
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

type generateRequest struct {
	Query       string `json:"query"`
	ProcessName string `json:"process_name,omitempty"`
	Template    string `json:"prompt_template,omitempty"`
	IncludeRepo bool   `json:"include_repo,omitempty"`
}

// HandleReportGenerate handles POST /api/reports/generate requests.
// It runs the analysis through the chat service and writes the answer
// as a report document.
func (h *Handler) HandleReportGenerate(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil || h.report == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("reports are not configured"))
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if req.ProcessName == "" {
		req.ProcessName = "analysis"
	}
	if req.Template == "" {
		req.Template = "auditor"
	}

	answer, err := h.chat.Ask(r.Context(), req.Query, driving.AskOptions{
		PromptTemplate: req.Template,
		IncludeRepo:    req.IncludeRepo,
	})
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	filename, err := h.report.Generate(r.Context(), answer.Text, req.ProcessName, req.Query,
		domain.DefaultReportBranding())
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"filename": filename})
}

// HandleReportDownload handles GET /api/reports/download/{filename} requests.
func (h *Handler) HandleReportDownload(w http.ResponseWriter, r *http.Request) {
	if h.report == nil {
		sendError(w, http.StatusServiceUnavailable, errors.New("reports are not configured"))
		return
	}

	filename := mux.Vars(r)["filename"]
	path, err := h.report.Path(filename)
	if err != nil {
		sendError(w, statusFromError(err), err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	http.ServeFile(w, r, path)
}

// HandleHealth handles GET /health requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if h.retriever != nil {
		if stats, err := h.retriever.Stats(r.Context()); err == nil {
			status["chunk_count"] = stats.ChunkCount
		}
	}
	if h.repo != nil {
		status["repo_connected"] = h.repo.Connected()
	}
	sendJSON(w, http.StatusOK, status)
}

// listParams extracts the common state/limit query parameters.
func listParams(r *http.Request) (string, int) {
	state := r.URL.Query().Get("state")
	if state == "" {
		state = "open"
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return state, limit
}

// statusFromError maps domain sentinel errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAuthInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvariantViolation):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, domain.ErrRepoNotConnected):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sendJSON sends a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// sendError sends a JSON error response.
func sendError(w http.ResponseWriter, status int, err error) {
	sendJSON(w, status, map[string]string{"error": err.Error()})
}
