package cli

import (
	"context"
	"time"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
)

// mockRetrieverService implements driving.RetrieverService for CLI tests.
type mockRetrieverService struct {
	chunks  []domain.RetrievedChunk
	stats   domain.StoreStats
	err     error
	cleared bool
	deleted []string
}

func (m *mockRetrieverService) IngestFile(_ context.Context, _ string, _ []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return 3, nil
}

func (m *mockRetrieverService) Ingest(_ context.Context, _, _ string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return 3, nil
}

func (m *mockRetrieverService) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievedChunk, error) {
	return m.chunks, m.err
}

func (m *mockRetrieverService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockRetrieverService) DeleteDocument(_ context.Context, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	return m.err
}

func (m *mockRetrieverService) ClearAll(_ context.Context) error {
	m.cleared = true
	return m.err
}

func (m *mockRetrieverService) Config() domain.RetrievalConfig {
	return domain.RetrievalConfig{ChunkSize: 800, Overlap: 200, TopK: 3}
}

// mockChatService implements driving.ChatService for CLI tests.
type mockChatService struct {
	answer *driving.Answer
	err    error
}

func (m *mockChatService) Ask(_ context.Context, _ string, _ driving.AskOptions) (*driving.Answer, error) {
	return m.answer, m.err
}

// mockReportService implements driving.ReportService for CLI tests.
type mockReportService struct {
	reports []domain.ReportInfo
	err     error
}

func (m *mockReportService) Generate(_ context.Context, _, _, _ string, _ domain.ReportBranding) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "analysis_20250101_120000.docx", nil
}

func (m *mockReportService) List(_ context.Context) ([]domain.ReportInfo, error) {
	return m.reports, m.err
}

func (m *mockReportService) Cleanup(_ context.Context, _ time.Duration) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return 2, nil
}

func (m *mockReportService) Path(filename string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "/tmp/reports/" + filename, nil
}

// mockPromptStore implements driven.PromptStore for CLI tests.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Names() []string {
	names := make([]string, 0, len(m.prompts))
	for n := range m.prompts {
		names = append(names, n)
	}
	return names
}

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous wiring.
func setupTestServices() func() {
	oldRetriever := retrieverService
	oldChat := chatService
	oldReport := reportService
	oldRepo := repoService
	oldPrompts := promptStore
	oldConfig := configStore

	retrieverService = &mockRetrieverService{
		chunks: []domain.RetrievedChunk{
			{
				Chunk: domain.Chunk{ID: "c-1", DocumentID: "handbook.txt", Seq: 0,
					Content: "vacation policy details"},
				Score: 0.91,
			},
		},
		stats: domain.StoreStats{ChunkCount: 12, DocumentCount: 2},
	}
	chatService = &mockChatService{
		answer: &driving.Answer{Text: "the answer"},
	}
	reportService = &mockReportService{
		reports: []domain.ReportInfo{
			{Filename: "analysis_20250101_120000.docx", SizeBytes: 4096, CreatedAt: time.Now()},
		},
	}
	promptStore = &mockPromptStore{prompts: map[string]string{
		"default": "You are a helpful assistant.",
		"auditor": "You are a compliance auditor.",
	}}

	return func() {
		retrieverService = oldRetriever
		chatService = oldChat
		reportService = oldReport
		repoService = oldRepo
		promptStore = oldPrompts
		configStore = oldConfig
	}
}
