// Command repoqa is a document and repository QA assistant. It ingests
// documents into a local vector index, answers questions with
// retrieval-augmented generation, and connects a GitHub repository for
// live context and workflow-driven analysis reports.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/repoqa-labs/repoqa-cli/internal/adapters/driven/ai"
	configfile "github.com/repoqa-labs/repoqa-cli/internal/adapters/driven/config/file"
	reportdocx "github.com/repoqa-labs/repoqa-cli/internal/adapters/driven/report/docx"
	"github.com/repoqa-labs/repoqa-cli/internal/adapters/driven/storage/sqlite"
	"github.com/repoqa-labs/repoqa-cli/internal/adapters/driving/cli"
	"github.com/repoqa-labs/repoqa-cli/internal/adapters/driving/httpapi"
	githubconn "github.com/repoqa-labs/repoqa-cli/internal/connectors/github"
	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
	"github.com/repoqa-labs/repoqa-cli/internal/core/services"
	"github.com/repoqa-labs/repoqa-cli/internal/extractors"
	"github.com/repoqa-labs/repoqa-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	if os.Getenv("REPOQA_VERBOSE") != "" {
		logger.SetVerbose(true)
	}

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config: %w", err)
	}

	promptStore, err := configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("initialising prompts: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening chunk store: %w", err)
	}
	defer store.Close()

	embeddingSettings := embeddingSettingsFromEnv(configStore)
	embedding, err := ai.CreateEmbeddingService(embeddingSettings)
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}

	llmSettings := llmSettingsFromEnv(configStore)
	llm, err := ai.CreateLLMService(llmSettings)
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
		llm = nil
	}

	retriever, err := services.NewRetrieverService(
		store, embedding, extractors.NewRegistry(), retrievalConfig(configStore))
	if err != nil {
		return fmt.Errorf("creating retriever: %w", err)
	}

	reportSvc, err := services.NewReportService(reportdocx.NewWriter(), "")
	if err != nil {
		return fmt.Errorf("creating report service: %w", err)
	}

	var repoSvc *services.RepoService
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ctx := context.Background()
		host, err := githubconn.NewHost(ctx, githubconn.HostConfig{
			Token:            token,
			AnalysisWorkflow: os.Getenv("GITHUB_ANALYSIS_WORKFLOW"),
			Ref:              os.Getenv("GITHUB_REF"),
		})
		if err != nil {
			return fmt.Errorf("creating github host: %w", err)
		}

		repoSvc = services.NewRepoService(host, configStore, reportSvc.Dir())
		if url := os.Getenv("GITHUB_REPO_URL"); url != "" {
			if _, err := repoSvc.Connect(ctx, url); err != nil {
				logger.Warn("could not connect to %s: %v", url, err)
			}
		} else {
			repoSvc.Reconnect(ctx)
		}
	}

	chatSvc := services.NewChatService(retriever, llm, promptStore, repoServiceOrNil(repoSvc))

	cli.SetVersion(version)
	cli.SetServices(cli.ServiceSet{
		Retriever: retriever,
		Chat:      chatSvc,
		Report:    reportSvc,
		Repo:      repoServiceOrNil(repoSvc),
		Prompts:   promptStore,
		Config:    configStore,
	})
	cli.SetServeHandlerFactory(func() (http.Handler, error) {
		handler := httpapi.NewHandler(retriever, chatSvc, reportSvc, repoServiceOrNil(repoSvc))
		return httpapi.NewRouter(handler), nil
	})

	return cli.Execute()
}

// repoServiceOrNil avoids handing out a typed-nil interface value.
func repoServiceOrNil(svc *services.RepoService) driving.RepoService {
	if svc == nil {
		return nil
	}
	return svc
}

// embeddingSettingsFromEnv builds embedding settings from environment
// variables with config-file fallbacks.
func embeddingSettingsFromEnv(config driven.ConfigStore) *domain.EmbeddingSettings {
	provider := domain.AIProvider(envOrConfig(config, "REPOQA_EMBEDDING_PROVIDER", "ai.embedding_provider"))
	if provider == "" {
		provider = domain.AIProviderGemini
	}

	return &domain.EmbeddingSettings{
		Provider: provider,
		APIKey:   apiKeyFor(provider),
		BaseURL:  envOrConfig(config, "REPOQA_EMBEDDING_BASE_URL", "ai.embedding_base_url"),
		Model:    envOrConfig(config, "REPOQA_EMBEDDING_MODEL", "ai.embedding_model"),
	}
}

// llmSettingsFromEnv builds generation settings from environment
// variables with config-file fallbacks.
func llmSettingsFromEnv(config driven.ConfigStore) *domain.LLMSettings {
	provider := domain.AIProvider(envOrConfig(config, "REPOQA_LLM_PROVIDER", "ai.llm_provider"))
	if provider == "" {
		provider = domain.AIProviderGemini
	}

	return &domain.LLMSettings{
		Provider: provider,
		APIKey:   apiKeyFor(provider),
		BaseURL:  envOrConfig(config, "REPOQA_LLM_BASE_URL", "ai.llm_base_url"),
		Model:    envOrConfig(config, "REPOQA_LLM_MODEL", "ai.llm_model"),
	}
}

// apiKeyFor returns the provider's API key from the environment.
func apiKeyFor(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case domain.AIProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return ""
	}
}

// retrievalConfig reads chunking parameters from the config store,
// falling back to the defaults.
func retrievalConfig(config driven.ConfigStore) domain.RetrievalConfig {
	cfg := domain.DefaultRetrievalConfig()
	if v := config.GetInt("retrieval.chunk_size"); v > 0 {
		cfg.ChunkSize = v
	}
	if v := config.GetInt("retrieval.overlap"); v > 0 {
		cfg.Overlap = v
	}
	if v := config.GetInt("retrieval.top_k"); v > 0 {
		cfg.TopK = v
	}
	return cfg
}

// envOrConfig prefers the environment variable over the config key.
func envOrConfig(config driven.ConfigStore, envKey, configKey string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return config.GetString(configKey)
}
