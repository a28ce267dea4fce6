package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
	"github.com/repoqa-labs/repoqa-cli/internal/logger"
)

// version is set from main via SetVersion.
var version = "dev"

// Services wired in by main. Commands guard against nil services so that
// partial wiring (e.g. no API key configured) degrades with a clear error
// instead of a panic.
var (
	retrieverService driving.RetrieverService
	chatService      driving.ChatService
	reportService    driving.ReportService
	repoService      driving.RepoService
	promptStore      driven.PromptStore
	configStore      driven.ConfigStore
)

// serveHandlerFactory builds the HTTP handler for the serve command.
// Injected by main to keep the HTTP adapter out of this package's imports.
var serveHandlerFactory func() (http.Handler, error)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "repoqa",
	Short: "Document and repository QA assistant",
	Long: `repoqa answers questions about your documents and your GitHub repository.

Ingest text, PDF and Word documents into a local vector index, then ask
questions answered with retrieval-augmented generation. Connect a GitHub
repository to include live pull requests, issues and workflow runs in the
conversation, and turn analysis answers into formatted Word reports.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verboseFlag {
			logger.SetVerbose(true)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// ServiceSet bundles the wired services handed over by main.
type ServiceSet struct {
	Retriever driving.RetrieverService
	Chat      driving.ChatService
	Report    driving.ReportService
	Repo      driving.RepoService
	Prompts   driven.PromptStore
	Config    driven.ConfigStore
}

// SetServices wires the application services into the command tree.
func SetServices(s ServiceSet) {
	retrieverService = s.Retriever
	chatService = s.Chat
	reportService = s.Report
	repoService = s.Repo
	promptStore = s.Prompts
	configStore = s.Config
}

// SetServeHandlerFactory wires the HTTP handler constructor used by serve.
func SetServeHandlerFactory(f func() (http.Handler, error)) {
	serveHandlerFactory = f
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
