package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driving"
)

var (
	askTopK     int
	askTemplate string
	askPrompt   string
	askRepo     bool
	askSources  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a question using retrieval-augmented generation: the most
relevant indexed chunks are retrieved and handed to the configured LLM
together with the question.

With --repo, live data from the connected GitHub repository (metadata,
open pull requests, open issues) is attached to the prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().StringVarP(&askTemplate, "template", "t", "", "system prompt template (see 'repoqa prompts list')")
	askCmd.Flags().StringVar(&askPrompt, "prompt", "", "custom system prompt, overrides --template")
	askCmd.Flags().BoolVar(&askRepo, "repo", false, "attach connected repository context")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "show the retrieved chunks backing the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	ctx := context.Background()
	opts := driving.AskOptions{
		PromptTemplate: askTemplate,
		CustomPrompt:   askPrompt,
		TopK:           askTopK,
		IncludeRepo:    askRepo,
	}

	answer, err := chatService.Ask(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if askSources && len(answer.Chunks) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i := range answer.Chunks {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1,
				answer.Chunks[i].Chunk.DocumentID, answer.Chunks[i].Score)
		}
	}

	if askRepo && !answer.RepoAttached {
		cmd.Println()
		cmd.Println("Note: repository context was not attached (not connected or unavailable).")
	}

	return nil
}
