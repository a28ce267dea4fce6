package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed chunks",
	Long: `Performs a semantic search over the indexed chunks and prints the
ranked matches without invoking the LLM.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	limit := searchLimit
	if limit <= 0 {
		limit = retrieverService.Config().TopK
	}

	ctx := context.Background()
	results, err := retrieverService.Retrieve(ctx, args[0], limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1,
			results[i].Chunk.DocumentID, results[i].Chunk.Seq, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Content, 160))
		cmd.Println()
	}

	return nil
}

// snippet truncates content to at most n runes on a single line.
func snippet(content string, n int) string {
	runes := []rune(content)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return content
}
