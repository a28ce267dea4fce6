package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexClearForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the local vector index",
	Long:  `Inspect, clear, or remove documents from the local vector index.`,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runIndexStats,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all chunks from the index",
	Long: `Removes every chunk from the index and resets the recorded embedding
dimensionality, allowing a subsequent ingest with a different model.`,
	RunE: runIndexClear,
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove one document's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexDelete,
}

func init() {
	indexClearCmd.Flags().BoolVarP(&indexClearForce, "force", "f", false, "skip confirmation")

	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexClearCmd)
	indexCmd.AddCommand(indexDeleteCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	stats, err := retrieverService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get index stats: %w", err)
	}

	cmd.Println("Index Statistics")
	cmd.Println("================")
	cmd.Printf("  Documents: %d\n", stats.DocumentCount)
	cmd.Printf("  Chunks:    %d\n", stats.ChunkCount)
	return nil
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	if !indexClearForce {
		cmd.Print("This will delete all indexed chunks. Continue? [y/N]: ")
		var response string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := retrieverService.ClearAll(context.Background()); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	cmd.Println("Index cleared.")
	return nil
}

func runIndexDelete(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	docID := args[0]
	if err := retrieverService.DeleteDocument(context.Background(), docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s removed from index.\n", docID)
	return nil
}
