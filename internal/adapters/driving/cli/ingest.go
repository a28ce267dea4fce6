package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the index",
	Long: `Extracts text from the given files, splits it into overlapping chunks,
embeds each chunk and stores the result in the local vector index.

Supported formats: .txt, .md, .log, .pdf, .docx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	ctx := context.Background()
	total := 0

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		filename := filepath.Base(path)
		count, err := retrieverService.IngestFile(ctx, filename, content)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		cmd.Printf("  %s: %d chunks\n", filename, count)
		total += count
	}

	cmd.Printf("Ingested %d file(s), %d chunks total.\n", len(args), total)
	return nil
}
