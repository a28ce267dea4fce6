package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage system prompt templates",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available prompt templates",
	RunE:  runPromptsList,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a prompt template",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsShow,
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsList(cmd *cobra.Command, _ []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}

	cmd.Println("Available prompt templates:")
	for _, name := range promptStore.Names() {
		cmd.Printf("  %s\n", name)
	}
	cmd.Println()
	cmd.Println("Select one with 'repoqa ask --template <name>'. Templates live in")
	cmd.Println("~/.repoqa/prompts and can be edited there.")
	return nil
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}

	text, err := promptStore.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load prompt: %w", err)
	}

	cmd.Println(text)
	return nil
}
