package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	generateApprove    string
	generateAll        bool
	generateOut        string
	generateShowPrompt bool
)

// generateCmd runs the ingest-approve-generate slice of the pipeline
var generateCmd = &cobra.Command{
	Use:   "generate [spec.csv]",
	Short: "Generate the R derivation function for approved tasks",
	Long: `Ingests the specification, approves the selected tasks, compiles the
combined prompt and asks the backend for the create_adae function.

Example:
  clinweaver generate adae_spec.csv --approve 1,2
  clinweaver generate adae_spec.csv --all -o create_adae.R`,
	Args: cobra.ExactArgs(1),
	RunE: generateCode,
}

func init() {
	generateCmd.Flags().StringVar(&generateApprove, "approve", "", "Comma-separated task ids to approve")
	generateCmd.Flags().BoolVar(&generateAll, "all", false, "Approve every task")
	generateCmd.Flags().StringVarP(&generateOut, "output", "o", "", "Write the generated code to a file instead of stdout")
	generateCmd.Flags().BoolVar(&generateShowPrompt, "show-prompt", false, "Print the combined prompt before the code")
}

func generateCode(cmd *cobra.Command, args []string) error {
	rows, err := loadSpec(args[0])
	if err != nil {
		return err
	}

	s, store, err := newSession()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	s.IngestSpec(rows)
	if err := approveTasks(s, generateAll, generateApprove); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.BackendTimeout())
	defer cancel()

	code, err := s.Generate(ctx)
	if err != nil {
		return err
	}

	if generateShowPrompt {
		fmt.Println("--- combined prompt ---")
		fmt.Println(s.CombinedPrompt())
		fmt.Println("--- generated code ---")
	}
	if generateOut != "" {
		if err := os.WriteFile(generateOut, []byte(code+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", generateOut, err)
		}
		fmt.Printf("Generated code written to %s\n", generateOut)
		return nil
	}
	fmt.Println(code)
	return nil
}
