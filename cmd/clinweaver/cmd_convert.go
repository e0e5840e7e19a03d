package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clinweaver/internal/convert"
	"clinweaver/internal/types"
)

var (
	convertTo  string
	convertOut string
)

// convertCmd translates a derivation function into another language
var convertCmd = &cobra.Command{
	Use:   "convert [code.R]",
	Short: "Convert a derivation function to Python or SAS",
	Long: `Asks the backend to translate the R function into the target
language. Each conversion is independent; converting to one language never
touches artifacts for another.

Example:
  clinweaver convert create_adae.R --to python
  clinweaver convert create_adae.R --to sas -o create_adae.sas`,
	Args: cobra.ExactArgs(1),
	RunE: convertCode,
}

func init() {
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Target language: python or sas (required)")
	convertCmd.Flags().StringVarP(&convertOut, "output", "o", "", "Write the converted code to a file instead of stdout")
	convertCmd.MarkFlagRequired("to")
}

func convertCode(cmd *cobra.Command, args []string) error {
	target, err := parseLanguage(convertTo)
	if err != nil {
		return err
	}
	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read code file: %w", err)
	}

	client, store, err := newBackend()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.BackendTimeout())
	defer cancel()

	artifact, err := convert.NewController(client).Convert(ctx, string(code), types.LanguageR, target)
	if err != nil {
		return err
	}

	if convertOut != "" {
		if err := os.WriteFile(convertOut, []byte(artifact.Code+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", convertOut, err)
		}
		fmt.Printf("Converted %s code written to %s\n", target.DisplayName(), convertOut)
		return nil
	}
	fmt.Println(artifact.Code)
	return nil
}
