package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clinweaver/internal/repair"
	"clinweaver/internal/session"
	"clinweaver/internal/types"
)

var (
	fixError  string
	fixLine   int
	fixDriver string
	fixOut    string
)

// fixCmd runs the debug loop over one reported execution failure
var fixCmd = &cobra.Command{
	Use:   "fix [code.R]",
	Short: "Repair a derivation function that failed simulated execution",
	Long: `Routes an execution error through the debug loop. Errors matching a
known local heuristic patch the driver script with no backend call; anything
else is sent to the backend for an AI-repaired script that replaces the code.

Example:
  clinweaver fix create_adae.R --error 'could not find function "%>%"'
  clinweaver fix create_adae.R --error "object 'AESEV' not found" --line 3`,
	Args: cobra.ExactArgs(1),
	RunE: fixCode,
}

func init() {
	fixCmd.Flags().StringVar(&fixError, "error", "", "Execution error message (required)")
	fixCmd.Flags().IntVar(&fixLine, "line", 0, "Approximate failing line, 0 if unknown")
	fixCmd.Flags().StringVar(&fixDriver, "driver", "", "Driver script file (default: built-in sample driver)")
	fixCmd.Flags().StringVarP(&fixOut, "output", "o", "", "Write the fixed artifact to a file instead of stdout")
	fixCmd.MarkFlagRequired("error")
}

func fixCode(cmd *cobra.Command, args []string) error {
	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read code file: %w", err)
	}
	driver := session.DriverScript()
	if fixDriver != "" {
		data, err := os.ReadFile(fixDriver)
		if err != nil {
			return fmt.Errorf("failed to read driver file: %w", err)
		}
		driver = string(data)
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

	failure := types.ExecutionFailure{Message: fixError, Line: fixLine}
	fix, err := repair.NewController(client, logger).RequestFix(ctx, failure, string(code), driver)
	if err != nil {
		return err
	}

	fixed := fix.Code
	label := "code"
	if fix.Target == repair.TargetDriver {
		fixed = fix.Driver
		label = "driver"
	}
	fmt.Printf("Fix applied to the %s script: %s.\n", label, fix.Note)

	if fixOut != "" {
		if err := os.WriteFile(fixOut, []byte(fixed+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", fixOut, err)
		}
		fmt.Printf("Fixed %s written to %s\n", label, fixOut)
		return nil
	}
	fmt.Println(fixed)
	return nil
}
