package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clinweaver/internal/session"
	"clinweaver/internal/simulate"
)

var simulateDriver string

// simulateCmd runs one execution simulation over a code file
var simulateCmd = &cobra.Command{
	Use:   "simulate [code.R]",
	Short: "Predict the execution outcome of a derivation function",
	Long: `Sends the function and its driver script to the execution oracle and
prints the predicted outcome: either the console log plus an output preview,
or the structured error the run would produce.

The default driver builds small sample adsl/ae frames and calls create_adae;
pass --driver to use your own.

Example:
  clinweaver simulate create_adae.R
  clinweaver simulate create_adae.R --driver my_driver.R`,
	Args: cobra.ExactArgs(1),
	RunE: simulateCode,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateDriver, "driver", "", "Driver script file (default: built-in sample driver)")
}

func simulateCode(cmd *cobra.Command, args []string) error {
	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read code file: %w", err)
	}
	driver := session.DriverScript()
	if simulateDriver != "" {
		data, err := os.ReadFile(simulateDriver)
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

	result, err := simulate.NewInterpreter(client).SimulateExecution(ctx, driver, string(code))
	if err != nil {
		return err
	}

	if !result.Succeeded() {
		fmt.Printf("Execution failed: %s\n", result.Failure.Message)
		if result.Failure.Line > 0 {
			fmt.Printf("Near line: %d\n", result.Failure.Line)
		}
		return nil
	}

	fmt.Println("Execution successful.")
	fmt.Println("--- console output ---")
	fmt.Println(result.LogOutput)
	fmt.Printf("Predicted dataset: %d row(s).\n", len(result.Rows))
	return nil
}
