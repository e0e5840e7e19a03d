package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clinweaver/internal/registry"
)

var tasksShowPrompts bool

// tasksCmd previews the derivation tasks a specification produces
var tasksCmd = &cobra.Command{
	Use:   "tasks [spec.csv]",
	Short: "List the derivation tasks parsed from a specification",
	Long: `Parses the specification and prints the derivation tasks it would
create, in specification order with their session-stable ids. Rows missing a
variable or derivation are dropped.

Example:
  clinweaver tasks adae_spec.csv
  clinweaver tasks adae_spec.csv --prompts`,
	Args: cobra.ExactArgs(1),
	RunE: listTasks,
}

func init() {
	tasksCmd.Flags().BoolVar(&tasksShowPrompts, "prompts", false, "Show the seeded per-task prompt text")
}

func listTasks(cmd *cobra.Command, args []string) error {
	rows, err := loadSpec(args[0])
	if err != nil {
		return err
	}
	tasks := registry.Load(rows)
	if len(tasks) == 0 {
		fmt.Println("No derivation tasks found in specification.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIABLE\tLABEL\tDERIVATION")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Variable, t.Label, t.Derivation)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if tasksShowPrompts {
		for _, t := range tasks {
			fmt.Printf("\n[%d] %s\n", t.ID, t.Prompt)
		}
	}
	if dropped := len(rows) - len(tasks); dropped > 0 {
		fmt.Printf("\n%d row(s) skipped: missing variable or derivation.\n", dropped)
	}
	return nil
}
