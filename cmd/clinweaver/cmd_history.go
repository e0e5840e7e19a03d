package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clinweaver/internal/history"
)

var historyLimit int

// historyCmd shows the backend-call audit trail
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent backend calls",
	Long: `Lists recent generation-backend calls from the audit trail: which
backend served each call, prompt and response sizes, duration, and any error.

Example:
  clinweaver history
  clinweaver history --limit 50`,
	RunE: showHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to show")
}

func showHistory(cmd *cobra.Command, args []string) error {
	if cfg.History.Path == "" {
		fmt.Println("History is disabled (history.path is empty).")
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No backend calls recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tBACKEND\tPROMPT\tRESPONSE\tDURATION\tERROR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Backend, e.PromptChars, e.ResponseChars, e.Duration, e.Err)
	}
	return w.Flush()
}
