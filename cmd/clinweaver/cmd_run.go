package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinweaver/internal/export"
	"clinweaver/internal/session"
	"clinweaver/internal/types"
)

var (
	runApprove     string
	runAll         bool
	runConvertTo   []string
	runExport      bool
	runExportDir   string
	runFixAttempts int
	runWatch       bool
)

// runCmd executes the full pipeline end to end
var runCmd = &cobra.Command{
	Use:   "run [spec.csv]",
	Short: "Run the full derivation pipeline over a specification",
	Long: `Runs the whole pipeline in one go: ingest the specification, approve
the selected tasks, generate the R derivation function, simulate its
execution, and drive the debug loop until the simulated run succeeds or the
fix budget is spent. Optionally converts the result to other languages and
exports every produced artifact.

With --watch the pipeline re-runs whenever the specification file changes.

Example:
  clinweaver run adae_spec.csv --all --export
  clinweaver run adae_spec.csv --approve 1,3 --convert python --convert sas
  clinweaver run adae_spec.csv --all --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&runApprove, "approve", "", "Comma-separated task ids to approve")
	runCmd.Flags().BoolVar(&runAll, "all", false, "Approve every task")
	runCmd.Flags().StringArrayVar(&runConvertTo, "convert", nil, "Also convert the result to this language (repeatable)")
	runCmd.Flags().BoolVar(&runExport, "export", false, "Export all available artifacts when done")
	runCmd.Flags().StringVar(&runExportDir, "export-dir", "", "Export directory (default: from config)")
	runCmd.Flags().IntVar(&runFixAttempts, "max-fix-attempts", 3, "Debug-loop budget per run")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Re-run the pipeline when the specification changes")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	specPath := args[0]

	targets := make([]types.Language, 0, len(runConvertTo))
	for _, name := range runConvertTo {
		lang, err := parseLanguage(name)
		if err != nil {
			return err
		}
		targets = append(targets, lang)
	}

	s, store, err := newSession()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runOnce(ctx, s, specPath, targets); err != nil {
		return err
	}
	if !runWatch {
		return nil
	}
	return watchSpec(ctx, s, specPath, targets)
}

// runOnce drives one full pass of the pipeline and prints the session log.
func runOnce(ctx context.Context, s *session.Session, specPath string, targets []types.Language) error {
	rows, err := loadSpec(specPath)
	if err != nil {
		return err
	}
	s.IngestSpec(rows)
	if err := approveTasks(s, runAll, runApprove); err != nil {
		return err
	}

	if _, err := s.Generate(ctx); err != nil {
		printSessionLog(s)
		return err
	}
	if _, err := s.Simulate(ctx); err != nil {
		printSessionLog(s)
		return err
	}

	for attempt := 1; s.ExecutionError() != nil && attempt <= runFixAttempts; attempt++ {
		logger.Info("requesting fix",
			zap.Int("attempt", attempt),
			zap.String("error", s.ExecutionError().Message))
		if _, err := s.RequestFix(ctx); err != nil {
			printSessionLog(s)
			return err
		}
		if _, err := s.Simulate(ctx); err != nil {
			printSessionLog(s)
			return err
		}
	}
	if execErr := s.ExecutionError(); execErr != nil {
		printSessionLog(s)
		return fmt.Errorf("execution still failing after %d fix attempt(s): %s", runFixAttempts, execErr.Message)
	}

	for _, target := range targets {
		if _, err := s.Convert(ctx, target); err != nil {
			printSessionLog(s)
			return err
		}
	}

	if runExport {
		dir := runExportDir
		if dir == "" {
			dir = cfg.Export.Dir
		}
		count, err := export.All(ctx, export.NewFileExporter(dir), s.Files())
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d artifact(s) to %s\n", count, dir)
	}

	printSessionLog(s)
	return nil
}

// watchSpec re-runs the pipeline whenever the specification file is written.
// Editors often replace files via rename, so the watch covers the whole
// directory and filters on the file name.
func watchSpec(ctx context.Context, s *session.Session, specPath string, targets []types.Language) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(specPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fmt.Printf("Watching %s for changes. Press Ctrl-C to stop.\n", specPath)

	// Debounce: editors fire several events per save.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(specPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(werr))
		case <-pending:
			pending = nil
			fmt.Println("Specification changed, re-running pipeline.")
			if err := runOnce(ctx, s, specPath, targets); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				// Keep watching; a broken intermediate save should not kill
				// the loop.
				fmt.Printf("Run failed: %v\n", err)
			}
		}
	}
}
