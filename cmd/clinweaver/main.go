package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"clinweaver/internal/config"
	"clinweaver/internal/history"
	"clinweaver/internal/llm"
	"clinweaver/internal/session"
	"clinweaver/internal/specload"
	"clinweaver/internal/types"
)

var (
	// Global flags
	verbose    bool
	configPath string
	proxyURL   string
	apiKey     string
	model      string
	forceMock  bool
	timeout    time.Duration

	// Resolved at startup
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clinweaver",
	Short: "clinweaver - AI-assisted clinical derivation pipeline",
	Long: `clinweaver turns a tabular derivation specification into reviewed,
executable dataset code.

The pipeline: ingest a spec into derivation tasks, approve the ones to
implement, generate an R derivation function from the combined prompt,
simulate its execution through an AI oracle, repair failures via the debug
loop, and optionally convert the result to Python or SAS.

Backend selection is strict priority order: remote proxy, direct Gemini
provider, deterministic mock. The mock needs no configuration, so every
command works offline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		// Flags override file and environment.
		if proxyURL != "" {
			cfg.Backend.ProxyURL = proxyURL
		}
		if apiKey != "" {
			cfg.Backend.APIKey = apiKey
		}
		if model != "" {
			cfg.Backend.Model = model
		}
		if cmd.Flags().Changed("mock") {
			cfg.Backend.ForceMock = forceMock
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Backend.Timeout = timeout.String()
		}

		level := zapcore.InfoLevel
		if parsed, perr := zapcore.ParseLevel(cfg.Logging.Level); perr == nil {
			level = parsed
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".clinweaver/config.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&proxyURL, "proxy-url", "", "Generation proxy base URL (or set CLINWEAVER_PROXY_URL)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Override the direct provider model")
	rootCmd.PersistentFlags().BoolVar(&forceMock, "mock", false, "Force the deterministic mock backend")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Backend call timeout")

	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newBackend builds the generation client and, when configured, the call
// history store. The caller owns closing the returned store; it is nil when
// the audit trail is disabled or unavailable.
func newBackend() (*llm.Client, *history.Store, error) {
	var store *history.Store
	if cfg.History.Path != "" {
		s, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("history store unavailable, continuing without audit trail", zap.Error(err))
		} else {
			store = s
		}
	}

	var recorder llm.Recorder
	if store != nil {
		recorder = store
	}
	client, err := llm.NewClientFromOptions(llm.Options{
		ProxyURL:  cfg.Backend.ProxyURL,
		APIKey:    cfg.Backend.APIKey,
		Model:     cfg.Backend.Model,
		ForceMock: cfg.Backend.ForceMock,
		Timeout:   cfg.BackendTimeout(),
		Recorder:  recorder,
		Logger:    logger,
	})
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}
	return client, store, nil
}

// newSession builds a session over a fresh backend.
func newSession() (*session.Session, *history.Store, error) {
	client, store, err := newBackend()
	if err != nil {
		return nil, nil, err
	}
	return session.New(client, logger), store, nil
}

func loadSpec(path string) ([]types.SpecRow, error) {
	return specload.NewCSVLoader(path).Load()
}

// parseApprovals parses a comma-separated task id list like "1,3,4".
func parseApprovals(list string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid task id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// approveTasks applies --all / --approve to a freshly ingested session.
func approveTasks(s *session.Session, all bool, list string) error {
	if all {
		for _, task := range s.Tasks() {
			s.ToggleApproval(task.ID)
		}
		return nil
	}
	ids, err := parseApprovals(list)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no tasks approved: pass --approve 1,2 or --all")
	}
	known := make(map[int]bool)
	for _, task := range s.Tasks() {
		known[task.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("unknown task id %d", id)
		}
		s.ToggleApproval(id)
	}
	return nil
}

// parseLanguage maps a user-supplied name onto a supported target language.
func parseLanguage(name string) (types.Language, error) {
	lang := types.Language(strings.ToLower(strings.TrimSpace(name)))
	if !lang.Valid() {
		return "", fmt.Errorf("unsupported language %q (supported: r, python, sas)", name)
	}
	return lang, nil
}

func printSessionLog(s *session.Session) {
	for _, entry := range s.Log().Entries() {
		fmt.Printf("[%s] %-7s %s\n", entry.Timestamp.Format("15:04:05"), entry.Severity, entry.Message)
	}
}
