package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/database"
	"github.com/nao1215/riskscan/internal/fusion"
	"github.com/nao1215/riskscan/internal/log"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/pipeline"
	"github.com/nao1215/riskscan/internal/provider"
	"github.com/nao1215/riskscan/internal/report"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config file flag from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig builds a Config from defaults, the config file and the environment.
// Command-specific flags are applied by the caller.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath = getConfigFlag(cmd)

	// If the user explicitly specified a config file path, error if not found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// applyOutputFlags reads the report flags shared by analyze, batch and history.
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	return nil
}

// applyEngineFlags reads the engine flags shared by analyze, batch and serve.
func applyEngineFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("mode") {
		mode, err := cmd.Flags().GetString("mode")
		if err != nil {
			return err
		}
		cfg.Mode = mode
	}

	var err error
	if cfg.NoModel, err = cmd.Flags().GetBool("no-model"); err != nil {
		return err
	}
	if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
		return err
	}
	return nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", config.DefaultMode,
		"Verdict banding: protect or verify")
	cmd.Flags().Bool("no-model", false,
		"Disable model assessment even when an endpoint is configured")
	cmd.Flags().Bool("save", false,
		"Store the masked report in the history database")
}

// setupLogger creates the secure structured logger used by every command.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// newEngine wires the analysis engine from cfg.
func newEngine(cfg *config.Config, logger *slog.Logger) (*pipeline.Engine, error) {
	mode, err := fusion.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.EngineOption{
		pipeline.WithEngineLogger(logger),
		pipeline.WithMode(mode),
		pipeline.WithWeights(cfg.Weights),
		pipeline.WithMaxTextLength(cfg.MaxTextLength),
	}
	if len(cfg.Brands) > 0 {
		opts = append(opts, pipeline.WithBrands(cfg.Brands))
	}
	if cfg.TrackerDirectory != "" {
		opts = append(opts, pipeline.WithTrackerDirectoryFile(cfg.TrackerDirectory))
	}
	if cfg.OCREnabled() {
		opts = append(opts, pipeline.WithTextExtractor(provider.NewOCRClient(cfg.OCREndpoint,
			provider.WithOCRAPIKey(cfg.OCRAPIKey),
			provider.WithOCRTimeout(cfg.OCRTimeout),
			provider.WithOCRLogger(logger),
		)))
	}
	if cfg.ModelEnabled() {
		opts = append(opts, pipeline.WithAssessor(provider.NewModelClient(cfg.ModelEndpoint,
			provider.WithModelAPIKey(cfg.ModelAPIKey),
			provider.WithModelName(cfg.ModelName),
			provider.WithModelTimeout(cfg.ModelTimeout),
			provider.WithModelLogger(logger),
		)))
	}

	engine, err := pipeline.NewEngine(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	logger.Debug("engine ready",
		"mode", engine.Mode(),
		"model", engine.ModelEnabled(),
		"ocr", cfg.OCREnabled(),
		"trackers", engine.TrackerSource(),
	)
	return engine, nil
}

// openHistory opens the history database when saving is enabled.
// It returns nil when saving is disabled.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.HistoryDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "dir", cfg.DBDir)
	return db, nil
}

// saveReport saves r to db. If db is nil, this function is a no-op.
func saveReport(ctx context.Context, db *database.HistoryDB, r *model.Report, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.Save(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	logger.Info("report saved to database", "report", r.ID, "id", id)
	return nil
}

// newReportWriter selects the writer for the requested format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// openOutput returns cfg.ReportFile, or stdout when no file is set.
// The returned function closes the file.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may contain sensitive information that should only be readable by the owner
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
