package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve exposes the engine as a JSON API.

Routes:
  POST /api/v1/analyze        analyze one request
  POST /api/v1/analyze/batch  analyze {"requests": [...]}
  GET  /healthz               liveness check

Examples:
  # Listen on the default address
  riskscan serve

  # Allow a browser extension to call the API and keep history
  riskscan serve -l 127.0.0.1:9000 --allowed-origin chrome-extension://abcdef --save`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress, "Address to listen on")
	cmd.Flags().StringSlice("allowed-origin", nil, "Origin allowed by CORS (repeatable)")
	addEngineFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyEngineFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("allowed-origin") {
		if cfg.AllowedOrigins, err = cmd.Flags().GetStringSlice("allowed-origin"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithAllowedOrigins(cfg.AllowedOrigins),
		server.WithMaxRequestBytes(cfg.MaxRequestBytes),
		server.WithBatchConcurrency(cfg.BatchSize),
		server.WithVersion(getVersion()),
		server.WithEngineInfo(engine.ModelEnabled(), engine.TrackerSource()),
	}

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		opts = append(opts, server.WithHistory(db))
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", cfg.ListenAddress)
	return server.New(engine, opts...).ListenAndServe(ctx, cfg.ListenAddress)
}
