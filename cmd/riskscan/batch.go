package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/pipeline"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score every line of a file",
		Long: `Batch analyzes a newline-delimited file of inputs concurrently.

Each non-empty line is one input. Lines starting with http:// or https:// are
analyzed as URLs, other lines as text, and lines starting with # are skipped.

Examples:
  # Score a list of messages with 8 workers
  riskscan batch --list messages.txt -b 8

  # Write a JSON array of reports
  riskscan batch --list urls.txt --json -o reports.json`,
		Args: cobra.NoArgs,
		RunE: runBatchCmd,
	}

	cmd.Flags().StringP("list", "l", "", "File with one input per line (required)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent analyses")
	_ = cmd.MarkFlagRequired("list") //nolint:errcheck // flag is defined above

	addEngineFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyEngineFlags(cmd, cfg); err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return err
	}
	requests, err := readBatchFile(listPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runBatch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, requests, logger)
}

// readBatchFile reads one request per line.
func readBatchFile(path string) ([]*model.Request, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()

	requests, err := parseBatch(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read list file %s: %w", path, err)
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("list file %s contains no inputs", path)
	}
	return requests, nil
}

// parseBatch converts lines into requests.
func parseBatch(r io.Reader) ([]*model.Request, error) {
	var requests []*model.Request

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		requests = append(requests, requestFromLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func requestFromLine(line string) *model.Request {
	lower := strings.ToLower(line)
	if !strings.ContainsAny(line, " \t") &&
		(strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")) {
		return &model.Request{InputType: model.InputURL, URL: line}
	}
	return &model.Request{InputType: model.InputText, Content: line}
}

// runBatch analyzes requests concurrently using BatchProcessor.
func runBatch(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, requests []*model.Request, logger *slog.Logger) error {
	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	fmt.Fprintf(stderr, "Starting batch analysis of %d inputs (concurrency: %d)...\n",
		len(requests), cfg.BatchSize)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(engine,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu       sync.Mutex
		done     int
		failures int
	)
	results := make([]pipeline.BatchResult, len(requests))
	err = bp.ProcessBatchWithCallback(ctx, requests, func(result pipeline.BatchResult) {
		mu.Lock()
		defer mu.Unlock()

		done++
		results[result.Index] = result
		if result.Err != nil {
			failures++
			fmt.Fprintf(stderr, "[%d/%d] line %d failed: %v\n", done, len(requests), result.Index+1, result.Err)
			return
		}
		fmt.Fprintf(stderr, "[%d/%d] %s\n", done, len(requests), result.Report.Result.Verdict)

		if err := saveReport(ctx, db, result.Report, logger); err != nil {
			logger.Error("failed to save report", "report", result.Report.ID, "error", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	reports := make([]*model.Report, 0, len(results))
	for _, res := range results {
		if res.Report != nil {
			reports = append(reports, res.Report)
		}
	}

	output, closeOutput, openErr := openOutput(cfg, stdout)
	if openErr != nil {
		return openErr
	}
	defer closeOutput()

	if _, werr := newReportWriter(cfg, output).WriteBatch(reports); werr != nil {
		return fmt.Errorf("failed to write report: %w", werr)
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(stderr, "\nBatch analysis completed in %s (%d analyzed, %d failed)\n",
		elapsed.Round(time.Millisecond), len(reports), failures)

	return err
}
