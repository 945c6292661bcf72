package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/imagemeta"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/normalize"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Score one text, URL or screenshot",
		Long: `Analyze scores a single input for scam and phishing intent and privacy exposure.

The input is the positional text ("-" reads standard input), a URL, a list of
page resources, or a screenshot. Phone numbers, emails, SSNs and card numbers
are masked before anything leaves the machine.

Examples:
  # Score a message
  riskscan analyze "Your account will be suspended. Verify your password now."

  # Score a link
  riskscan analyze --url https://paypa1-secure.example/login

  # Audit the resources loaded by a page
  riskscan analyze --page-url https://shop.example --resource https://www.google-analytics.com/ga.js

  # Score a screenshot (requires an OCR endpoint in .riskscan)
  riskscan analyze --image screenshot.png

  # Verify a claim and print Markdown
  riskscan analyze --mode verify --markdown "Official notice from example.com"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("url", "u", "", "URL submitted for analysis")
	cmd.Flags().String("page-url", "", "URL of the page the content came from")
	cmd.Flags().StringArrayP("resource", "r", nil,
		"Resource URL loaded by the page (repeatable)")
	cmd.Flags().StringP("image", "i", "", "Screenshot or photo to analyze")
	cmd.Flags().Bool("html", false, "Treat the text as HTML and collect its resources")

	addEngineFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
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
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	req, err := buildRequest(cmd, args)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runAnalyze(ctx, cmd.OutOrStdout(), cfg, req, logger)
}

// buildRequest turns the analyze flags into an engine request.
func buildRequest(cmd *cobra.Command, args []string) (*model.Request, error) {
	req := &model.Request{}

	text := strings.Join(args, " ")
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		text = string(data)
	}
	req.Content = text

	var err error
	if req.URL, err = cmd.Flags().GetString("url"); err != nil {
		return nil, err
	}
	if req.PageURL, err = cmd.Flags().GetString("page-url"); err != nil {
		return nil, err
	}
	if req.Resources, err = cmd.Flags().GetStringArray("resource"); err != nil {
		return nil, err
	}
	if req.HTML, err = cmd.Flags().GetBool("html"); err != nil {
		return nil, err
	}

	imagePath, err := cmd.Flags().GetString("image")
	if err != nil {
		return nil, err
	}

	switch {
	case imagePath != "":
		if err := loadImage(req, imagePath); err != nil {
			return nil, err
		}
		req.InputType = model.InputImage
	case strings.TrimSpace(req.Content) == "" && req.URL != "":
		req.InputType = model.InputURL
	default:
		req.InputType = model.InputText
	}
	return req, nil
}

// loadImage reads an image file into req.
func loadImage(req *model.Request, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if info.Size() > imagemeta.MaxImageSize {
		return fmt.Errorf("image %s is larger than %d bytes", path, imagemeta.MaxImageSize)
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided image path is intentional
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	req.Image = data
	req.ImageMIMEType = http.DetectContentType(data)
	return nil
}

// runAnalyze analyzes req and writes the report.
func runAnalyze(ctx context.Context, stdout io.Writer, cfg *config.Config, req *model.Request, logger *slog.Logger) error {
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

	startTime := time.Now()
	r, err := engine.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, normalize.ErrNoUsableInput) {
			return errors.New("nothing to analyze (pass text, --url, --resource or --image)")
		}
		return err
	}
	logger.Debug("analysis finished", "elapsed", time.Since(startTime).Round(time.Millisecond))

	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := newReportWriter(cfg, output).Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := saveReport(ctx, db, r, logger); err != nil {
		logger.Error("failed to save report", "report", r.ID, "error", err)
	}
	return nil
}
