package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/database"
)

// defaultHistoryLimit is the number of entries listed by default.
const defaultHistoryLimit = 20

// errNoHistory is returned when no history database exists yet.
var errNoHistory = errors.New("no analysis history found (run analyze with --save first)")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or show saved analyses",
		Long: `History lists analyses stored with --save, newest first.

Only masked reports and a SHA3-256 fingerprint of the normalized text are
stored. Use --id to print one stored report in any report format.

Examples:
  # List the last 20 analyses
  riskscan history

  # Show analysis 12 as Markdown
  riskscan history --id 12 --markdown

  # Find analyses of the same text
  riskscan history --fingerprint 3a7bd3e2...`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("id", 0, "Show the stored report with this ID")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Number of entries to list")
	cmd.Flags().String("fingerprint", "", "List entries with this content fingerprint")
	addOutputFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	fingerprint, err := cmd.Flags().GetString("fingerprint")
	if err != nil {
		return err
	}

	db, err := openExistingHistory(cfg.DBDir)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if id > 0 {
		return showHistoryEntry(ctx, cmd.OutOrStdout(), cfg, db, id)
	}

	var entries []database.Entry
	if fingerprint != "" {
		entries, err = db.FindByFingerprint(ctx, fingerprint)
	} else {
		entries, err = db.List(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	return writeHistoryTable(cmd.OutOrStdout(), entries)
}

// openExistingHistory opens the history database without creating it.
func openExistingHistory(dir string) (*database.HistoryDB, error) {
	if _, err := os.Stat(filepath.Join(dir, database.FileName)); os.IsNotExist(err) {
		return nil, errNoHistory
	}
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func showHistoryEntry(ctx context.Context, stdout io.Writer, cfg *config.Config, db *database.HistoryDB, id int64) error {
	r, err := db.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read history entry %d: %w", id, err)
	}
	if r == nil {
		return fmt.Errorf("history entry %d not found", id)
	}

	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()

	_, err = newReportWriter(cfg, output).Write(r)
	return err
}

func writeHistoryTable(w io.Writer, entries []database.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No analyses found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tTYPE\tMODE\tSCORE\tVERDICT\tURL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.InputType,
			e.Mode,
			e.RiskScore,
			e.Verdict,
			e.PrimaryURL,
		)
	}
	return tw.Flush()
}
