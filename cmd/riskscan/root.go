package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for riskscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riskscan",
		Short: "Content risk scoring for scams, phishing and privacy exposure",
		Long: `riskscan classifies text, URLs and screenshots for scam and phishing intent
and for privacy exposure such as personal data and third-party trackers.

The heuristic engine runs locally. An OCR service and an OpenAI-compatible
model can be configured in .riskscan; their API keys are read from
RISKSCAN_OCR_API_KEY and RISKSCAN_MODEL_API_KEY.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .riskscan in current or home directory)")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
