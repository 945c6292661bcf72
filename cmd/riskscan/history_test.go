package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/database"
)

func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	historyDir := filepath.Join(t.TempDir(), "history")
	cfgPath := writeConfig(t, "history:\n  dir: "+historyDir+"\n")

	if _, err := execute(t, "history", "--config", cfgPath); err == nil {
		t.Fatal("expected error before any analysis was saved")
	}

	if _, err := execute(t, "analyze", "--config", cfgPath, "--save", phishingText); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	out, err := execute(t, "history", "--config", cfgPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "VERDICT") || !strings.Contains(out, "High Risk") {
		t.Errorf("expected history table with the saved verdict, got %q", out)
	}

	out, err = execute(t, "history", "--config", cfgPath, "--id", "1", "--markdown")
	if err != nil {
		t.Fatalf("history --id: %v", err)
	}
	if !strings.Contains(out, "High Risk") {
		t.Errorf("expected stored report, got %q", out)
	}

	if _, err := execute(t, "history", "--config", cfgPath, "--id", "99"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestWriteHistoryTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeHistoryTable(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "No analyses found.\n" {
		t.Errorf("got %q, expected %q", got, "No analyses found.\n")
	}

	buf.Reset()
	entries := []database.Entry{{ID: 7, InputType: "url", Mode: config.DefaultMode, RiskScore: 42, Verdict: "Medium Risk", PrimaryURL: "https://example.com"}}
	if err := writeHistoryTable(&buf, entries); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ID", "7", "Medium Risk", "https://example.com"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected table to contain %q, got %q", want, buf.String())
		}
	}
}
