package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/report"
)

func TestParseBatch(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"# comment",
		"",
		"https://example.com/login",
		"  Verify your account now  ",
		"see https://example.com for details",
		"HTTP://EXAMPLE.ORG",
	}, "\n")

	requests, err := parseBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []model.Request{
		{InputType: model.InputURL, URL: "https://example.com/login"},
		{InputType: model.InputText, Content: "Verify your account now"},
		{InputType: model.InputText, Content: "see https://example.com for details"},
		{InputType: model.InputURL, URL: "HTTP://EXAMPLE.ORG"},
	}
	if len(requests) != len(expected) {
		t.Fatalf("got %d requests, expected %d", len(requests), len(expected))
	}
	for i, want := range expected {
		got := requests[i]
		if got.InputType != want.InputType || got.URL != want.URL || got.Content != want.Content {
			t.Errorf("request %d: got %+v, expected %+v", i, *got, want)
		}
	}
}

func TestReadBatchFileErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		if _, err := readBatchFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("only comments", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "list.txt")
		if err := os.WriteFile(path, []byte("# nothing\n\n"), 0600); err != nil {
			t.Fatal(err)
		}
		_, err := readBatchFile(path)
		if err == nil || !strings.Contains(err.Error(), "no inputs") {
			t.Errorf("expected 'no inputs' error, got %v", err)
		}
	})
}

func TestBatchCommand(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "batch_size: 2\n")
	listPath := filepath.Join(t.TempDir(), "list.txt")
	lines := phishingText + "\nLunch at noon tomorrow?\nhttps://paypa1-secure.example/login\n"
	if err := os.WriteFile(listPath, []byte(lines), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "batch", "--config", cfgPath, "--list", listPath, "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var reports []report.JSONReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports, expected 3", len(reports))
	}
	if reports[0].Report.Result.Verdict != "High Risk" {
		t.Errorf("got verdict %q, expected %q", reports[0].Report.Result.Verdict, "High Risk")
	}
	if reports[2].Report.InputType != model.InputURL {
		t.Errorf("got input type %q, expected %q", reports[2].Report.InputType, model.InputURL)
	}
}

func TestBatchCommandRequiresList(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "mode: protect\n")
	if _, err := execute(t, "batch", "--config", cfgPath); err == nil {
		t.Error("expected error without --list")
	}
}
