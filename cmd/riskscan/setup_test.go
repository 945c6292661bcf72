package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/riskscan/internal/config"
	"github.com/nao1215/riskscan/internal/fusion"
	"github.com/nao1215/riskscan/internal/report"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "mode: verify\nbatch_size: 9\nfusion:\n  critical_floor: 90\n")
		cmd := NewRootCmd()
		if err := cmd.PersistentFlags().Set("config", path); err != nil {
			t.Fatal(err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Mode != "verify" {
			t.Errorf("got mode %q, expected %q", cfg.Mode, "verify")
		}
		if cfg.BatchSize != 9 {
			t.Errorf("got batch size %d, expected 9", cfg.BatchSize)
		}
		if cfg.Weights.CriticalFloor != 90 {
			t.Errorf("got critical floor %d, expected 90", cfg.Weights.CriticalFloor)
		}
		if cfg.Weights.PIIPerItem != fusion.DefaultWeights().PIIPerItem {
			t.Errorf("expected unset weights to keep defaults, got %d", cfg.Weights.PIIPerItem)
		}
	})

	t.Run("explicit missing file", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		if err := cmd.PersistentFlags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
			t.Fatal(err)
		}
		if _, err := loadConfig(cmd); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "mode: [unterminated\n")
		cmd := NewRootCmd()
		if err := cmd.PersistentFlags().Set("config", path); err != nil {
			t.Fatal(err)
		}
		if _, err := loadConfig(cmd); err == nil {
			t.Error("expected error for malformed config file")
		}
	})
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		engine, err := newEngine(config.NewConfig(), logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.Mode() != fusion.ModeProtect {
			t.Errorf("got mode %q, expected %q", engine.Mode(), fusion.ModeProtect)
		}
		if engine.ModelEnabled() {
			t.Error("expected model to be disabled without an endpoint")
		}
	})

	t.Run("model endpoint", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.ModelEndpoint = "https://models.example/v1/chat/completions"
		engine, err := newEngine(cfg, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !engine.ModelEnabled() {
			t.Error("expected model to be enabled")
		}

		cfg.NoModel = true
		engine, err = newEngine(cfg, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.ModelEnabled() {
			t.Error("expected --no-model to disable the model")
		}
	})

	t.Run("invalid mode", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Mode = "paranoid"
		if _, err := newEngine(cfg, logger); !errors.Is(err, fusion.ErrUnknownMode) {
			t.Errorf("got %v, expected %v", err, fusion.ErrUnknownMode)
		}
	})
}

func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{name: "json", cfg: config.Config{JSONReport: true}, want: "*report.FullJSONWriter"},
		{name: "markdown", cfg: config.Config{MarkdownReport: true}, want: "*report.MarkdownWriter"},
		{name: "text", cfg: config.Config{}, want: "*report.SimpleWriter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := newReportWriter(&tt.cfg, &bytes.Buffer{})
			var got string
			switch w.(type) {
			case *report.FullJSONWriter:
				got = "*report.FullJSONWriter"
			case *report.MarkdownWriter:
				got = "*report.MarkdownWriter"
			case *report.SimpleWriter:
				got = "*report.SimpleWriter"
			}
			if got != tt.want {
				t.Errorf("got %s, expected %s", got, tt.want)
			}
		})
	}
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	w, closeFn, err := openOutput(&config.Config{}, &stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != &stdout {
		t.Error("expected stdout when no report file is set")
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "nested", "report.txt")
	w, closeFn, err = openOutput(&config.Config{ReportFile: path}, &stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "ok" {
		t.Errorf("got %q, expected %q", content, "ok")
	}
}
