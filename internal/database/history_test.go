package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/riskscan/internal/model"
)

func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newReport(text string, score int, at time.Time) *model.Report {
	r := model.NewReport(&model.Request{Content: text})
	r.InputType = model.InputText
	r.AnalyzedAt = at
	r.Mode = "protect"
	r.MaskedText = text
	r.Input = &model.AnalysisInput{RawText: text}
	r.Flags = []model.PhishingFlag{{
		Category:    model.CategoryUrgency,
		Description: "urgent",
		Severity:    model.SeverityMedium,
		Match:       "now",
	}}
	r.Result = model.FusedResult{RiskScore: score, Verdict: "Medium Risk"}
	return r
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("got path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false requires existing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := newReport("act now", 42, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	id, err := db.Save(ctx, report)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := db.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored report")
	}
	if got.ID != report.ID {
		t.Errorf("got id %s, expected %s", got.ID, report.ID)
	}
	if got.Result.RiskScore != 42 || got.Result.Verdict != "Medium Risk" {
		t.Errorf("unexpected result: %+v", got.Result)
	}
	if len(got.Flags) != 1 || got.Flags[0].Category != model.CategoryUrgency || got.Flags[0].Severity != model.SeverityMedium {
		t.Errorf("flags did not survive storage: %+v", got.Flags)
	}
	if got.Input != nil {
		t.Error("normalized input must not be stored")
	}

	missing, err := db.Get(ctx, id+100)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing row, got %v, %v", missing, err)
	}
}

func TestListAndFingerprint(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, text := range []string{"first", "second", "first"} {
		// Sub-second offsets must still sort correctly.
		at := base.Add(time.Duration(i) * 500 * time.Millisecond)
		if _, err := db.Save(ctx, newReport(text, 10*i, at)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	entries, err := db.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, expected 3", len(entries))
	}
	if entries[0].RiskScore != 20 || entries[2].RiskScore != 0 {
		t.Errorf("entries are not newest first: %+v", entries)
	}
	if !entries[0].Timestamp.Equal(base.Add(time.Second)) {
		t.Errorf("got timestamp %v", entries[0].Timestamp)
	}

	limited, err := db.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d entries, expected 2", len(limited))
	}

	same, err := db.FindByFingerprint(ctx, Fingerprint("first"))
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if len(same) != 2 {
		t.Errorf("got %d matches, expected 2", len(same))
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint("hello")
	if len(a) != 64 {
		t.Errorf("got length %d, expected 64", len(a))
	}
	if a == Fingerprint("hello!") {
		t.Error("different text must produce different fingerprints")
	}
	if a != Fingerprint("hello") {
		t.Error("fingerprint must be stable")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected time.Time
	}{
		{"2026-01-02T03:04:05.500000000Z", time.Date(2026, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"2026-01-02 03:04:05", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"garbage", time.Time{}},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tc.input); !got.Equal(tc.expected) {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}
