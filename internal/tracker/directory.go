package tracker

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
)

//go:embed data/trackers.json
var embeddedDirectory []byte

// ErrEmptyDirectory is returned when a directory parses but holds no usable entries.
var ErrEmptyDirectory = errors.New("tracker directory has no entries")

// Directory source names reported by Auditor.Source.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceCustom   = "custom"
	SourceFallback = "fallback"
)

// fallbackEntries is used only when no directory can be loaded.
var fallbackEntries = []model.TrackerEntry{
	{Domain: "google-analytics.com", Owner: "Google", Category: "analytics"},
	{Domain: "googletagmanager.com", Owner: "Google", Category: "tag-manager"},
	{Domain: "doubleclick.net", Owner: "Google", Category: "advertising"},
	{Domain: "connect.facebook.net", Owner: "Meta", Category: "social"},
	{Domain: "hotjar.com", Owner: "Hotjar", Category: "session-replay"},
	{Domain: "segment.io", Owner: "Twilio", Category: "analytics"},
	{Domain: "mixpanel.com", Owner: "Mixpanel", Category: "analytics"},
}

// ParseDirectory decodes a tracker directory. Items may be objects or bare
// domain strings; items that are neither, or that have no domain, are skipped.
func ParseDirectory(data []byte) ([]model.TrackerEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode tracker directory: %w", err)
	}

	entries := make([]model.TrackerEntry, 0, len(items))
	for _, item := range items {
		var domain string
		if err := json.Unmarshal(item, &domain); err == nil {
			if d := cleanDomain(domain); d != "" {
				entries = append(entries, model.TrackerEntry{Domain: d})
			}
			continue
		}
		var entry model.TrackerEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		entry.Domain = cleanDomain(entry.Domain)
		if entry.Domain == "" {
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, ErrEmptyDirectory
	}
	return entries, nil
}

// LoadDirectoryFile reads and parses a tracker directory from path.
func LoadDirectoryFile(path string) ([]model.TrackerEntry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read tracker directory %s: %w", path, err)
	}
	return ParseDirectory(data)
}

// FallbackEntries returns a copy of the built-in list.
func FallbackEntries() []model.TrackerEntry {
	return append([]model.TrackerEntry(nil), fallbackEntries...)
}

func cleanDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "*.")
	return strings.Trim(d, ".")
}
