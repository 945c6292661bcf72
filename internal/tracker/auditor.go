package tracker

import (
	"log/slog"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/normalize"
	"github.com/nao1215/riskscan/internal/reputation"
)

// Auditor matches resources against a tracker directory.
// The directory is read once in New and never modified, so an Auditor
// is safe for concurrent use.
type Auditor struct {
	entries map[string]model.TrackerEntry
	source  string
	logger  *slog.Logger

	directoryFile string
	custom        []model.TrackerEntry
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithDirectoryFile loads the directory from path instead of the embedded copy.
func WithDirectoryFile(path string) Option {
	return func(a *Auditor) {
		a.directoryFile = path
	}
}

// WithEntries uses entries as the directory. It takes precedence over files.
func WithEntries(entries []model.TrackerEntry) Option {
	return func(a *Auditor) {
		a.custom = entries
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// New creates an Auditor. Load problems never fail construction; they fall
// back to the built-in list with a logged warning.
func New(opts ...Option) *Auditor {
	a := &Auditor{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	entries, source := a.load()
	a.entries = make(map[string]model.TrackerEntry, len(entries))
	for _, e := range entries {
		if d := cleanDomain(e.Domain); d != "" {
			e.Domain = d
			a.entries[d] = e
		}
	}
	a.source = source
	a.logger.Debug("tracker directory loaded", "source", source, "entries", len(a.entries))
	return a
}

func (a *Auditor) load() ([]model.TrackerEntry, string) {
	if a.custom != nil {
		if len(a.custom) > 0 {
			return a.custom, SourceCustom
		}
		a.logger.Warn("tracker directory is empty, using fallback list")
		return FallbackEntries(), SourceFallback
	}

	if a.directoryFile != "" {
		entries, err := LoadDirectoryFile(a.directoryFile)
		if err == nil {
			return entries, SourceFile
		}
		a.logger.Warn("tracker directory unavailable, using fallback list", "path", a.directoryFile, "error", err)
		return FallbackEntries(), SourceFallback
	}

	entries, err := ParseDirectory(embeddedDirectory)
	if err != nil {
		a.logger.Warn("embedded tracker directory unusable, using fallback list", "error", err)
		return FallbackEntries(), SourceFallback
	}
	return entries, SourceEmbedded
}

// Source reports where the directory came from.
func (a *Auditor) Source() string {
	return a.source
}

// Size returns the number of directory entries.
func (a *Auditor) Size() int {
	return len(a.entries)
}

// Lookup returns the directory entry for host, matching the host itself or
// any parent domain.
func (a *Auditor) Lookup(host string) (model.TrackerEntry, bool) {
	host = strings.Trim(strings.ToLower(host), ".")
	for host != "" {
		if e, ok := a.entries[host]; ok {
			return e, true
		}
		_, rest, found := strings.Cut(host, ".")
		if !found {
			break
		}
		host = rest
	}
	return model.TrackerEntry{}, false
}

// Audit classifies resources relative to primaryURL. Without a primary URL
// every resource counts as third party.
func (a *Auditor) Audit(primaryURL string, resources []string) model.TrackerAudit {
	audit := model.TrackerAudit{
		ThirdPartyResources: make([]string, 0),
		TrackerMatches:      make([]model.TrackerMatch, 0),
	}
	if primaryURL != "" {
		audit.PrimaryDomain = reputation.RegistrableDomain(normalize.Hostname(primaryURL))
	}

	seenResources := make(map[string]struct{})
	seenMatches := make(map[string]struct{})
	trackerDomains := make(map[string]struct{})

	for _, resource := range resources {
		host := normalize.Hostname(resource)
		if host == "" {
			continue
		}
		if audit.PrimaryDomain != "" && reputation.RegistrableDomain(host) == audit.PrimaryDomain {
			continue
		}

		if _, ok := seenResources[resource]; !ok {
			seenResources[resource] = struct{}{}
			audit.ThirdPartyResources = append(audit.ThirdPartyResources, resource)
		}

		entry, ok := a.Lookup(host)
		if !ok {
			continue
		}
		key := host + "\x00" + entry.Domain + "\x00" + resource
		if _, dup := seenMatches[key]; dup {
			continue
		}
		seenMatches[key] = struct{}{}
		trackerDomains[entry.Domain] = struct{}{}
		audit.TrackerMatches = append(audit.TrackerMatches, model.TrackerMatch{
			ResourceURL:   resource,
			Hostname:      host,
			TrackerDomain: entry.Domain,
			Owner:         entry.Owner,
			Category:      entry.Category,
		})
	}

	audit.ThirdPartyCount = len(audit.ThirdPartyResources)
	audit.TrackersFoundCount = len(trackerDomains)
	return audit
}
