package reputation

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"

	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/normalize"
)

// maxEditDistance is the largest distance still treated as a lookalike.
const maxEditDistance = 2

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Brand is a brand token and the domains it officially uses.
type Brand struct {
	Token    string
	Official []string
}

// Analyzer checks URL hosts for lookalike signals.
type Analyzer struct {
	brands []Brand
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBrands adds or replaces brand entries. Tokens are lowercased.
func WithBrands(brands map[string][]string) Option {
	return func(a *Analyzer) {
		merged := make(map[string][]string, len(a.brands)+len(brands))
		for _, b := range a.brands {
			merged[b.Token] = b.Official
		}
		for token, official := range brands {
			token = strings.ToLower(strings.TrimSpace(token))
			if token == "" {
				continue
			}
			domains := make([]string, 0, len(official))
			for _, d := range official {
				if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
					domains = append(domains, d)
				}
			}
			merged[token] = domains
		}
		a.brands = sortedBrands(merged)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer with the built-in brand table.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		brands: sortedBrands(defaultBrands),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func sortedBrands(m map[string][]string) []Brand {
	brands := make([]Brand, 0, len(m))
	for token, official := range m {
		brands = append(brands, Brand{Token: token, Official: official})
	}
	sort.Slice(brands, func(i, j int) bool { return brands[i].Token < brands[j].Token })
	return brands
}

// AnalyzeURLs runs every host check over urls. Matches are deduplicated by
// (url, reason) and returned in input order. Unparsable URLs are skipped.
func (a *Analyzer) AnalyzeURLs(urls []string) []model.LookalikeMatch {
	matches := make([]model.LookalikeMatch, 0)
	seen := make(map[string]struct{})

	for _, raw := range urls {
		host := normalize.Hostname(raw)
		if host == "" {
			continue
		}
		for _, m := range a.checkHost(host) {
			key := raw + "\x00" + m.reason
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			matches = append(matches, model.LookalikeMatch{
				SourceURL: raw,
				Hostname:  host,
				Reason:    m.reason,
				Severity:  m.severity,
			})
		}
	}

	a.logger.Debug("domain reputation checked", "urls", len(urls), "matches", len(matches))
	return matches
}

type hostMatch struct {
	reason   string
	severity model.Severity
}

func (a *Analyzer) checkHost(host string) []hostMatch {
	var out []hostMatch

	if isIPv4(host) {
		out = append(out, hostMatch{"raw IPv4 address used instead of a domain name", model.SeverityMedium})
	} else if isIPLiteral(host) {
		// IPv6 literals have no labels to inspect.
		return out
	}

	if strings.HasPrefix(host, "xn--") || strings.Contains(host, ".xn--") {
		reason := "punycode hostname can disguise lookalike characters"
		if decoded, err := idna.ToUnicode(host); err == nil && decoded != host {
			reason = fmt.Sprintf("punycode hostname displays as %q", decoded)
		}
		out = append(out, hostMatch{reason, model.SeverityHigh})
	}

	registrable := RegistrableDomain(host)
	sld, suffix := splitRegistrable(registrable)
	if _, ok := suspiciousTLDs[suffix]; ok {
		out = append(out, hostMatch{fmt.Sprintf("suspicious top-level domain .%s", suffix), model.SeverityMedium})
	}
	if strings.ContainsAny(sld, "0123456789-") {
		out = append(out, hostMatch{fmt.Sprintf("domain label %q contains digits or hyphens", sld), model.SeverityLow})
	}

	normalizedSLD := nonAlphanumeric.ReplaceAllString(sld, "")
	sldTokens := strings.FieldsFunc(sld, func(r rune) bool { return r == '-' || r == '_' })

	for _, brand := range a.brands {
		if isOfficial(host, brand.Official) {
			continue
		}
		if strings.Contains(host, brand.Token) {
			out = append(out, hostMatch{
				fmt.Sprintf("references %s but is not an official %s domain", brand.Token, brand.Token),
				model.SeverityHigh,
			})
		}
		if d, ok := similarTo(brand.Token, normalizedSLD, sldTokens); ok {
			out = append(out, hostMatch{
				fmt.Sprintf("looks similar to %s (edit distance %d)", brand.Token, d),
				model.SeverityHigh,
			})
		}
	}
	return out
}

func isOfficial(host string, official []string) bool {
	for _, d := range official {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// similarTo compares the normalized second-level label and each of its
// hyphen-separated tokens against a brand. Exact matches never fire.
func similarTo(brand, normalizedSLD string, tokens []string) (int, bool) {
	limit := maxEditDistance
	candidates := append([]string{normalizedSLD}, tokens...)
	for _, c := range candidates {
		c = nonAlphanumeric.ReplaceAllString(c, "")
		if len(c) < 3 || c == brand {
			continue
		}
		if diff := len(c) - len(brand); diff > limit || -diff > limit {
			continue
		}
		if d := Levenshtein(c, brand); d >= 1 && d <= limit {
			return d, true
		}
	}
	return 0, false
}
