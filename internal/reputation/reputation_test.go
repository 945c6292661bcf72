package reputation

import (
	"strings"
	"testing"

	"github.com/nao1215/riskscan/internal/model"
)

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		host     string
		expected string
	}{
		{"example.co.uk", "example.co.uk"},
		{"example.com", "example.com"},
		{"sub.example.com", "example.com"},
		{"a.b.example.co.uk", "example.co.uk"},
		{"shop.example.com.br", "example.com.br"},
		{"WWW.Example.COM.", "example.com"},
		{"localhost", "localhost"},
		{"192.168.0.1", "192.168.0.1"},
		{"", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.host, func(t *testing.T) {
			t.Parallel()
			if got := RegistrableDomain(tc.host); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		a, b     string
		expected int
	}{
		{"paypa1", "paypal", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
		{"amazon", "arnazon", 2},
		{"gооgle", "google", 2},
	}
	for _, tc := range testCases {
		t.Run(tc.a+"/"+tc.b, func(t *testing.T) {
			t.Parallel()
			got := Levenshtein(tc.a, tc.b)
			if got != tc.expected {
				t.Errorf("got %d, expected %d", got, tc.expected)
			}
			if rev := Levenshtein(tc.b, tc.a); rev != got {
				t.Errorf("distance is not symmetric: %d vs %d", got, rev)
			}
			if (got == 0) != (tc.a == tc.b) {
				t.Errorf("distance zero must mean identical strings")
			}
		})
	}
}

func hasMatch(matches []model.LookalikeMatch, substr string, severity model.Severity) bool {
	for _, m := range matches {
		if strings.Contains(m.Reason, substr) && m.Severity == severity {
			return true
		}
	}
	return false
}

func TestAnalyzeURLsLookalikeBrand(t *testing.T) {
	t.Parallel()

	matches := New().AnalyzeURLs([]string{"https://paypa1-secure.com/login"})
	if !hasMatch(matches, "looks similar to paypal", model.SeverityHigh) {
		t.Errorf("expected high paypal lookalike, got %+v", matches)
	}
	if !hasMatch(matches, "digits or hyphens", model.SeverityLow) {
		t.Errorf("expected low digit/hyphen match, got %+v", matches)
	}
	for _, m := range matches {
		if m.Hostname != "paypa1-secure.com" {
			t.Errorf("unexpected hostname %q", m.Hostname)
		}
	}
}

func TestAnalyzeURLsChecks(t *testing.T) {
	t.Parallel()

	a := New()
	testCases := []struct {
		name     string
		url      string
		reason   string
		severity model.Severity
	}{
		{"punycode", "https://xn--pypal-4ve.com/", "punycode", model.SeverityHigh},
		{"ipv4", "http://192.168.10.4/login", "IPv4", model.SeverityMedium},
		{"suspicious tld", "https://free-gift.xyz", "suspicious top-level domain .xyz", model.SeverityMedium},
		{"brand reference", "https://paypal.com.account-check.net", "references paypal", model.SeverityHigh},
		{"short brand segment", "https://secure-usps.delivery.com", "references usps", model.SeverityHigh},
		{"brand prefix", "https://applesupport.com/id", "references apple", model.SeverityHigh},
		{"short brand prefix", "https://uspsdelivery.com/track", "references usps", model.SeverityHigh},
		{"brand in hyphenated label", "https://chaseonline-verify.com/login", "references chase", model.SeverityHigh},
		{"brand inside word", "https://purchase.com/cart", "references chase", model.SeverityHigh},
		{"three letter brand", "https://dhl-parcel.com", "references dhl", model.SeverityHigh},
		{"three letter brand prefix", "https://irsrefund.com", "references irs", model.SeverityHigh},
		{"brand in subdomain", "https://steam.gift-cards.net", "references steam", model.SeverityHigh},
		{"short brand one edit", "https://fedx.com", "looks similar to fedex (edit distance 1)", model.SeverityHigh},
		{"short brand two edits", "https://stearn.com", "looks similar to steam (edit distance 2)", model.SeverityHigh},
		{"three letter brand one edit", "https://dh1.com", "looks similar to dhl (edit distance 1)", model.SeverityHigh},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			matches := a.AnalyzeURLs([]string{tc.url})
			if !hasMatch(matches, tc.reason, tc.severity) {
				t.Errorf("expected %q (%s), got %+v", tc.reason, tc.severity, matches)
			}
		})
	}
}

func TestAnalyzeURLsCleanHosts(t *testing.T) {
	t.Parallel()

	a := New()
	for _, u := range []string{
		"https://www.paypal.com/signin",
		"https://example.co.uk/about",
		"https://news.example.com",
		"not a url",
	} {
		if matches := a.AnalyzeURLs([]string{u}); len(matches) != 0 {
			t.Errorf("%s: expected no matches, got %+v", u, matches)
		}
	}
}

func TestAnalyzeURLsChecksAreCumulative(t *testing.T) {
	t.Parallel()

	a := New()
	testCases := []struct {
		name    string
		url     string
		reasons []string
	}{
		{
			name:    "ipv4 host",
			url:     "http://192.168.10.4/login",
			reasons: []string{"IPv4", "digits or hyphens"},
		},
		{
			name:    "brand reference and lookalike",
			url:     "https://paypa1-apple.xyz",
			reasons: []string{"suspicious top-level domain .xyz", "digits or hyphens", "references apple", "looks similar to paypal"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			matches := a.AnalyzeURLs([]string{tc.url})
			for _, reason := range tc.reasons {
				found := false
				for _, m := range matches {
					if strings.Contains(m.Reason, reason) {
						found = true
					}
				}
				if !found {
					t.Errorf("expected %q, got %+v", reason, matches)
				}
			}
		})
	}
}

func TestAnalyzeURLsOfficialDomainsAreExcluded(t *testing.T) {
	t.Parallel()

	a := New()
	for _, u := range []string{
		"https://support.apple.com",
		"https://www.usps.com/track",
		"https://secure.chase.com",
		"https://www.irs.gov/refunds",
		"https://store.steampowered.com",
	} {
		for _, m := range a.AnalyzeURLs([]string{u}) {
			if m.Severity == model.SeverityHigh {
				t.Errorf("%s: unexpected high match %+v", u, m)
			}
		}
	}
}

func TestAnalyzeURLsDeduplicates(t *testing.T) {
	t.Parallel()

	u := "https://paypa1-secure.com/login"
	once := New().AnalyzeURLs([]string{u})
	twice := New().AnalyzeURLs([]string{u, u})
	if len(once) != len(twice) {
		t.Errorf("expected %d matches after dedup, got %d", len(once), len(twice))
	}
}

func TestWithBrands(t *testing.T) {
	t.Parallel()

	a := New(WithBrands(map[string][]string{"ExampleBank": {"examplebank.com"}}))
	matches := a.AnalyzeURLs([]string{"https://examp1ebank.com"})
	if !hasMatch(matches, "looks similar to examplebank", model.SeverityHigh) {
		t.Errorf("expected custom brand lookalike, got %+v", matches)
	}
	if len(New().AnalyzeURLs([]string{"https://examplebank.com"})) != 0 {
		t.Error("default analyzer should not know the custom brand")
	}
	if len(a.AnalyzeURLs([]string{"https://www.examplebank.com"})) != 0 {
		t.Error("official custom domain should be clean")
	}
}
