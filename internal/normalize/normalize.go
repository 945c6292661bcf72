package normalize

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/riskscan/internal/model"
)

// DefaultMaxTextLength is the number of characters kept after normalization.
const DefaultMaxTextLength = 12000

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	spaceAroundLF   = regexp.MustCompile(` ?\n ?`)
	manyNewlines    = regexp.MustCompile(`\n{3,}`)

	httpURLPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"']+`)
	wwwURLPattern  = regexp.MustCompile(`(?i)(?:^|[^/\w.@-])(www\.[^\s<>"']+)`)
)

// Normalizer builds AnalysisInput values.
type Normalizer struct {
	maxTextLength int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMaxTextLength sets the text cap. Non-positive values keep the default.
func WithMaxTextLength(n int) Option {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.maxTextLength = n
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	nz := &Normalizer{maxTextLength: DefaultMaxTextLength}
	for _, opt := range opts {
		opt(nz)
	}
	return nz
}

// Normalize converts req into an AnalysisInput.
//
// It returns ErrNoUsableInput when nothing is left to analyze. Image requests
// are accepted even when their text is empty because OCR failures must not
// reject the request.
func (nz *Normalizer) Normalize(req *model.Request) (*model.AnalysisInput, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	var (
		text       string
		anchors    []string
		htmlAssets []string
	)

	explicitURL := req.URL
	content := req.Content
	if req.InputType == model.InputURL {
		if explicitURL == "" {
			explicitURL = strings.TrimSpace(content)
		}
		content = ""
	}

	if req.HTML && content != "" {
		doc := ParseHTML(content, req.PageURL)
		text = doc.Text
		anchors = doc.Links
		htmlAssets = doc.Resources
	} else {
		text = content
	}
	text = nz.NormalizeText(text)

	primary := ""
	candidates := newOrderedSet()
	for _, raw := range []string{req.PageURL, explicitURL} {
		if canonical, ok := RepairURL(raw); ok {
			if primary == "" {
				primary = canonical
			}
			candidates.add(canonical)
		}
	}
	for _, found := range ExtractURLs(text) {
		if primary == "" {
			primary = found
		}
		candidates.add(found)
	}
	for _, raw := range anchors {
		if canonical, ok := RepairURL(raw); ok {
			candidates.add(canonical)
		}
	}

	resources := newOrderedSet()
	for _, raw := range append(append([]string{}, req.Resources...), htmlAssets...) {
		if canonical, ok := RepairURL(raw); ok {
			resources.add(canonical)
		}
	}

	input := &model.AnalysisInput{
		RawText:          text,
		RawURLCandidates: candidates.items,
		ResourceURLs:     resources.items,
		PrimaryURL:       primary,
	}

	if input.RawText == "" && len(input.RawURLCandidates) == 0 && len(input.ResourceURLs) == 0 {
		if req.InputType == model.InputImage && len(req.Image) > 0 {
			return input, nil
		}
		return nil, ErrNoUsableInput
	}
	return input, nil
}

// NormalizeText applies the whitespace rules and the length cap.
func (nz *Normalizer) NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAroundLF.ReplaceAllString(text, "\n")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	return truncate(text, nz.maxTextLength)
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit]))
}

// ExtractURLs finds URLs in free text. Explicit http(s) tokens and bare www.
// tokens are merged in the order they appear and deduplicated by canonical form.
func ExtractURLs(text string) []string {
	if text == "" {
		return []string{}
	}

	type hit struct {
		pos int
		raw string
	}
	hits := make([]hit, 0)
	for _, loc := range httpURLPattern.FindAllStringIndex(text, -1) {
		hits = append(hits, hit{pos: loc[0], raw: text[loc[0]:loc[1]]})
	}
	for _, loc := range wwwURLPattern.FindAllStringSubmatchIndex(text, -1) {
		hits = append(hits, hit{pos: loc[2], raw: text[loc[2]:loc[3]]})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	set := newOrderedSet()
	for _, h := range hits {
		if canonical, ok := RepairURL(h.raw); ok {
			set.add(canonical)
		}
	}
	return set.items
}

// RepairURL repairs a URL candidate and returns its canonical form.
// Bare www. hosts, protocol-relative forms and scheme-less hosts get an
// https scheme. The second result is false when the candidate is unusable.
func RepairURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "<([{\"'")
	s = strings.TrimRight(s, ".,;:!?)]}>\"'")
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return "", false
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case strings.HasPrefix(lower, "www."):
		s = "https://" + s
	case !strings.Contains(s, "://"):
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if !validHost(host) {
		return "", false
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}
	u.Fragment = ""
	return u.String(), true
}

// Hostname returns the lowercase host of a URL, or "" when it cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

func validHost(host string) bool {
	if host == "" || strings.HasPrefix(host, ".") || strings.Contains(host, "..") {
		return false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.', r == ':':
		case r > utf8.RuneSelf:
		default:
			return false
		}
	}
	return true
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: make([]string, 0)}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
