package pii

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
)

// MaxExamples is the number of masked examples kept per kind.
const MaxExamples = 3

// RedactedEmail replaces an email whose domain cannot be determined.
const RedactedEmail = "[REDACTED_EMAIL]"

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?1[\s.\-]?)?(?:\(\d{3}\)|\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ \-]?){12,18}\d\b`)
)

// pass is one detection step. mask returns the replacement and false when
// the match must be left untouched.
type pass struct {
	kind    model.PIIKind
	pattern *regexp.Regexp
	mask    func(text string, start, end int) (string, bool)
}

// Detector finds and masks PII. It is stateless and safe for concurrent use.
type Detector struct {
	passes []pass
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New creates a Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		passes: []pass{
			{kind: model.PIIEmail, pattern: emailPattern, mask: maskEmailMatch},
			{kind: model.PIIPhone, pattern: phonePattern, mask: maskPhoneMatch},
			{kind: model.PIISSN, pattern: ssnPattern, mask: maskSSNMatch},
			{kind: model.PIICreditCard, pattern: cardPattern, mask: maskCardMatch},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectAndMask masks every detection in text and reports counts per kind.
// Kinds with no detection are omitted.
func (d *Detector) DetectAndMask(text string) model.PIIResult {
	result := model.PIIResult{MaskedText: text, Detections: make([]model.PIIDetection, 0)}
	if text == "" {
		return result
	}

	masked := text
	for _, p := range d.passes {
		var det model.PIIDetection
		masked, det = runPass(masked, p)
		if det.Count == 0 {
			continue
		}
		result.Detections = append(result.Detections, det)
		result.TotalCount += det.Count
	}
	result.MaskedText = masked

	d.logger.Debug("pii detection complete", "total", result.TotalCount, "kinds", len(result.Detections))
	return result
}

// Mask returns text with all detections masked.
func (d *Detector) Mask(text string) string {
	return d.DetectAndMask(text).MaskedText
}

func runPass(text string, p pass) (string, model.PIIDetection) {
	det := model.PIIDetection{Kind: p.kind, MaskedExamples: make([]string, 0, MaxExamples)}
	locs := p.pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, det
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range locs {
		replacement, ok := p.mask(text, loc[0], loc[1])
		if !ok {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(replacement)
		last = loc[1]

		det.Count++
		if len(det.MaskedExamples) < MaxExamples && !contains(det.MaskedExamples, replacement) {
			det.MaskedExamples = append(det.MaskedExamples, replacement)
		}
	}
	b.WriteString(text[last:])
	return b.String(), det
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordByte(c byte) bool {
	return isDigit(c) || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func digitsOf(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func lastFour(digits string) string {
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func maskEmailMatch(text string, start, end int) (string, bool) {
	// A local part that continues an earlier mask ("j***e@x.com") is already redacted.
	if start > 0 && text[start-1] == '*' {
		return "", false
	}
	return MaskEmail(text[start:end]), true
}

// MaskEmail masks an email address as first-char***last-char@domain.
func MaskEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found || domain == "" || local == "" {
		return RedactedEmail
	}
	runes := []rune(local)
	if len(runes) == 1 {
		return string(runes[0]) + "***@" + domain
	}
	return string(runes[0]) + "***" + string(runes[len(runes)-1]) + "@" + domain
}

func maskPhoneMatch(text string, start, end int) (string, bool) {
	if start > 0 && (isWordByte(text[start-1]) || text[start-1] == '+') {
		return "", false
	}
	if end < len(text) && isWordByte(text[end]) {
		return "", false
	}
	if end+1 < len(text) && (text[end] == '-' || text[end] == '.') && isDigit(text[end+1]) {
		return "", false
	}
	return "(***) ***-" + lastFour(digitsOf(text[start:end])), true
}

func maskSSNMatch(text string, start, end int) (string, bool) {
	if start > 0 && text[start-1] == '-' {
		return "", false
	}
	if end < len(text) && text[end] == '-' {
		return "", false
	}
	return "***-**-" + lastFour(digitsOf(text[start:end])), true
}

func maskCardMatch(text string, start, end int) (string, bool) {
	digits := digitsOf(text[start:end])
	if len(digits) < 13 || len(digits) > 19 || !Luhn(digits) {
		return "", false
	}
	return "**** **** **** " + lastFour(digits), true
}
