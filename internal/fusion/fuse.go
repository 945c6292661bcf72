package fusion

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/normalize"
	"github.com/nao1215/riskscan/internal/phishing"
)

// Field caps for the merged qualitative lists.
const (
	MaxFindings        = 8
	MaxFlaggedSegments = 12
	MaxActions         = 6
	MaxEvidence        = 8
)

// Signals carries every analyzer output for one request.
type Signals struct {
	Flags      []model.PhishingFlag
	Lookalikes []model.LookalikeMatch
	PII        model.PIIResult
	Trackers   model.TrackerAudit
	URLCount   int
	Assessment *model.ModelAssessment

	// ImageFindings come from image metadata inspection.
	ImageFindings []model.ImageFinding
	// Warnings describe degraded external calls. They are appended to findings.
	Warnings []string
}

// Fuser computes FusedResult values. It holds only configuration.
type Fuser struct {
	weights Weights
	mode    Mode
	logger  *slog.Logger
}

// Option configures a Fuser.
type Option func(*Fuser)

// WithWeights replaces the default weights.
func WithWeights(w Weights) Option {
	return func(f *Fuser) {
		f.weights = w
	}
}

// WithMode selects the verdict banding.
func WithMode(m Mode) Option {
	return func(f *Fuser) {
		f.mode = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fuser) {
		f.logger = logger
	}
}

// New creates a Fuser with default weights in protect mode.
func New(opts ...Option) *Fuser {
	f := &Fuser{
		weights: DefaultWeights(),
		mode:    ModeProtect,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Mode returns the banding mode.
func (f *Fuser) Mode() Mode {
	return f.mode
}

// Fuse combines positional analyzer outputs with default options.
func Fuse(
	flags []model.PhishingFlag,
	lookalikes []model.LookalikeMatch,
	pii model.PIIResult,
	audit model.TrackerAudit,
	urlCount int,
	assessment *model.ModelAssessment,
) model.FusedResult {
	return New().FuseSignals(Signals{
		Flags:      flags,
		Lookalikes: lookalikes,
		PII:        pii,
		Trackers:   audit,
		URLCount:   urlCount,
		Assessment: assessment,
	})
}

// SubScores computes the phishing, PII and privacy sub-scores.
func (f *Fuser) SubScores(s Signals) model.SubScores {
	w := f.weights

	flagSum := 0
	for _, flag := range s.Flags {
		flagSum += w.Severity.Weight(flag.Severity)
	}
	lookalikeSum := 0
	for _, m := range s.Lookalikes {
		lookalikeSum += w.Severity.Weight(m.Severity)
	}

	bonus := 0
	has := func(c model.Category) bool { return phishing.Has(s.Flags, c) }
	cta := has(model.CategoryCallToAction)
	if has(model.CategoryUrgency) && cta {
		bonus += w.UrgencyCTABonus
	}
	if has(model.CategoryCredentialRequest) && cta {
		bonus += w.CredentialCTABonus
	}
	if has(model.CategoryPaymentPressure) && cta {
		bonus += w.PaymentCTABonus
	}
	if len(s.Lookalikes) > 0 && len(s.Flags) > 0 {
		bonus += w.LookalikeFlagBonus
	}
	if w.ManyURLsThreshold > 0 && s.URLCount >= w.ManyURLsThreshold {
		bonus += w.ManyURLsBonus
	}

	phishingScore := roundClamp(float64(flagSum) + w.LookalikeFactor*float64(lookalikeSum) + float64(bonus))
	piiScore := Clamp(s.PII.TotalCount * w.PIIPerItem)
	privacyScore := Clamp(s.Trackers.ThirdPartyCount*w.ThirdPartyWeight + s.Trackers.TrackersFoundCount*w.TrackerWeight)

	return model.SubScores{Phishing: phishingScore, PII: piiScore, Privacy: privacyScore}
}

// IsCritical reports whether the near-certain scam combination is present:
// urgency, a call to action, a data-loss threat and either payment pressure
// or a credential request.
func IsCritical(flags []model.PhishingFlag) bool {
	return phishing.Has(flags, model.CategoryUrgency) &&
		phishing.Has(flags, model.CategoryCallToAction) &&
		phishing.Has(flags, model.CategoryDataLossThreat) &&
		(phishing.Has(flags, model.CategoryPaymentPressure) || phishing.Has(flags, model.CategoryCredentialRequest))
}

// FuseSignals computes the final result for s.
func (f *Fuser) FuseSignals(s Signals) model.FusedResult {
	w := f.weights
	sub := f.SubScores(s)
	critical := IsCritical(s.Flags)

	heuristic := roundClamp(
		float64(sub.Phishing)*w.PhishingShare +
			float64(sub.PII)*w.PIIShare +
			float64(sub.Privacy)*w.PrivacyShare,
	)
	if critical {
		heuristic = max(heuristic, Clamp(w.CriticalFloor))
	}

	score := heuristic
	blended := false
	modelSignal := s.Assessment.HasSignal()
	if modelSignal {
		modelScore := Clamp(s.Assessment.RiskScore)
		score = roundClamp(float64(heuristic)*w.HeuristicBlend + float64(modelScore)*w.ModelBlend)
		blended = true
		if critical {
			score = max(score, Clamp(w.CriticalFloor))
		}
	} else if score < w.LowConfidenceFloor {
		score = Clamp(w.LowConfidenceFloor)
	}

	verdict := w.Verdict(f.mode, score)
	result := model.FusedResult{
		RiskScore:          score,
		Verdict:            verdict,
		SubScores:          sub,
		HeuristicScore:     heuristic,
		ModelBlended:       blended,
		CriticalPattern:    critical,
		Findings:           mergeFindings(heuristicFindings(s), modelList(s.Assessment, func(m *model.ModelAssessment) []string { return m.Findings }), s.Warnings),
		FlaggedSegments:    mergeStrings(MaxFlaggedSegments, heuristicSegments(s), modelList(s.Assessment, func(m *model.ModelAssessment) []string { return m.FlaggedSegments })),
		RecommendedActions: mergeStrings(MaxActions, heuristicActions(s), modelList(s.Assessment, func(m *model.ModelAssessment) []string { return m.RecommendedActions })),
		EvidenceSources:    mergeEvidence(heuristicEvidence(s), modelEvidence(s.Assessment)),
	}
	if modelSignal && strings.TrimSpace(s.Assessment.Summary) != "" {
		result.Summary = strings.TrimSpace(s.Assessment.Summary)
	} else {
		result.Summary = heuristicSummary(verdict, s, critical)
	}

	f.logger.Debug("fusion complete",
		"score", score,
		"heuristic", heuristic,
		"phishing", sub.Phishing,
		"pii", sub.PII,
		"privacy", sub.Privacy,
		"critical", critical,
		"model_blended", blended,
	)
	return result
}

func modelList(m *model.ModelAssessment, get func(*model.ModelAssessment) []string) []string {
	if m == nil {
		return nil
	}
	return get(m)
}

func modelEvidence(m *model.ModelAssessment) []model.EvidenceSource {
	if m == nil {
		return nil
	}
	return m.EvidenceSources
}

func heuristicFindings(s Signals) []string {
	out := make([]string, 0)
	for _, flag := range s.Flags {
		out = append(out, fmt.Sprintf("%s (%q)", flag.Description, flag.Match))
	}
	for _, m := range s.Lookalikes {
		out = append(out, fmt.Sprintf("%s: %s", m.Hostname, m.Reason))
	}
	for _, d := range s.PII.Detections {
		out = append(out, fmt.Sprintf("Contains %d %s", d.Count, piiNoun(d.Kind, d.Count)))
	}
	if s.Trackers.TrackersFoundCount > 0 {
		out = append(out, fmt.Sprintf("Loads %d known tracker(s) across %d third-party resource(s)",
			s.Trackers.TrackersFoundCount, s.Trackers.ThirdPartyCount))
	} else if s.Trackers.ThirdPartyCount > 0 {
		out = append(out, fmt.Sprintf("Loads %d third-party resource(s)", s.Trackers.ThirdPartyCount))
	}
	for _, img := range s.ImageFindings {
		out = append(out, img.Description)
	}
	return out
}

func piiNoun(kind model.PIIKind, count int) string {
	var noun string
	switch kind {
	case model.PIIEmail:
		noun = "email address"
	case model.PIIPhone:
		noun = "phone number"
	case model.PIISSN:
		noun = "social security number"
	case model.PIICreditCard:
		noun = "payment card number"
	default:
		noun = string(kind)
	}
	if count != 1 {
		if strings.HasSuffix(noun, "ss") {
			return noun + "es"
		}
		return noun + "s"
	}
	return noun
}

func heuristicSegments(s Signals) []string {
	out := make([]string, 0)
	for _, flag := range s.Flags {
		if flag.Match != "" {
			out = append(out, flag.Match)
		}
	}
	for _, m := range s.Lookalikes {
		out = append(out, m.SourceURL)
	}
	return out
}

func heuristicActions(s Signals) []string {
	out := make([]string, 0)
	has := func(c model.Category) bool { return phishing.Has(s.Flags, c) }
	if len(s.Flags) > 0 {
		out = append(out, "Verify the sender through an official channel before responding")
	}
	if has(model.CategoryCredentialRequest) {
		out = append(out, "Never enter passwords or one-time codes from a link in a message")
	}
	if has(model.CategoryPaymentPressure) {
		out = append(out, "Do not send money, gift cards or crypto to an unverified request")
	}
	if len(s.Lookalikes) > 0 {
		out = append(out, "Type the official website address yourself instead of using the link")
	}
	if s.PII.TotalCount > 0 {
		out = append(out, "Remove personal data before sharing this content")
	}
	if s.Trackers.TrackersFoundCount > 0 {
		out = append(out, "Use a tracker blocker or private browsing on this page")
	}
	if len(s.ImageFindings) > 0 {
		out = append(out, "Strip metadata from images before sharing them")
	}
	if len(out) == 0 {
		out = append(out, "No immediate action needed; stay cautious with unexpected requests")
	}
	return out
}

func heuristicEvidence(s Signals) []model.EvidenceSource {
	out := make([]model.EvidenceSource, 0)
	for _, m := range s.Lookalikes {
		out = append(out, model.EvidenceSource{
			Title:   "Suspicious link " + m.Hostname,
			URL:     m.SourceURL,
			Snippet: m.Reason,
		})
	}
	for _, m := range s.Trackers.TrackerMatches {
		title := "Tracker " + m.TrackerDomain
		if m.Owner != "" {
			title += " (" + m.Owner + ")"
		}
		out = append(out, model.EvidenceSource{Title: title, URL: m.ResourceURL, Snippet: m.Category})
	}
	return out
}

func heuristicSummary(verdict string, s Signals, critical bool) string {
	if critical {
		return verdict + ": the message combines urgency, a link prompt and a data-loss threat with a request for credentials or payment, a common scam pattern."
	}
	parts := make([]string, 0, 4)
	if n := len(s.Flags); n > 0 {
		parts = append(parts, plural(n, "scam language indicator", "scam language indicators"))
	}
	if n := len(s.Lookalikes); n > 0 {
		parts = append(parts, plural(n, "suspicious link signal", "suspicious link signals"))
	}
	if n := s.PII.TotalCount; n > 0 {
		parts = append(parts, plural(n, "personal data item", "personal data items"))
	}
	if n := s.Trackers.TrackersFoundCount; n > 0 {
		parts = append(parts, plural(n, "known tracker", "known trackers"))
	}
	if len(parts) == 0 {
		return verdict + ": no scam, personal data or tracking signals were found."
	}
	return verdict + ": found " + joinParts(parts) + "."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func joinParts(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

// mergeStrings concatenates lists in order, dropping blanks and
// case-insensitive duplicates, and truncates to limit.
func mergeStrings(limit int, lists ...[]string) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, v := range list {
			v = strings.TrimSpace(v)
			key := strings.ToLower(v)
			if v == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			if len(out) >= limit {
				return out
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// mergeFindings keeps room at the end of the findings list for warnings.
func mergeFindings(heuristic, modelFindings, warnings []string) []string {
	warn := mergeStrings(MaxFindings, warnings)
	body := mergeStrings(MaxFindings-len(warn), heuristic, modelFindings)
	return mergeStrings(MaxFindings, body, warn)
}

// mergeEvidence deduplicates evidence by normalized URL, or by title when
// the URL is missing, and truncates to MaxEvidence.
func mergeEvidence(lists ...[]model.EvidenceSource) []model.EvidenceSource {
	out := make([]model.EvidenceSource, 0, MaxEvidence)
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, e := range list {
			key := evidenceKey(e)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			if len(out) >= MaxEvidence {
				return out
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

func evidenceKey(e model.EvidenceSource) string {
	if u := strings.TrimSpace(e.URL); u != "" {
		if canonical, ok := normalize.RepairURL(u); ok {
			return "url:" + strings.TrimSuffix(canonical, "/")
		}
		return "url:" + strings.ToLower(strings.TrimSuffix(u, "/"))
	}
	if t := strings.TrimSpace(e.Title); t != "" {
		return "title:" + strings.ToLower(t)
	}
	return ""
}
