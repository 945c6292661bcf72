package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/riskscan/internal/fusion"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/normalize"
	"github.com/nao1215/riskscan/internal/provider"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractText(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

type fakeAssessor struct {
	mu         sync.Mutex
	assessment *model.ModelAssessment
	err        error
	seen       []provider.AssessmentRequest
}

func (f *fakeAssessor) Assess(_ context.Context, req provider.AssessmentRequest) (*model.ModelAssessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, req)
	return f.assessment, f.err
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEngineScenarioPhishingText(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	report, err := e.Analyze(context.Background(), &model.Request{
		Content: "Your account will be suspended immediately. Click here to verify your password within 24 hours or your data will be deleted.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, c := range []model.Category{
		model.CategoryUrgency,
		model.CategoryCredentialRequest,
		model.CategoryCallToAction,
		model.CategoryDataLossThreat,
	} {
		found := false
		for _, f := range report.Flags {
			if f.Category == c {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %s flag", c)
		}
	}
	if report.Result.RiskScore < 97 {
		t.Errorf("got score %d, expected >= 97", report.Result.RiskScore)
	}
	if report.Result.Verdict != "High Risk" {
		t.Errorf("got verdict %q, expected %q", report.Result.Verdict, "High Risk")
	}
	expectedSteps := []string{"ocr", "normalize", "signals", "image_metadata", "fuse"}
	if strings.Join(report.PerformedSteps, ",") != strings.Join(expectedSteps, ",") {
		t.Errorf("got steps %v, expected %v", report.PerformedSteps, expectedSteps)
	}
}

func TestEngineScenarioLookalikeURL(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	report, err := e.Analyze(context.Background(), &model.Request{
		InputType: model.InputURL,
		Content:   "https://paypa1-secure.com/login",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.PrimaryURL != "https://paypa1-secure.com/login" {
		t.Errorf("got primary URL %q", report.PrimaryURL)
	}

	found := false
	for _, m := range report.Lookalikes {
		if strings.Contains(m.Reason, "paypal") && m.Severity == model.SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a high severity paypal lookalike, got %+v", report.Lookalikes)
	}
}

func TestEngineScenarioPII(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	report, err := e.Analyze(context.Background(), &model.Request{
		Content: "Contact me at john.doe@example.com or 555-123-4567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := make(map[model.PIIKind]int)
	for _, d := range report.PII.Detections {
		counts[d.Kind] = d.Count
	}
	if counts[model.PIIEmail] != 1 || counts[model.PIIPhone] != 1 {
		t.Errorf("unexpected detections: %+v", report.PII.Detections)
	}
	for _, raw := range []string{"john.doe@example.com", "555-123-4567"} {
		if strings.Contains(report.MaskedText, raw) {
			t.Errorf("masked text still contains %q: %q", raw, report.MaskedText)
		}
	}
}

func TestEngineScenarioTrackers(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	report, err := e.Analyze(context.Background(), &model.Request{
		PageURL: "https://news.example.com",
		Resources: []string{
			"https://news.example.com/static/app.js",
			"https://google-analytics.com/collect",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	audit := report.Trackers
	if audit.ThirdPartyCount != 1 {
		t.Errorf("got %d third-party resources, expected 1", audit.ThirdPartyCount)
	}
	if len(audit.TrackerMatches) != 1 {
		t.Errorf("got %d tracker matches, expected 1", len(audit.TrackerMatches))
	}
	if audit.TrackersFoundCount != 1 {
		t.Errorf("got trackersFoundCount %d, expected 1", audit.TrackersFoundCount)
	}
}

func TestEngineNoUsableInput(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	testCases := []struct {
		name string
		req  *model.Request
	}{
		{"empty", &model.Request{}},
		{"whitespace", &model.Request{Content: " \n\t "}},
		{"broken url", &model.Request{InputType: model.InputURL, Content: "http://"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := e.Analyze(context.Background(), tc.req)
			if !errors.Is(err, normalize.ErrNoUsableInput) {
				t.Errorf("expected ErrNoUsableInput, got %v", err)
			}
		})
	}

	if _, err := e.Analyze(context.Background(), nil); !errors.Is(err, normalize.ErrNilRequest) {
		t.Errorf("expected ErrNilRequest, got %v", err)
	}
}

func TestEngineModelFusion(t *testing.T) {
	t.Parallel()

	t.Run("blends a model opinion from masked text", func(t *testing.T) {
		t.Parallel()

		assessor := &fakeAssessor{assessment: &model.ModelAssessment{
			RiskScore: 80,
			Summary:   "Looks like a scam.",
			Findings:  []string{"Unusual sender"},
		}}
		e := newTestEngine(t, WithAssessor(assessor))
		report, err := e.Analyze(context.Background(), &model.Request{
			Content: "Write to jane.roe@example.com to claim your prize",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !report.Result.ModelBlended {
			t.Error("expected model blend")
		}
		if report.Result.Summary != "Looks like a scam." {
			t.Errorf("got summary %q", report.Result.Summary)
		}
		if len(assessor.seen) != 1 {
			t.Fatalf("expected one model call, got %d", len(assessor.seen))
		}
		if strings.Contains(assessor.seen[0].MaskedText, "jane.roe@example.com") {
			t.Error("raw PII was sent to the model")
		}
	})

	t.Run("degrades to heuristic-only with a warning", func(t *testing.T) {
		t.Parallel()

		assessor := &fakeAssessor{err: provider.ErrUpstreamStatus}
		e := newTestEngine(t, WithAssessor(assessor))
		report, err := e.Analyze(context.Background(), &model.Request{
			Content: "Act now! Verify your password here",
		})
		if err != nil {
			t.Fatalf("degradation must not fail the request: %v", err)
		}
		if report.Result.ModelBlended {
			t.Error("expected heuristic-only result")
		}
		if !containsString(report.Warnings, WarnModelUnavailable) {
			t.Errorf("missing warning, got %v", report.Warnings)
		}
		if !containsString(report.Result.Findings, WarnModelUnavailable) {
			t.Errorf("warning must be appended to findings, got %v", report.Result.Findings)
		}
	})
}

func TestEngineImageInput(t *testing.T) {
	t.Parallel()

	image := []byte("not really a png")

	t.Run("uses OCR text", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t, WithTextExtractor(fakeExtractor{text: "Urgent: confirm your password at www.paypa1.com"}))
		req := &model.Request{InputType: model.InputImage, Image: image, ImageMIMEType: "image/png"}
		report, err := e.Analyze(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Flags) == 0 {
			t.Error("expected phishing flags from OCR text")
		}
		if len(report.URLs) != 1 || report.URLs[0] != "https://www.paypa1.com" {
			t.Errorf("got URLs %v", report.URLs)
		}
		if req.Content != "" {
			t.Error("caller request must not be modified")
		}
	})

	t.Run("OCR failure still returns a result", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t, WithTextExtractor(fakeExtractor{err: errors.New("timeout")}))
		report, err := e.Analyze(context.Background(), &model.Request{InputType: model.InputImage, Image: image})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !containsString(report.Warnings, WarnOCRUnavailable) {
			t.Errorf("missing warning, got %v", report.Warnings)
		}
		if report.Result.Verdict == "" {
			t.Error("expected a verdict")
		}
	})

	t.Run("without OCR", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		report, err := e.Analyze(context.Background(), &model.Request{InputType: model.InputImage, Image: image})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !containsString(report.Warnings, WarnOCRNotConfigured) {
			t.Errorf("missing warning, got %v", report.Warnings)
		}
	})
}

func TestEngineMasksPersonalDataInFlagMatches(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	report, err := e.Analyze(context.Background(), &model.Request{
		Content: "Your contacts at 555-123-4567 will be leaked unless you pay now.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const raw = "555-123"
	if strings.Contains(report.MaskedText, raw) {
		t.Errorf("masked text leaks %q: %q", raw, report.MaskedText)
	}
	for _, f := range report.Flags {
		if strings.Contains(f.Match, raw) {
			t.Errorf("flag %s match leaks %q: %q", f.Category, raw, f.Match)
		}
	}
	for _, list := range [][]string{report.Result.Findings, report.Result.FlaggedSegments} {
		for _, item := range list {
			if strings.Contains(item, raw) {
				t.Errorf("fused output leaks %q: %q", raw, item)
			}
		}
	}

	found := false
	for _, f := range report.Flags {
		if f.Category == model.CategoryDataLossThreat && strings.Contains(f.Match, "(***) ***-4567") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected masked data-loss match, got %+v", report.Flags)
	}
}

func TestEngineModes(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithMode(fusion.ModeVerify))
	report, err := e.Analyze(context.Background(), &model.Request{Content: "Meeting notes for Tuesday"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Mode != "verify" || report.Result.Verdict != "Likely Fake" {
		t.Errorf("got mode %q verdict %q", report.Mode, report.Result.Verdict)
	}

	report, err = e.Analyze(context.Background(), &model.Request{Content: "Meeting notes", Mode: "protect"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Result.Verdict != "Low Risk" {
		t.Errorf("got verdict %q, expected %q", report.Result.Verdict, "Low Risk")
	}

	if _, err := e.Analyze(context.Background(), &model.Request{Content: "x", Mode: "paranoid"}); !errors.Is(err, fusion.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
	if _, err := NewEngine(WithMode("paranoid")); !errors.Is(err, fusion.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestEngineInvalidWeights(t *testing.T) {
	t.Parallel()

	w := fusion.DefaultWeights()
	w.HeuristicBlend = 0.9
	if _, err := NewEngine(WithWeights(w)); !errors.Is(err, fusion.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
