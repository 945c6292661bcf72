package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/riskscan/internal/fusion"
	"github.com/nao1215/riskscan/internal/imagemeta"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/normalize"
	"github.com/nao1215/riskscan/internal/phishing"
	"github.com/nao1215/riskscan/internal/pii"
	"github.com/nao1215/riskscan/internal/provider"
	"github.com/nao1215/riskscan/internal/reputation"
	"github.com/nao1215/riskscan/internal/tracker"
)

// Warning messages recorded when an external dependency degrades.
const (
	WarnOCRUnavailable    = "Image text extraction was unavailable; only URLs and resources were analyzed."
	WarnOCRNotConfigured  = "Image text extraction is not configured; only URLs and resources were analyzed."
	WarnModelUnavailable  = "Model assessment was unavailable; the score is heuristic-only."
	WarnNoAnalyzableInput = "No text or URLs were available for analysis."
)

const maxSignalsForAssessor = 12

// OCRStep extracts text from image input.
type OCRStep struct {
	extractor provider.TextExtractor
	logger    *slog.Logger
}

// NewOCRStep creates an OCR step. A nil extractor records a warning for image input.
func NewOCRStep(extractor provider.TextExtractor, logger *slog.Logger) *OCRStep {
	return &OCRStep{extractor: extractor, logger: logger}
}

// Name returns the step name.
func (s *OCRStep) Name() string {
	return "ocr"
}

// Do executes the OCR step.
func (s *OCRStep) Do(ctx context.Context, report *model.Report) error {
	req := report.Request
	if req == nil || req.InputType != model.InputImage || len(req.Image) == 0 {
		return nil
	}
	if s.extractor == nil {
		report.AddWarning(WarnOCRNotConfigured)
		return nil
	}

	text, err := s.extractor.ExtractText(ctx, req.Image, req.ImageMIMEType)
	if err != nil {
		s.logger.Warn("ocr degraded", "error", err)
		report.AddWarning(WarnOCRUnavailable)
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.TrimSpace(req.Content) == "" {
		req.Content = text
	} else {
		req.Content = req.Content + "\n\n" + text
	}
	return nil
}

// NormalizeStep builds the AnalysisInput. It is the only step that can fail.
type NormalizeStep struct {
	normalizer *normalize.Normalizer
}

// NewNormalizeStep creates a normalization step.
func NewNormalizeStep(normalizer *normalize.Normalizer) *NormalizeStep {
	return &NormalizeStep{normalizer: normalizer}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do executes the normalization step.
func (s *NormalizeStep) Do(_ context.Context, report *model.Report) error {
	input, err := s.normalizer.Normalize(report.Request)
	if err != nil {
		return err
	}
	report.Input = input
	report.PrimaryURL = input.PrimaryURL
	report.URLs = append([]string{}, input.RawURLCandidates...)
	if input.RawText == "" && len(input.RawURLCandidates) == 0 && len(input.ResourceURLs) == 0 {
		// Image input whose text could not be extracted.
		report.AddWarning(WarnNoAnalyzableInput)
	}
	return nil
}

// SignalsStep runs the four independent analyzers concurrently.
// They only read the shared AnalysisInput.
type SignalsStep struct {
	classifier *phishing.Classifier
	domains    *reputation.Analyzer
	detector   *pii.Detector
	auditor    *tracker.Auditor
}

// NewSignalsStep creates a signals step.
func NewSignalsStep(
	classifier *phishing.Classifier,
	domains *reputation.Analyzer,
	detector *pii.Detector,
	auditor *tracker.Auditor,
) *SignalsStep {
	return &SignalsStep{
		classifier: classifier,
		domains:    domains,
		detector:   detector,
		auditor:    auditor,
	}
}

// Name returns the step name.
func (s *SignalsStep) Name() string {
	return "signals"
}

// Do executes the analyzers.
func (s *SignalsStep) Do(_ context.Context, report *model.Report) error {
	input := report.Input
	if input == nil {
		return errors.New("signals step requires normalized input")
	}

	var (
		flags      []model.PhishingFlag
		lookalikes []model.LookalikeMatch
		piiResult  model.PIIResult
		audit      model.TrackerAudit
	)

	var g errgroup.Group
	g.Go(func() error {
		flags = s.classifier.Classify(input.RawText)
		return nil
	})
	g.Go(func() error {
		lookalikes = s.domains.AnalyzeURLs(input.RawURLCandidates)
		return nil
	})
	g.Go(func() error {
		piiResult = s.detector.DetectAndMask(input.RawText)
		return nil
	})
	g.Go(func() error {
		audit = s.auditor.Audit(input.PrimaryURL, input.ResourceURLs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("analyzers: %w", err)
	}

	// Flags are matched on raw text, so a matched phrase can span personal data.
	for i := range flags {
		flags[i].Match = s.detector.Mask(flags[i].Match)
	}

	report.Flags = flags
	report.Lookalikes = lookalikes
	report.PII = piiResult
	report.MaskedText = piiResult.MaskedText
	report.Trackers = audit
	return nil
}

// ImageMetadataStep reports revealing EXIF tags of image input.
type ImageMetadataStep struct{}

// NewImageMetadataStep creates an image metadata step.
func NewImageMetadataStep() *ImageMetadataStep {
	return &ImageMetadataStep{}
}

// Name returns the step name.
func (s *ImageMetadataStep) Name() string {
	return "image_metadata"
}

// Do executes the image metadata step.
func (s *ImageMetadataStep) Do(_ context.Context, report *model.Report) error {
	if report.Request == nil || len(report.Request.Image) == 0 {
		return nil
	}
	report.ImageFindings = imagemeta.Inspect(report.Request.Image)
	return nil
}

// AssessStep asks the external model for an opinion on the masked text.
type AssessStep struct {
	assessor provider.Assessor
	logger   *slog.Logger
}

// NewAssessStep creates a model assessment step.
func NewAssessStep(assessor provider.Assessor, logger *slog.Logger) *AssessStep {
	return &AssessStep{assessor: assessor, logger: logger}
}

// Name returns the step name.
func (s *AssessStep) Name() string {
	return "assess"
}

// Do executes the assessment. Raw text never leaves the process.
func (s *AssessStep) Do(ctx context.Context, report *model.Report) error {
	if report.MaskedText == "" && len(report.URLs) == 0 {
		return nil
	}

	assessment, err := s.assessor.Assess(ctx, provider.AssessmentRequest{
		MaskedText: report.MaskedText,
		URLs:       report.URLs,
		Mode:       report.Mode,
		Signals:    assessorSignals(report),
	})
	if err != nil {
		s.logger.Warn("model assessment degraded", "error", err)
		report.AddWarning(WarnModelUnavailable)
		return nil
	}
	report.Assessment = assessment
	return nil
}

func assessorSignals(report *model.Report) []string {
	signals := make([]string, 0, maxSignalsForAssessor)
	for _, f := range report.Flags {
		signals = append(signals, f.Description)
	}
	for _, l := range report.Lookalikes {
		signals = append(signals, l.Hostname+": "+l.Reason)
	}
	for _, d := range report.PII.Detections {
		signals = append(signals, fmt.Sprintf("%d %s value(s) masked", d.Count, d.Kind))
	}
	if n := report.Trackers.TrackersFoundCount; n > 0 {
		signals = append(signals, fmt.Sprintf("%d known tracker(s) loaded", n))
	}
	if len(signals) > maxSignalsForAssessor {
		signals = signals[:maxSignalsForAssessor]
	}
	return signals
}

// FuseStep combines every signal into the final result.
type FuseStep struct {
	fuser *fusion.Fuser
}

// NewFuseStep creates a fusion step.
func NewFuseStep(fuser *fusion.Fuser) *FuseStep {
	return &FuseStep{fuser: fuser}
}

// Name returns the step name.
func (s *FuseStep) Name() string {
	return "fuse"
}

// Do executes the fusion step.
func (s *FuseStep) Do(_ context.Context, report *model.Report) error {
	report.Result = s.fuser.FuseSignals(fusion.Signals{
		Flags:         report.Flags,
		Lookalikes:    report.Lookalikes,
		PII:           report.PII,
		Trackers:      report.Trackers,
		URLCount:      len(report.URLs),
		Assessment:    report.Assessment,
		ImageFindings: report.ImageFindings,
		Warnings:      report.Warnings,
	})
	return nil
}
