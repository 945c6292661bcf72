package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/riskscan/internal/fusion"
	"github.com/nao1215/riskscan/internal/model"
	"github.com/nao1215/riskscan/internal/normalize"
	"github.com/nao1215/riskscan/internal/phishing"
	"github.com/nao1215/riskscan/internal/pii"
	"github.com/nao1215/riskscan/internal/provider"
	"github.com/nao1215/riskscan/internal/reputation"
	"github.com/nao1215/riskscan/internal/tracker"
)

// Engine analyzes requests. The analyzers it holds are immutable, so a
// single Engine serves concurrent requests without locking.
type Engine struct {
	normalizer *normalize.Normalizer
	classifier *phishing.Classifier
	domains    *reputation.Analyzer
	detector   *pii.Detector
	auditor    *tracker.Auditor
	fusers     map[fusion.Mode]*fusion.Fuser

	extractor provider.TextExtractor
	assessor  provider.Assessor
	mode      fusion.Mode
	logger    *slog.Logger

	// settings collected by options before the analyzers are built
	weights       fusion.Weights
	brands        map[string][]string
	trackerFile   string
	trackers      []model.TrackerEntry
	maxTextLength int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger for the engine and its analyzers.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMode sets the default banding mode.
func WithMode(mode fusion.Mode) EngineOption {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithWeights replaces the default fusion weights.
func WithWeights(w fusion.Weights) EngineOption {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithBrands adds brand tokens and their official domains.
func WithBrands(brands map[string][]string) EngineOption {
	return func(e *Engine) {
		e.brands = brands
	}
}

// WithTrackerDirectoryFile loads the tracker directory from path.
func WithTrackerDirectoryFile(path string) EngineOption {
	return func(e *Engine) {
		e.trackerFile = path
	}
}

// WithTrackerEntries replaces the tracker directory.
func WithTrackerEntries(entries []model.TrackerEntry) EngineOption {
	return func(e *Engine) {
		e.trackers = entries
	}
}

// WithMaxTextLength sets the normalized text cap.
func WithMaxTextLength(n int) EngineOption {
	return func(e *Engine) {
		e.maxTextLength = n
	}
}

// WithTextExtractor enables OCR for image input.
func WithTextExtractor(extractor provider.TextExtractor) EngineOption {
	return func(e *Engine) {
		e.extractor = extractor
	}
}

// WithAssessor enables model fusion.
func WithAssessor(assessor provider.Assessor) EngineOption {
	return func(e *Engine) {
		e.assessor = assessor
	}
}

// NewEngine creates an Engine. It fails only on invalid fusion weights.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		mode:    fusion.ModeProtect,
		weights: fusion.DefaultWeights(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	if _, err := fusion.ParseMode(string(e.mode)); err != nil {
		return nil, err
	}

	e.normalizer = normalize.New(normalize.WithMaxTextLength(e.maxTextLength))
	e.classifier = phishing.New(phishing.WithLogger(e.logger))
	e.detector = pii.New(pii.WithLogger(e.logger))

	repOpts := []reputation.Option{reputation.WithLogger(e.logger)}
	if len(e.brands) > 0 {
		repOpts = append(repOpts, reputation.WithBrands(e.brands))
	}
	e.domains = reputation.New(repOpts...)

	trackerOpts := []tracker.Option{tracker.WithLogger(e.logger)}
	switch {
	case e.trackers != nil:
		trackerOpts = append(trackerOpts, tracker.WithEntries(e.trackers))
	case e.trackerFile != "":
		trackerOpts = append(trackerOpts, tracker.WithDirectoryFile(e.trackerFile))
	}
	e.auditor = tracker.New(trackerOpts...)

	e.fusers = make(map[fusion.Mode]*fusion.Fuser, 2)
	for _, mode := range []fusion.Mode{fusion.ModeProtect, fusion.ModeVerify} {
		e.fusers[mode] = fusion.New(
			fusion.WithWeights(e.weights),
			fusion.WithMode(mode),
			fusion.WithLogger(e.logger),
		)
	}
	return e, nil
}

// Mode returns the default banding mode.
func (e *Engine) Mode() fusion.Mode {
	return e.mode
}

// ModelEnabled reports whether an assessor is configured.
func (e *Engine) ModelEnabled() bool {
	return e.assessor != nil
}

// TrackerSource names where the tracker directory came from.
func (e *Engine) TrackerSource() string {
	return e.auditor.Source()
}

// Analyze runs the full analysis for req. The caller's request is not modified.
//
// Only normalize.ErrNoUsableInput, an invalid mode or input type, and context
// cancellation are returned as errors; degraded external calls are reported
// as warnings in the returned report.
func (e *Engine) Analyze(ctx context.Context, req *model.Request) (*model.Report, error) {
	if req == nil {
		return nil, normalize.ErrNilRequest
	}

	r := *req
	inputType, err := model.ParseInputType(string(r.InputType))
	if err != nil {
		return nil, err
	}
	r.InputType = inputType

	mode := e.mode
	if r.Mode != "" {
		if mode, err = fusion.ParseMode(r.Mode); err != nil {
			return nil, err
		}
	}

	report := model.NewReport(&r)
	report.Mode = string(mode)

	p := e.newPipeline(mode)
	if err := p.Execute(ctx, report); err != nil {
		return nil, fmt.Errorf("analysis %s: %w", report.ID, err)
	}

	e.logger.Info("analysis complete",
		"report", report.ID,
		"input_type", report.InputType,
		"mode", report.Mode,
		"score", report.Result.RiskScore,
		"verdict", report.Result.Verdict,
		"warnings", len(report.Warnings),
	)
	return report, nil
}

func (e *Engine) newPipeline(mode fusion.Mode) *Pipeline {
	p := New(WithLogger(e.logger))
	p.AddSteps(
		NewOCRStep(e.extractor, e.logger),
		NewNormalizeStep(e.normalizer),
		NewSignalsStep(e.classifier, e.domains, e.detector, e.auditor),
		NewImageMetadataStep(),
	)
	if e.assessor != nil {
		p.AddStep(NewAssessStep(e.assessor, e.logger))
	}
	p.AddStep(NewFuseStep(e.fusers[mode]))
	return p
}
