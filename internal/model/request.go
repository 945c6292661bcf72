package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InputType describes what the caller submitted.
type InputType string

// Supported input types.
const (
	InputText  InputType = "text"
	InputURL   InputType = "url"
	InputImage InputType = "image"
)

// ErrUnknownInputType is returned for an input type other than text, url or image.
var ErrUnknownInputType = errors.New("unknown input type")

// ParseInputType validates an input type name. An empty name means text.
func ParseInputType(name string) (InputType, error) {
	switch InputType(strings.ToLower(strings.TrimSpace(name))) {
	case "", InputText:
		return InputText, nil
	case InputURL:
		return InputURL, nil
	case InputImage:
		return InputImage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInputType, name)
	}
}

// Request is a single submission to the engine.
type Request struct {
	InputType InputType `json:"input_type"`
	// Content is free text, a URL, or an HTML document depending on InputType.
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
	PageURL string `json:"page_url,omitempty"`
	// Resources are URLs loaded by the page being analyzed.
	Resources []string `json:"resources,omitempty"`
	// Image holds raw image bytes for image input.
	Image []byte `json:"image,omitempty"`
	// ImageMIMEType is forwarded to the OCR provider.
	ImageMIMEType string `json:"image_mime_type,omitempty"`
	// HTML marks Content as an HTML document whose resources should be collected.
	HTML bool `json:"html,omitempty"`
	// Mode overrides the engine's banding mode ("protect" or "verify").
	Mode string `json:"mode,omitempty"`
}

// AnalysisInput is the normalized input shared read-only by all analyzers.
type AnalysisInput struct {
	RawText          string   `json:"raw_text"`
	RawURLCandidates []string `json:"raw_url_candidates"`
	ResourceURLs     []string `json:"resource_urls"`
	PrimaryURL       string   `json:"primary_url,omitempty"`
}

// Report is everything produced for a single request.
type Report struct {
	ID         uuid.UUID `json:"id"`
	AnalyzedAt time.Time `json:"analyzed_at"`
	InputType  InputType `json:"input_type"`
	Mode       string    `json:"mode"`

	PrimaryURL string   `json:"primary_url,omitempty"`
	URLs       []string `json:"urls"`
	// MaskedText is the normalized text with PII replaced. Raw text is never kept.
	MaskedText string `json:"masked_text"`

	Flags         []PhishingFlag   `json:"flags"`
	Lookalikes    []LookalikeMatch `json:"lookalikes"`
	PII           PIIResult        `json:"pii"`
	Trackers      TrackerAudit     `json:"trackers"`
	ImageFindings []ImageFinding   `json:"image_findings,omitempty"`
	Assessment    *ModelAssessment `json:"assessment,omitempty"`

	// Warnings record degraded external calls and fallbacks.
	Warnings []string `json:"warnings,omitempty"`
	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	Result FusedResult `json:"result"`

	// Input is the normalized input. It is not serialized because it holds raw text.
	Input *AnalysisInput `json:"-"`
	// Request is the original submission. It is not serialized.
	Request *Request `json:"-"`
}

// NewReport creates an empty report for req.
func NewReport(req *Request) *Report {
	r := &Report{
		ID:             uuid.New(),
		AnalyzedAt:     time.Now().UTC(),
		Request:        req,
		URLs:           []string{},
		Flags:          []PhishingFlag{},
		Lookalikes:     []LookalikeMatch{},
		PerformedSteps: []string{},
	}
	if req != nil {
		r.InputType = req.InputType
	}
	return r
}

// AddWarning appends a warning once.
func (r *Report) AddWarning(msg string) {
	for _, w := range r.Warnings {
		if w == msg {
			return
		}
	}
	r.Warnings = append(r.Warnings, msg)
}
