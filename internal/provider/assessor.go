package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/riskscan/internal/model"
)

// DefaultModelTimeout bounds a single model call.
const DefaultModelTimeout = 20 * time.Second

// DefaultModelName is sent when no model is configured.
const DefaultModelName = "gpt-4o-mini"

// Assessor produces a model opinion for masked content.
type Assessor interface {
	Assess(ctx context.Context, req AssessmentRequest) (*model.ModelAssessment, error)
}

// AssessmentRequest is what the model sees. MaskedText must already have PII removed.
type AssessmentRequest struct {
	MaskedText string
	URLs       []string
	// Mode is "protect" or "verify".
	Mode string
	// Signals is a short list of heuristic observations passed as context.
	Signals []string
}

// ModelClient talks to an OpenAI-compatible chat-completions endpoint.
type ModelClient struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

// ModelOption configures a ModelClient.
type ModelOption func(*ModelClient)

// WithModelAPIKey sets the bearer token.
func WithModelAPIKey(key string) ModelOption {
	return func(c *ModelClient) {
		c.apiKey = key
	}
}

// WithModelName sets the model identifier.
func WithModelName(name string) ModelOption {
	return func(c *ModelClient) {
		if name != "" {
			c.model = name
		}
	}
}

// WithModelTimeout sets the per-call timeout. Non-positive values keep the default.
func WithModelTimeout(d time.Duration) ModelOption {
	return func(c *ModelClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithModelHTTPClient replaces the HTTP client.
func WithModelHTTPClient(client *http.Client) ModelOption {
	return func(c *ModelClient) {
		c.httpClient = client
	}
}

// WithModelLogger sets the logger.
func WithModelLogger(logger *slog.Logger) ModelOption {
	return func(c *ModelClient) {
		c.logger = logger
	}
}

// NewModelClient creates a client for a chat-completions URL such as
// https://api.openai.com/v1/chat/completions.
func NewModelClient(endpoint string, opts ...ModelOption) *ModelClient {
	c := &ModelClient{
		endpoint:    endpoint,
		model:       DefaultModelName,
		temperature: 0.2,
		maxTokens:   900,
		timeout:     DefaultModelTimeout,
		httpClient:  &http.Client{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Assess asks the model for an assessment of req.
func (c *ModelClient) Assess(ctx context.Context, req AssessmentRequest) (*model.ModelAssessment, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req.Mode)},
			{Role: "user", Content: userPrompt(req)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	start := time.Now()
	var resp chatResponse
	if err := postJSON(ctx, c.httpClient, c.endpoint, c.apiKey, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	assessment, err := ParseAssessment(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("model assessment complete", "duration", time.Since(start), "score", assessment.RiskScore)
	return assessment, nil
}

func systemPrompt(mode string) string {
	task := "Rate how likely the content is a scam, phishing attempt or privacy risk. 0 means safe, 100 means certainly malicious."
	if mode == "verify" {
		task = "Rate how credible the claim in the content is. 0 means certainly fake, 100 means certainly real."
	}
	return "You review user-submitted content for a safety tool. " + task + `
Personal data in the content has been masked with asterisks; do not try to recover it.
Reply with one JSON object only:
{"riskScore": 0-100, "verdict": "short label", "summary": "one or two sentences",
 "findings": ["..."], "flaggedSegments": ["exact phrases"], "recommendedActions": ["..."],
 "evidenceSources": [{"title": "...", "url": "https://...", "snippet": "..."}]}`
}

func userPrompt(req AssessmentRequest) string {
	var sb strings.Builder
	sb.WriteString("Content:\n```\n")
	sb.WriteString(req.MaskedText)
	sb.WriteString("\n```\n")
	if len(req.URLs) > 0 {
		sb.WriteString("\nURLs:\n")
		for _, u := range req.URLs {
			fmt.Fprintf(&sb, "- %s\n", u)
		}
	}
	if len(req.Signals) > 0 {
		sb.WriteString("\nHeuristic signals:\n")
		for _, s := range req.Signals {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}
	return sb.String()
}
