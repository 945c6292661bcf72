package provider

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultOCRTimeout bounds a single OCR call.
const DefaultOCRTimeout = 9 * time.Second

// TextExtractor extracts text from an image.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// OCRClient calls an HTTP OCR endpoint.
//
// Request:  {"image": "<base64>", "mime_type": "image/png"}
// Response: {"text": "..."}
type OCRClient struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// OCROption configures an OCRClient.
type OCROption func(*OCRClient)

// WithOCRAPIKey sets the bearer token.
func WithOCRAPIKey(key string) OCROption {
	return func(c *OCRClient) {
		c.apiKey = key
	}
}

// WithOCRTimeout sets the per-call timeout. Non-positive values keep the default.
func WithOCRTimeout(d time.Duration) OCROption {
	return func(c *OCRClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithOCRHTTPClient replaces the HTTP client.
func WithOCRHTTPClient(client *http.Client) OCROption {
	return func(c *OCRClient) {
		c.httpClient = client
	}
}

// WithOCRLogger sets the logger.
func WithOCRLogger(logger *slog.Logger) OCROption {
	return func(c *OCRClient) {
		c.logger = logger
	}
}

// NewOCRClient creates an OCR client for endpoint.
func NewOCRClient(endpoint string, opts ...OCROption) *OCRClient {
	c := &OCRClient{
		endpoint:   endpoint,
		timeout:    DefaultOCRTimeout,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ocrRequest struct {
	Image    string `json:"image"`
	MIMEType string `json:"mime_type,omitempty"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

// ExtractText sends image to the OCR endpoint and returns the text it found.
func (c *OCRClient) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var resp ocrResponse
	if err := postJSON(ctx, c.httpClient, c.endpoint, c.apiKey, ocrRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		MIMEType: mimeType,
	}, &resp); err != nil {
		return "", err
	}

	c.logger.Debug("ocr complete", "duration", time.Since(start), "chars", len(resp.Text))
	return strings.TrimSpace(resp.Text), nil
}
