package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/riskscan/internal/fusion"
	"github.com/nao1215/riskscan/internal/normalize"
	"github.com/nao1215/riskscan/internal/provider"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "riskscan"

	// DefaultMode bands scores as risk levels.
	DefaultMode = string(fusion.ModeProtect)

	// DefaultModelTimeout bounds one model assessment call.
	DefaultModelTimeout = provider.DefaultModelTimeout

	// DefaultOCRTimeout bounds one OCR call.
	DefaultOCRTimeout = provider.DefaultOCRTimeout

	// DefaultBatchSize is the number of inputs analyzed concurrently.
	DefaultBatchSize = 4

	// DefaultListenAddress is where `riskscan serve` listens.
	DefaultListenAddress = ":8080"

	// DefaultMaxRequestBytes limits server request bodies. It leaves room for
	// a base64-encoded 10MB image.
	DefaultMaxRequestBytes = 16 << 20

	// Environment variables holding provider secrets.
	EnvModelAPIKey = "RISKSCAN_MODEL_API_KEY"
	EnvOCRAPIKey   = "RISKSCAN_OCR_API_KEY"
)

// Config holds all configuration options for riskscan.
// It is populated from defaults, the config file, the environment and CLI
// flags, in that order, and passed to components explicitly.
type Config struct {
	// Mode selects verdict banding: "protect" or "verify".
	Mode string

	// Weights are the fusion weights, bonuses, floors and bands.
	Weights fusion.Weights

	// MaxTextLength caps normalized text in characters.
	MaxTextLength int

	// ModelEndpoint is an OpenAI-compatible chat-completions URL.
	// Model fusion is disabled when empty.
	ModelEndpoint string
	ModelName     string
	ModelAPIKey   string
	ModelTimeout  time.Duration

	// NoModel disables model fusion even when an endpoint is configured.
	NoModel bool

	// OCREndpoint is the image text extraction URL. OCR is disabled when empty.
	OCREndpoint string
	OCRAPIKey   string
	OCRTimeout  time.Duration

	// TrackerDirectory is a JSON tracker directory replacing the built-in one.
	TrackerDirectory string

	// Brands adds brand tokens and their official domains.
	Brands map[string][]string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit config file. When empty, .riskscan in
	// the current directory and then the home directory is used.
	ConfigFilePath string

	// JSONReport and MarkdownReport are mutually exclusive output formats.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile receives the report instead of stdout.
	ReportFile string

	// SaveToDB stores masked reports in the history database.
	SaveToDB bool

	// DBDir is the history database directory.
	DBDir string

	// BatchSize is the number of concurrent analyses in batch mode.
	BatchSize int

	// ListenAddress, AllowedOrigins and MaxRequestBytes configure the server.
	ListenAddress   string
	AllowedOrigins  []string
	MaxRequestBytes int64
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Mode:            DefaultMode,
		Weights:         fusion.DefaultWeights(),
		MaxTextLength:   normalize.DefaultMaxTextLength,
		ModelName:       provider.DefaultModelName,
		ModelTimeout:    DefaultModelTimeout,
		OCRTimeout:      DefaultOCRTimeout,
		DBDir:           XDGDataDir(),
		BatchSize:       DefaultBatchSize,
		ListenAddress:   DefaultListenAddress,
		MaxRequestBytes: DefaultMaxRequestBytes,
	}
}

// XDGDataDir returns the XDG data directory for riskscan.
// On Linux: ~/.local/share/riskscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for riskscan.
// On Linux: ~/.config/riskscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ModelEnabled reports whether model fusion should be wired.
func (c *Config) ModelEnabled() bool {
	return c.ModelEndpoint != "" && !c.NoModel
}

// OCREnabled reports whether OCR should be wired.
func (c *Config) OCREnabled() bool {
	return c.OCREndpoint != ""
}

// Validate returns the first problem found in the configuration.
func (c *Config) Validate() error {
	if _, err := fusion.ParseMode(c.Mode); err != nil {
		return ErrInvalidMode
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBlendWeights, err)
	}
	if c.MaxTextLength <= 0 {
		return ErrInvalidMaxTextLength
	}
	if c.ModelTimeout <= 0 || c.OCRTimeout <= 0 {
		return ErrInvalidTimeout
	}
	for _, endpoint := range []string{c.ModelEndpoint, c.OCREndpoint} {
		if endpoint != "" && !validEndpoint(endpoint) {
			return fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
		}
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxRequestBytes <= 0 {
		return ErrInvalidMaxRequestBytes
	}
	return nil
}

func validEndpoint(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ApplyEnv reads provider secrets. lookup is typically os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvModelAPIKey); ok && v != "" {
		c.ModelAPIKey = v
	}
	if v, ok := lookup(EnvOCRAPIKey); ok && v != "" {
		c.OCRAPIKey = v
	}
}

// ApplyFile copies the settings present in f onto c.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Mode != "" {
		c.Mode = f.Mode
	}
	if f.Fusion != nil {
		c.Weights = *f.Fusion
	}
	if f.MaxTextLength > 0 {
		c.MaxTextLength = f.MaxTextLength
	}
	if f.Model.Endpoint != "" {
		c.ModelEndpoint = f.Model.Endpoint
	}
	if f.Model.Name != "" {
		c.ModelName = f.Model.Name
	}
	if f.Model.Timeout > 0 {
		c.ModelTimeout = f.Model.Timeout
	}
	if f.OCR.Endpoint != "" {
		c.OCREndpoint = f.OCR.Endpoint
	}
	if f.OCR.Timeout > 0 {
		c.OCRTimeout = f.OCR.Timeout
	}
	if f.Trackers.Directory != "" {
		c.TrackerDirectory = f.Trackers.Directory
	}
	if len(f.Brands) > 0 {
		c.Brands = f.Brands
	}
	if f.History.Dir != "" {
		c.DBDir = f.History.Dir
	}
	if f.BatchSize > 0 {
		c.BatchSize = f.BatchSize
	}
	if f.Server.Listen != "" {
		c.ListenAddress = f.Server.Listen
	}
	if len(f.Server.AllowedOrigins) > 0 {
		c.AllowedOrigins = f.Server.AllowedOrigins
	}
	if f.Server.MaxRequestBytes > 0 {
		c.MaxRequestBytes = f.Server.MaxRequestBytes
	}
}
