package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/riskscan/internal/fusion"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".riskscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .riskscan configuration file.
// Secrets are never read from it.
type File struct {
	Mode          string `yaml:"mode,omitempty"`
	MaxTextLength int    `yaml:"max_text_length,omitempty"`
	BatchSize     int    `yaml:"batch_size,omitempty"`

	// Fusion overrides individual fusion weights; omitted ones keep their defaults.
	Fusion *fusion.Weights `yaml:"fusion,omitempty"`

	Model    ProviderFile `yaml:"model,omitempty"`
	OCR      ProviderFile `yaml:"ocr,omitempty"`
	Trackers struct {
		Directory string `yaml:"directory,omitempty"`
	} `yaml:"trackers,omitempty"`

	// Brands maps a brand token to its official registrable domains.
	Brands map[string][]string `yaml:"brands,omitempty"`

	History struct {
		Dir string `yaml:"dir,omitempty"`
	} `yaml:"history,omitempty"`

	Server ServerFile `yaml:"server,omitempty"`
}

// ProviderFile configures an external HTTP provider.
type ProviderFile struct {
	Endpoint string        `yaml:"endpoint,omitempty"`
	Name     string        `yaml:"name,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// ServerFile configures `riskscan serve`.
type ServerFile struct {
	Listen          string   `yaml:"listen,omitempty"`
	AllowedOrigins  []string `yaml:"allowed_origins,omitempty"`
	MaxRequestBytes int64    `yaml:"max_request_bytes,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	// Decoding onto the defaults lets the file override single weights.
	weights := fusion.DefaultWeights()
	cf := File{Fusion: &weights}
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .riskscan in the current directory
// 3. Look for .riskscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}
	return ""
}
