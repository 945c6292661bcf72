package phishing

import (
	"log/slog"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
)

// Classifier matches text against the category rule table.
// It holds only compiled patterns and is safe for concurrent use.
type Classifier struct {
	rules  []rule
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New creates a Classifier with the built-in rules.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:  defaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns one flag per matched category, in category declaration
// order. Empty text produces no flags.
func (c *Classifier) Classify(text string) []model.PhishingFlag {
	flags := make([]model.PhishingFlag, 0, len(c.rules))
	if strings.TrimSpace(text) == "" {
		return flags
	}

	for _, r := range c.rules {
		for _, p := range r.patterns {
			match := p.FindString(text)
			if match == "" {
				continue
			}
			flags = append(flags, model.PhishingFlag{
				Category:    r.category,
				Description: r.description,
				Severity:    r.severity,
				Match:       strings.TrimSpace(match),
			})
			break
		}
	}

	c.logger.Debug("phishing classification complete", "flags", len(flags))
	return flags
}

// Has reports whether flags contains category.
func Has(flags []model.PhishingFlag, category model.Category) bool {
	for _, f := range flags {
		if f.Category == category {
			return true
		}
	}
	return false
}
