package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/riskscan/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs a single report.
	Write(report *model.Report) (int, error)

	// WriteBatch outputs a summary of many reports.
	WriteBatch(reports []*model.Report) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// It stops on the first error.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the batch summary to all configured Writers.
func (m *MultiWriter) WriteBatch(reports []*model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(reports)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Label turns an identifier such as "credential_request" into "Credential Request".
func Label(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '_' || r == '-' {
			r = ' '
		}
		out = append(out, r)
	}
	return cases.Title(language.English).String(string(out))
}

// subject returns a short description of what a report analyzed.
func subject(report *model.Report) string {
	if report.PrimaryURL != "" {
		return report.PrimaryURL
	}
	if report.MaskedText != "" {
		return truncateString(firstLine(report.MaskedText), 60)
	}
	return string(report.InputType)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
