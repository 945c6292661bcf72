// Package report renders analysis reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a sub-score pie chart for sharing
//
// Writers implement the Writer interface, so they can be used
// interchangeably and composed with MultiWriter.
package report
