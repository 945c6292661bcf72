package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to show are printed.
	showEmpty bool

	// verbose adds the masked text and analyzer details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeScore(&sb, report)
	w.writeList(&sb, "FINDINGS", report.Result.Findings)
	w.writeSignals(&sb, report)
	w.writeDomains(&sb, report)
	w.writePII(&sb, report)
	w.writeTrackers(&sb, report)
	w.writeImage(&sb, report)
	w.writeList(&sb, "FLAGGED SEGMENTS", report.Result.FlaggedSegments)
	w.writeList(&sb, "RECOMMENDED ACTIONS", report.Result.RecommendedActions)
	w.writeEvidence(&sb, report)
	if w.verbose {
		w.writeMaskedText(&sb, report)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs one line per report.
func (w *SimpleWriter) WriteBatch(reports []*model.Report) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("                      RISKSCAN BATCH SUMMARY\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	if len(reports) == 0 {
		sb.WriteString("  No reports\n\n")
	}
	for i, r := range reports {
		fmt.Fprintf(&sb, "  %3d. [%3d] %-12s %s\n", i+1, r.Result.RiskScore, r.Result.Verdict, subject(r))
	}
	sb.WriteString("\n")
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                         RISKSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Report ID:   %s\n", report.ID)
	fmt.Fprintf(sb, "Analyzed:    %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Input:       %s\n", report.InputType)
	fmt.Fprintf(sb, "Mode:        %s\n", report.Mode)
	if report.PrimaryURL != "" {
		fmt.Fprintf(sb, "Primary URL: %s\n", report.PrimaryURL)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeScore(sb *strings.Builder, report *model.Report) {
	r := report.Result
	w.section(sb, "RISK SCORE")

	fmt.Fprintf(sb, "  SCORE:     %d / 100\n", r.RiskScore)
	fmt.Fprintf(sb, "  VERDICT:   %s\n", r.Verdict)
	fmt.Fprintf(sb, "  PHISHING:  %d\n", r.SubScores.Phishing)
	fmt.Fprintf(sb, "  PII:       %d\n", r.SubScores.PII)
	fmt.Fprintf(sb, "  PRIVACY:   %d\n", r.SubScores.Privacy)
	if r.ModelBlended {
		fmt.Fprintf(sb, "  HEURISTIC: %d (blended with model assessment)\n", r.HeuristicScore)
	}
	if r.CriticalPattern {
		sb.WriteString("  CRITICAL PATTERN: known scam combination detected\n")
	}
	sb.WriteString("\n")
	if r.Summary != "" {
		fmt.Fprintf(sb, "  %s\n\n", r.Summary)
	}
}

func (w *SimpleWriter) writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, title)
	if len(items) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "  * %s\n", item)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSignals(sb *strings.Builder, report *model.Report) {
	if len(report.Flags) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "PHISHING SIGNALS")
	if len(report.Flags) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, f := range report.Flags {
		fmt.Fprintf(sb, "  [%s] %s\n", severityIndicator(f.Severity), Label(f.Category.String()))
		if f.Match != "" {
			fmt.Fprintf(sb, "    Match: %q\n", f.Match)
		}
		if w.verbose {
			fmt.Fprintf(sb, "    Description: %s\n", f.Description)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDomains(sb *strings.Builder, report *model.Report) {
	if len(report.Lookalikes) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "DOMAIN CHECKS")
	if len(report.Lookalikes) == 0 {
		sb.WriteString("  No suspicious domains\n\n")
		return
	}
	for _, l := range report.Lookalikes {
		fmt.Fprintf(sb, "  [%s] %s\n", severityIndicator(l.Severity), l.Hostname)
		fmt.Fprintf(sb, "    %s\n", l.Reason)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePII(sb *strings.Builder, report *model.Report) {
	if report.PII.TotalCount == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "PERSONAL DATA")
	if report.PII.TotalCount == 0 {
		sb.WriteString("  None detected\n\n")
		return
	}
	for _, d := range report.PII.Detections {
		fmt.Fprintf(sb, "  %-12s %d", Label(string(d.Kind))+":", d.Count)
		if len(d.MaskedExamples) > 0 {
			fmt.Fprintf(sb, "  (%s)", strings.Join(d.MaskedExamples, ", "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTrackers(sb *strings.Builder, report *model.Report) {
	audit := report.Trackers
	if audit.ThirdPartyCount == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "THIRD-PARTY RESOURCES")
	fmt.Fprintf(sb, "  Third-party resources: %d\n", audit.ThirdPartyCount)
	fmt.Fprintf(sb, "  Known trackers:        %d\n", audit.TrackersFoundCount)
	for _, m := range audit.TrackerMatches {
		owner := m.Owner
		if owner == "" {
			owner = "unknown owner"
		}
		fmt.Fprintf(sb, "  [+] %s (%s, %s)\n", m.TrackerDomain, owner, m.Category)
	}
	if w.verbose {
		for _, r := range audit.ThirdPartyResources {
			fmt.Fprintf(sb, "      %s\n", r)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeImage(sb *strings.Builder, report *model.Report) {
	if len(report.ImageFindings) == 0 {
		return
	}
	w.section(sb, "IMAGE METADATA")
	for _, f := range report.ImageFindings {
		fmt.Fprintf(sb, "  * %s\n", f.Description)
		if f.Value != "" {
			fmt.Fprintf(sb, "    Value: %s\n", f.Value)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeEvidence(sb *strings.Builder, report *model.Report) {
	evidence := report.Result.EvidenceSources
	if len(evidence) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "EVIDENCE")
	if len(evidence) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, e := range evidence {
		fmt.Fprintf(sb, "  * %s\n", e.Title)
		if e.URL != "" {
			fmt.Fprintf(sb, "    %s\n", e.URL)
		}
		if w.verbose && e.Snippet != "" {
			fmt.Fprintf(sb, "    %s\n", e.Snippet)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeMaskedText(sb *strings.Builder, report *model.Report) {
	if report.MaskedText == "" {
		return
	}
	w.section(sb, "ANALYZED TEXT (masked)")
	for _, line := range strings.Split(report.MaskedText, "\n") {
		fmt.Fprintf(sb, "  %s\n", line)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by riskscan\n")
	sb.WriteString("https://github.com/nao1215/riskscan\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

func severityIndicator(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "!!!"
	case model.SeverityMedium:
		return "!!"
	case model.SeverityLow:
		return "!"
	default:
		return "?"
	}
}
