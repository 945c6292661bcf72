package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/riskscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeScore(md, report)
	w.writeBullets(md, "Findings", report.Result.Findings)
	w.writeSignals(md, report)
	w.writeDomains(md, report)
	w.writePII(md, report)
	w.writeTrackers(md, report)
	w.writeImage(md, report)
	w.writeBullets(md, "Flagged Segments", quoteAll(report.Result.FlaggedSegments))
	w.writeBullets(md, "Recommended Actions", report.Result.RecommendedActions)
	w.writeEvidence(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs a summary table of reports.
func (w *MarkdownWriter) WriteBatch(reports []*model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("riskscan Batch Report")
	md.PlainText("")

	rows := make([][]string, 0, len(reports))
	high := 0
	for i, r := range reports {
		if r.Result.Verdict == "High Risk" || r.Result.Verdict == "Likely Fake" {
			high++
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Result.RiskScore),
			r.Result.Verdict,
			escapeCell(subject(r)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Score", "Verdict", "Subject"},
		Rows:   rows,
	})
	md.PlainText("")
	if high > 0 {
		md.Warningf("%d of %d inputs look dangerous.", high, len(reports))
	} else {
		md.Tip("No high risk inputs in this batch.")
	}
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("riskscan Report")
	md.PlainText("")

	rows := [][]string{
		{"Report ID", "`" + report.ID.String() + "`"},
		{"Analyzed", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")},
		{"Input", string(report.InputType)},
		{"Mode", report.Mode},
	}
	if report.PrimaryURL != "" {
		rows = append(rows, []string{"Primary URL", "`" + report.PrimaryURL + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeScore(md *markdown.Markdown, report *model.Report) {
	r := report.Result
	md.H2("Risk Score")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Score", "Verdict", "Phishing", "PII", "Privacy"},
		Rows: [][]string{{
			"**" + strconv.Itoa(r.RiskScore) + "**",
			r.Verdict,
			strconv.Itoa(r.SubScores.Phishing),
			strconv.Itoa(r.SubScores.PII),
			strconv.Itoa(r.SubScores.Privacy),
		}},
	})
	md.PlainText("")

	if r.SubScores.Phishing+r.SubScores.PII+r.SubScores.Privacy > 0 {
		w.writePieChart(md, r.SubScores)
	}
	w.writeAlert(md, report)

	if r.Summary != "" {
		md.PlainText(r.Summary)
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of the sub-scores.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, sub model.SubScores) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Sub-score Distribution"),
		piechart.WithShowData(true),
	)
	if sub.Phishing > 0 {
		chart.LabelAndIntValue("Phishing", uint64(sub.Phishing))
	}
	if sub.PII > 0 {
		chart.LabelAndIntValue("PII", uint64(sub.PII))
	}
	if sub.Privacy > 0 {
		chart.LabelAndIntValue("Privacy", uint64(sub.Privacy))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	r := report.Result
	switch r.Verdict {
	case "High Risk", "Likely Fake":
		if r.CriticalPattern {
			md.Cautionf("%s (%d/100). This matches a known scam pattern.", r.Verdict, r.RiskScore)
		} else {
			md.Cautionf("%s (%d/100).", r.Verdict, r.RiskScore)
		}
	case "Medium Risk", "Unverified":
		md.Warningf("%s (%d/100). Verify before acting.", r.Verdict, r.RiskScore)
	default:
		md.Tip(fmt.Sprintf("%s (%d/100).", r.Verdict, r.RiskScore))
	}
	md.PlainText("")
	if len(report.Warnings) > 0 {
		md.Note(strings.Join(report.Warnings, " "))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeBullets(md *markdown.Markdown, title string, items []string) {
	if len(items) == 0 {
		return
	}
	md.H2(title)
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeSignals(md *markdown.Markdown, report *model.Report) {
	if len(report.Flags) == 0 {
		return
	}
	md.H2("Phishing Signals")
	md.PlainText("")

	rows := make([][]string, len(report.Flags))
	for i, f := range report.Flags {
		rows[i] = []string{
			Label(f.Category.String()),
			Label(f.Severity.String()),
			escapeCell(truncateString(f.Match, 50)),
			escapeCell(f.Description),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Severity", "Match", "Description"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, report *model.Report) {
	if len(report.Lookalikes) == 0 {
		return
	}
	md.H2("Domain Checks")
	md.PlainText("")

	rows := make([][]string, len(report.Lookalikes))
	for i, l := range report.Lookalikes {
		rows[i] = []string{
			"`" + l.Hostname + "`",
			Label(l.Severity.String()),
			escapeCell(l.Reason),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Host", "Severity", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePII(md *markdown.Markdown, report *model.Report) {
	if report.PII.TotalCount == 0 {
		return
	}
	md.H2("Personal Data")
	md.PlainText("")

	rows := make([][]string, len(report.PII.Detections))
	for i, d := range report.PII.Detections {
		examples := "-"
		if len(d.MaskedExamples) > 0 {
			examples = escapeCell(strings.Join(d.MaskedExamples, ", "))
		}
		rows[i] = []string{Label(string(d.Kind)), strconv.Itoa(d.Count), examples}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count", "Masked Examples"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTrackers(md *markdown.Markdown, report *model.Report) {
	audit := report.Trackers
	if audit.ThirdPartyCount == 0 {
		return
	}
	md.H2("Third-party Resources")
	md.PlainText("")
	md.PlainTextf("%d third-party resource(s), %d known tracker(s).", audit.ThirdPartyCount, audit.TrackersFoundCount)
	md.PlainText("")

	if len(audit.TrackerMatches) == 0 {
		return
	}
	rows := make([][]string, len(audit.TrackerMatches))
	for i, m := range audit.TrackerMatches {
		owner := m.Owner
		if owner == "" {
			owner = "-"
		}
		rows[i] = []string{"`" + m.TrackerDomain + "`", owner, Label(m.Category)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Tracker", "Owner", "Category"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeImage(md *markdown.Markdown, report *model.Report) {
	if len(report.ImageFindings) == 0 {
		return
	}
	md.H2("Image Metadata")
	md.PlainText("")

	rows := make([][]string, len(report.ImageFindings))
	for i, f := range report.ImageFindings {
		rows[i] = []string{Label(f.Tag), escapeCell(f.Value), escapeCell(f.Description)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Tag", "Value", "Description"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeEvidence(md *markdown.Markdown, report *model.Report) {
	if len(report.Result.EvidenceSources) == 0 {
		return
	}
	md.H2("Evidence")
	md.PlainText("")
	for _, e := range report.Result.EvidenceSources {
		body := e.Snippet
		if e.URL != "" {
			body = strings.TrimSpace(e.URL + "\n\n" + body)
		}
		md.Details(e.Title, body)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [riskscan](https://github.com/nao1215/riskscan)*")
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "\"" + s + "\""
	}
	return out
}

// escapeCell keeps table cells on one row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
