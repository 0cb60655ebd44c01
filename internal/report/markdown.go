package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for pull request comments and shared documents.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSummary(md, summary)
	w.writePages(md, summary)
	w.writeFindings(md, summary)
	w.writeErrors(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	state := summary.State

	md.H1("Accessibility Audit Report")
	md.PlainText("")

	rows := [][]string{
		{"Run ID", "`" + state.RunID + "`"},
	}
	if !state.StartedAt.IsZero() {
		rows = append(rows, []string{"Started", state.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	if d := state.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}
	rows = append(rows,
		[]string{"Pages Audited", strconv.Itoa(state.CompletedCount) + " / " + strconv.Itoa(state.TotalCount)},
		[]string{"Status", statusLine(state)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the category summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Category Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.ByCategory)+1)
	total := 0
	for _, cc := range summary.ByCategory {
		kind := "Info"
		if cc.Category.Info().Issue {
			kind = "Issue"
		}
		rows = append(rows, []string{cc.Category.Title(), kind, strconv.Itoa(cc.Count)})
		total += cc.Count
	}
	rows = append(rows, []string{"**Total**", "", "**" + strconv.Itoa(total) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if total > 0 {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for the category distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Findings by Category"),
		piechart.WithShowData(true),
	)

	for _, cc := range summary.ByCategory {
		chart.LabelAndIntValue(cc.Category.Title(), uint64(cc.Count)) //nolint:gosec // counts are never negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert based on the issue count and run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	issues := summary.TotalIssues()
	switch {
	case summary.State.Status == model.RunStatusCancelled:
		md.Cautionf(
			"The audit was cancelled after %d of %d page(s). Results are partial.",
			summary.State.CompletedCount, summary.State.TotalCount,
		)
	case issues > 0:
		md.Warningf(
			"%d accessibility issue(s) detected across %d page(s).",
			issues, len(summary.ByURL),
		)
	case len(summary.Findings) > 0:
		md.Note("Only informational findings detected. Review them manually.")
	default:
		md.Tip("No accessibility issues detected by automated checks.")
	}
	md.PlainText("")
}

// writePages writes the per-page totals.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, summary *model.Summary) {
	if len(summary.ByURL) == 0 {
		return
	}

	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, len(summary.ByURL))
	for i, uc := range summary.ByURL {
		rows[i] = []string{escapeCell(uc.URL), strconv.Itoa(uc.Issues), strconv.Itoa(uc.Findings)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Issues", "Findings"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes all findings grouped by category.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Findings")
	md.PlainText("")

	if len(summary.Findings) == 0 {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	grouped := findingsByCategory(summary.Findings)
	for _, c := range model.Categories {
		findings := grouped[c]
		if len(findings) == 0 {
			continue
		}

		info := c.Info()
		md.H3(info.Title)
		md.PlainText("")
		md.PlainTextf("WCAG %s. %s", info.Criterion, info.Recommendation)
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		target := f.TargetURL
		if f.ImageFilename != "" {
			target = f.ImageFilename
		}
		rows[i] = []string{
			escapeCell(f.SourceURL),
			escapeCell(truncateString(orDash(f.Details), 80)),
			escapeCell(truncateString(orDash(target), 60)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Details", "Target"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors writes the errors recorded during the run.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, summary *model.Summary) {
	errs := summary.State.Errors
	if len(errs) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")

	rows := make([][]string, len(errs))
	for i, e := range errs {
		rows[i] = []string{escapeCell(e.URL), e.Kind.String(), escapeCell(truncateString(e.Message, 80))}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Kind", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [a11yscan](https://github.com/nao1215/a11yscan)*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// escapeCell keeps table cells on one line and out of column separators.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
