package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

// TextWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Screen reader users get clean output
type TextWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose adds WCAG criteria and recommendations per category.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *TextWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeSummary(&sb, summary)
	w.writePages(&sb, summary)
	w.writeFindings(&sb, summary)
	w.writeErrors(&sb, summary)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *TextWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	state := summary.State

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    ACCESSIBILITY AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:         %s\n", state.RunID)
	if !state.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:        %s\n", state.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if d := state.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:       %s\n", d.Round(time.Millisecond))
	}
	fmt.Fprintf(sb, "Pages Audited:  %d of %d\n", state.CompletedCount, state.TotalCount)
	fmt.Fprintf(sb, "Status:         %s\n", statusLine(state))
	sb.WriteString("\n")
}

func (w *TextWriter) writeSummary(sb *strings.Builder, summary *model.Summary) {
	section(sb, "CATEGORY SUMMARY")

	if len(summary.ByCategory) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	total := 0
	for _, cc := range summary.ByCategory {
		marker := " "
		if cc.Category.Info().Issue {
			marker = "!"
		}
		fmt.Fprintf(sb, "  [%s] %-28s %5d\n", marker, cc.Category.Title(), cc.Count)
		total += cc.Count
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  ISSUES:   %d\n", summary.TotalIssues())
	fmt.Fprintf(sb, "  TOTAL:    %d findings\n", total)
	sb.WriteString("\n")
}

func (w *TextWriter) writePages(sb *strings.Builder, summary *model.Summary) {
	if len(summary.ByURL) == 0 && !w.showEmpty {
		return
	}

	section(sb, "PAGES")

	if len(summary.ByURL) == 0 {
		sb.WriteString("  No pages with findings\n\n")
		return
	}
	for _, uc := range summary.ByURL {
		fmt.Fprintf(sb, "  %4d issues  %4d findings  %s\n", uc.Issues, uc.Findings, uc.URL)
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeFindings(sb *strings.Builder, summary *model.Summary) {
	if len(summary.Findings) == 0 && !w.showEmpty {
		return
	}

	section(sb, "FINDINGS")

	grouped := findingsByCategory(summary.Findings)
	for _, c := range model.Categories {
		findings := grouped[c]
		if len(findings) == 0 && !w.showEmpty {
			continue
		}
		w.writeCategory(sb, c, findings)
	}
}

func (w *TextWriter) writeCategory(sb *strings.Builder, c model.Category, findings []model.Finding) {
	info := c.Info()
	fmt.Fprintf(sb, "[%s] (%d)\n", info.Title, len(findings))
	if w.verbose {
		fmt.Fprintf(sb, "  WCAG %s\n", info.Criterion)
		fmt.Fprintf(sb, "  %s\n", info.Recommendation)
	}

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, f := range findings {
		fmt.Fprintf(sb, "  * %s\n", f.SourceURL)
		if f.Details != "" {
			fmt.Fprintf(sb, "    %s\n", f.Details)
		}
		if f.ImageFilename != "" {
			fmt.Fprintf(sb, "    Image: %s\n", f.ImageFilename)
		}
		if f.TargetURL != "" {
			fmt.Fprintf(sb, "    Target: %s\n", f.TargetURL)
		}
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeErrors(sb *strings.Builder, summary *model.Summary) {
	errs := summary.State.Errors
	if len(errs) == 0 {
		return
	}

	section(sb, "ERRORS")
	for _, e := range errs {
		fmt.Fprintf(sb, "  [%s] %s\n", e.Kind, e.URL)
		fmt.Fprintf(sb, "    %s\n", e.Message)
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by a11yscan\n")
	sb.WriteString("Automated checks cover part of WCAG; review findings manually.\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
