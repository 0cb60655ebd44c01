package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
)

// Supported output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ErrUnknownFormat is returned by New for unsupported formats.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer defines the interface for report output.
// Implementations write audit summaries in various formats.
type Writer interface {
	// Write renders the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.Summary) (int, error)
}

// Options holds settings shared by the writers New can create.
type Options struct {
	// Version is recorded in the report footer or metadata.
	Version string
	// Verbose adds WCAG references and recommendations to text output.
	Verbose bool
}

// New returns the writer for format.
func New(format string, output io.Writer, opts Options) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return NewTextWriter(output, WithVerbose(opts.Verbose)), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint(), WithVersion(opts.Version)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// findingsByCategory groups findings in category order.
func findingsByCategory(findings []model.Finding) map[model.Category][]model.Finding {
	grouped := make(map[model.Category][]model.Finding)
	for _, f := range findings {
		grouped[f.Category] = append(grouped[f.Category], f)
	}
	return grouped
}

// statusLine describes how the run ended.
func statusLine(state model.RunState) string {
	switch state.Status {
	case model.RunStatusCompleted:
		if len(state.Errors) > 0 {
			return fmt.Sprintf("Complete with %d error(s)", len(state.Errors))
		}
		return "Complete"
	case model.RunStatusCancelled:
		return "Cancelled (partial results)"
	default:
		return state.Status.String()
	}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
