package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/a11yscan/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and CI pipelines.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. Every model type already carries json tags and TextMarshaler enums
// 2. Report sizes are bounded by the number of audited pages
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is recorded in the report wrapper.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion sets the version recorded in the report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps a summary with output metadata.
//
// Design decision: We wrap the summary rather than adding fields to
// model.Summary so output-specific data stays out of the core type.
type JSONReport struct {
	// Version is the a11yscan version that generated this report.
	Version string `json:"version,omitempty"`

	// Issues is the number of findings that describe problems.
	Issues int `json:"issues"`

	// Summary is the aggregated audit result.
	Summary *model.Summary `json:"summary"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(summary *model.Summary, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Issues:  summary.TotalIssues(),
		Summary: summary,
	}
}

// Write outputs the summary wrapped with metadata.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	return w.writeJSON(NewJSONReport(summary, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
