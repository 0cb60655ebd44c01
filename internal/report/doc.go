// Package report renders audit summaries.
//
// This package contains writers for different output formats:
//   - TextWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown for issues, pull requests and wikis
//   - JSONWriter: Structured JSON output for tool integration
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so new output formats never touch the
// audit pipeline.
package report
