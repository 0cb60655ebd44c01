// Package model defines the core data structures used throughout a11yscan.
//
// This package contains the following main types:
//   - Finding: A single accessibility observation produced by a rule
//   - Category: The closed set of finding kinds
//   - Page: A fetched page with its raw markup and digest
//   - RunConfig / RunState: The inputs and the observable state of one audit run
//   - Summary: A per-run aggregation used by the report writers
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (rules, audit, report, database) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
