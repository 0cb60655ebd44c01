// Package rules implements the accessibility checks run against each page.
//
// Every rule is an Evaluator: a stateless check that reads a parsed document
// and returns findings. Rules never fetch, never mutate the document, and
// never see more than one page at a time, so a single Set can be shared by
// all workers of a run.
//
// The six built-in rules are:
//   - image: img elements with and without alt text
//   - link: vague link text and raw URLs written out in page text
//   - button: buttons without an accessible name or with a vague one
//   - heading: heading levels that skip when going deeper
//   - table: caption and header structure of each table
//   - document-link: links to PDF and Office documents
//
// Rules check the context between elements and return what they found so
// far together with the context error when cancelled. Recovering from
// panics is the caller's job.
package rules
