// Package audit drives an accessibility audit over a list of URLs.
//
// The Orchestrator owns the run lifecycle:
//
//	Idle -> Running <-> Paused
//	Running/Paused -> Cancelled
//	Running -> Completed
//
// For every URL it fetches the page, runs each rule evaluator over the parsed
// document and reports findings, progress and errors to an Observer. The
// Scheduler from package scheduler bounds how many URLs are audited at once.
//
// Observer callbacks are serialized, so observers need no locking of their
// own. Once Cancel returns, the observer receives no further callbacks.
package audit
