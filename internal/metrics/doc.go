// Package metrics exposes Prometheus metrics for audit runs.
//
// A Collector is created per process against an explicit registry so tests
// and embedders never touch the global default registry. A nil *Collector is
// valid and discards every observation, which lets the audit orchestrator
// record unconditionally.
package metrics
