// Package scheduler runs a worker over a list of items with bounded
// concurrency, wave pacing and pause support.
//
// Items are claimed strictly in index order. At most MaxConcurrent workers run
// at any instant. When every in-flight worker has finished and items remain,
// the scheduler waits InterBatchDelay before dispatching the next wave, so a
// target server sees bursts of at most MaxConcurrent requests separated by a
// quiet period. An optional per-dispatch rate limit can be layered on top for
// evenly paced traffic.
//
// Design decision: Slots come from a weighted semaphore and the dispatch
// bookkeeping (active count, cursor, drain flag) lives under a single mutex
// because:
//  1. Goroutines are preemptive, so the counters must be guarded explicitly
//  2. The drain decision has to be made atomically with the decrement
//  3. Acquiring a slot can be aborted by the run context
package scheduler
