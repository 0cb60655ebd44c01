// Package database provides run-scoped SQLite storage for audit results.
//
// A RunStore lives for a single CLI invocation: the audit observer writes
// findings and errors into it as they arrive, and the report writer reads
// the per-category and per-URL aggregates back out. The database is
// in-memory, so no audit data outlives the process.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The CGO-free driver keeps cross-compilation simple
// 2. GROUP BY aggregation is simpler than hand-maintained counters
// 3. The same schema could later be pointed at a file if history is needed
package database
