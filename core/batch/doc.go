// Package batch applies a collection of records to the store in sequential
// chunks with bounded concurrency inside each chunk.
//
// The concurrency limit is a resource-protection bound, not a tuning knob:
// the database connection pool is shared across every tenant's sync run, so
// an unbounded fan-out from one run can starve all of them.
//
// Two failure policies exist and the choice is explicit in Options:
// fail-fast (the default) aborts on the first error, best-effort records
// per-item failures and keeps going. Either way the upsert functions passed
// in must be idempotent, so re-running a batch after a partial failure
// always converges.
package batch
