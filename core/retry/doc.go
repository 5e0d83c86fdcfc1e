// Package retry wraps fallible store operations with bounded
// exponential-backoff retry.
//
// Only failures explicitly tagged transient at their point of origin are
// retried; everything else propagates on first occurrence. The tag is
// structural (MarkTransient / IsTransient) rather than matched against
// error message text, so the classification survives driver changes.
//
// The backoff schedule is exact: the delay before retry n is
// BaseDelay * 2^(n-1), with no jitter. Once MaxRetries retries are spent
// the last error is wrapped in ExhaustedError carrying the operation label
// and total attempt count.
package retry
