// Package archive persists raw ingestion payloads to S3-compatible object
// storage for audit and replay.
//
// Archiving is strictly best-effort and optional: when no endpoint is
// configured the Archiver is nil and every call is a no-op, and when a write
// fails the error is logged and swallowed. Ingestion must never depend on
// the archive being available.
package archive
