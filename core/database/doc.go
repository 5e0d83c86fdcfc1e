// Package database provides the GORM database connection.
//
// Production deployments use MySQL; tests use an in-memory SQLite database
// through the same Connect entry point so repository code is exercised
// against a real dialector.
//
// The connection pool is the single shared resource of the service: every
// tenant's sync run and every webhook delivery draws from it. MaxOpenConns
// is therefore a hard ceiling, and callers that fan out writes (the batch
// upserter) must bound their own concurrency below it.
package database
