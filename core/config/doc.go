// Package config aggregates the partial configurations of every component.
//
// Configuration is sourced from environment variables (with an optional
// .env overlay for development) through Viper. Defaults come from `default`
// struct tags, registered recursively so that AutomaticEnv can see every
// key. Nested keys map to underscore-separated variables, e.g.
// DATABASE_HOST -> database.host and SYNC_CONCURRENCY -> sync.concurrency.
package config
