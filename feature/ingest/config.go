package ingest

// Config holds configuration for the ingestion feature.
type Config struct {
	// BatchSize is the number of records per sequential upsert chunk.
	BatchSize int `mapstructure:"batch_size" default:"100"`
	// Concurrency bounds in-flight upserts within a chunk. Must stay well
	// below the database pool's max_open_conns.
	Concurrency int `mapstructure:"concurrency" default:"10"`
	// BestEffort switches batch upserts from fail-fast to
	// log-and-continue, reporting per-record failures in the sync report.
	BestEffort bool `mapstructure:"best_effort" default:"false"`
	// MaxRetries is the retry budget for transient store failures.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// RetryBaseMS is the first retry delay in milliseconds; subsequent
	// delays double.
	RetryBaseMS int `mapstructure:"retry_base_ms" default:"200"`
	// TimeoutSeconds is the wall-clock ceiling for one reconciliation run,
	// applied to both waited and detached executions.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"300"`
}
