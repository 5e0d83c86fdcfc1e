package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Executor retries transient failures with exponential backoff.
// The zero value is not usable; construct with NewExecutor.
type Executor struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger

	// OnRetry, when set, is invoked before each backoff sleep with the
	// failed attempt's error and the upcoming delay. Tests use it to
	// verify the schedule.
	OnRetry func(label string, err error, delay time.Duration)
}

// NewExecutor creates an executor that allows maxRetries retries after the
// initial attempt, sleeping baseDelay * 2^(n-1) before retry n.
func NewExecutor(maxRetries int, baseDelay time.Duration, logger *zap.Logger) *Executor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Execute runs op, retrying transient failures until it succeeds or the
// retry budget is spent. Non-transient failures propagate immediately with
// no delay. Exhaustion is reported as *ExhaustedError.
func (e *Executor) Execute(ctx context.Context, label string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = e.baseDelay << 16

	attempts := 0
	operation := func() (struct{}, error) {
		attempts++
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if !IsTransient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(e.maxRetries)+1),
		backoff.WithNotify(func(opErr error, delay time.Duration) {
			if e.OnRetry != nil {
				e.OnRetry(label, opErr, delay)
			}
			e.logger.Warn("transient failure, backing off",
				zap.String("operation", label),
				zap.Duration("delay", delay),
				zap.Error(opErr),
			)
		}),
	)
	if err == nil {
		return nil
	}

	// Permanent errors come back from the backoff library still wrapped;
	// unwrap so callers see the original failure.
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	if !IsTransient(err) {
		return err
	}

	return &ExhaustedError{Label: label, Attempts: attempts, Err: err}
}
