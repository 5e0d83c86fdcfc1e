package retry

import (
	"errors"
	"fmt"
)

// transientError tags an error as safe to retry. Producers (the repository
// layer) attach the tag where the failure is observed, which is the only
// place with enough information to classify it.
type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

// MarkTransient tags err as transient. Returns nil for a nil error.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err carries the transient tag anywhere in its
// chain.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// ExhaustedError is returned when an operation kept failing with transient
// errors until the retry budget ran out.
type ExhaustedError struct {
	// Label identifies the wrapped operation in logs.
	Label string
	// Attempts is the total number of attempts made, including the first.
	Attempts int
	// Err is the last error observed.
	Err error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: retries exhausted after %d attempts: %v", e.Label, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}
