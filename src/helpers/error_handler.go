package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TickerDeskError struct {
	Message string
	Cause   error
}

func (e *TickerDeskError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TickerDeskError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As
type ConfigurationError struct{ TickerDeskError }
type NetworkError struct{ TickerDeskError }
type DataSourceError struct{ TickerDeskError }
type DatabaseError struct{ TickerDeskError }
type ValidationError struct{ TickerDeskError }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{TickerDeskError{Message: fmt.Sprintf(format, args...)}}
}

func NewNetworkError(msg string, cause error) *NetworkError {
	return &NetworkError{TickerDeskError{Message: msg, Cause: cause}}
}

func NewDataSourceError(msg string, cause error) *DataSourceError {
	return &DataSourceError{TickerDeskError{Message: msg, Cause: cause}}
}

func NewDatabaseError(msg string, cause error) *DatabaseError {
	return &DatabaseError{TickerDeskError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryWithBackoff runs fn up to maxAttempts times, doubling baseDelay after
// each failure. onRetry (optional) is called before every wait. Permanent
// errors and context cancellation stop the loop early.
func RetryWithBackoff[T any](
	ctx context.Context,
	maxAttempts int,
	baseDelay time.Duration,
	fn func(attempt int) (T, error),
	onRetry func(attempt int, err error, delay time.Duration),
) (T, error) {
	var zero T
	var lastErr error

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := fn(attempt)
		if err == nil {
			return res, nil
		}

		lastErr = err
		if IsPermanent(err) || attempt == maxAttempts {
			break
		}

		delay := baseDelay * (1 << (attempt - 1))
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
