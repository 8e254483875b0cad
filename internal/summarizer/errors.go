package summarizer

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited marks quota or temporary-unavailability failures of the
	// generation service. Only errors matching it are retried.
	ErrRateLimited = errors.New("generation service rate limited")
	// ErrEmptyResponse is returned when the service answered without text.
	ErrEmptyResponse = errors.New("generation service returned no text")
)

// RateLimited marks err as retryable.
//
// Example:
//
//	return "", summarizer.RateLimited(fmt.Errorf("quota: %w", err))
func RateLimited(err error) error {
	if err == nil {
		return nil
	}
	return rateLimitedError{err: err}
}

// IsRetryable reports whether err is wrapped with RateLimited or matches
// ErrRateLimited.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

type rateLimitedError struct{ err error }

func (e rateLimitedError) Error() string { return fmt.Sprintf("rate-limited: %v", e.err) }
func (e rateLimitedError) Unwrap() error { return e.err }
func (e rateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
