package service

import (
	"context"
	"errors"
	"time"

	"landauSwap/internal/lock"
	"landauSwap/internal/storage"
)

// withRetry runs fn until it succeeds, returns an error retryable rejects,
// or maxRetries is exhausted. The delay doubles after every attempt.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, retryable func(error) bool, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 10 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || (retryable != nil && !retryable(err)) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

// isContention reports errors caused by a concurrent writer of the same pool.
func isContention(err error) bool {
	return errors.Is(err, lock.ErrLockHeld) || errors.Is(err, storage.ErrVersionConflict)
}
