package badger

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

// OpenBackendWithRetry opens a backend, retrying with exponential backoff.
// A read-only open of a store that is still being built by another process
// fails until the builder releases its lock, so callers serving queries
// right after an import use this instead of OpenBackend.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: base delay between retries (doubles on each retry)
// Returns the error from the last attempt if all attempts fail.
func OpenBackendWithRetry(ctx context.Context, filePath string, mode OpenMode, maxAttempts int, baseDelay time.Duration) (*Backend, error) {
	if maxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		backend, err := OpenBackend(filePath, mode)
		if err == nil {
			if attempt > 1 {
				slog.Debug("store opened after retry", "path", filePath, "attempt", attempt)
			}
			return backend, nil
		}
		lastErr = err

		slog.Debug("store open failed, will retry", "path", filePath, "attempt", attempt, "maxAttempts", maxAttempts, "error", err)

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		// baseDelay * 2^(attempt-1)
		delay := baseDelay << (attempt - 1)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}
