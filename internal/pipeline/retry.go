package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// IsRetryable checks if an OCR error is worth retrying. Only per-call
// timeouts qualify; decode and engine failures are permanent.
func IsRetryable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 10*time.Second {
		base = 10 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
