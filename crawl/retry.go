package crawl

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/distill"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// RetryFunc is called before each retry with the attempt about to be made
// (2 for the first retry) and the error that caused it.
type RetryFunc func(url string, attempt int, err error)

// RetryDelays returns n backoff delays doubling from one second:
// 1s, 2s, 4s, and so on.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, max(n, 0))
	for i := range n {
		delays = append(delays, time.Second<<i)
	}
	return delays
}

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return RetryDelays(3)
}

// FetchWithRetryDelays calls fetch until it succeeds, making one attempt
// plus one retry per delay. ENOTFOUND, EINVALID and cancellation are
// returned immediately, as is ctx's error once ctx is done. A fetch that hit
// its own timeout is retried.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, onRetry RetryFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if err := ctx.Err(); err != nil {
			return "", err
		}
		if attempt >= maxAttempts-1 || !retryable(err) {
			break
		}

		if onRetry != nil {
			onRetry(url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}

// retryable reports whether a later attempt might succeed. A per-attempt
// timeout is retryable; the caller's own cancellation is checked separately.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch distill.ErrorCode(err) {
	case distill.ENOTFOUND, distill.EINVALID:
		return false
	}
	return true
}
