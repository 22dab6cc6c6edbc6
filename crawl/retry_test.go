package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/distill"
	"github.com/fwojciec/distill/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDelays is used for fast unit tests.
var noDelays = []time.Duration{0, 0, 0}

func TestRetryDelays(t *testing.T) {
	t.Parallel()

	t.Run("doubles from one second", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, crawl.RetryDelays(4))
	})

	t.Run("returns no delays for zero retries", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, crawl.RetryDelays(0))
		assert.Empty(t, crawl.RetryDelays(-1))
	})

	t.Run("default is three retries", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, crawl.RetryDelays(3), crawl.DefaultRetryDelays())
	})
}

func TestFetchWithRetryDelays(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			return "<html>content</html>", nil
		}

		html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries on failure and succeeds", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			if attempts < 4 {
				return "", errors.New("transient error")
			}
			return "<html>success</html>", nil
		}

		html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html>success</html>", html)
		assert.Equal(t, 4, attempts)
	})

	t.Run("returns error after max retries", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			return "", errors.New("persistent error")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "persistent error")
		assert.Equal(t, 4, attempts)
	})

	t.Run("makes a single attempt without delays", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			return "", errors.New("always fail")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, nil)

		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("does not retry not found", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			return "", distill.Errorf(distill.ENOTFOUND, "HTTP 404 for %s", url)
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		require.Error(t, err)
		assert.Equal(t, distill.ENOTFOUND, distill.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			cancel()
			return "", errors.New("transient error")
		}

		_, err := crawl.FetchWithRetryDelays(ctx, "https://example.com", fetch, nil, noDelays)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries attempts that hit their own timeout", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			if attempts == 1 {
				attemptCtx, cancel := context.WithTimeout(ctx, time.Nanosecond)
				defer cancel()
				<-attemptCtx.Done()
				return "", fmt.Errorf("fetch %s: %w", url, attemptCtx.Err())
			}
			return "<html>late</html>", nil
		}

		html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html>late</html>", html)
		assert.Equal(t, 2, attempts)
	})

	t.Run("stops once the caller's deadline passes", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			return "", ctx.Err()
		}

		_, err := crawl.FetchWithRetryDelays(ctx, "https://example.com", fetch, nil, noDelays)

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, attempts)
	})

	t.Run("reports each retry", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("transient error")
			}
			return "<html>success</html>", nil
		}

		var retries []int
		onRetry := func(url string, attempt int, err error) {
			assert.Equal(t, "https://example.com/page", url)
			require.Error(t, err)
			retries = append(retries, attempt)
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com/page", fetch, onRetry, noDelays)

		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, retries)
	})
}
