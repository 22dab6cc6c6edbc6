package distill

import "context"

// Fetcher retrieves HTML documents from URLs.
type Fetcher interface {
	// Fetch retrieves the document at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-host rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}
