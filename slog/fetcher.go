// Package slog provides logging decorators for distill services using the
// standard library's structured logger.
package slog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/distill"
)

// Ensure LoggingFetcher implements distill.Fetcher.
var _ distill.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
//
// Successful fetches log at Info with the document id that LoggingExtractor
// also reports, so a fetch can be matched to its extraction. Failures log at
// Warn with the error code, so they can be filtered by kind.
type LoggingFetcher struct {
	next   distill.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next distill.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, rawURL string) (html string, err error) {
	defer func(begin time.Time) {
		if err != nil {
			f.logger.Warn("fetch failed",
				"host", hostOf(rawURL),
				"url", rawURL,
				"code", distill.ErrorCode(err),
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		f.logger.Info("fetch",
			"host", hostOf(rawURL),
			"url", rawURL,
			"doc", docID(html),
			"bytes", len(html),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return f.next.Fetch(ctx, rawURL)
}

// Close delegates to the wrapped fetcher. Only failures are logged.
func (f *LoggingFetcher) Close() error {
	err := f.next.Close()
	if err != nil {
		f.logger.Warn("close fetcher", "err", err)
	}
	return err
}

// hostOf returns the host of rawURL, or "" when it does not parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// docID identifies a document in logs without carrying its content.
func docID(html string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(html))
}
