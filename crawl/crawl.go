// Package crawl coordinates fetching documents and applying templates to
// them, optionally persisting every run.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/distill"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents fetched at once when
// Crawler.Concurrency is unset.
const DefaultConcurrency = 4

// Crawler fetches documents and extracts records from them.
// Runs and RateLimiter are optional.
type Crawler struct {
	Fetcher     distill.Fetcher
	Extractor   distill.Extractor
	Runs        distill.RunService
	RateLimiter distill.DomainLimiter
	Concurrency int
	RetryDelays []time.Duration
	OnRetry     RetryFunc
}

// Distill applies objects to html and, when Runs is set, saves the run.
// sourceURL may be empty for documents that were not fetched.
func (c *Crawler) Distill(ctx context.Context, sourceURL, html string, objects []distill.ObjectTemplate) (*distill.Run, error) {
	result, err := c.Extractor.Extract(html, objects)
	if err != nil {
		return nil, err
	}

	run := &distill.Run{
		SourceURL:    sourceURL,
		DocumentHash: ComputeHash(html),
		Result:       result,
	}

	if c.Runs != nil {
		if err := c.Runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	return run, nil
}

// Crawl fetches every URL and applies objects to each document.
// Runs are returned in URL order. The first failure cancels the remaining
// work and is returned.
func (c *Crawler) Crawl(ctx context.Context, urls []string, objects []distill.ObjectTemplate) ([]*distill.Run, error) {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	runs := make([]*distill.Run, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, url := range urls {
		g.Go(func() error {
			run, err := c.processURL(gctx, url, objects)
			if err != nil {
				return fmt.Errorf("%s: %w", url, err)
			}
			runs[i] = run
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return runs, nil
}

// processURL fetches a single URL with retries and distills it.
func (c *Crawler) processURL(ctx context.Context, url string, objects []distill.ObjectTemplate) (*distill.Run, error) {
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	fetchFn := func(ctx context.Context, url string) (string, error) {
		if c.RateLimiter != nil {
			if err := c.RateLimiter.Wait(ctx, hostOf(url)); err != nil {
				return "", err
			}
		}
		return c.Fetcher.Fetch(ctx, url)
	}

	html, err := FetchWithRetryDelays(ctx, url, fetchFn, c.OnRetry, delays)
	if err != nil {
		return nil, err
	}

	return c.Distill(ctx, url, html, objects)
}

// ComputeHash returns the hex xxhash of content.
func ComputeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
