package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/distill"
)

// Ensure LoggingExtractor implements distill.Extractor.
var _ distill.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging. Documents are
// identified by their xxhash, as in LoggingFetcher.
type LoggingExtractor struct {
	next   distill.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next distill.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(html string, objects []distill.ObjectTemplate) (result distill.Result, err error) {
	defer func(begin time.Time) {
		e.logger.Info("extract",
			"doc", docID(html),
			"bytes", len(html),
			"objects", len(objects),
			"records", result.RecordCount(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html, objects)
}
