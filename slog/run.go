package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/distill"
)

// Ensure LoggingRunService implements distill.RunService.
var _ distill.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with logging of writes.
type LoggingRunService struct {
	next   distill.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next distill.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

// CreateRun delegates to the wrapped service and logs the saved run.
func (s *LoggingRunService) CreateRun(ctx context.Context, run *distill.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save run",
			"id", run.ID,
			"url", run.SourceURL,
			"objects", len(run.Result),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRun(ctx, run)
}

// FindRunByID delegates to the wrapped service.
func (s *LoggingRunService) FindRunByID(ctx context.Context, id string) (*distill.Run, error) {
	return s.next.FindRunByID(ctx, id)
}

// FindRuns delegates to the wrapped service.
func (s *LoggingRunService) FindRuns(ctx context.Context, filter distill.RunFilter) ([]*distill.Run, error) {
	return s.next.FindRuns(ctx, filter)
}

// DeleteRun delegates to the wrapped service and logs the deletion.
func (s *LoggingRunService) DeleteRun(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete run",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteRun(ctx, id)
}
