package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/shiv-furniture/shiverp/internal/jobs"
)

// CacheInvalidator bumps the report cache version.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// ReportsRefreshJob invalidates cached report aggregates on schedule.
type ReportsRefreshJob struct {
	Reports CacheInvalidator
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsRefreshJob wires dependencies for the refresh handler.
func NewReportsRefreshJob(reports CacheInvalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsRefreshJob {
	return &ReportsRefreshJob{Reports: reports, Logger: logger, Metrics: metrics}
}

// Handle bumps the cache version once.
func (j *ReportsRefreshJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports refresh: handler not configured")
	}
	tracker := j.Metrics.Track(TaskTypeReportsRefresh)
	err := j.Reports.InvalidateCache(ctx)
	if err != nil {
		j.Logger.Error("refresh report cache", slog.Any("error", err))
	} else {
		j.Logger.Info("report cache refreshed")
	}
	return tracker.End(err)
}
