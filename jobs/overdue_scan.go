package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/shiv-furniture/shiverp/internal/documents"
	jobmetrics "github.com/shiv-furniture/shiverp/internal/jobs"
	"github.com/shiv-furniture/shiverp/internal/notifications"
	"github.com/shiv-furniture/shiverp/internal/reports"
)

// OverdueSource lists posted documents that still carry an amount due.
type OverdueSource interface {
	Outstanding(ctx context.Context, kind documents.Kind) ([]reports.OutstandingDocument, error)
}

// AdminSource resolves the accounts that receive operational alerts.
type AdminSource interface {
	ActiveAdminIDs(ctx context.Context) ([]int64, error)
}

// Notifier fans one notification out to a set of users.
type Notifier interface {
	Broadcast(ctx context.Context, userIDs []int64, n notifications.Notification) error
}

// OverdueScanJob alerts admins about posted customer invoices past their due
// date. Scheduled daily from the worker.
type OverdueScanJob struct {
	Source   OverdueSource
	Admins   AdminSource
	Notifier Notifier
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewOverdueScanJob wires dependencies for the scan handler.
func NewOverdueScanJob(source OverdueSource, admins AdminSource, notifier Notifier, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Source:   source,
		Admins:   admins,
		Notifier: notifier,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle runs one scan.
func (j *OverdueScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Source == nil || j.Admins == nil || j.Notifier == nil {
		return errors.New("overdue scan: handler not configured")
	}
	tracker := j.Metrics.Track(TaskTypeOverdueScan)
	return tracker.End(j.scan(ctx))
}

func (j *OverdueScanJob) scan(ctx context.Context) error {
	now := j.clock()
	outstanding, err := j.Source.Outstanding(ctx, documents.KindCustomerInvoice)
	if err != nil {
		return fmt.Errorf("list outstanding: %w", err)
	}

	var count int
	var total float64
	for _, doc := range outstanding {
		if doc.DueDate == nil || !doc.DueDate.Before(now) {
			continue
		}
		count++
		total += doc.AmountDue
	}
	if count == 0 {
		j.Logger.Info("overdue scan clean")
		return nil
	}

	admins, err := j.Admins.ActiveAdminIDs(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	if len(admins) == 0 {
		j.Logger.Warn("overdue scan found no admins to notify", slog.Int("overdue", count))
		return nil
	}

	err = j.Notifier.Broadcast(ctx, admins, notifications.Notification{
		Category: notifications.CategoryDocument,
		Title:    "Overdue invoices",
		Message:  fmt.Sprintf("%d posted invoice(s) past due, %.2f outstanding", count, total),
	})
	if err != nil {
		return fmt.Errorf("notify admins: %w", err)
	}
	j.Logger.Info("overdue scan notified admins",
		slog.Int("overdue", count),
		slog.Float64("total_due", total),
		slog.Int("admins", len(admins)))
	return nil
}
