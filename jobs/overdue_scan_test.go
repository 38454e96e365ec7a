package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shiv-furniture/shiverp/internal/documents"
	"github.com/shiv-furniture/shiverp/internal/notifications"
	"github.com/shiv-furniture/shiverp/internal/reports"
)

type stubOutstanding struct {
	docs []reports.OutstandingDocument
}

func (s *stubOutstanding) Outstanding(context.Context, documents.Kind) ([]reports.OutstandingDocument, error) {
	return s.docs, nil
}

type stubAdmins struct {
	ids []int64
}

func (s *stubAdmins) ActiveAdminIDs(context.Context) ([]int64, error) {
	return s.ids, nil
}

type stubNotifier struct {
	sent []notifications.Notification
	to   [][]int64
}

func (s *stubNotifier) Broadcast(_ context.Context, userIDs []int64, n notifications.Notification) error {
	s.sent = append(s.sent, n)
	s.to = append(s.to, userIDs)
	return nil
}

func newScanJob(source *stubOutstanding, admins *stubAdmins, notifier *stubNotifier, now time.Time) *OverdueScanJob {
	job := NewOverdueScanJob(source, admins, notifier, slog.Default(), nil)
	job.clock = func() time.Time { return now }
	return job
}

func TestOverdueScanNotifiesAdmins(t *testing.T) {
	now := time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -10)
	future := now.AddDate(0, 0, 10)
	source := &stubOutstanding{docs: []reports.OutstandingDocument{
		{ID: 1, DueDate: &past, AmountDue: 700},
		{ID: 2, DueDate: &future, AmountDue: 300},
		{ID: 3, AmountDue: 100}, // no due date, never overdue
		{ID: 4, DueDate: &past, AmountDue: 250},
	}}
	notifier := &stubNotifier{}
	job := newScanJob(source, &stubAdmins{ids: []int64{1, 2}}, notifier, now)

	require.NoError(t, job.Handle(context.Background(), NewOverdueScanTask()))
	require.Len(t, notifier.sent, 1)
	require.Equal(t, notifications.CategoryDocument, notifier.sent[0].Category)
	require.Contains(t, notifier.sent[0].Message, "2 posted invoice(s)")
	require.Contains(t, notifier.sent[0].Message, "950.00")
	require.Equal(t, []int64{1, 2}, notifier.to[0])
}

func TestOverdueScanQuietWhenClean(t *testing.T) {
	now := time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 5)
	source := &stubOutstanding{docs: []reports.OutstandingDocument{
		{ID: 1, DueDate: &future, AmountDue: 300},
	}}
	notifier := &stubNotifier{}
	job := newScanJob(source, &stubAdmins{ids: []int64{1}}, notifier, now)

	require.NoError(t, job.Handle(context.Background(), NewOverdueScanTask()))
	require.Empty(t, notifier.sent)
}
