package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shiv-furniture/shiverp/internal/budgets"
	"github.com/shiv-furniture/shiverp/internal/documents"
)

type memoryRepo struct {
	customers   int64
	vendors     int64
	products    int64
	outstanding map[documents.Kind][]OutstandingDocument
	monthly     map[documents.Kind]map[string]float64
	posted      map[documents.Kind]float64
}

func (m *memoryRepo) ContactCount(_ context.Context, contactType string) (int64, error) {
	if contactType == "customer" {
		return m.customers, nil
	}
	return m.vendors, nil
}

func (m *memoryRepo) ProductCount(_ context.Context) (int64, error) {
	return m.products, nil
}

func (m *memoryRepo) PendingCount(_ context.Context, kind documents.Kind) (int64, error) {
	return int64(len(m.outstanding[kind])), nil
}

func (m *memoryRepo) PostedTotal(_ context.Context, kind documents.Kind, _, _ time.Time) (float64, error) {
	return m.posted[kind], nil
}

func (m *memoryRepo) Outstanding(_ context.Context, kind documents.Kind) ([]OutstandingDocument, error) {
	return m.outstanding[kind], nil
}

func (m *memoryRepo) MonthlyTotals(_ context.Context, kind documents.Kind, _ int) (map[string]float64, error) {
	return m.monthly[kind], nil
}

func (m *memoryRepo) TradeSummary(_ context.Context, kind documents.Kind, from, to time.Time) (TradeSummary, error) {
	return TradeSummary{From: from, To: to, Total: m.posted[kind]}, nil
}

func (m *memoryRepo) AnalyticalSummary(_ context.Context, _, _ time.Time) ([]AnalyticalSummaryRow, error) {
	return nil, nil
}

type stubBudgets struct {
	performance []budgets.Performance
}

func (s *stubBudgets) AllPerformance(_ context.Context) ([]budgets.Performance, error) {
	return s.performance, nil
}

func dueIn(asOf time.Time, days int) *time.Time {
	d := asOf.AddDate(0, 0, days)
	return &d
}

func TestAgingBuckets(t *testing.T) {
	asOf := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{outstanding: map[documents.Kind][]OutstandingDocument{
		documents.KindCustomerInvoice: {
			{ID: 1, ContactID: 1, ContactName: "Arjun", DueDate: dueIn(asOf, 5), AmountDue: 100},
			{ID: 2, ContactID: 1, ContactName: "Arjun", DueDate: dueIn(asOf, -10), AmountDue: 200},
			{ID: 3, ContactID: 2, ContactName: "Meera", DueDate: dueIn(asOf, -45), AmountDue: 300},
			{ID: 4, ContactID: 2, ContactName: "Meera", DueDate: dueIn(asOf, -75), AmountDue: 400},
			{ID: 5, ContactID: 3, ContactName: "Zed", DueDate: dueIn(asOf, -200), AmountDue: 500},
		},
	}}
	svc := NewService(repo, nil, nil)

	report, err := svc.ReceivablesAging(context.Background(), asOf)
	require.NoError(t, err)
	require.Equal(t, 100.0, report.Buckets.Current)
	require.Equal(t, 200.0, report.Buckets.Days30)
	require.Equal(t, 300.0, report.Buckets.Days60)
	require.Equal(t, 400.0, report.Buckets.Days90)
	require.Equal(t, 500.0, report.Buckets.Days90Plus)
	require.Equal(t, 1500.0, report.Buckets.Total)

	require.Len(t, report.Rows, 3)
	require.Equal(t, "Arjun", report.Rows[0].ContactName)
	require.Equal(t, 300.0, report.Rows[0].Total)
	require.Equal(t, "Meera", report.Rows[1].ContactName)
	require.Equal(t, 700.0, report.Rows[1].Total)
}

func TestAgingFallsBackToDocumentDate(t *testing.T) {
	asOf := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{outstanding: map[documents.Kind][]OutstandingDocument{
		documents.KindVendorBill: {
			{ID: 1, ContactID: 1, ContactName: "Timber Co", DocumentDate: asOf.AddDate(0, 0, -40), AmountDue: 250},
		},
	}}
	svc := NewService(repo, nil, nil)

	report, err := svc.PayablesAging(context.Background(), asOf)
	require.NoError(t, err)
	require.Equal(t, 250.0, report.Buckets.Days60)
}

func TestDashboardSummary(t *testing.T) {
	repo := &memoryRepo{
		customers: 12, vendors: 4, products: 30,
		posted: map[documents.Kind]float64{
			documents.KindCustomerInvoice: 90000,
			documents.KindVendorBill:      40000,
		},
		outstanding: map[documents.Kind][]OutstandingDocument{
			documents.KindCustomerInvoice: {{AmountDue: 5000}, {AmountDue: 2500}},
			documents.KindVendorBill:      {{AmountDue: 3000}},
		},
	}
	budgetSource := &stubBudgets{performance: []budgets.Performance{
		{ActualAmount: 800, RemainingBalance: 200},
		{ActualAmount: 1200, RemainingBalance: -200},
	}}
	svc := NewService(repo, budgetSource, nil)

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(12), summary.TotalCustomers)
	require.Equal(t, int64(2), summary.PendingInvoices)
	require.Equal(t, 7500.0, summary.TotalReceivable)
	require.Equal(t, 3000.0, summary.TotalPayable)
	require.Equal(t, 4500.0, summary.NetPosition)
	require.Equal(t, int64(1), summary.BudgetsOnTrack)
	require.Equal(t, int64(1), summary.BudgetsOver)
}

func TestMonthlyTrendsFillsEmptyMonths(t *testing.T) {
	repo := &memoryRepo{monthly: map[documents.Kind]map[string]float64{
		documents.KindCustomerInvoice: {"2026-03": 1000, "2026-07": 500},
		documents.KindVendorBill:      {"2026-03": 400},
	}}
	svc := NewService(repo, nil, nil)

	points, err := svc.MonthlyTrends(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, points, 12)
	require.Equal(t, "2026-01", points[0].Period)
	require.Equal(t, 0.0, points[0].Sales)
	require.Equal(t, 1000.0, points[2].Sales)
	require.Equal(t, 600.0, points[2].Net)
	require.Equal(t, 500.0, points[6].Sales)
}
