package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/shiv-furniture/shiverp/internal/budgets"
	"github.com/shiv-furniture/shiverp/internal/documents"
)

// BudgetSource provides budget actuals for the dashboard rollup.
type BudgetSource interface {
	AllPerformance(ctx context.Context) ([]budgets.Performance, error)
}

// Service coordinates report queries with the cache layer. Concurrent
// requests for the same key collapse through singleflight.
type Service struct {
	repo    Repository
	budgets BudgetSource
	cache   *Cache
	group   singleflight.Group
}

// NewService wires a Repository, budget source and Cache helper. budgets and
// cache are optional.
func NewService(repo Repository, budgetSource BudgetSource, cache *Cache) *Service {
	return &Service{repo: repo, budgets: budgetSource, cache: cache}
}

// Dashboard assembles the landing page summary. The counts and totals are
// independent queries and fan out.
func (s *Service) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	var summary DashboardSummary
	err := s.cached(ctx, &summary, func(ctx context.Context) (any, error) {
		return s.buildDashboard(ctx)
	}, "reports", "dashboard")
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) buildDashboard(ctx context.Context) (*DashboardSummary, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var summary DashboardSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.TotalCustomers, err = s.repo.ContactCount(gctx, "customer")
		return err
	})
	g.Go(func() (err error) {
		summary.TotalVendors, err = s.repo.ContactCount(gctx, "vendor")
		return err
	})
	g.Go(func() (err error) {
		summary.TotalProducts, err = s.repo.ProductCount(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.PendingInvoices, err = s.repo.PendingCount(gctx, documents.KindCustomerInvoice)
		return err
	})
	g.Go(func() (err error) {
		summary.PendingBills, err = s.repo.PendingCount(gctx, documents.KindVendorBill)
		return err
	})
	g.Go(func() (err error) {
		summary.TotalSalesThisMonth, err = s.repo.PostedTotal(gctx, documents.KindCustomerInvoice, monthStart, now)
		return err
	})
	g.Go(func() (err error) {
		summary.TotalPurchasesThisMonth, err = s.repo.PostedTotal(gctx, documents.KindVendorBill, monthStart, now)
		return err
	})
	g.Go(func() error {
		outstanding, err := s.repo.Outstanding(gctx, documents.KindCustomerInvoice)
		if err != nil {
			return err
		}
		for _, doc := range outstanding {
			summary.TotalReceivable += doc.AmountDue
		}
		return nil
	})
	g.Go(func() error {
		outstanding, err := s.repo.Outstanding(gctx, documents.KindVendorBill)
		if err != nil {
			return err
		}
		for _, doc := range outstanding {
			summary.TotalPayable += doc.AmountDue
		}
		return nil
	})
	if s.budgets != nil {
		g.Go(func() error {
			performance, err := s.budgets.AllPerformance(gctx)
			if err != nil {
				return err
			}
			for _, p := range performance {
				if p.RemainingBalance < 0 {
					summary.BudgetsOver++
				} else {
					summary.BudgetsOnTrack++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary.NetPosition = summary.TotalReceivable - summary.TotalPayable
	return &summary, nil
}

// ReceivablesAging buckets open customer invoices by days overdue.
func (s *Service) ReceivablesAging(ctx context.Context, asOf time.Time) (*AgingReport, error) {
	return s.aging(ctx, documents.KindCustomerInvoice, asOf)
}

// PayablesAging buckets open vendor bills by days overdue.
func (s *Service) PayablesAging(ctx context.Context, asOf time.Time) (*AgingReport, error) {
	return s.aging(ctx, documents.KindVendorBill, asOf)
}

func (s *Service) aging(ctx context.Context, kind documents.Kind, asOf time.Time) (*AgingReport, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	outstanding, err := s.repo.Outstanding(ctx, kind)
	if err != nil {
		return nil, err
	}

	report := AgingReport{AsOf: asOf, Rows: []AgingRow{}}
	byContact := map[int64]*AgingRow{}
	for _, doc := range outstanding {
		// Documents without a due date age from the document date.
		due := doc.DocumentDate
		if doc.DueDate != nil {
			due = *doc.DueDate
		}
		days := int(asOf.Sub(due).Hours() / 24)

		row, ok := byContact[doc.ContactID]
		if !ok {
			row = &AgingRow{ContactID: doc.ContactID, ContactName: doc.ContactName}
			byContact[doc.ContactID] = row
		}
		bucketAdd(&report.Buckets, days, doc.AmountDue)
		bucketAdd(&row.AgingBuckets, days, doc.AmountDue)
	}

	for _, row := range byContact {
		report.Rows = append(report.Rows, *row)
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].ContactName < report.Rows[j].ContactName })
	return &report, nil
}

func bucketAdd(b *AgingBuckets, days int, amount float64) {
	switch {
	case days <= 0:
		b.Current += amount
	case days <= 30:
		b.Days30 += amount
	case days <= 60:
		b.Days60 += amount
	case days <= 90:
		b.Days90 += amount
	default:
		b.Days90Plus += amount
	}
	b.Total += amount
}

// MonthlyTrends returns sales against purchases per month of a year.
func (s *Service) MonthlyTrends(ctx context.Context, year int) ([]MonthlyTrendPoint, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	var points []MonthlyTrendPoint
	err := s.cached(ctx, &points, func(ctx context.Context) (any, error) {
		return s.buildMonthlyTrends(ctx, year)
	}, "reports", "trends", strconv.Itoa(year))
	return points, err
}

func (s *Service) buildMonthlyTrends(ctx context.Context, year int) ([]MonthlyTrendPoint, error) {
	var sales, purchases map[string]float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = s.repo.MonthlyTotals(gctx, documents.KindCustomerInvoice, year)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = s.repo.MonthlyTotals(gctx, documents.KindVendorBill, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points := make([]MonthlyTrendPoint, 0, 12)
	for month := 1; month <= 12; month++ {
		period := fmt.Sprintf("%04d-%02d", year, month)
		p := MonthlyTrendPoint{Period: period, Sales: sales[period], Purchases: purchases[period]}
		p.Net = p.Sales - p.Purchases
		points = append(points, p)
	}
	return points, nil
}

// SalesSummary aggregates posted customer invoices over the range.
func (s *Service) SalesSummary(ctx context.Context, from, to time.Time) (*TradeSummary, error) {
	return s.tradeSummary(ctx, documents.KindCustomerInvoice, from, to)
}

// PurchaseSummary aggregates posted vendor bills over the range.
func (s *Service) PurchaseSummary(ctx context.Context, from, to time.Time) (*TradeSummary, error) {
	return s.tradeSummary(ctx, documents.KindVendorBill, from, to)
}

func (s *Service) tradeSummary(ctx context.Context, kind documents.Kind, from, to time.Time) (*TradeSummary, error) {
	from, to = defaultRange(from, to)
	summary, err := s.repo.TradeSummary(ctx, kind, from, to)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// AnalyticalSummary breaks income and spend down by cost center.
func (s *Service) AnalyticalSummary(ctx context.Context, from, to time.Time) ([]AnalyticalSummaryRow, error) {
	from, to = defaultRange(from, to)
	rows, err := s.repo.AnalyticalSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []AnalyticalSummaryRow{}
	}
	return rows, nil
}

// InvalidateCache bumps the report cache version. Called after document
// posting and payment capture.
func (s *Service) InvalidateCache(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// cached collapses concurrent identical loads and shares the marshalled
// result with every waiter.
func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), keyParts ...string) error {
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		return err
	}
	value, err, _ := s.group.Do(key, func() (any, error) {
		var payload json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &payload, loader); err != nil {
			return nil, err
		}
		return payload, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(value.(json.RawMessage), dest)
}

// defaultRange falls back to the current month.
func defaultRange(from, to time.Time) (time.Time, time.Time) {
	now := time.Now()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, to.Location())
	}
	return from, to
}
