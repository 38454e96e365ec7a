package budgets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type actualKey struct {
	accountID  int64
	budgetType BudgetType
}

type memoryRepo struct {
	budgets   map[int64]Budget
	revisions []Revision
	actuals   map[actualKey]float64
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{budgets: map[int64]Budget{}, actuals: map[actualKey]float64{}}
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Budget, int, error) {
	var out []Budget
	for _, b := range m.budgets {
		if filters.Archived != nil && b.IsArchived != *filters.Archived {
			continue
		}
		if filters.BudgetType != "" && b.BudgetType != filters.BudgetType {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Budget, error) {
	b, ok := m.budgets[id]
	if !ok {
		return Budget{}, ErrNotFound
	}
	return b, nil
}

func (m *memoryRepo) Create(_ context.Context, budget Budget) (int64, error) {
	m.nextID++
	budget.ID = m.nextID
	m.budgets[budget.ID] = budget
	return budget.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, budget Budget) error {
	if _, ok := m.budgets[budget.ID]; !ok {
		return ErrNotFound
	}
	m.budgets[budget.ID] = budget
	return nil
}

func (m *memoryRepo) SetArchived(_ context.Context, id int64, archived bool) error {
	b, ok := m.budgets[id]
	if !ok {
		return ErrNotFound
	}
	b.IsArchived = archived
	m.budgets[id] = b
	return nil
}

func (m *memoryRepo) InsertRevision(_ context.Context, revision Revision) error {
	revision.ID = int64(len(m.revisions) + 1)
	m.revisions = append(m.revisions, revision)
	return nil
}

func (m *memoryRepo) Revisions(_ context.Context, budgetID int64) ([]Revision, error) {
	var out []Revision
	for _, rev := range m.revisions {
		if rev.BudgetID == budgetID {
			out = append(out, rev)
		}
	}
	return out, nil
}

func (m *memoryRepo) ActualAmount(_ context.Context, accountID int64, budgetType BudgetType, _, _ time.Time) (float64, error) {
	return m.actuals[actualKey{accountID, budgetType}], nil
}

func period() (time.Time, time.Time) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

func TestCreateRejectsInvertedPeriod(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	start, end := period()
	_, err := svc.Create(context.Background(), BudgetInput{
		Name: "Q1 wood", AnalyticalAccountID: 1, BudgetType: BudgetTypeExpense,
		PeriodStart: end, PeriodEnd: start, BudgetedAmount: 1000,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAmountLeavesRevision(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	start, end := period()

	budget, err := svc.Create(context.Background(), BudgetInput{
		Name: "Q1 wood", AnalyticalAccountID: 1, BudgetType: BudgetTypeExpense,
		PeriodStart: start, PeriodEnd: end, BudgetedAmount: 50000,
	})
	require.NoError(t, err)

	// Same amount: no revision.
	_, err = svc.Update(context.Background(), budget.ID, BudgetInput{
		Name: "Q1 wood", AnalyticalAccountID: 1, BudgetType: BudgetTypeExpense,
		PeriodStart: start, PeriodEnd: end, BudgetedAmount: 50000,
	}, 7)
	require.NoError(t, err)
	require.Empty(t, repo.revisions)

	_, err = svc.Update(context.Background(), budget.ID, BudgetInput{
		Name: "Q1 wood", AnalyticalAccountID: 1, BudgetType: BudgetTypeExpense,
		PeriodStart: start, PeriodEnd: end, BudgetedAmount: 65000,
		RevisionReason: "timber price increase",
	}, 7)
	require.NoError(t, err)

	revisions, err := svc.Revisions(context.Background(), budget.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	require.Equal(t, 50000.0, revisions[0].PreviousAmount)
	require.Equal(t, 65000.0, revisions[0].NewAmount)
	require.Equal(t, "timber price increase", revisions[0].Reason)
	require.Equal(t, int64(7), revisions[0].RevisedBy)
}

func TestPerformanceMath(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	start, end := period()

	budget, err := svc.Create(context.Background(), BudgetInput{
		Name: "Q1 showroom", AnalyticalAccountID: 3, BudgetType: BudgetTypeIncome,
		PeriodStart: start, PeriodEnd: end, BudgetedAmount: 200000,
	})
	require.NoError(t, err)
	repo.actuals[actualKey{3, BudgetTypeIncome}] = 150000

	perf, err := svc.Performance(context.Background(), budget.ID)
	require.NoError(t, err)
	require.Equal(t, 150000.0, perf.ActualAmount)
	require.Equal(t, 50000.0, perf.RemainingBalance)
	require.Equal(t, -50000.0, perf.Variance)
	require.InDelta(t, 75.0, perf.AchievementPercentage, 1e-9)
}

func TestAllPerformanceSkipsArchived(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	start, end := period()

	live, err := svc.Create(context.Background(), BudgetInput{
		Name: "Live", AnalyticalAccountID: 1, BudgetType: BudgetTypeExpense,
		PeriodStart: start, PeriodEnd: end, BudgetedAmount: 1000,
	})
	require.NoError(t, err)
	archived, err := svc.Create(context.Background(), BudgetInput{
		Name: "Old", AnalyticalAccountID: 2, BudgetType: BudgetTypeExpense,
		PeriodStart: start, PeriodEnd: end, BudgetedAmount: 1000,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Archive(context.Background(), archived.ID, true))

	perf, err := svc.AllPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, perf, 1)
	require.Equal(t, live.ID, perf[0].ID)
}
