package budgets

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// BudgetInput carries a budget create/update payload.
type BudgetInput struct {
	Name                string     `json:"name" validate:"required"`
	AnalyticalAccountID int64      `json:"analytical_account_id" validate:"required,gt=0"`
	BudgetType          BudgetType `json:"budget_type" validate:"required,oneof=income expense"`
	PeriodStart         time.Time  `json:"period_start" validate:"required"`
	PeriodEnd           time.Time  `json:"period_end" validate:"required"`
	BudgetedAmount      float64    `json:"budgeted_amount" validate:"required,gt=0"`
	Description         string     `json:"description"`
	RevisionReason      string     `json:"revision_reason"`
}

// AccountChecker verifies the analytical account a budget points at.
type AccountChecker interface {
	AccountExists(ctx context.Context, id int64) error
}

// Service implements budget operations and performance rollups.
type Service struct {
	repo     Repository
	accounts AccountChecker
}

// NewService constructs the budget service. accounts is optional.
func NewService(repo Repository, accounts AccountChecker) *Service {
	return &Service{repo: repo, accounts: accounts}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Budget, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Budget, error) {
	budget, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (s *Service) Create(ctx context.Context, input BudgetInput) (*Budget, error) {
	if err := s.validatePeriod(ctx, input); err != nil {
		return nil, err
	}
	budget := Budget{
		Name:                input.Name,
		AnalyticalAccountID: input.AnalyticalAccountID,
		BudgetType:          input.BudgetType,
		PeriodStart:         input.PeriodStart,
		PeriodEnd:           input.PeriodEnd,
		BudgetedAmount:      input.BudgetedAmount,
		Description:         input.Description,
	}
	id, err := s.repo.Create(ctx, budget)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update edits a budget. A change to the budgeted amount leaves a revision
// with the caller's reason.
func (s *Service) Update(ctx context.Context, id int64, input BudgetInput, actorID int64) (*Budget, error) {
	if err := s.validatePeriod(ctx, input); err != nil {
		return nil, err
	}
	budget, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.BudgetedAmount != budget.BudgetedAmount {
		revision := Revision{
			BudgetID:       id,
			PreviousAmount: budget.BudgetedAmount,
			NewAmount:      input.BudgetedAmount,
			Reason:         input.RevisionReason,
			RevisedBy:      actorID,
		}
		if err := s.repo.InsertRevision(ctx, revision); err != nil {
			return nil, fmt.Errorf("record revision: %w", err)
		}
	}

	budget.Name = input.Name
	budget.AnalyticalAccountID = input.AnalyticalAccountID
	budget.BudgetType = input.BudgetType
	budget.PeriodStart = input.PeriodStart
	budget.PeriodEnd = input.PeriodEnd
	budget.BudgetedAmount = input.BudgetedAmount
	budget.Description = input.Description
	if err := s.repo.Update(ctx, budget); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Archive(ctx context.Context, id int64, archived bool) error {
	return s.repo.SetArchived(ctx, id, archived)
}

func (s *Service) Revisions(ctx context.Context, budgetID int64) ([]Revision, error) {
	if _, err := s.repo.Get(ctx, budgetID); err != nil {
		return nil, err
	}
	return s.repo.Revisions(ctx, budgetID)
}

// Performance rolls actuals into one budget.
func (s *Service) Performance(ctx context.Context, id int64) (*Performance, error) {
	budget, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	actual, err := s.repo.ActualAmount(ctx, budget.AnalyticalAccountID, budget.BudgetType, budget.PeriodStart, budget.PeriodEnd)
	if err != nil {
		return nil, err
	}
	p := performance(budget, actual)
	return &p, nil
}

// AllPerformance rolls actuals into every active budget. The per-budget
// actual queries are independent and fan out.
func (s *Service) AllPerformance(ctx context.Context) ([]Performance, error) {
	archived := false
	budgets, _, err := s.repo.List(ctx, ListFilters{Archived: &archived})
	if err != nil {
		return nil, err
	}

	results := make([]Performance, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, b := range budgets {
		g.Go(func() error {
			actual, err := s.repo.ActualAmount(gctx, b.AnalyticalAccountID, b.BudgetType, b.PeriodStart, b.PeriodEnd)
			if err != nil {
				return err
			}
			results[i] = performance(b, actual)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func performance(budget Budget, actual float64) Performance {
	p := Performance{
		Budget:           budget,
		ActualAmount:     actual,
		RemainingBalance: budget.BudgetedAmount - actual,
		Variance:         actual - budget.BudgetedAmount,
	}
	if budget.BudgetedAmount > 0 {
		p.AchievementPercentage = actual / budget.BudgetedAmount * 100
	}
	return p
}

func (s *Service) validatePeriod(ctx context.Context, input BudgetInput) error {
	if !input.PeriodEnd.After(input.PeriodStart) {
		return fmt.Errorf("%w: period end must be after period start", ErrValidation)
	}
	if s.accounts != nil {
		if err := s.accounts.AccountExists(ctx, input.AnalyticalAccountID); err != nil {
			return fmt.Errorf("%w: analytical account not found", ErrValidation)
		}
	}
	return nil
}
