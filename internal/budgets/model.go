package budgets

import (
	"errors"
	"time"
)

// BudgetType selects which posted documents count against a budget.
type BudgetType string

const (
	BudgetTypeIncome  BudgetType = "income"
	BudgetTypeExpense BudgetType = "expense"
)

// Budget caps spending or targets revenue for one analytical account over a
// period.
type Budget struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	AnalyticalAccountID int64      `json:"analytical_account_id"`
	AccountName         string     `json:"analytical_account_name,omitempty"`
	AccountCode         string     `json:"analytical_account_code,omitempty"`
	BudgetType          BudgetType `json:"budget_type"`
	PeriodStart         time.Time  `json:"period_start"`
	PeriodEnd           time.Time  `json:"period_end"`
	BudgetedAmount      float64    `json:"budgeted_amount"`
	Description         string     `json:"description,omitempty"`
	IsArchived          bool       `json:"is_archived"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Revision records one change to a budget's amount, with the reason.
type Revision struct {
	ID             int64     `json:"id"`
	BudgetID       int64     `json:"budget_id"`
	PreviousAmount float64   `json:"previous_amount"`
	NewAmount      float64   `json:"new_amount"`
	Reason         string    `json:"reason,omitempty"`
	RevisedBy      int64     `json:"revised_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// Performance is a budget with its actuals folded in.
type Performance struct {
	Budget
	ActualAmount          float64 `json:"actual_amount"`
	RemainingBalance      float64 `json:"remaining_balance"`
	AchievementPercentage float64 `json:"achievement_percentage"`
	Variance              float64 `json:"variance"`
}

var (
	// ErrNotFound indicates the budget does not exist.
	ErrNotFound = errors.New("budgets: not found")
	// ErrValidation indicates a rejected payload.
	ErrValidation = errors.New("budgets: validation failed")
)
