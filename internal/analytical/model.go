package analytical

import (
	"errors"
	"time"
)

// AccountType narrows which document directions an account tracks.
type AccountType string

const (
	AccountTypeIncome  AccountType = "income"
	AccountTypeExpense AccountType = "expense"
	AccountTypeBoth    AccountType = "both"
)

// Account is a cost center documents and budgets are tagged with.
type Account struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	AccountType AccountType `json:"account_type"`
	ParentID    *int64      `json:"parent_id,omitempty"`
	IsArchived  bool        `json:"is_archived"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// AccountNode is an Account with its children, for the tree view.
type AccountNode struct {
	Account
	Children []*AccountNode `json:"children"`
}

// RuleType selects what an auto-analytical model matches on.
type RuleType string

const (
	RuleProduct         RuleType = "product"
	RuleProductCategory RuleType = "product_category"
	RuleContact         RuleType = "contact"
	RuleAmountRange     RuleType = "amount_range"
)

// Model is an auto-analytical rule. RuleValue is interpreted per RuleType:
// a product or contact id, a category name, or a "min-max" amount range.
// Lower Priority wins.
type Model struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	RuleType            RuleType  `json:"rule_type"`
	RuleValue           string    `json:"rule_value"`
	AnalyticalAccountID int64     `json:"analytical_account_id"`
	AccountName         string    `json:"analytical_account_name,omitempty"`
	Priority            int       `json:"priority"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates the account or model does not exist.
	ErrNotFound = errors.New("analytical: not found")
	// ErrValidation indicates a rejected payload.
	ErrValidation = errors.New("analytical: validation failed")
	// ErrDuplicateCode indicates an account code collision.
	ErrDuplicateCode = errors.New("analytical: duplicate account code")
)
