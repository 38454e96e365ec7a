package budgets

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

// ListFilters narrows budget listings.
type ListFilters struct {
	AccountID  int64
	BudgetType BudgetType
	Archived   *bool
	Page       int
	PerPage    int
}

// Repository describes budget persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Budget, int, error)
	Get(ctx context.Context, id int64) (Budget, error)
	Create(ctx context.Context, budget Budget) (int64, error)
	Update(ctx context.Context, budget Budget) error
	SetArchived(ctx context.Context, id int64, archived bool) error
	InsertRevision(ctx context.Context, revision Revision) error
	Revisions(ctx context.Context, budgetID int64) ([]Revision, error)
	ActualAmount(ctx context.Context, accountID int64, budgetType BudgetType, from, to time.Time) (float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const budgetColumns = `b.id, b.name, b.analytical_account_id, a.name, a.code, b.budget_type,
	b.period_start, b.period_end, b.budgeted_amount, b.description, b.is_archived, b.created_at, b.updated_at`

const budgetFrom = ` FROM budgets b JOIN analytical_accounts a ON a.id = b.analytical_account_id`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Budget, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.AccountID > 0 {
		argCount++
		where += ` AND b.analytical_account_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.AccountID)
	}
	if filters.BudgetType != "" {
		argCount++
		where += ` AND b.budget_type = $` + strconv.Itoa(argCount)
		args = append(args, filters.BudgetType)
	}
	if filters.Archived != nil {
		argCount++
		where += ` AND b.is_archived = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Archived)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+budgetFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + budgetColumns + budgetFrom + where + ` ORDER BY b.period_start DESC, b.name`
	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, offset(filters.Page, filters.PerPage))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, 0, err
		}
		budgets = append(budgets, b)
	}
	return budgets, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Budget, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+budgetColumns+budgetFrom+` WHERE b.id = $1`, id)
	b, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, ErrNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, budget Budget) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO budgets
		(name, analytical_account_id, budget_type, period_start, period_end, budgeted_amount, description,
		 is_archived, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,false,NOW(),NOW()) RETURNING id`,
		budget.Name, budget.AnalyticalAccountID, budget.BudgetType, budget.PeriodStart, budget.PeriodEnd,
		budget.BudgetedAmount, budget.Description).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, budget Budget) error {
	tag, err := r.pool.Exec(ctx, `UPDATE budgets SET name=$2, analytical_account_id=$3, budget_type=$4,
		period_start=$5, period_end=$6, budgeted_amount=$7, description=$8, updated_at=NOW() WHERE id=$1`,
		budget.ID, budget.Name, budget.AnalyticalAccountID, budget.BudgetType, budget.PeriodStart,
		budget.PeriodEnd, budget.BudgetedAmount, budget.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE budgets SET is_archived=$2, updated_at=NOW() WHERE id=$1`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertRevision(ctx context.Context, revision Revision) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO budget_revisions
		(budget_id, previous_amount, new_amount, reason, revised_by, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())`,
		revision.BudgetID, revision.PreviousAmount, revision.NewAmount, revision.Reason, revision.RevisedBy)
	return err
}

func (r *repository) Revisions(ctx context.Context, budgetID int64) ([]Revision, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, budget_id, previous_amount, new_amount, reason, revised_by, created_at
		FROM budget_revisions WHERE budget_id = $1 ORDER BY created_at DESC`, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var rev Revision
		if err := rows.Scan(&rev.ID, &rev.BudgetID, &rev.PreviousAmount, &rev.NewAmount, &rev.Reason,
			&rev.RevisedBy, &rev.CreatedAt); err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

// ActualAmount sums posted document totals tagged with the account inside the
// period. Income budgets read customer invoices, expense budgets vendor bills.
func (r *repository) ActualAmount(ctx context.Context, accountID int64, budgetType BudgetType, from, to time.Time) (float64, error) {
	kind := documents.KindCustomerInvoice
	if budgetType == BudgetTypeExpense {
		kind = documents.KindVendorBill
	}
	var actual float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0) FROM documents
		WHERE analytical_account_id = $1 AND kind = $2 AND status = 'posted'
		AND document_date >= $3 AND document_date <= $4`,
		accountID, kind, from, to).Scan(&actual)
	return actual, err
}

func scanBudget(row pgx.Row) (Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.Name, &b.AnalyticalAccountID, &b.AccountName, &b.AccountCode, &b.BudgetType,
		&b.PeriodStart, &b.PeriodEnd, &b.BudgetedAmount, &b.Description, &b.IsArchived, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func offset(page, perPage int) int {
	o := (page - 1) * perPage
	if o < 0 {
		return 0
	}
	return o
}
