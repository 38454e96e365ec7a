package analytical

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiv-furniture/shiverp/internal/platform/db"
)

// AccountFilters narrows account listings.
type AccountFilters struct {
	Search      string
	AccountType AccountType
	Archived    *bool
}

// Repository describes analytical persistence: accounts and auto rules.
type Repository interface {
	ListAccounts(ctx context.Context, filters AccountFilters) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	CreateAccount(ctx context.Context, account Account) (int64, error)
	UpdateAccount(ctx context.Context, account Account) error
	SetAccountArchived(ctx context.Context, id int64, archived bool) error

	ListModels(ctx context.Context, activeOnly bool) ([]Model, error)
	GetModel(ctx context.Context, id int64) (Model, error)
	CreateModel(ctx context.Context, model Model) (int64, error)
	UpdateModel(ctx context.Context, model Model) error
	SetModelActive(ctx context.Context, id int64, active bool) error
	DeleteModel(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, code, name, description, account_type, parent_id, is_archived, created_at, updated_at`

func (r *repository) ListAccounts(ctx context.Context, filters AccountFilters) ([]Account, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		where += ` AND (code ILIKE $` + strconv.Itoa(argCount) + ` OR name ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.AccountType != "" {
		argCount++
		where += ` AND account_type = $` + strconv.Itoa(argCount)
		args = append(args, filters.AccountType)
	}
	if filters.Archived != nil {
		argCount++
		where += ` AND is_archived = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Archived)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM analytical_accounts`+where+` ORDER BY code`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM analytical_accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *repository) CreateAccount(ctx context.Context, account Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO analytical_accounts
		(code, name, description, account_type, parent_id, is_archived, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,false,NOW(),NOW()) RETURNING id`,
		account.Code, account.Name, account.Description, account.AccountType, account.ParentID).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_analytical_accounts_code") {
			return 0, ErrDuplicateCode
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateAccount(ctx context.Context, account Account) error {
	tag, err := r.pool.Exec(ctx, `UPDATE analytical_accounts SET code=$2, name=$3, description=$4,
		account_type=$5, parent_id=$6, updated_at=NOW() WHERE id=$1`,
		account.ID, account.Code, account.Name, account.Description, account.AccountType, account.ParentID)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_analytical_accounts_code") {
			return ErrDuplicateCode
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetAccountArchived(ctx context.Context, id int64, archived bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE analytical_accounts SET is_archived=$2, updated_at=NOW() WHERE id=$1`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const modelColumns = `m.id, m.name, m.description, m.rule_type, m.rule_value, m.analytical_account_id,
	a.name, m.priority, m.is_active, m.created_at, m.updated_at`

func (r *repository) ListModels(ctx context.Context, activeOnly bool) ([]Model, error) {
	query := `SELECT ` + modelColumns + ` FROM auto_analytical_models m
		JOIN analytical_accounts a ON a.id = m.analytical_account_id`
	if activeOnly {
		query += ` WHERE m.is_active`
	}
	query += ` ORDER BY m.priority, m.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

func (r *repository) GetModel(ctx context.Context, id int64) (Model, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+modelColumns+` FROM auto_analytical_models m
		JOIN analytical_accounts a ON a.id = m.analytical_account_id WHERE m.id = $1`, id)
	m, err := scanModel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Model{}, ErrNotFound
	}
	return m, err
}

func (r *repository) CreateModel(ctx context.Context, model Model) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO auto_analytical_models
		(name, description, rule_type, rule_value, analytical_account_id, priority, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,true,NOW(),NOW()) RETURNING id`,
		model.Name, model.Description, model.RuleType, model.RuleValue,
		model.AnalyticalAccountID, model.Priority).Scan(&id)
	return id, err
}

func (r *repository) UpdateModel(ctx context.Context, model Model) error {
	tag, err := r.pool.Exec(ctx, `UPDATE auto_analytical_models SET name=$2, description=$3, rule_type=$4,
		rule_value=$5, analytical_account_id=$6, priority=$7, updated_at=NOW() WHERE id=$1`,
		model.ID, model.Name, model.Description, model.RuleType, model.RuleValue,
		model.AnalyticalAccountID, model.Priority)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetModelActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE auto_analytical_models SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteModel(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auto_analytical_models WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.AccountType, &a.ParentID,
		&a.IsArchived, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanModel(row pgx.Row) (Model, error) {
	var m Model
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.RuleType, &m.RuleValue, &m.AnalyticalAccountID,
		&m.AccountName, &m.Priority, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
