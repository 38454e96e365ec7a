package users

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiv-furniture/shiverp/internal/auth"
)

// ListFilters narrows user listings.
type ListFilters struct {
	Role    auth.Role
	Search  string
	Page    int
	PerPage int
}

// Repository lists accounts for administration. Account mutation goes
// through the auth repository so hashing rules stay in one place.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]auth.User, int, error)
	SetActive(ctx context.Context, id int64, active bool) error
	SetRole(ctx context.Context, id int64, role auth.Role, contactID *int64) error
	ActiveAdminIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]auth.User, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Role != "" {
		argCount++
		where += ` AND role = $` + strconv.Itoa(argCount)
		args = append(args, filters.Role)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (email ILIKE $` + strconv.Itoa(argCount) + ` OR full_name ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, email, full_name, role, contact_id, password_hash, is_active, last_login_at, created_at, updated_at
		FROM users` + where + ` ORDER BY full_name`
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

	var out []auth.User
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.ContactID, &u.PasswordHash, &u.IsActive,
			&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetRole(ctx context.Context, id int64, role auth.Role, contactID *int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role=$2, contact_id=$3, updated_at=NOW() WHERE id=$1`,
		id, role, contactID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveAdminIDs lists active admin accounts, used to fan out alerts.
func (r *repository) ActiveAdminIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE role=$1 AND is_active`, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func offset(page, perPage int) int {
	o := (page - 1) * perPage
	if o < 0 {
		return 0
	}
	return o
}
