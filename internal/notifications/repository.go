package notifications

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilters narrows notification listings. Lookups are always scoped to
// one user.
type ListFilters struct {
	UnreadOnly bool
	Category   Category
	Page       int
	PerPage    int
}

// Repository describes notification persistence.
type Repository interface {
	List(ctx context.Context, userID int64, filters ListFilters) ([]Notification, int, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	Insert(ctx context.Context, n Notification) (int64, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, userID int64, filters ListFilters) ([]Notification, int, error) {
	where := ` WHERE user_id = $1`
	args := []any{userID}
	argCount := 1

	if filters.UnreadOnly {
		where += ` AND NOT is_read`
	}
	if filters.Category != "" {
		argCount++
		where += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filters.Category)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, category, title, message, ref_kind, ref_id, is_read, created_at
		FROM notifications` + where + ` ORDER BY created_at DESC, id DESC`
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

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Category, &n.Title, &n.Message, &n.RefKind, &n.RefID,
			&n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *repository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&count)
	return count, err
}

func (r *repository) Insert(ctx context.Context, n Notification) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO notifications
		(user_id, category, title, message, ref_kind, ref_id, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,false,NOW()) RETURNING id`,
		n.UserID, n.Category, n.Title, n.Message, n.RefKind, n.RefID).Scan(&id)
	return id, err
}

func (r *repository) MarkRead(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND NOT is_read`, userID)
	return err
}

func offset(page, perPage int) int {
	o := (page - 1) * perPage
	if o < 0 {
		return 0
	}
	return o
}
