package payments

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilters narrows payment listings.
type ListFilters struct {
	PaymentType PaymentType
	ContactID   int64
	DocumentID  int64
	Search      string
	Page        int
	PerPage     int
}

// Repository describes payment persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Payment, int, error)
	Get(ctx context.Context, id int64) (Payment, error)
	Create(ctx context.Context, payment Payment) (int64, error)
	Update(ctx context.Context, payment Payment) error
	SetReconciled(ctx context.Context, id int64, reconciled bool) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const paymentColumns = `p.id, p.payment_number, p.payment_type, p.payment_method, p.contact_id, c.name,
	p.document_kind, p.document_id, d.number, p.payment_date, p.amount, p.reference_number, p.notes,
	p.is_reconciled, p.created_by, p.created_at, p.updated_at`

const paymentFrom = ` FROM payments p
	JOIN contacts c ON c.id = p.contact_id
	JOIN documents d ON d.id = p.document_id`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Payment, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.PaymentType != "" {
		argCount++
		where += ` AND p.payment_type = $` + strconv.Itoa(argCount)
		args = append(args, filters.PaymentType)
	}
	if filters.ContactID > 0 {
		argCount++
		where += ` AND p.contact_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.ContactID)
	}
	if filters.DocumentID > 0 {
		argCount++
		where += ` AND p.document_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.DocumentID)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (p.payment_number ILIKE $` + strconv.Itoa(argCount) + ` OR p.reference_number ILIKE $` + strconv.Itoa(argCount) + ` OR c.name ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+paymentFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + paymentColumns + paymentFrom + where + ` ORDER BY p.payment_date DESC, p.id DESC`
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

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+paymentFrom+` WHERE p.id = $1`, id)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, payment Payment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO payments
		(payment_number, payment_type, payment_method, contact_id, document_kind, document_id,
		 payment_date, amount, reference_number, notes, is_reconciled, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,false,$11,NOW(),NOW()) RETURNING id`,
		payment.PaymentNumber, payment.PaymentType, payment.PaymentMethod, payment.ContactID,
		payment.DocumentKind, payment.DocumentID, payment.PaymentDate, payment.Amount,
		payment.ReferenceNumber, payment.Notes, payment.CreatedBy).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, payment Payment) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET payment_method=$2, payment_date=$3,
		reference_number=$4, notes=$5, updated_at=NOW() WHERE id=$1`,
		payment.ID, payment.PaymentMethod, payment.PaymentDate, payment.ReferenceNumber, payment.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetReconciled(ctx context.Context, id int64, reconciled bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET is_reconciled=$2, updated_at=NOW() WHERE id=$1`, id, reconciled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.PaymentNumber, &p.PaymentType, &p.PaymentMethod, &p.ContactID, &p.ContactName,
		&p.DocumentKind, &p.DocumentID, &p.DocumentNumber, &p.PaymentDate, &p.Amount, &p.ReferenceNumber,
		&p.Notes, &p.IsReconciled, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func offset(page, perPage int) int {
	o := (page - 1) * perPage
	if o < 0 {
		return 0
	}
	return o
}
