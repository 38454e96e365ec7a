package portal

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed summary source.
func NewRepository(pool *pgxpool.Pool) SummarySource {
	return &repository{pool: pool}
}

// ContactSummary aggregates the contact's open documents in one query.
func (r *repository) ContactSummary(ctx context.Context, contactID int64) (Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, `SELECT
		COUNT(*) FILTER (WHERE kind IN ('sales_order', 'purchase_order') AND status NOT IN ('cancelled', 'delivered', 'received')),
		COUNT(*) FILTER (WHERE kind = 'customer_invoice' AND status = 'posted' AND amount_due > 0),
		COUNT(*) FILTER (WHERE kind = 'vendor_bill' AND status = 'posted' AND amount_due > 0),
		COALESCE(SUM(amount_due) FILTER (WHERE status = 'posted'), 0),
		COALESCE(SUM(amount_paid) FILTER (WHERE status = 'posted'), 0),
		COALESCE(SUM(amount_due) FILTER (WHERE status = 'posted' AND due_date IS NOT NULL AND due_date < NOW()), 0)
		FROM documents WHERE contact_id = $1`, contactID).Scan(
		&s.OpenOrders, &s.OpenInvoices, &s.OpenBills, &s.TotalDue, &s.TotalPaid, &s.OverdueAmount)
	return s, err
}
