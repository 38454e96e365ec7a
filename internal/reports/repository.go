package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

// Repository describes the aggregate queries reports run.
type Repository interface {
	ContactCount(ctx context.Context, contactType string) (int64, error)
	ProductCount(ctx context.Context) (int64, error)
	PendingCount(ctx context.Context, kind documents.Kind) (int64, error)
	PostedTotal(ctx context.Context, kind documents.Kind, from, to time.Time) (float64, error)
	Outstanding(ctx context.Context, kind documents.Kind) ([]OutstandingDocument, error)
	MonthlyTotals(ctx context.Context, kind documents.Kind, year int) (map[string]float64, error)
	TradeSummary(ctx context.Context, kind documents.Kind, from, to time.Time) (TradeSummary, error)
	AnalyticalSummary(ctx context.Context, from, to time.Time) ([]AnalyticalSummaryRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ContactCount(ctx context.Context, contactType string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts
		WHERE NOT is_archived AND (contact_type = $1 OR contact_type = 'both')`, contactType).Scan(&count)
	return count, err
}

func (r *repository) ProductCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE NOT is_archived`).Scan(&count)
	return count, err
}

// PendingCount counts posted documents that still carry an amount due.
func (r *repository) PendingCount(ctx context.Context, kind documents.Kind) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents
		WHERE kind = $1 AND status = 'posted' AND amount_due > 0`, kind).Scan(&count)
	return count, err
}

func (r *repository) PostedTotal(ctx context.Context, kind documents.Kind, from, to time.Time) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0) FROM documents
		WHERE kind = $1 AND status = 'posted' AND document_date >= $2 AND document_date <= $3`,
		kind, from, to).Scan(&total)
	return total, err
}

func (r *repository) Outstanding(ctx context.Context, kind documents.Kind) ([]OutstandingDocument, error) {
	rows, err := r.pool.Query(ctx, `SELECT d.id, d.contact_id, c.name, d.document_date, d.due_date, d.amount_due
		FROM documents d JOIN contacts c ON c.id = d.contact_id
		WHERE d.kind = $1 AND d.status = 'posted' AND d.amount_due > 0
		ORDER BY d.due_date NULLS LAST`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []OutstandingDocument
	for rows.Next() {
		var doc OutstandingDocument
		if err := rows.Scan(&doc.ID, &doc.ContactID, &doc.ContactName, &doc.DocumentDate, &doc.DueDate, &doc.AmountDue); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *repository) MonthlyTotals(ctx context.Context, kind documents.Kind, year int) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, `SELECT to_char(document_date, 'YYYY-MM') AS period, COALESCE(SUM(total), 0)
		FROM documents
		WHERE kind = $1 AND status = 'posted' AND EXTRACT(YEAR FROM document_date) = $2
		GROUP BY period ORDER BY period`, kind, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]float64{}
	for rows.Next() {
		var period string
		var total float64
		if err := rows.Scan(&period, &total); err != nil {
			return nil, err
		}
		totals[period] = total
	}
	return totals, rows.Err()
}

func (r *repository) TradeSummary(ctx context.Context, kind documents.Kind, from, to time.Time) (TradeSummary, error) {
	summary := TradeSummary{From: from, To: to}
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(SUM(tax_total), 0),
		COALESCE(SUM(total), 0), COALESCE(SUM(amount_paid), 0), COALESCE(SUM(amount_due), 0)
		FROM documents
		WHERE kind = $1 AND status = 'posted' AND document_date >= $2 AND document_date <= $3`,
		kind, from, to).Scan(&summary.DocumentCount, &summary.Subtotal, &summary.TaxTotal,
		&summary.Total, &summary.AmountPaid, &summary.AmountDue)
	return summary, err
}

func (r *repository) AnalyticalSummary(ctx context.Context, from, to time.Time) ([]AnalyticalSummaryRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT a.id, a.code, a.name,
		COALESCE(SUM(d.total) FILTER (WHERE d.kind = 'customer_invoice'), 0) AS income,
		COALESCE(SUM(d.total) FILTER (WHERE d.kind = 'vendor_bill'), 0) AS expense
		FROM analytical_accounts a
		LEFT JOIN documents d ON d.analytical_account_id = a.id AND d.status = 'posted'
			AND d.document_date >= $1 AND d.document_date <= $2
		WHERE NOT a.is_archived
		GROUP BY a.id, a.code, a.name
		ORDER BY a.code`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalyticalSummaryRow
	for rows.Next() {
		var row AnalyticalSummaryRow
		if err := rows.Scan(&row.AccountID, &row.AccountCode, &row.AccountName, &row.Income, &row.Expense); err != nil {
			return nil, err
		}
		row.Net = row.Income - row.Expense
		out = append(out, row)
	}
	return out, rows.Err()
}
