package documents

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the pgx-backed implementation of RepositoryPort. All four
// kinds share the documents/document_lines tables discriminated by the kind
// column.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx runs fn inside one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const documentColumns = `d.id, d.kind, d.number, d.contact_id, c.name, d.document_date, d.due_date,
	d.status, d.payment_status, d.subtotal, d.tax_total, d.total, d.amount_paid, d.amount_due,
	d.notes, d.analytical_account_id, d.source_document_id, d.document_url, d.created_by, d.created_at, d.updated_at`

// Get loads one document with its lines ordered by line_order.
func (r *Repository) Get(ctx context.Context, kind Kind, id int64) (Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents d
		JOIN contacts c ON c.id = d.contact_id
		WHERE d.kind = $1 AND d.id = $2`
	row := r.pool.QueryRow(ctx, query, kind, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, document_id, product_id, product_name, product_sku, unit,
		quantity, unit_price, tax_rate, subtotal, tax_amount, line_total, line_order
		FROM document_lines WHERE document_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return Document{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line LineItem
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.ProductID, &line.ProductName, &line.ProductSKU,
			&line.Unit, &line.Quantity, &line.UnitPrice, &line.TaxRatePercent, &line.Subtotal,
			&line.TaxAmount, &line.LineTotal, &line.LineOrder); err != nil {
			return Document{}, err
		}
		doc.Items = append(doc.Items, line)
	}
	return doc, rows.Err()
}

// List returns headers matching the filters plus the unpaginated count.
func (r *Repository) List(ctx context.Context, kind Kind, filters ListFilters) ([]Document, int, error) {
	where := ` WHERE d.kind = $1`
	args := []any{kind}
	argCount := 1

	if filters.Status != "" {
		argCount++
		where += ` AND d.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.ContactID != 0 {
		argCount++
		where += ` AND d.contact_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.ContactID)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (d.number ILIKE $` + strconv.Itoa(argCount) + ` OR c.name ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM documents d JOIN contacts c ON c.id = d.contact_id` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + documentColumns + ` FROM documents d JOIN contacts c ON c.id = d.contact_id` + where +
		` ORDER BY d.document_date DESC, d.id DESC`
	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.PerPage
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

func (t *txRepository) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO documents
		(kind, number, contact_id, document_date, due_date, status, payment_status, subtotal, tax_total,
		 total, amount_paid, amount_due, notes, analytical_account_id, source_document_id, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
		RETURNING id`,
		doc.Kind, doc.Number, doc.ContactID, doc.DocumentDate, doc.DueDate, doc.Status, string(doc.PaymentStatus),
		doc.Subtotal, doc.TaxTotal, doc.Total, doc.AmountPaid, doc.AmountDue, doc.Notes,
		doc.AnalyticalAccountID, doc.SourceDocumentID, doc.CreatedBy).Scan(&id)
	return id, err
}

func (t *txRepository) InsertLine(ctx context.Context, line LineItem) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO document_lines
		(document_id, product_id, product_name, product_sku, unit, quantity, unit_price, tax_rate,
		 subtotal, tax_amount, line_total, line_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		line.DocumentID, line.ProductID, line.ProductName, line.ProductSKU, line.Unit, line.Quantity,
		line.UnitPrice, line.TaxRatePercent, line.Subtotal, line.TaxAmount, line.LineTotal, line.LineOrder)
	return err
}

func (t *txRepository) UpdateHeader(ctx context.Context, doc Document) error {
	_, err := t.tx.Exec(ctx, `UPDATE documents SET contact_id=$2, document_date=$3, due_date=$4, notes=$5,
		analytical_account_id=$6, subtotal=$7, tax_total=$8, total=$9, amount_due=$10, updated_at=NOW()
		WHERE id=$1`,
		doc.ID, doc.ContactID, doc.DocumentDate, doc.DueDate, doc.Notes, doc.AnalyticalAccountID,
		doc.Subtotal, doc.TaxTotal, doc.Total, doc.AmountDue)
	return err
}

func (t *txRepository) DeleteLines(ctx context.Context, docID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM document_lines WHERE document_id=$1`, docID)
	return err
}

func (t *txRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	_, err := t.tx.Exec(ctx, `UPDATE documents SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	return err
}

func (t *txRepository) UpdatePayment(ctx context.Context, id int64, amountPaid float64, status PaymentStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE documents SET amount_paid=$2, amount_due=GREATEST(total-$2, 0),
		payment_status=$3, updated_at=NOW() WHERE id=$1`, id, amountPaid, status)
	return err
}

func (t *txRepository) SetDocumentURL(ctx context.Context, id int64, url string) error {
	_, err := t.tx.Exec(ctx, `UPDATE documents SET document_url=$2, updated_at=NOW() WHERE id=$1`, id, url)
	return err
}

func (t *txRepository) DeleteDocument(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM documents WHERE id=$1`, id)
	return err
}

func scanDocument(row pgx.Row) (Document, error) {
	var doc Document
	var paymentStatus *string
	err := row.Scan(&doc.ID, &doc.Kind, &doc.Number, &doc.ContactID, &doc.ContactName, &doc.DocumentDate,
		&doc.DueDate, &doc.Status, &paymentStatus, &doc.Subtotal, &doc.TaxTotal, &doc.Total,
		&doc.AmountPaid, &doc.AmountDue, &doc.Notes, &doc.AnalyticalAccountID, &doc.SourceDocumentID,
		&doc.DocumentURL, &doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	if paymentStatus != nil {
		doc.PaymentStatus = PaymentStatus(*paymentStatus)
	}
	return doc, nil
}
