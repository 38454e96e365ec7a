package contacts

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiv-furniture/shiverp/internal/platform/db"
)

// ListFilters narrows contact listings.
type ListFilters struct {
	Type     ContactType
	Search   string
	Archived *bool
	Page     int
	PerPage  int
}

// Repository describes contact persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Contact, int, error)
	Get(ctx context.Context, id int64) (Contact, error)
	Create(ctx context.Context, contact Contact) (int64, error)
	Update(ctx context.Context, contact Contact) error
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const contactColumns = `id, name, email, phone, contact_type, company_name, gstin, pan,
	billing_address, shipping_address, credit_limit, payment_terms, notes, is_archived, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Contact, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Type != "" {
		argCount++
		// "both" contacts appear in customer and vendor listings.
		where += ` AND (contact_type = $` + strconv.Itoa(argCount) + ` OR contact_type = 'both')`
		args = append(args, filters.Type)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR email ILIKE $` + strconv.Itoa(argCount) + ` OR company_name ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Archived != nil {
		argCount++
		where += ` AND is_archived = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Archived)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + where + ` ORDER BY name`
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

	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, c)
	}
	return contacts, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, contact Contact) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO contacts
		(name, email, phone, contact_type, company_name, gstin, pan, billing_address, shipping_address,
		 credit_limit, payment_terms, notes, is_archived, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,false,NOW(),NOW()) RETURNING id`,
		contact.Name, contact.Email, contact.Phone, contact.ContactType, contact.CompanyName,
		contact.GSTIN, contact.PAN, contact.BillingAddress, contact.ShippingAddress,
		contact.CreditLimit, contact.PaymentTerms, contact.Notes).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_contacts_email") {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, contact Contact) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contacts SET name=$2, email=$3, phone=$4, contact_type=$5,
		company_name=$6, gstin=$7, pan=$8, billing_address=$9, shipping_address=$10, credit_limit=$11,
		payment_terms=$12, notes=$13, updated_at=NOW() WHERE id=$1`,
		contact.ID, contact.Name, contact.Email, contact.Phone, contact.ContactType, contact.CompanyName,
		contact.GSTIN, contact.PAN, contact.BillingAddress, contact.ShippingAddress, contact.CreditLimit,
		contact.PaymentTerms, contact.Notes)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_contacts_email") {
			return ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contacts SET is_archived=$2, updated_at=NOW() WHERE id=$1`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ContactType, &c.CompanyName, &c.GSTIN, &c.PAN,
		&c.BillingAddress, &c.ShippingAddress, &c.CreditLimit, &c.PaymentTerms, &c.Notes, &c.IsArchived,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func offset(page, perPage int) int {
	o := (page - 1) * perPage
	if o < 0 {
		return 0
	}
	return o
}
