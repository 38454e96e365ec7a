package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiv-furniture/shiverp/internal/platform/db"
)

// ListFilters narrows product listings.
type ListFilters struct {
	Search   string
	Category string
	Archived *bool
	Page     int
	PerPage  int
}

// Repository describes product persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (int64, error)
	Update(ctx context.Context, product Product) error
	SetArchived(ctx context.Context, id int64, archived bool) error
	Categories(ctx context.Context) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, name, sku, description, product_type, category, unit, purchase_price,
	sale_price, tax_rate, hsn_code, analytical_account_id, is_archived, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR sku ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Category != "" {
		argCount++
		where += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filters.Category)
	}
	if filters.Archived != nil {
		argCount++
		where += ` AND is_archived = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Archived)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name`
	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		off := (filters.Page - 1) * filters.PerPage
		if off < 0 {
			off = 0
		}
		args = append(args, off)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products
		(name, sku, description, product_type, category, unit, purchase_price, sale_price, tax_rate,
		 hsn_code, analytical_account_id, is_archived, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,false,NOW(),NOW()) RETURNING id`,
		product.Name, product.SKU, product.Description, product.ProductType, product.Category, product.Unit,
		product.PurchasePrice, product.SalePrice, product.TaxRate, product.HSNCode, product.AnalyticalAccountID).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_products_sku") {
			return 0, ErrDuplicateSKU
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name=$2, sku=$3, description=$4, product_type=$5,
		category=$6, unit=$7, purchase_price=$8, sale_price=$9, tax_rate=$10, hsn_code=$11,
		analytical_account_id=$12, updated_at=NOW() WHERE id=$1`,
		product.ID, product.Name, product.SKU, product.Description, product.ProductType, product.Category,
		product.Unit, product.PurchasePrice, product.SalePrice, product.TaxRate, product.HSNCode,
		product.AnalyticalAccountID)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_products_sku") {
			return ErrDuplicateSKU
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetArchived(ctx context.Context, id int64, archived bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_archived=$2, updated_at=NOW() WHERE id=$1`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.ProductType, &p.Category, &p.Unit,
		&p.PurchasePrice, &p.SalePrice, &p.TaxRate, &p.HSNCode, &p.AnalyticalAccountID, &p.IsArchived,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}
