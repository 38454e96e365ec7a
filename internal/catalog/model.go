package catalog

import (
	"errors"
	"time"
)

// ProductType distinguishes stocked goods from services.
type ProductType string

const (
	TypeGoods   ProductType = "goods"
	TypeService ProductType = "service"
)

// Product is a catalog entry. Sale and purchase prices seed document lines
// depending on the document direction; lines snapshot these values and never
// follow later edits.
type Product struct {
	ID                  int64       `json:"id"`
	Name                string      `json:"name"`
	SKU                 string      `json:"sku"`
	Description         string      `json:"description,omitempty"`
	ProductType         ProductType `json:"product_type"`
	Category            string      `json:"category,omitempty"`
	Unit                string      `json:"unit"`
	PurchasePrice       float64     `json:"purchase_price"`
	SalePrice           float64     `json:"sale_price"`
	TaxRate             float64     `json:"tax_rate"`
	HSNCode             string      `json:"hsn_code,omitempty"`
	AnalyticalAccountID *int64      `json:"default_analytical_account_id,omitempty"`
	IsArchived          bool        `json:"is_archived"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

var (
	// ErrNotFound indicates the product does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("catalog: invalid input")
	// ErrDuplicateSKU indicates the SKU is already taken.
	ErrDuplicateSKU = errors.New("catalog: sku already in use")
)
