package catalog

import (
	"context"
	"fmt"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

// Service handles catalog business rules.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ProductInput describes the create/update payload.
type ProductInput struct {
	Name                string      `json:"name" validate:"required"`
	SKU                 string      `json:"sku" validate:"required"`
	Description         string      `json:"description,omitempty"`
	ProductType         ProductType `json:"product_type" validate:"required,oneof=goods service"`
	Category            string      `json:"category,omitempty"`
	Unit                string      `json:"unit" validate:"required"`
	PurchasePrice       float64     `json:"purchase_price" validate:"gte=0"`
	SalePrice           float64     `json:"sale_price" validate:"gte=0"`
	TaxRate             float64     `json:"tax_rate" validate:"gte=0"`
	HSNCode             string      `json:"hsn_code,omitempty"`
	AnalyticalAccountID *int64      `json:"default_analytical_account_id,omitempty"`
}

// Create persists a product.
func (s *Service) Create(ctx context.Context, input ProductInput) (*Product, error) {
	id, err := s.repo.Create(ctx, productFromInput(input))
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update rewrites a product.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (*Product, error) {
	product := productFromInput(input)
	product.ID = id
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns products matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// Categories returns the distinct category labels in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Archive toggles the archived flag.
func (s *Service) Archive(ctx context.Context, id int64, archived bool) error {
	return s.repo.SetArchived(ctx, id, archived)
}

// Product implements documents.CatalogPort. Archived products cannot seed
// new lines.
func (s *Service) Product(ctx context.Context, id int64) (documents.CatalogProduct, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return documents.CatalogProduct{}, err
	}
	if p.IsArchived {
		return documents.CatalogProduct{}, fmt.Errorf("%w: product archived", ErrValidation)
	}
	return documents.CatalogProduct{
		ID:             p.ID,
		Name:           p.Name,
		SKU:            p.SKU,
		Unit:           p.Unit,
		SalePrice:      p.SalePrice,
		PurchasePrice:  p.PurchasePrice,
		TaxRatePercent: p.TaxRate,
	}, nil
}

func productFromInput(input ProductInput) Product {
	return Product{
		Name:                input.Name,
		SKU:                 input.SKU,
		Description:         input.Description,
		ProductType:         input.ProductType,
		Category:            input.Category,
		Unit:                input.Unit,
		PurchasePrice:       input.PurchasePrice,
		SalePrice:           input.SalePrice,
		TaxRate:             input.TaxRate,
		HSNCode:             input.HSNCode,
		AnalyticalAccountID: input.AnalyticalAccountID,
	}
}
