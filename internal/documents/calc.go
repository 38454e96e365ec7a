package documents

import "fmt"

// CatalogProduct carries the catalog fields the calculator needs when a
// product is selected onto a line.
type CatalogProduct struct {
	ID             int64
	Name           string
	SKU            string
	Unit           string
	SalePrice      float64
	PurchasePrice  float64
	TaxRatePercent float64
}

// Totals aggregates document-level amounts.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	TaxTotal float64 `json:"tax_total"`
	Total    float64 `json:"total"`
}

// RecomputeLine rewrites the derived fields of item from its quantity, unit
// price and tax rate. It is pure over those inputs and idempotent. Tax is
// computed per line; rates are never blended across lines.
func (c KindConfig) RecomputeLine(item *LineItem) {
	base := item.Quantity * item.UnitPrice
	tax := base * item.TaxRatePercent / 100
	item.Subtotal = base
	item.TaxAmount = tax
	if c.TaxInLineTotal {
		item.LineTotal = base + tax
	} else {
		item.LineTotal = base
	}
}

// ApplyProduct snapshots the product onto the line and seeds unit price and
// tax rate from the catalog. Sales-direction kinds take the sale price,
// purchase-direction kinds the purchase price. Quantity is left untouched.
func (c KindConfig) ApplyProduct(item *LineItem, p CatalogProduct) {
	item.ProductID = p.ID
	item.ProductName = p.Name
	item.ProductSKU = p.SKU
	item.Unit = p.Unit
	if c.Direction == DirectionSales {
		item.UnitPrice = p.SalePrice
	} else {
		item.UnitPrice = p.PurchasePrice
	}
	item.TaxRatePercent = p.TaxRatePercent
	c.RecomputeLine(item)
}

// ComputeTotals recomputes document totals from scratch over all items. It is
// a view over the current items, never cached or incrementally maintained, so
// accumulation order cannot drift the result. An empty item set yields zeros.
func (c KindConfig) ComputeTotals(items []LineItem) Totals {
	var t Totals
	for i := range items {
		base := items[i].Quantity * items[i].UnitPrice
		t.Subtotal += base
		t.TaxTotal += base * items[i].TaxRatePercent / 100
	}
	t.Total = t.Subtotal + t.TaxTotal
	return t
}

// AddItem appends a fresh line with quantity 1 and zeroed monetary fields,
// leaving the order of existing items unchanged.
func AddItem(items []LineItem) []LineItem {
	return append(items, LineItem{Quantity: 1, LineOrder: len(items) + 1})
}

// RemoveItem deletes the line at index, shifting later lines down by one.
// An out-of-range index is a hard error.
func RemoveItem(items []LineItem, index int) ([]LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("documents: remove item: index %d out of range [0,%d)", index, len(items))
	}
	out := make([]LineItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	return out, nil
}
