package documents

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustConfig(t *testing.T, kind Kind) KindConfig {
	t.Helper()
	cfg, ok := ConfigFor(kind)
	require.True(t, ok)
	return cfg
}

func TestRecomputeLineSalesIncludesTax(t *testing.T) {
	cfg := mustConfig(t, KindSalesOrder)
	item := LineItem{Quantity: 2, UnitPrice: 100, TaxRatePercent: 18}

	cfg.RecomputeLine(&item)

	require.InDelta(t, 200.0, item.Subtotal, 1e-9)
	require.InDelta(t, 36.0, item.TaxAmount, 1e-9)
	require.InDelta(t, 236.0, item.LineTotal, 1e-9)
}

func TestRecomputeLineVendorBillExcludesTax(t *testing.T) {
	cfg := mustConfig(t, KindVendorBill)
	item := LineItem{Quantity: 2, UnitPrice: 100, TaxRatePercent: 18}

	cfg.RecomputeLine(&item)

	require.InDelta(t, 200.0, item.Subtotal, 1e-9)
	require.InDelta(t, 36.0, item.TaxAmount, 1e-9)
	require.InDelta(t, 200.0, item.LineTotal, 1e-9)
}

func TestRecomputeLineIdempotent(t *testing.T) {
	cfg := mustConfig(t, KindCustomerInvoice)
	item := LineItem{Quantity: 3, UnitPrice: 19.99, TaxRatePercent: 5}

	cfg.RecomputeLine(&item)
	first := item
	cfg.RecomputeLine(&item)

	require.Equal(t, first, item)
}

func TestComputeTotalsPerLineTax(t *testing.T) {
	cfg := mustConfig(t, KindSalesOrder)
	items := []LineItem{
		{Quantity: 2, UnitPrice: 100, TaxRatePercent: 18},
		{Quantity: 1, UnitPrice: 50, TaxRatePercent: 0},
	}

	totals := cfg.ComputeTotals(items)

	require.InDelta(t, 250.0, totals.Subtotal, 1e-9)
	require.InDelta(t, 36.0, totals.TaxTotal, 1e-9)
	require.InDelta(t, 286.0, totals.Total, 1e-9)
	require.InDelta(t, totals.Subtotal+totals.TaxTotal, totals.Total, 1e-9)
}

func TestComputeTotalsEmpty(t *testing.T) {
	cfg := mustConfig(t, KindVendorBill)

	totals := cfg.ComputeTotals(nil)

	require.Zero(t, totals.Subtotal)
	require.Zero(t, totals.TaxTotal)
	require.Zero(t, totals.Total)
}

func TestApplyProductSeedsByDirection(t *testing.T) {
	product := CatalogProduct{ID: 7, Name: "Teak Chair", SKU: "TC-01", Unit: "pcs", SalePrice: 120, PurchasePrice: 80, TaxRatePercent: 12}

	sales := mustConfig(t, KindSalesOrder)
	item := LineItem{Quantity: 4}
	sales.ApplyProduct(&item, product)
	require.Equal(t, 4.0, item.Quantity)
	require.Equal(t, 120.0, item.UnitPrice)
	require.Equal(t, 12.0, item.TaxRatePercent)
	require.Equal(t, "Teak Chair", item.ProductName)
	require.InDelta(t, 4*120*1.12, item.LineTotal, 1e-9)

	purchase := mustConfig(t, KindPurchaseOrder)
	item = LineItem{Quantity: 4}
	purchase.ApplyProduct(&item, product)
	require.Equal(t, 80.0, item.UnitPrice)
}

func TestAddItemPreservesExisting(t *testing.T) {
	cfg := mustConfig(t, KindSalesOrder)
	items := []LineItem{{Quantity: 2, UnitPrice: 100, TaxRatePercent: 18, LineOrder: 1}}
	before := cfg.ComputeTotals(items)

	items = AddItem(items)

	require.Len(t, items, 2)
	require.Equal(t, 1.0, items[1].Quantity)
	require.Zero(t, items[1].UnitPrice)
	require.Equal(t, 2, items[1].LineOrder)
	after := cfg.ComputeTotals(items)
	require.InDelta(t, before.Subtotal, after.Subtotal, 1e-9)
	require.InDelta(t, before.Total, after.Total, 1e-9)
}

func TestRemoveItemShiftsDown(t *testing.T) {
	items := []LineItem{{ProductID: 1}, {ProductID: 2}, {ProductID: 3}}

	out, err := RemoveItem(items, 1)

	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int64(1), out[0].ProductID)
	require.Equal(t, int64(3), out[1].ProductID)
}

func TestRemoveItemOutOfRange(t *testing.T) {
	items := []LineItem{{ProductID: 1}}

	_, err := RemoveItem(items, 1)
	require.Error(t, err)

	_, err = RemoveItem(items, -1)
	require.Error(t, err)
}

func TestAmountCoercion(t *testing.T) {
	var payload struct {
		Quantity Amount `json:"quantity"`
		Price    Amount `json:"price"`
		Tax      Amount `json:"tax"`
	}

	err := json.Unmarshal([]byte(`{"quantity":"3","price":"abc","tax":null}`), &payload)

	require.NoError(t, err)
	require.Equal(t, Amount(3), payload.Quantity)
	require.Zero(t, payload.Price)
	require.Zero(t, payload.Tax)
}
