package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

func TestBuildHTML(t *testing.T) {
	r := NewRenderer(nil, nil, "Shiv Furniture")
	cfg, ok := documents.ConfigFor(documents.KindCustomerInvoice)
	require.True(t, ok)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	doc := documents.Document{
		Number:       "INV-2026-00042",
		ContactName:  "Asha Interiors",
		DocumentDate: time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC),
		DueDate:      &due,
		Subtotal:     120000,
		TaxTotal:     21600,
		Total:        141600,
		AmountPaid:   41600,
		AmountDue:    100000,
		Items: []documents.LineItem{
			{LineOrder: 1, ProductName: "Teak Dining Table", ProductSKU: "TDT-6S", Quantity: 2, Unit: "pcs",
				UnitPrice: 60000, TaxRatePercent: 18, Subtotal: 120000, TaxAmount: 21600, LineTotal: 141600},
		},
	}

	html, err := r.buildHTML(cfg, doc)
	require.NoError(t, err)
	require.Contains(t, html, "INV-2026-00042")
	require.Contains(t, html, "Tax Invoice")
	require.Contains(t, html, "Teak Dining Table (TDT-6S)")
	// Indian digit grouping.
	require.Contains(t, html, "1,20,000.00")
	require.Contains(t, html, "1,00,000.00")
	require.Contains(t, html, "15 Sep 2026")
}

func TestFileStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "/files/documents/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "inv-2026-00042.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	require.Equal(t, "/files/documents/inv-2026-00042.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "inv-2026-00042.pdf"))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(data))
}
