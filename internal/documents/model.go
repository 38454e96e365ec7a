package documents

import "time"

// Document is the persisted header of an order, invoice or bill.
type Document struct {
	ID                  int64         `json:"id"`
	Kind                Kind          `json:"kind"`
	Number              string        `json:"number"`
	ContactID           int64         `json:"contact_id"`
	ContactName         string        `json:"contact_name,omitempty"`
	DocumentDate        time.Time     `json:"document_date"`
	DueDate             *time.Time    `json:"due_date,omitempty"`
	Status              Status        `json:"status"`
	PaymentStatus       PaymentStatus `json:"payment_status,omitempty"`
	Subtotal            float64       `json:"subtotal"`
	TaxTotal            float64       `json:"tax_total"`
	Total               float64       `json:"total"`
	AmountPaid          float64       `json:"amount_paid"`
	AmountDue           float64       `json:"amount_due"`
	Notes               string        `json:"notes,omitempty"`
	AnalyticalAccountID *int64        `json:"analytical_account_id,omitempty"`
	SourceDocumentID    *int64        `json:"source_document_id,omitempty"`
	DocumentURL         *string       `json:"document_url,omitempty"`
	CreatedBy           int64         `json:"created_by"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
	Items               []LineItem    `json:"items,omitempty"`
}

// LineItem is one product row of a document. ProductName, ProductSKU and Unit
// are snapshots taken at selection time and never follow later catalog edits.
type LineItem struct {
	ID             int64   `json:"id"`
	DocumentID     int64   `json:"document_id"`
	ProductID      int64   `json:"product_id"`
	ProductName    string  `json:"product_name"`
	ProductSKU     string  `json:"product_sku,omitempty"`
	Unit           string  `json:"unit,omitempty"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	TaxRatePercent float64 `json:"tax_rate"`
	Subtotal       float64 `json:"subtotal"`
	TaxAmount      float64 `json:"tax_amount"`
	LineTotal      float64 `json:"total"`
	LineOrder      int     `json:"line_order"`
}
