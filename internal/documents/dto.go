package documents

import (
	"bytes"
	"strconv"
	"time"
)

// Amount is a float64 that tolerates sloppy client input: JSON numbers,
// numeric strings, and anything unparsable coerces to 0 so the totals
// computation stays a total function.
type Amount float64

// UnmarshalJSON implements the coercion contract.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			*a = 0
			return nil
		}
		data = []byte(unquoted)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Amount(v)
	return nil
}

// LineItemRequest is one submitted line. UnitPrice and TaxRate are optional
// overrides; when absent the catalog product seeds them per the document
// direction.
type LineItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  Amount  `json:"quantity" validate:"required,gt=0"`
	UnitPrice *Amount `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	TaxRate   *Amount `json:"tax_rate,omitempty" validate:"omitempty,gte=0"`
}

// CreateDocumentRequest is the POST payload shared by all four collections.
type CreateDocumentRequest struct {
	ContactID           int64             `json:"contact_id" validate:"required,gt=0"`
	DocumentDate        time.Time         `json:"document_date"`
	DueDate             *time.Time        `json:"due_date,omitempty"`
	Notes               string            `json:"notes,omitempty"`
	AnalyticalAccountID *int64            `json:"analytical_account_id,omitempty"`
	SourceDocumentID    *int64            `json:"source_document_id,omitempty"`
	Items               []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateDocumentRequest replaces header fields and, when Items is non-nil,
// the full line set. Only draft documents accept updates.
type UpdateDocumentRequest struct {
	ContactID           *int64             `json:"contact_id,omitempty" validate:"omitempty,gt=0"`
	DocumentDate        *time.Time         `json:"document_date,omitempty"`
	DueDate             *time.Time         `json:"due_date,omitempty"`
	Notes               *string            `json:"notes,omitempty"`
	AnalyticalAccountID *int64             `json:"analytical_account_id,omitempty"`
	Items               *[]LineItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// ListFilters narrows document listings.
type ListFilters struct {
	Status    Status
	ContactID int64
	Search    string
	Page      int
	PerPage   int
}

// DocumentResponse decorates a document with the actions the client should
// offer in its current state.
type DocumentResponse struct {
	Document
	OfferedActions []Action `json:"offered_actions"`
}

// NewDocumentResponse builds the API representation of doc.
func NewDocumentResponse(cfg KindConfig, doc Document) DocumentResponse {
	return DocumentResponse{
		Document:       doc,
		OfferedActions: cfg.OfferedActions(doc.Status, doc.PaymentStatus),
	}
}
