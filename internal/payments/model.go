package payments

import (
	"errors"
	"time"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

// PaymentType tells whether money came in or went out.
type PaymentType string

const (
	PaymentIncoming PaymentType = "incoming"
	PaymentOutgoing PaymentType = "outgoing"
)

// Methods lists the accepted payment methods, in display order.
var Methods = []string{"cash", "bank_transfer", "cheque", "upi", "card", "razorpay"}

// Payment settles part or all of a posted invoice or bill.
type Payment struct {
	ID              int64          `json:"id"`
	PaymentNumber   string         `json:"payment_number"`
	PaymentType     PaymentType    `json:"payment_type"`
	PaymentMethod   string         `json:"payment_method"`
	ContactID       int64          `json:"contact_id"`
	ContactName     string         `json:"contact_name,omitempty"`
	DocumentKind    documents.Kind `json:"document_kind"`
	DocumentID      int64          `json:"document_id"`
	DocumentNumber  string         `json:"document_number,omitempty"`
	PaymentDate     time.Time      `json:"payment_date"`
	Amount          float64        `json:"amount"`
	ReferenceNumber string         `json:"reference_number,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	IsReconciled    bool           `json:"is_reconciled"`
	CreatedBy       int64          `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

var (
	// ErrNotFound indicates the payment does not exist.
	ErrNotFound = errors.New("payments: not found")
	// ErrValidation indicates a rejected payload.
	ErrValidation = errors.New("payments: validation failed")
	// ErrAlreadyReconciled indicates a repeated reconcile call.
	ErrAlreadyReconciled = errors.New("payments: already reconciled")
)
