package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/shiv-furniture/shiverp/internal/contacts"
	"github.com/shiv-furniture/shiverp/internal/documents"
	"github.com/shiv-furniture/shiverp/internal/payments"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

// ErrForbidden indicates the document belongs to another contact.
var ErrForbidden = errors.New("portal: access denied")

// Summary is the portal landing block for one contact.
type Summary struct {
	OpenOrders    int64   `json:"open_orders"`
	OpenInvoices  int64   `json:"open_invoices"`
	OpenBills     int64   `json:"open_bills"`
	TotalDue      float64 `json:"total_due"`
	TotalPaid     float64 `json:"total_paid"`
	OverdueAmount float64 `json:"overdue_amount"`
}

// SummarySource runs the contact-scoped aggregate query.
type SummarySource interface {
	ContactSummary(ctx context.Context, contactID int64) (Summary, error)
}

// DocumentSource is the slice of the document service the portal reads from.
type DocumentSource interface {
	List(ctx context.Context, kind documents.Kind, filters documents.ListFilters) ([]documents.Document, int, error)
	Get(ctx context.Context, kind documents.Kind, id int64) (*documents.Document, error)
	SetDocumentURL(ctx context.Context, kind documents.Kind, id int64, url string) error
}

// ContactSource exposes the contact record behind a portal account.
type ContactSource interface {
	Get(ctx context.Context, id int64) (*contacts.Contact, error)
	UpdateProfile(ctx context.Context, id int64, input contacts.ProfileUpdate) (*contacts.Contact, error)
}

// PaymentRecorder records captured gateway payments.
type PaymentRecorder interface {
	Create(ctx context.Context, input payments.CreatePaymentInput, createdBy int64) (*payments.Payment, error)
}

// Gateway is the slice of the Razorpay client the portal needs.
type Gateway interface {
	Enabled() bool
	KeyID() string
	CreateOrder(ctx context.Context, amount float64, receipt string) (*payments.RazorpayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// IdempotencyGuard keeps retried gateway callbacks from double-recording.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
}

// ProfileInput is the subset of contact fields portal users may edit.
type ProfileInput struct {
	Name            string            `json:"name" validate:"required"`
	Phone           string            `json:"phone"`
	BillingAddress  *contacts.Address `json:"billing_address"`
	ShippingAddress *contacts.Address `json:"shipping_address"`
}

// Service implements contact-scoped portal reads and the checkout flow.
type Service struct {
	docs     DocumentSource
	contacts ContactSource
	payments PaymentRecorder
	summary  SummarySource
	gateway  Gateway
	idem     IdempotencyGuard
}

// NewService constructs the portal service. gateway and idem may be nil when
// online payment is not configured.
func NewService(docs DocumentSource, contactSvc ContactSource, paymentSvc PaymentRecorder, summary SummarySource, gateway Gateway, idem IdempotencyGuard) *Service {
	return &Service{
		docs:     docs,
		contacts: contactSvc,
		payments: paymentSvc,
		summary:  summary,
		gateway:  gateway,
		idem:     idem,
	}
}

// ListDocuments returns the contact's own documents of one kind.
func (s *Service) ListDocuments(ctx context.Context, kind documents.Kind, contactID int64, filters documents.ListFilters) ([]documents.Document, int, error) {
	filters.ContactID = contactID
	return s.docs.List(ctx, kind, filters)
}

// GetDocument returns one document after checking it belongs to the contact.
func (s *Service) GetDocument(ctx context.Context, kind documents.Kind, id, contactID int64) (*documents.Document, error) {
	doc, err := s.docs.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if doc.ContactID != contactID {
		// Not-found keeps other contacts' document ids unguessable.
		return nil, documents.ErrNotFound
	}
	return doc, nil
}

// StoreDocumentURL persists a freshly rendered artifact URL on the document.
func (s *Service) StoreDocumentURL(ctx context.Context, kind documents.Kind, id int64, url string) error {
	return s.docs.SetDocumentURL(ctx, kind, id, url)
}

// ContactSummary aggregates the contact's open positions.
func (s *Service) ContactSummary(ctx context.Context, contactID int64) (Summary, error) {
	return s.summary.ContactSummary(ctx, contactID)
}

// Profile returns the contact record behind the portal account.
func (s *Service) Profile(ctx context.Context, contactID int64) (*contacts.Contact, error) {
	return s.contacts.Get(ctx, contactID)
}

// UpdateProfile applies the editable subset of contact fields.
func (s *Service) UpdateProfile(ctx context.Context, contactID int64, input ProfileInput) (*contacts.Contact, error) {
	return s.contacts.UpdateProfile(ctx, contactID, contacts.ProfileUpdate{
		Name:            input.Name,
		Phone:           input.Phone,
		BillingAddress:  input.BillingAddress,
		ShippingAddress: input.ShippingAddress,
	})
}

// RazorpayKey returns the publishable key for the checkout widget.
func (s *Service) RazorpayKey() (string, error) {
	if s.gateway == nil || !s.gateway.Enabled() {
		return "", fmt.Errorf("%w: online payment not configured", documents.ErrValidation)
	}
	return s.gateway.KeyID(), nil
}

// CreatePaymentOrder registers a gateway order for the invoice's amount due.
func (s *Service) CreatePaymentOrder(ctx context.Context, invoiceID, contactID int64) (*payments.RazorpayOrder, error) {
	if s.gateway == nil || !s.gateway.Enabled() {
		return nil, fmt.Errorf("%w: online payment not configured", documents.ErrValidation)
	}
	doc, err := s.GetDocument(ctx, documents.KindCustomerInvoice, invoiceID, contactID)
	if err != nil {
		return nil, err
	}
	if doc.Status != documents.StatusPosted || doc.AmountDue <= 0 {
		return nil, fmt.Errorf("%w: invoice has nothing due", documents.ErrValidation)
	}
	return s.gateway.CreateOrder(ctx, doc.AmountDue, doc.Number)
}

// VerifyPaymentInput is the capture callback payload from the checkout
// widget.
type VerifyPaymentInput struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// VerifyPayment checks the gateway signature and records the capture as an
// incoming payment. Retried callbacks hit the idempotency guard and return
// cleanly without a second payment.
func (s *Service) VerifyPayment(ctx context.Context, invoiceID, contactID, userID int64, input VerifyPaymentInput) (*payments.Payment, error) {
	if s.gateway == nil || !s.gateway.Enabled() {
		return nil, fmt.Errorf("%w: online payment not configured", documents.ErrValidation)
	}
	if !s.gateway.VerifySignature(input.OrderID, input.PaymentID, input.Signature) {
		return nil, fmt.Errorf("%w: signature verification failed", documents.ErrValidation)
	}
	doc, err := s.GetDocument(ctx, documents.KindCustomerInvoice, invoiceID, contactID)
	if err != nil {
		return nil, err
	}

	if s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, input.PaymentID, "razorpay"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, nil
			}
			return nil, err
		}
	}

	return s.payments.Create(ctx, payments.CreatePaymentInput{
		DocumentKind:    documents.KindCustomerInvoice,
		DocumentID:      doc.ID,
		PaymentMethod:   "razorpay",
		Amount:          doc.AmountDue,
		ReferenceNumber: input.PaymentID,
		Notes:           "Razorpay order " + input.OrderID,
	}, userID)
}
