package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

// DocumentPort is the slice of the document service payments depend on.
// Recording a payment must go through ApplyPayment so amount_paid,
// amount_due and payment_status stay consistent.
type DocumentPort interface {
	Get(ctx context.Context, kind documents.Kind, id int64) (*documents.Document, error)
	ApplyPayment(ctx context.Context, kind documents.Kind, id int64, amount float64) (*documents.Document, error)
}

// CreatePaymentInput carries a payment create payload.
type CreatePaymentInput struct {
	DocumentKind    documents.Kind `json:"document_kind" validate:"required,oneof=customer_invoice vendor_bill"`
	DocumentID      int64          `json:"document_id" validate:"required,gt=0"`
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	PaymentDate     time.Time      `json:"payment_date"`
	Amount          float64        `json:"amount" validate:"required,gt=0"`
	ReferenceNumber string         `json:"reference_number"`
	Notes           string         `json:"notes"`
}

// UpdatePaymentInput edits the descriptive fields of a payment. The amount
// is immutable once recorded.
type UpdatePaymentInput struct {
	PaymentMethod   string    `json:"payment_method" validate:"required"`
	PaymentDate     time.Time `json:"payment_date"`
	ReferenceNumber string    `json:"reference_number"`
	Notes           string    `json:"notes"`
}

// Service implements payment operations.
type Service struct {
	repo Repository
	docs DocumentPort
}

// NewService constructs the payment service.
func NewService(repo Repository, docs DocumentPort) *Service {
	return &Service{repo: repo, docs: docs}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Payment, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create applies the amount to the document first, then records the payment
// row. ApplyPayment rejects unposted documents and over-payments, so a
// rejected payment leaves no row behind.
func (s *Service) Create(ctx context.Context, input CreatePaymentInput, createdBy int64) (*Payment, error) {
	if !validMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, input.PaymentMethod)
	}

	doc, err := s.docs.ApplyPayment(ctx, input.DocumentKind, input.DocumentID, input.Amount)
	if err != nil {
		return nil, err
	}

	paymentType := PaymentIncoming
	if input.DocumentKind == documents.KindVendorBill {
		paymentType = PaymentOutgoing
	}
	payment := Payment{
		PaymentNumber:   generatePaymentNumber(),
		PaymentType:     paymentType,
		PaymentMethod:   input.PaymentMethod,
		ContactID:       doc.ContactID,
		DocumentKind:    input.DocumentKind,
		DocumentID:      input.DocumentID,
		PaymentDate:     defaultTime(input.PaymentDate),
		Amount:          input.Amount,
		ReferenceNumber: input.ReferenceNumber,
		Notes:           input.Notes,
		CreatedBy:       createdBy,
	}
	id, err := s.repo.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, input UpdatePaymentInput) (*Payment, error) {
	if !validMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, input.PaymentMethod)
	}
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.IsReconciled {
		return nil, fmt.Errorf("%w: reconciled payments are read-only", ErrAlreadyReconciled)
	}
	payment.PaymentMethod = input.PaymentMethod
	payment.PaymentDate = defaultTime(input.PaymentDate)
	payment.ReferenceNumber = input.ReferenceNumber
	payment.Notes = input.Notes
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Reconcile marks a payment as matched against a bank statement.
func (s *Service) Reconcile(ctx context.Context, id int64) (*Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.IsReconciled {
		return nil, ErrAlreadyReconciled
	}
	if err := s.repo.SetReconciled(ctx, id, true); err != nil {
		return nil, err
	}
	payment.IsReconciled = true
	return &payment, nil
}

// Delete removes an unreconciled payment record. The document's paid amount
// is not rolled back: corrections go through a counter-entry, matching how
// the ledger treats posted documents.
func (s *Service) Delete(ctx context.Context, id int64) error {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if payment.IsReconciled {
		return ErrAlreadyReconciled
	}
	return s.repo.Delete(ctx, id)
}

func validMethod(method string) bool {
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}

func generatePaymentNumber() string {
	id := uuid.NewString()
	return "PAY-" + strings.ToUpper(id[:8])
}

func defaultTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
