package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

type memoryRepo struct {
	payments map[int64]Payment
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{payments: map[int64]Payment{}}
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Payment, int, error) {
	var out []Payment
	for _, p := range m.payments {
		if filters.PaymentType != "" && p.PaymentType != filters.PaymentType {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Create(_ context.Context, payment Payment) (int64, error) {
	m.nextID++
	payment.ID = m.nextID
	m.payments[payment.ID] = payment
	return payment.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, payment Payment) error {
	if _, ok := m.payments[payment.ID]; !ok {
		return ErrNotFound
	}
	m.payments[payment.ID] = payment
	return nil
}

func (m *memoryRepo) SetReconciled(_ context.Context, id int64, reconciled bool) error {
	p, ok := m.payments[id]
	if !ok {
		return ErrNotFound
	}
	p.IsReconciled = reconciled
	m.payments[id] = p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.payments[id]; !ok {
		return ErrNotFound
	}
	delete(m.payments, id)
	return nil
}

type stubDocs struct {
	docs map[int64]*documents.Document
}

func (s *stubDocs) Get(_ context.Context, _ documents.Kind, id int64) (*documents.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	return doc, nil
}

func (s *stubDocs) ApplyPayment(_ context.Context, _ documents.Kind, id int64, amount float64) (*documents.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	if doc.Status != documents.StatusPosted {
		return nil, fmt.Errorf("%w: payments require a posted document", documents.ErrInvalidTransition)
	}
	if amount > doc.AmountDue {
		return nil, fmt.Errorf("%w: payment exceeds amount due", documents.ErrValidation)
	}
	doc.AmountPaid += amount
	doc.AmountDue -= amount
	doc.PaymentStatus = documents.DerivePaymentStatus(doc.AmountPaid, doc.Total)
	return doc, nil
}

func testService() (*Service, *memoryRepo, *stubDocs) {
	repo := newMemoryRepo()
	docs := &stubDocs{docs: map[int64]*documents.Document{
		1: {ID: 1, Kind: documents.KindCustomerInvoice, ContactID: 10, Status: documents.StatusPosted, Total: 1000, AmountDue: 1000},
		2: {ID: 2, Kind: documents.KindVendorBill, ContactID: 20, Status: documents.StatusPosted, Total: 500, AmountDue: 500},
		3: {ID: 3, Kind: documents.KindCustomerInvoice, ContactID: 10, Status: documents.StatusDraft, Total: 100, AmountDue: 100},
	}}
	return NewService(repo, docs), repo, docs
}

func TestCreatePaymentAppliesToDocument(t *testing.T) {
	svc, _, docs := testService()

	payment, err := svc.Create(context.Background(), CreatePaymentInput{
		DocumentKind:  documents.KindCustomerInvoice,
		DocumentID:    1,
		PaymentMethod: "bank_transfer",
		Amount:        400,
	}, 7)
	require.NoError(t, err)
	require.Equal(t, PaymentIncoming, payment.PaymentType)
	require.Equal(t, int64(10), payment.ContactID)
	require.Equal(t, int64(7), payment.CreatedBy)
	require.NotEmpty(t, payment.PaymentNumber)
	require.Equal(t, 600.0, docs.docs[1].AmountDue)
	require.Equal(t, documents.PaymentStatusPartiallyPaid, docs.docs[1].PaymentStatus)
}

func TestCreatePaymentOutgoingForBills(t *testing.T) {
	svc, _, _ := testService()
	payment, err := svc.Create(context.Background(), CreatePaymentInput{
		DocumentKind:  documents.KindVendorBill,
		DocumentID:    2,
		PaymentMethod: "cheque",
		Amount:        500,
	}, 1)
	require.NoError(t, err)
	require.Equal(t, PaymentOutgoing, payment.PaymentType)
}

func TestCreatePaymentRejectsUnpostedDocument(t *testing.T) {
	svc, repo, _ := testService()
	_, err := svc.Create(context.Background(), CreatePaymentInput{
		DocumentKind:  documents.KindCustomerInvoice,
		DocumentID:    3,
		PaymentMethod: "cash",
		Amount:        50,
	}, 1)
	require.ErrorIs(t, err, documents.ErrInvalidTransition)
	require.Empty(t, repo.payments)
}

func TestCreatePaymentRejectsUnknownMethod(t *testing.T) {
	svc, _, _ := testService()
	_, err := svc.Create(context.Background(), CreatePaymentInput{
		DocumentKind:  documents.KindCustomerInvoice,
		DocumentID:    1,
		PaymentMethod: "barter",
		Amount:        50,
	}, 1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestReconcileLocksPayment(t *testing.T) {
	svc, _, _ := testService()
	payment, err := svc.Create(context.Background(), CreatePaymentInput{
		DocumentKind:  documents.KindCustomerInvoice,
		DocumentID:    1,
		PaymentMethod: "upi",
		Amount:        100,
	}, 1)
	require.NoError(t, err)

	reconciled, err := svc.Reconcile(context.Background(), payment.ID)
	require.NoError(t, err)
	require.True(t, reconciled.IsReconciled)

	_, err = svc.Reconcile(context.Background(), payment.ID)
	require.ErrorIs(t, err, ErrAlreadyReconciled)

	_, err = svc.Update(context.Background(), payment.ID, UpdatePaymentInput{PaymentMethod: "cash"})
	require.ErrorIs(t, err, ErrAlreadyReconciled)

	require.ErrorIs(t, svc.Delete(context.Background(), payment.ID), ErrAlreadyReconciled)
}
