package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiv-furniture/shiverp/internal/contacts"
	"github.com/shiv-furniture/shiverp/internal/documents"
	"github.com/shiv-furniture/shiverp/internal/payments"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

type stubDocs struct {
	docs map[int64]documents.Document
}

func (s *stubDocs) List(_ context.Context, kind documents.Kind, filters documents.ListFilters) ([]documents.Document, int, error) {
	var out []documents.Document
	for _, doc := range s.docs {
		if doc.Kind != kind {
			continue
		}
		if filters.ContactID != 0 && doc.ContactID != filters.ContactID {
			continue
		}
		out = append(out, doc)
	}
	return out, len(out), nil
}

func (s *stubDocs) Get(_ context.Context, kind documents.Kind, id int64) (*documents.Document, error) {
	doc, ok := s.docs[id]
	if !ok || doc.Kind != kind {
		return nil, documents.ErrNotFound
	}
	return &doc, nil
}

func (s *stubDocs) SetDocumentURL(_ context.Context, _ documents.Kind, id int64, url string) error {
	doc := s.docs[id]
	doc.DocumentURL = &url
	s.docs[id] = doc
	return nil
}

type stubContacts struct {
	contact contacts.Contact
}

func (s *stubContacts) Get(_ context.Context, id int64) (*contacts.Contact, error) {
	if id != s.contact.ID {
		return nil, contacts.ErrNotFound
	}
	c := s.contact
	return &c, nil
}

func (s *stubContacts) UpdateProfile(_ context.Context, id int64, input contacts.ProfileUpdate) (*contacts.Contact, error) {
	if id != s.contact.ID {
		return nil, contacts.ErrNotFound
	}
	s.contact.Name = input.Name
	s.contact.Phone = input.Phone
	c := s.contact
	return &c, nil
}

type stubPayments struct {
	created []payments.CreatePaymentInput
}

func (s *stubPayments) Create(_ context.Context, input payments.CreatePaymentInput, _ int64) (*payments.Payment, error) {
	s.created = append(s.created, input)
	return &payments.Payment{ID: int64(len(s.created)), Amount: input.Amount, ReferenceNumber: input.ReferenceNumber}, nil
}

type stubSummary struct{ summary Summary }

func (s *stubSummary) ContactSummary(context.Context, int64) (Summary, error) {
	return s.summary, nil
}

type stubGateway struct {
	enabled  bool
	verifyOK bool
	orders   []string
}

func (g *stubGateway) Enabled() bool { return g.enabled }

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

func (g *stubGateway) CreateOrder(_ context.Context, amount float64, receipt string) (*payments.RazorpayOrder, error) {
	g.orders = append(g.orders, receipt)
	return &payments.RazorpayOrder{ID: "order_1", Amount: payments.ToPaise(amount), Currency: "INR", Receipt: receipt}, nil
}

func (g *stubGateway) VerifySignature(_, _, _ string) bool { return g.verifyOK }

type stubIdem struct {
	seen map[string]bool
}

func (s *stubIdem) CheckAndInsert(_ context.Context, key, _ string) error {
	if s.seen[key] {
		return shared.ErrIdempotencyConflict
	}
	s.seen[key] = true
	return nil
}

func newFixture(gateway *stubGateway) (*Service, *stubDocs, *stubPayments) {
	due := 1200.0
	docs := &stubDocs{docs: map[int64]documents.Document{
		1: {ID: 1, Kind: documents.KindCustomerInvoice, ContactID: 7, Number: "INV-2026-00001", Status: documents.StatusPosted, AmountDue: due},
		2: {ID: 2, Kind: documents.KindCustomerInvoice, ContactID: 9, Number: "INV-2026-00002", Status: documents.StatusPosted, AmountDue: 300},
		3: {ID: 3, Kind: documents.KindCustomerInvoice, ContactID: 7, Number: "INV-2026-00003", Status: documents.StatusDraft},
		4: {ID: 4, Kind: documents.KindSalesOrder, ContactID: 7, Number: "SO-2026-00001", Status: documents.StatusConfirmed},
	}}
	pays := &stubPayments{}
	svc := NewService(docs, &stubContacts{contact: contacts.Contact{ID: 7, Name: "Asha Interiors"}}, pays,
		&stubSummary{}, gateway, &stubIdem{seen: map[string]bool{}})
	return svc, docs, pays
}

func TestListDocumentsScopesToContact(t *testing.T) {
	svc, _, _ := newFixture(&stubGateway{})

	// A caller-supplied contact filter must not widen the scope.
	docs, total, err := svc.ListDocuments(context.Background(), documents.KindCustomerInvoice, 7, documents.ListFilters{ContactID: 9})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	for _, doc := range docs {
		require.Equal(t, int64(7), doc.ContactID)
	}
}

func TestGetDocumentHidesOtherContacts(t *testing.T) {
	svc, _, _ := newFixture(&stubGateway{})

	_, err := svc.GetDocument(context.Background(), documents.KindCustomerInvoice, 2, 7)
	require.ErrorIs(t, err, documents.ErrNotFound)

	doc, err := svc.GetDocument(context.Background(), documents.KindCustomerInvoice, 1, 7)
	require.NoError(t, err)
	require.Equal(t, "INV-2026-00001", doc.Number)
}

func TestCreatePaymentOrder(t *testing.T) {
	gateway := &stubGateway{enabled: true, verifyOK: true}
	svc, _, _ := newFixture(gateway)

	order, err := svc.CreatePaymentOrder(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, int64(120000), order.Amount)
	require.Equal(t, []string{"INV-2026-00001"}, gateway.orders)

	// Draft invoices have nothing due.
	_, err = svc.CreatePaymentOrder(context.Background(), 3, 7)
	require.ErrorIs(t, err, documents.ErrValidation)

	// Someone else's invoice looks like it does not exist.
	_, err = svc.CreatePaymentOrder(context.Background(), 2, 7)
	require.ErrorIs(t, err, documents.ErrNotFound)
}

func TestCreatePaymentOrderRequiresGateway(t *testing.T) {
	svc, _, _ := newFixture(&stubGateway{enabled: false})

	_, err := svc.CreatePaymentOrder(context.Background(), 1, 7)
	require.ErrorIs(t, err, documents.ErrValidation)

	_, err = svc.RazorpayKey()
	require.ErrorIs(t, err, documents.ErrValidation)
}

func TestVerifyPaymentRecordsCapture(t *testing.T) {
	gateway := &stubGateway{enabled: true, verifyOK: true}
	svc, _, pays := newFixture(gateway)

	input := VerifyPaymentInput{OrderID: "order_1", PaymentID: "pay_abc", Signature: "sig"}
	payment, err := svc.VerifyPayment(context.Background(), 1, 7, 42, input)
	require.NoError(t, err)
	require.NotNil(t, payment)
	require.Len(t, pays.created, 1)
	require.Equal(t, documents.KindCustomerInvoice, pays.created[0].DocumentKind)
	require.Equal(t, "razorpay", pays.created[0].PaymentMethod)
	require.Equal(t, 1200.0, pays.created[0].Amount)
	require.Equal(t, "pay_abc", pays.created[0].ReferenceNumber)
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	gateway := &stubGateway{enabled: true, verifyOK: false}
	svc, _, pays := newFixture(gateway)

	input := VerifyPaymentInput{OrderID: "order_1", PaymentID: "pay_abc", Signature: "bad"}
	_, err := svc.VerifyPayment(context.Background(), 1, 7, 42, input)
	require.ErrorIs(t, err, documents.ErrValidation)
	require.Empty(t, pays.created)
}

func TestVerifyPaymentIsIdempotent(t *testing.T) {
	gateway := &stubGateway{enabled: true, verifyOK: true}
	svc, _, pays := newFixture(gateway)

	input := VerifyPaymentInput{OrderID: "order_1", PaymentID: "pay_abc", Signature: "sig"}
	first, err := svc.VerifyPayment(context.Background(), 1, 7, 42, input)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := svc.VerifyPayment(context.Background(), 1, 7, 42, input)
	require.NoError(t, err)
	require.Nil(t, second)
	require.Len(t, pays.created, 1)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newFixture(&stubGateway{})

	contact, err := svc.UpdateProfile(context.Background(), 7, ProfileInput{Name: "Asha Interiors Pvt Ltd", Phone: "+91 98200 00000"})
	require.NoError(t, err)
	require.Equal(t, "Asha Interiors Pvt Ltd", contact.Name)

	_, err = svc.UpdateProfile(context.Background(), 8, ProfileInput{Name: "x"})
	require.True(t, errors.Is(err, contacts.ErrNotFound))
}
