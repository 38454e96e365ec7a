package documents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryDocRepo struct {
	docs   map[int64]Document
	lines  map[int64][]LineItem
	nextID int64
}

type memoryDocTx struct {
	repo *memoryDocRepo
}

func newMemoryDocRepo() *memoryDocRepo {
	return &memoryDocRepo{
		docs:  make(map[int64]Document),
		lines: make(map[int64][]LineItem),
	}
}

func (r *memoryDocRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryDocTx{repo: r})
}

func (r *memoryDocRepo) Get(ctx context.Context, kind Kind, id int64) (Document, error) {
	doc, ok := r.docs[id]
	if !ok || doc.Kind != kind {
		return Document{}, ErrNotFound
	}
	doc.Items = append([]LineItem(nil), r.lines[id]...)
	return doc, nil
}

func (r *memoryDocRepo) List(ctx context.Context, kind Kind, filters ListFilters) ([]Document, int, error) {
	var docs []Document
	for _, doc := range r.docs {
		if doc.Kind != kind {
			continue
		}
		if filters.Status != "" && doc.Status != filters.Status {
			continue
		}
		if filters.ContactID != 0 && doc.ContactID != filters.ContactID {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, len(docs), nil
}

func (tx *memoryDocTx) nextID() int64 {
	tx.repo.nextID++
	return tx.repo.nextID
}

func (tx *memoryDocTx) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	id := tx.nextID()
	doc.ID = id
	doc.Items = nil
	tx.repo.docs[id] = doc
	return id, nil
}

func (tx *memoryDocTx) InsertLine(ctx context.Context, line LineItem) error {
	line.ID = tx.nextID()
	tx.repo.lines[line.DocumentID] = append(tx.repo.lines[line.DocumentID], line)
	return nil
}

func (tx *memoryDocTx) UpdateHeader(ctx context.Context, doc Document) error {
	existing := tx.repo.docs[doc.ID]
	doc.Status = existing.Status
	doc.Items = nil
	tx.repo.docs[doc.ID] = doc
	return nil
}

func (tx *memoryDocTx) DeleteLines(ctx context.Context, docID int64) error {
	delete(tx.repo.lines, docID)
	return nil
}

func (tx *memoryDocTx) UpdateStatus(ctx context.Context, id int64, status Status) error {
	doc := tx.repo.docs[id]
	doc.Status = status
	tx.repo.docs[id] = doc
	return nil
}

func (tx *memoryDocTx) UpdatePayment(ctx context.Context, id int64, amountPaid float64, status PaymentStatus) error {
	doc := tx.repo.docs[id]
	doc.AmountPaid = amountPaid
	doc.AmountDue = doc.Total - amountPaid
	if doc.AmountDue < 0 {
		doc.AmountDue = 0
	}
	doc.PaymentStatus = status
	tx.repo.docs[id] = doc
	return nil
}

func (tx *memoryDocTx) SetDocumentURL(ctx context.Context, id int64, url string) error {
	doc := tx.repo.docs[id]
	doc.DocumentURL = &url
	tx.repo.docs[id] = doc
	return nil
}

func (tx *memoryDocTx) DeleteDocument(ctx context.Context, id int64) error {
	delete(tx.repo.docs, id)
	return nil
}

type stubCatalog struct {
	products map[int64]CatalogProduct
}

func (s *stubCatalog) Product(ctx context.Context, id int64) (CatalogProduct, error) {
	p, ok := s.products[id]
	if !ok {
		return CatalogProduct{}, ErrNotFound
	}
	return p, nil
}

type stubContacts struct {
	roles map[int64]string
}

func (s *stubContacts) ContactRole(ctx context.Context, id int64) (string, error) {
	role, ok := s.roles[id]
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}

func newTestService() (*Service, *memoryDocRepo) {
	repo := newMemoryDocRepo()
	catalog := &stubCatalog{products: map[int64]CatalogProduct{
		1: {ID: 1, Name: "Teak Chair", SKU: "TC-01", Unit: "pcs", SalePrice: 100, PurchasePrice: 60, TaxRatePercent: 18},
		2: {ID: 2, Name: "Oak Table", SKU: "OT-01", Unit: "pcs", SalePrice: 50, PurchasePrice: 30, TaxRatePercent: 0},
	}}
	contacts := &stubContacts{roles: map[int64]string{
		10: "customer",
		20: "vendor",
		30: "both",
	}}
	return NewService(repo, catalog, contacts, nil, nil, nil), repo
}

func TestCreateSalesOrderComputesTotals(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.Create(context.Background(), KindSalesOrder, CreateDocumentRequest{
		ContactID: 10,
		Items: []LineItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}, 1)

	require.NoError(t, err)
	require.Equal(t, StatusDraft, doc.Status)
	require.InDelta(t, 250.0, doc.Subtotal, 1e-9)
	require.InDelta(t, 36.0, doc.TaxTotal, 1e-9)
	require.InDelta(t, 286.0, doc.Total, 1e-9)
	require.Len(t, doc.Items, 2)
	require.Equal(t, "Teak Chair", doc.Items[0].ProductName)
	require.InDelta(t, 236.0, doc.Items[0].LineTotal, 1e-9)
	require.NotEmpty(t, doc.Number)
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Create(context.Background(), KindSalesOrder, CreateDocumentRequest{ContactID: 10}, 1)

	require.ErrorIs(t, err, ErrValidation)
	require.Empty(t, repo.docs)
}

func TestCreateRejectsMissingContact(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), KindSalesOrder, CreateDocumentRequest{
		Items: []LineItemRequest{{ProductID: 1, Quantity: 1}},
	}, 1)

	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateRejectsWrongPartyRole(t *testing.T) {
	svc, _ := newTestService()

	// A vendor cannot head a sales order, but a "both" contact can.
	_, err := svc.Create(context.Background(), KindSalesOrder, CreateDocumentRequest{
		ContactID: 20,
		Items:     []LineItemRequest{{ProductID: 1, Quantity: 1}},
	}, 1)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), KindSalesOrder, CreateDocumentRequest{
		ContactID: 30,
		Items:     []LineItemRequest{{ProductID: 1, Quantity: 1}},
	}, 1)
	require.NoError(t, err)
}

func TestCreateVendorBillLineTotalExcludesTax(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.Create(context.Background(), KindVendorBill, CreateDocumentRequest{
		ContactID: 20,
		Items:     []LineItemRequest{{ProductID: 1, Quantity: 2}},
	}, 1)

	require.NoError(t, err)
	// Purchase price seeds the line; bill line totals stay tax-exclusive
	// while document totals still include tax.
	require.InDelta(t, 120.0, doc.Items[0].LineTotal, 1e-9)
	require.InDelta(t, 120.0, doc.Subtotal, 1e-9)
	require.InDelta(t, 21.6, doc.TaxTotal, 1e-9)
	require.InDelta(t, 141.6, doc.Total, 1e-9)
	require.Equal(t, PaymentStatusNotPaid, doc.PaymentStatus)
}

func TestExplicitPriceOverridesCatalog(t *testing.T) {
	svc, _ := newTestService()
	price := Amount(90)
	tax := Amount(5)

	doc, err := svc.Create(context.Background(), KindSalesOrder, CreateDocumentRequest{
		ContactID: 10,
		Items:     []LineItemRequest{{ProductID: 1, Quantity: 1, UnitPrice: &price, TaxRate: &tax}},
	}, 1)

	require.NoError(t, err)
	require.InDelta(t, 90.0, doc.Items[0].UnitPrice, 1e-9)
	require.InDelta(t, 5.0, doc.Items[0].TaxRatePercent, 1e-9)
	require.InDelta(t, 94.5, doc.Items[0].LineTotal, 1e-9)
}

func TestApplyLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, KindSalesOrder, CreateDocumentRequest{
		ContactID: 10,
		Items:     []LineItemRequest{{ProductID: 1, Quantity: 1}},
	}, 1)
	require.NoError(t, err)

	doc, err = svc.Apply(ctx, KindSalesOrder, doc.ID, ActionConfirm, 1)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, doc.Status)

	// Repeating the transition conflicts instead of double-applying.
	_, err = svc.Apply(ctx, KindSalesOrder, doc.ID, ActionConfirm, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)

	doc, err = svc.Apply(ctx, KindSalesOrder, doc.ID, ActionDeliver, 1)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, doc.Status)

	_, err = svc.Apply(ctx, KindSalesOrder, doc.ID, ActionCancel, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateOnlyDraft(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, KindCustomerInvoice, CreateDocumentRequest{
		ContactID: 10,
		Items:     []LineItemRequest{{ProductID: 1, Quantity: 1}},
	}, 1)
	require.NoError(t, err)

	items := []LineItemRequest{{ProductID: 1, Quantity: 3}}
	updated, err := svc.Update(ctx, KindCustomerInvoice, doc.ID, UpdateDocumentRequest{Items: &items}, 1)
	require.NoError(t, err)
	require.InDelta(t, 300.0, updated.Subtotal, 1e-9)
	require.InDelta(t, 354.0, updated.Total, 1e-9)

	_, err = svc.Apply(ctx, KindCustomerInvoice, doc.ID, ActionPost, 1)
	require.NoError(t, err)

	_, err = svc.Update(ctx, KindCustomerInvoice, doc.ID, UpdateDocumentRequest{Items: &items}, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyPayment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, KindCustomerInvoice, CreateDocumentRequest{
		ContactID: 10,
		Items:     []LineItemRequest{{ProductID: 2, Quantity: 2}},
	}, 1)
	require.NoError(t, err)

	// Draft documents do not accept payments.
	_, err = svc.ApplyPayment(ctx, KindCustomerInvoice, doc.ID, 50)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Apply(ctx, KindCustomerInvoice, doc.ID, ActionPost, 1)
	require.NoError(t, err)

	doc, err = svc.ApplyPayment(ctx, KindCustomerInvoice, doc.ID, 40)
	require.NoError(t, err)
	require.Equal(t, PaymentStatusPartiallyPaid, doc.PaymentStatus)
	require.InDelta(t, 60.0, doc.AmountDue, 1e-9)

	_, err = svc.ApplyPayment(ctx, KindCustomerInvoice, doc.ID, 100)
	require.ErrorIs(t, err, ErrValidation)

	doc, err = svc.ApplyPayment(ctx, KindCustomerInvoice, doc.ID, 60)
	require.NoError(t, err)
	require.Equal(t, PaymentStatusPaid, doc.PaymentStatus)
	require.Zero(t, doc.AmountDue)
	require.NotContains(t, mustConfig(t, KindCustomerInvoice).OfferedActions(doc.Status, doc.PaymentStatus), ActionRecordPayment)
}

func TestDeleteOnlyDraft(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, KindPurchaseOrder, CreateDocumentRequest{
		ContactID: 20,
		Items:     []LineItemRequest{{ProductID: 1, Quantity: 1}},
	}, 1)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, KindPurchaseOrder, doc.ID, ActionConfirm, 1)
	require.NoError(t, err)

	err = svc.Delete(ctx, KindPurchaseOrder, doc.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Apply(ctx, KindPurchaseOrder, doc.ID, ActionReceive, 1)
	require.NoError(t, err)
	require.Len(t, repo.docs, 1)
}
