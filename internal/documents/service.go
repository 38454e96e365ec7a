package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shiv-furniture/shiverp/internal/shared"
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("documents: not found")
	// ErrValidation indicates the payload failed a business rule before any
	// persistence happened.
	ErrValidation = errors.New("documents: invalid input")
)

// RepositoryPort describes read access and transaction scoping.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, kind Kind, id int64) (Document, error)
	List(ctx context.Context, kind Kind, filters ListFilters) ([]Document, int, error)
}

// TxRepository describes mutations executed inside a transaction.
type TxRepository interface {
	InsertDocument(ctx context.Context, doc Document) (int64, error)
	InsertLine(ctx context.Context, line LineItem) error
	UpdateHeader(ctx context.Context, doc Document) error
	DeleteLines(ctx context.Context, docID int64) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdatePayment(ctx context.Context, id int64, amountPaid float64, status PaymentStatus) error
	SetDocumentURL(ctx context.Context, id int64, url string) error
	DeleteDocument(ctx context.Context, id int64) error
}

// CatalogPort resolves products referenced by submitted lines.
type CatalogPort interface {
	Product(ctx context.Context, id int64) (CatalogProduct, error)
}

// ContactPort verifies the document party and its commercial role.
type ContactPort interface {
	// ContactRole returns "customer", "vendor" or "both".
	ContactRole(ctx context.Context, id int64) (string, error)
}

// AnalyticalAssigner suggests a cost-center account when the payload names
// none, by matching configured auto-analytical rules.
type AnalyticalAssigner interface {
	SuggestAccount(ctx context.Context, doc Document) (*int64, error)
}

// Notifier enqueues follow-up work after a lifecycle transition.
type Notifier interface {
	DocumentPosted(ctx context.Context, kind Kind, id int64) error
}

// AuditPort records mutations, reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the document lifecycle for every kind.
type Service struct {
	repo     RepositoryPort
	catalog  CatalogPort
	contacts ContactPort
	assigner AnalyticalAssigner
	notifier Notifier
	audit    AuditPort
}

// NewService constructs the document service. assigner, notifier and audit
// are optional.
func NewService(repo RepositoryPort, catalog CatalogPort, contacts ContactPort, assigner AnalyticalAssigner, notifier Notifier, audit AuditPort) *Service {
	return &Service{repo: repo, catalog: catalog, contacts: contacts, assigner: assigner, notifier: notifier, audit: audit}
}

// Create validates the payload, computes authoritative amounts and persists
// header plus lines in one transaction.
func (s *Service) Create(ctx context.Context, kind Kind, req CreateDocumentRequest, createdBy int64) (*Document, error) {
	cfg, ok := ConfigFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
	if req.ContactID == 0 {
		return nil, fmt.Errorf("%w: contact required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item required", ErrValidation)
	}
	if err := s.verifyContact(ctx, cfg, req.ContactID); err != nil {
		return nil, err
	}

	items, err := s.buildLines(ctx, cfg, req.Items)
	if err != nil {
		return nil, err
	}
	totals := cfg.ComputeTotals(items)

	doc := Document{
		Kind:                kind,
		Number:              generateNumber(cfg.NumberPrefix),
		ContactID:           req.ContactID,
		DocumentDate:        defaultTime(req.DocumentDate),
		DueDate:             req.DueDate,
		Status:              StatusDraft,
		Subtotal:            totals.Subtotal,
		TaxTotal:            totals.TaxTotal,
		Total:               totals.Total,
		AmountDue:           totals.Total,
		Notes:               req.Notes,
		AnalyticalAccountID: req.AnalyticalAccountID,
		SourceDocumentID:    req.SourceDocumentID,
		CreatedBy:           createdBy,
		Items:               items,
	}
	if cfg.Payable {
		doc.PaymentStatus = PaymentStatusNotPaid
	}
	if doc.AnalyticalAccountID == nil && s.assigner != nil {
		if suggested, err := s.assigner.SuggestAccount(ctx, doc); err == nil {
			doc.AnalyticalAccountID = suggested
		}
	}

	var docID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		docID = id
		for i := range items {
			items[i].DocumentID = id
			if err := tx.InsertLine(ctx, items[i]); err != nil {
				return fmt.Errorf("insert line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, cfg, "CREATE", docID, createdBy, map[string]any{"number": doc.Number, "total": doc.Total})
	created, err := s.repo.Get(ctx, kind, docID)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update rewrites header fields and, when lines are supplied, replaces the
// full line set with freshly computed amounts. Only drafts can change.
func (s *Service) Update(ctx context.Context, kind Kind, id int64, req UpdateDocumentRequest, actorID int64) (*Document, error) {
	cfg, ok := ConfigFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
	doc, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft documents can be edited", ErrInvalidTransition)
	}

	if req.ContactID != nil {
		if err := s.verifyContact(ctx, cfg, *req.ContactID); err != nil {
			return nil, err
		}
		doc.ContactID = *req.ContactID
	}
	if req.DocumentDate != nil {
		doc.DocumentDate = *req.DocumentDate
	}
	if req.DueDate != nil {
		doc.DueDate = req.DueDate
	}
	if req.Notes != nil {
		doc.Notes = *req.Notes
	}
	if req.AnalyticalAccountID != nil {
		doc.AnalyticalAccountID = req.AnalyticalAccountID
	}

	var items []LineItem
	if req.Items != nil {
		if len(*req.Items) == 0 {
			return nil, fmt.Errorf("%w: at least one item required", ErrValidation)
		}
		items, err = s.buildLines(ctx, cfg, *req.Items)
		if err != nil {
			return nil, err
		}
		totals := cfg.ComputeTotals(items)
		doc.Subtotal = totals.Subtotal
		doc.TaxTotal = totals.TaxTotal
		doc.Total = totals.Total
		doc.AmountDue = totals.Total - doc.AmountPaid
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateHeader(ctx, doc); err != nil {
			return fmt.Errorf("update header: %w", err)
		}
		if items == nil {
			return nil
		}
		if err := tx.DeleteLines(ctx, id); err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		for i := range items {
			items[i].DocumentID = id
			if err := tx.InsertLine(ctx, items[i]); err != nil {
				return fmt.Errorf("insert line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, cfg, "UPDATE", id, actorID, map[string]any{"number": doc.Number})
	updated, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get loads one document with its lines.
func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Document, error) {
	doc, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents matching the filters plus the unpaginated total.
func (s *Service) List(ctx context.Context, kind Kind, filters ListFilters) ([]Document, int, error) {
	return s.repo.List(ctx, kind, filters)
}

// Delete removes a draft document and its lines.
func (s *Service) Delete(ctx context.Context, kind Kind, id int64, actorID int64) error {
	cfg, ok := ConfigFor(kind)
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
	doc, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if doc.Status != StatusDraft {
		return fmt.Errorf("%w: only draft documents can be deleted", ErrInvalidTransition)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteLines(ctx, id); err != nil {
			return err
		}
		return tx.DeleteDocument(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, cfg, "DELETE", id, actorID, map[string]any{"number": doc.Number})
	return nil
}

// Apply performs a lifecycle action. A repeated action on an already
// transitioned document returns ErrInvalidTransition; nothing is applied
// twice.
func (s *Service) Apply(ctx context.Context, kind Kind, id int64, action Action, actorID int64) (*Document, error) {
	cfg, ok := ConfigFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
	doc, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	next, err := cfg.Transition(doc.Status, action)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s from %s", ErrInvalidTransition, kind, action, doc.Status)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, next)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, cfg, string(action), id, actorID, map[string]any{"number": doc.Number, "from": doc.Status, "to": next})

	// Post-transition fan-out must not undo the transition.
	if next == StatusPosted && s.notifier != nil {
		_ = s.notifier.DocumentPosted(ctx, kind, id)
	}

	updated, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ApplyPayment records amount against a posted payable document and derives
// the payment status. Payments beyond the amount due are rejected.
func (s *Service) ApplyPayment(ctx context.Context, kind Kind, id int64, amount float64) (*Document, error) {
	cfg, ok := ConfigFor(kind)
	if !ok || !cfg.Payable {
		return nil, fmt.Errorf("%w: %q does not accept payments", ErrValidation, kind)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	doc, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != StatusPosted {
		return nil, fmt.Errorf("%w: payments require a posted document", ErrInvalidTransition)
	}
	if amount > doc.AmountDue+amountEpsilon {
		return nil, fmt.Errorf("%w: payment %.2f exceeds amount due %.2f", ErrValidation, amount, doc.AmountDue)
	}

	paid := doc.AmountPaid + amount
	status := DerivePaymentStatus(paid, doc.Total)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdatePayment(ctx, id, paid, status)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetDocumentURL stores the rendered artifact location.
func (s *Service) SetDocumentURL(ctx context.Context, kind Kind, id int64, url string) error {
	if _, err := s.repo.Get(ctx, kind, id); err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetDocumentURL(ctx, id, url)
	})
}

// amountEpsilon absorbs float rounding when comparing payment amounts.
const amountEpsilon = 1e-6

func (s *Service) buildLines(ctx context.Context, cfg KindConfig, reqs []LineItemRequest) ([]LineItem, error) {
	items := make([]LineItem, 0, len(reqs))
	for i, lr := range reqs {
		if lr.ProductID == 0 {
			return nil, fmt.Errorf("%w: line %d missing product", ErrValidation, i+1)
		}
		if lr.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d quantity must be positive", ErrValidation, i+1)
		}
		product, err := s.catalog.Product(ctx, lr.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d product: %v", ErrValidation, i+1, err)
		}
		item := LineItem{Quantity: float64(lr.Quantity), LineOrder: i + 1}
		cfg.ApplyProduct(&item, product)
		if lr.UnitPrice != nil {
			item.UnitPrice = float64(*lr.UnitPrice)
		}
		if lr.TaxRate != nil {
			item.TaxRatePercent = float64(*lr.TaxRate)
		}
		cfg.RecomputeLine(&item)
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) verifyContact(ctx context.Context, cfg KindConfig, contactID int64) error {
	role, err := s.contacts.ContactRole(ctx, contactID)
	if err != nil {
		return fmt.Errorf("%w: contact: %v", ErrValidation, err)
	}
	want := "customer"
	if cfg.Direction == DirectionPurchase {
		want = "vendor"
	}
	if role != want && role != "both" {
		return fmt.Errorf("%w: contact is not a %s", ErrValidation, want)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, cfg KindConfig, action string, id int64, actorID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   fmt.Sprintf("%s_%s", cfg.NumberPrefix, action),
		Entity:   string(cfg.Kind),
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func defaultTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
