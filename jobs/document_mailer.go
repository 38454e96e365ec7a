package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/shiv-furniture/shiverp/internal/contacts"
	"github.com/shiv-furniture/shiverp/internal/documents"
)

// Enqueuer submits mail tasks to the queue.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// ContactSource resolves the party behind a document.
type ContactSource interface {
	Get(ctx context.Context, id int64) (*contacts.Contact, error)
}

// DocumentMailer composes the customer-facing email for a posted document and
// queues it for delivery. It satisfies the document handler's Mailer port.
type DocumentMailer struct {
	enqueuer Enqueuer
	contacts ContactSource
	business string
}

// NewDocumentMailer constructs the mailer. business is the sender name shown
// in subjects.
func NewDocumentMailer(enqueuer Enqueuer, contactSrc ContactSource, business string) *DocumentMailer {
	if business == "" {
		business = "Shiv Furniture"
	}
	return &DocumentMailer{enqueuer: enqueuer, contacts: contactSrc, business: business}
}

// SendDocument queues an email for the document's contact.
func (m *DocumentMailer) SendDocument(ctx context.Context, cfg documents.KindConfig, doc documents.Document) error {
	contact, err := m.contacts.Get(ctx, doc.ContactID)
	if err != nil {
		return fmt.Errorf("resolve contact: %w", err)
	}
	if contact.Email == "" {
		return fmt.Errorf("contact %q has no email on file", contact.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", contact.Name)
	fmt.Fprintf(&b, "Please find the details of %s below.\n\n", doc.Number)
	fmt.Fprintf(&b, "Total: %.2f\n", doc.Total)
	fmt.Fprintf(&b, "Amount due: %.2f\n", doc.AmountDue)
	if doc.DueDate != nil {
		fmt.Fprintf(&b, "Due date: %s\n", doc.DueDate.Format("02 Jan 2006"))
	}
	if doc.DocumentURL != nil && *doc.DocumentURL != "" {
		fmt.Fprintf(&b, "\nDownload: %s\n", *doc.DocumentURL)
	}
	fmt.Fprintf(&b, "\nRegards,\n%s\n", m.business)

	_, err = m.enqueuer.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      contact.Email,
		Subject: fmt.Sprintf("%s %s from %s", label(cfg.Kind), doc.Number, m.business),
		Body:    b.String(),
	})
	return err
}

func label(kind documents.Kind) string {
	switch kind {
	case documents.KindSalesOrder:
		return "Sales order"
	case documents.KindPurchaseOrder:
		return "Purchase order"
	case documents.KindVendorBill:
		return "Bill"
	default:
		return "Invoice"
	}
}
