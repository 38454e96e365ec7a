package documents

import "errors"

// Status is the server-authoritative document state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusReceived  Status = "received"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus is a second axis on payable documents, driven entirely by
// recorded payments and independent of Status.
type PaymentStatus string

const (
	PaymentStatusNotPaid       PaymentStatus = "not_paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// Action names a client-visible operation on a document.
type Action string

const (
	ActionConfirm          Action = "confirm"
	ActionDeliver          Action = "deliver"
	ActionReceive          Action = "receive"
	ActionPost             Action = "post"
	ActionCancel           Action = "cancel"
	ActionEdit             Action = "edit"
	ActionDelete           Action = "delete"
	ActionSendEmail        Action = "send_email"
	ActionGenerateDocument Action = "generate_document"
	ActionRecordPayment    Action = "record_payment"
)

// ErrInvalidTransition occurs when an action violates the status workflow.
// Repeating a transition on an already-transitioned document fails with this
// error rather than double-applying.
var ErrInvalidTransition = errors.New("documents: invalid status transition")

// Transition resolves the target status for an action from the current
// status. It returns ErrInvalidTransition when the workflow does not permit
// the action.
func (c KindConfig) Transition(from Status, action Action) (Status, error) {
	next, ok := c.transitions[from][action]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// IsTerminal reports whether no further status transition exists from s.
func (c KindConfig) IsTerminal(s Status) bool {
	return len(c.transitions[s]) == 0
}

// OfferedActions returns the actions a client should offer for the given
// state pair. Fully paid documents stop offering record_payment.
func (c KindConfig) OfferedActions(status Status, payment PaymentStatus) []Action {
	base := c.offered[status]
	actions := make([]Action, 0, len(base))
	for _, a := range base {
		if a == ActionRecordPayment && payment == PaymentStatusPaid {
			continue
		}
		actions = append(actions, a)
	}
	return actions
}

// DerivePaymentStatus maps the paid amount against the document total.
func DerivePaymentStatus(amountPaid, total float64) PaymentStatus {
	switch {
	case amountPaid <= 0:
		return PaymentStatusNotPaid
	case amountPaid < total:
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusPaid
	}
}
