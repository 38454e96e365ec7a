package contacts

import (
	"errors"
	"time"
)

// ContactType describes the commercial relationship with a contact.
type ContactType string

const (
	TypeCustomer ContactType = "customer"
	TypeVendor   ContactType = "vendor"
	TypeBoth     ContactType = "both"
)

// Address is a postal address stored as JSONB.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
}

// Contact is a customer, vendor or both.
type Contact struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	ContactType     ContactType `json:"contact_type"`
	CompanyName     string      `json:"company_name,omitempty"`
	GSTIN           string      `json:"gstin,omitempty"`
	PAN             string      `json:"pan,omitempty"`
	BillingAddress  *Address    `json:"billing_address,omitempty"`
	ShippingAddress *Address    `json:"shipping_address,omitempty"`
	CreditLimit     float64     `json:"credit_limit"`
	PaymentTerms    int         `json:"payment_terms"`
	Notes           string      `json:"notes,omitempty"`
	IsArchived      bool        `json:"is_archived"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

var (
	// ErrNotFound indicates the contact does not exist.
	ErrNotFound = errors.New("contacts: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("contacts: invalid input")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("contacts: email already in use")
)
